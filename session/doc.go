// Package session keeps track of which callers already proved they know
// the shared password.
//
// There are no user accounts here. The whole service is guarded by a
// single password, so the only thing worth remembering about a caller
// is an opaque token and the instant it stops being valid.
//
// Tokens live in memory only. A restart logs everyone out, which is
// fine for a service of this size: redoing the login is one form field.
//
// Expiry is lazy. An expired token is removed the first time a lookup
// observes it, there is no background sweeper. The set self-cleans at
// the rate requests arrive, and it only ever grows at the rate logins
// succeed. Tokens that are minted and never checked again will linger
// until the process exits, a bound we accept instead of paying for a
// janitor goroutine.
package session
