package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// DefaultTimeout is how long a freshly minted session stays valid
	// unless the operator configures something else.
	DefaultTimeout = 12 * time.Hour

	tokenBytes = 12
)

type (
	// Authority is the single source of truth for "is this caller
	// authenticated". It owns the token table and the shared
	// credential, both fixed at construction.
	//
	// Construct one per process and pass it down. Keeping it an
	// explicit value instead of package state means tests can run
	// independent authorities with independent clocks.
	Authority struct {
		tokens     *TokenSet
		credential []byte
		timeout    time.Duration
	}
)

// NewAuthority wires an authority around the given token set. A nil
// tokens uses a fresh wall-clock set. A non-positive timeout falls
// back to DefaultTimeout.
func NewAuthority(credential string, timeout time.Duration, tokens *TokenSet) *Authority {
	if tokens == nil {
		tokens = NewTokenSet()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Authority{
		tokens:     tokens,
		credential: []byte(credential),
		timeout:    timeout,
	}
}

// IsValid reports whether token identifies a live session. The empty
// token is never valid.
func (a *Authority) IsValid(token string) bool {
	if token == "" {
		return false
	}
	return a.tokens.Contains(token)
}

// Register records token as a live session for ttl. Called once per
// successful login.
func (a *Authority) Register(token string, ttl time.Duration) {
	a.tokens.Insert(token, ttl)
}

// Mint produces a fresh unguessable token. The token proves nothing
// until it is registered.
func (a *Authority) Mint() (string, error) {
	var buf [tokenBytes]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		return "", fmt.Errorf("session: unable to read random bytes for token, cause %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}

// CheckCredential compares submitted against the shared password in
// constant time.
func (a *Authority) CheckCredential(submitted string) bool {
	return subtle.ConstantTimeCompare(a.credential, []byte(submitted)) == 1
}

// DefaultTimeout is the ttl Register should receive for sessions
// created by a normal login.
func (a *Authority) DefaultTimeout() time.Duration {
	return a.timeout
}
