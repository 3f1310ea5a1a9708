package session

import (
	"sync"
	"time"
)

type (
	// TokenSet is a set of tokens with a deadline attached to each
	// entry. Membership checks treat entries past their deadline as
	// absent and drop them on the spot.
	//
	// Check-then-evict and insert are compound operations, so the
	// whole table sits behind one mutex. Requests are served
	// concurrently and a lost update here means a caller logged in
	// twice or kicked out early.
	TokenSet struct {
		mu    sync.Mutex
		table map[string]time.Time
		now   func() time.Time
	}
)

func NewTokenSet() *TokenSet {
	return &TokenSet{
		table: make(map[string]time.Time),
		now:   time.Now,
	}
}

// NewTokenSetAt behaves like NewTokenSet but reads the current time
// from clock, which lets tests move time forward without sleeping.
func NewTokenSetAt(clock func() time.Time) *TokenSet {
	ts := NewTokenSet()
	ts.now = clock
	return ts
}

// Insert records token as a member until ttl elapses. Inserting a
// token that is already present resets its deadline, it does not
// extend it by another ttl.
func (t *TokenSet) Insert(token string, ttl time.Duration) {
	t.mu.Lock()
	t.table[token] = t.now().Add(ttl)
	t.mu.Unlock()
}

// Contains reports whether token is a live member of the set. A token
// past its deadline is deleted as a side effect of the lookup and
// reported as absent.
func (t *TokenSet) Contains(token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	deadline, ok := t.table[token]
	if !ok {
		return false
	}
	if t.now().Before(deadline) {
		return true
	}
	delete(t.table, token)
	return false
}

func (t *TokenSet) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.table)
}
