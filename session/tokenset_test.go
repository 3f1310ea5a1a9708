package session

import (
	"testing"
	"time"
)

func TestTokenSetLifecycle(t *testing.T) {
	now := time.Unix(1000, 0)
	ts := NewTokenSetAt(func() time.Time { return now })

	if ts.Contains("never-inserted") {
		t.Fatal("token that was never inserted must not be a member")
	}

	ts.Insert("abc123", time.Minute)
	if !ts.Contains("abc123") {
		t.Fatal("token must be a member right after insertion")
	}
	now = now.Add(59 * time.Second)
	if !ts.Contains("abc123") {
		t.Fatal("token expired before its ttl elapsed")
	}
	now = now.Add(time.Second)
	if ts.Contains("abc123") {
		t.Fatal("token must expire once its ttl elapses")
	}
	if ts.len() != 0 {
		t.Fatal("expired token must be evicted by the lookup that observed it")
	}
}

func TestTokenSetReinsertResetsDeadline(t *testing.T) {
	now := time.Unix(1000, 0)
	ts := NewTokenSetAt(func() time.Time { return now })

	ts.Insert("abc123", time.Minute)
	now = now.Add(50 * time.Second)
	ts.Insert("abc123", time.Minute)
	now = now.Add(50 * time.Second)
	if !ts.Contains("abc123") {
		t.Fatal("re-insert must reset the deadline, not keep the old one")
	}
	now = now.Add(11 * time.Second)
	if ts.Contains("abc123") {
		t.Fatal("re-insert must not extend the deadline past now+ttl")
	}
}

func TestTokenSetEvictionOnlyTouchesObservedEntry(t *testing.T) {
	now := time.Unix(1000, 0)
	ts := NewTokenSetAt(func() time.Time { return now })

	ts.Insert("short", time.Second)
	ts.Insert("long", time.Hour)
	now = now.Add(time.Minute)
	if ts.Contains("short") {
		t.Fatal("short lived token should be gone")
	}
	if !ts.Contains("long") {
		t.Fatal("long lived token should survive eviction of its neighbour")
	}
	if ts.len() != 1 {
		t.Fatalf("expected 1 entry after eviction, got %v", ts.len())
	}
}
