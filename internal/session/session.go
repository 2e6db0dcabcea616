// Package session defines the sign-in contract the terminal client runs
// against and a broadcaster that fans session changes out to subscribers.
package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Session is a signed-in user.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now. A zero
// ExpiresAt never expires.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Gateway is the identity provider. Subscribers receive the new session on
// every change, or nil after sign-out.
type Gateway interface {
	Current() (Session, bool)
	Subscribe(fn func(*Session)) (unsubscribe func())
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context) error
}

// Broadcaster holds the current session and notifies subscribers when it
// changes. The zero value is ready to use and signed out.
type Broadcaster struct {
	mu      sync.Mutex
	current *Session
	subs    map[int]func(*Session)
	nextID  int
}

// Current returns the session, if any.
func (b *Broadcaster) Current() (Session, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Session{}, false
	}
	return *b.current, true
}

// Subscribe registers fn for later changes. The returned func removes it
// and is safe to call more than once.
func (b *Broadcaster) Subscribe(fn func(*Session)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[int]func(*Session))
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Set replaces the session and notifies subscribers in subscription order.
// A nil s signs out. Callbacks run after the lock is released, so they may
// call back into the Broadcaster.
func (b *Broadcaster) Set(s *Session) {
	b.mu.Lock()
	if s != nil {
		cp := *s
		s = &cp
	}
	b.current = s

	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(*Session), len(ids))
	for i, id := range ids {
		fns[i] = b.subs[id]
	}
	b.mu.Unlock()

	for _, fn := range fns {
		if s == nil {
			fn(nil)
			continue
		}
		cp := *s
		fn(&cp)
	}
}
