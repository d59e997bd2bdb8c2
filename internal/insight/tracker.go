// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package insight

import (
	"context"
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Ticket identifies one in-flight request.
type Ticket struct {
	ID ulid.ULID
}

// String returns the ticket id.
func (t Ticket) String() string { return t.ID.String() }

// Tracker keeps at most one request current. Beginning a new request
// cancels the previous one and makes its ticket stale, so a late response
// cannot overwrite a newer one.
type Tracker struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	current ulid.ULID
	cancel  context.CancelFunc
}

// NewTracker creates a tracker with no current request.
func NewTracker() *Tracker {
	return &Tracker{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Begin starts a request, cancelling the previous one. The returned context
// is cancelled when a newer request begins or the ticket ends.
func (t *Tracker) Begin(ctx context.Context) (Ticket, context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	t.current = ulid.MustNew(ulid.Now(), t.entropy)
	t.cancel = cancel
	return Ticket{ID: t.current}, ctx
}

// Current reports whether tk belongs to the latest request.
func (t *Tracker) Current(tk Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tk.ID == t.current
}

// Deliver runs fn only if tk is still current. It reports whether fn ran.
func (t *Tracker) Deliver(tk Ticket, fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tk.ID != t.current {
		return false
	}
	fn()
	return true
}

// End releases tk's context if it is still current.
func (t *Tracker) End(tk Ticket) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tk.ID == t.current && t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
