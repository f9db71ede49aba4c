// Package undo implements the two-phase optimistic delete shared by
// messages, conversations, stories, posts, notifications and vault
// files: hide immediately, keep a snapshot, commit after a grace window
// unless explicitly undone.
package undo

import (
	"sync"
	"time"

	apperr "campusconnect/pkg/errors"
	"campusconnect/pkg/logger"
	"campusconnect/pkg/telemetry"
)

type Kind string

const (
	KindMessage      Kind = "message"
	KindConversation Kind = "conversation"
	KindStory        Kind = "story"
	KindPost         Kind = "post"
	KindNotification Kind = "notification"
	KindVaultFile    Kind = "vault_file"
)

// DefaultGrace is the cancellation window before a pending deletion
// commits.
const DefaultGrace = 3 * time.Second

type pending struct {
	id       string
	snapshot any
	deadline time.Time
	timer    *time.Timer
	commit   func()
}

// Controller tracks at most one pending deletion per kind. A second
// request for a busy kind is rejected rather than silently abandoning
// the first to its deadline.
type Controller struct {
	mu      sync.Mutex
	grace   time.Duration
	pending map[Kind]*pending
	closed  bool
}

func New(grace time.Duration) *Controller {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Controller{grace: grace, pending: make(map[Kind]*pending)}
}

// Grace returns the cancellation window pending deletions commit after.
func (c *Controller) Grace() time.Duration { return c.grace }

// Request hides the item and arms the grace timer. commit runs exactly
// once, after the window elapses without an undo; it should invoke the
// underlying store's delete.
func (c *Controller) Request(kind Kind, id string, snapshot any, commit func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return apperr.FailedPrecondition("undo controller is closed")
	}
	if _, busy := c.pending[kind]; busy {
		return apperr.ErrDeletePending
	}
	p := &pending{
		id:       id,
		snapshot: snapshot,
		deadline: time.Now().Add(c.grace),
		commit:   commit,
	}
	p.timer = time.AfterFunc(c.grace, func() { c.fire(kind, p) })
	c.pending[kind] = p
	logger.Info("delete_pending", "kind", string(kind), "id", id, "grace", c.grace)
	return nil
}

func (c *Controller) fire(kind Kind, p *pending) {
	c.mu.Lock()
	if c.pending[kind] != p {
		// undone (or superseded) before the lock was taken
		c.mu.Unlock()
		return
	}
	delete(c.pending, kind)
	c.mu.Unlock()
	if p.commit != nil {
		p.commit()
	}
	telemetry.DeletesCommitted.WithLabelValues(string(kind)).Inc()
	logger.Info("delete_committed", "kind", string(kind), "id", p.id)
}

// Undo cancels the pending deletion for kind and returns its snapshot.
// It reports false when nothing is pending or the deletion already
// committed; calling it late is a no-op, not an error.
func (c *Controller) Undo(kind Kind) (any, bool) {
	c.mu.Lock()
	p, ok := c.pending[kind]
	if !ok {
		c.mu.Unlock()
		return nil, false
	}
	if !p.timer.Stop() {
		// timer fired; fire() will commit once it takes the lock
		c.mu.Unlock()
		return nil, false
	}
	delete(c.pending, kind)
	c.mu.Unlock()
	telemetry.DeletesRestored.WithLabelValues(string(kind)).Inc()
	logger.Info("delete_restored", "kind", string(kind), "id", p.id)
	return p.snapshot, true
}

// Pending returns the id awaiting commit for kind, if any.
func (c *Controller) Pending(kind Kind) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[kind]
	if !ok {
		return "", false
	}
	return p.id, true
}

// Deadline returns the commit instant for the pending deletion of kind.
func (c *Controller) Deadline(kind Kind) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[kind]
	if !ok {
		return time.Time{}, false
	}
	return p.deadline, true
}

// Suppressed reports whether the item must be hidden from listings while
// its deletion is pending.
func (c *Controller) Suppressed(kind Kind, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[kind]
	return ok && p.id == id
}

// Close cancels every armed timer without committing. Idempotent and
// safe to call after timers have fired; owners must call it on teardown
// so no callback mutates state after the owning context is gone.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for kind, p := range c.pending {
		p.timer.Stop()
		delete(c.pending, kind)
	}
}
