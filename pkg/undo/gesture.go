package undo

import (
	"sync"
	"time"
)

// DefaultPressThreshold is the sustained-press duration that arms a
// deletion.
const DefaultPressThreshold = time.Second

// Press tracks one sustained-press gesture. armed runs once when the
// press is held past the threshold; releasing earlier cancels it. Every
// UI surface shares this instead of re-deriving the timer choreography.
type Press struct {
	mu    sync.Mutex
	timer *time.Timer
	fired bool
	done  bool
}

// StartPress begins tracking a press. threshold <= 0 uses the default.
func StartPress(threshold time.Duration, armed func()) *Press {
	if threshold <= 0 {
		threshold = DefaultPressThreshold
	}
	p := &Press{}
	p.timer = time.AfterFunc(threshold, func() {
		p.mu.Lock()
		if p.done {
			p.mu.Unlock()
			return
		}
		p.fired = true
		p.mu.Unlock()
		if armed != nil {
			armed()
		}
	})
	return p
}

// Release ends the gesture and reports whether it had already armed.
// Idempotent; safe after the timer fired.
func (p *Press) Release() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return p.fired
	}
	p.done = true
	p.timer.Stop()
	return p.fired
}
