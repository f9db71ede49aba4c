package stories

import (
	"sync"
	"time"

	"campusconnect/pkg/models"
)

// Display durations are fixed by media kind; a video's natural duration
// is not consulted.
const (
	ImageDuration = 5 * time.Second
	VideoDuration = 15 * time.Second
	// TickInterval is the progress cadence the owning surface should
	// drive Tick at.
	TickInterval = 100 * time.Millisecond
)

// Viewer is a sequential session over one author's active stories,
// oldest first. The owning surface drives Tick from its own timer and
// must Close the session on teardown; Close is idempotent.
type Viewer struct {
	mu       sync.Mutex
	stories  []models.Story
	index    int
	progress float64 // 0..100 for the current story
	closed   bool
}

func newViewer(sts []models.Story) *Viewer {
	return &Viewer{stories: sts}
}

func durationFor(kind models.MediaKind) time.Duration {
	if kind == models.MediaVideo {
		return VideoDuration
	}
	return ImageDuration
}

// Current returns the story on display. False once the session closed.
func (v *Viewer) Current() (models.Story, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return models.Story{}, false
	}
	return v.stories[v.index], true
}

// Index returns the zero-based position within the session.
func (v *Viewer) Index() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.index
}

// Progress returns the display progress of the current story, 0..100.
func (v *Viewer) Progress() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.progress
}

// Tick advances progress by one TickInterval step; reaching 100%
// auto-advances to the next story. Safe to call after Close.
func (v *Viewer) Tick() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	d := durationFor(v.stories[v.index].MediaKind)
	v.progress += 100 / (float64(d) / float64(TickInterval))
	if v.progress >= 100 {
		v.advance()
	}
}

// Next skips to the following story; past the last one the session
// closes.
func (v *Viewer) Next() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.advance()
}

// advance moves forward one story. Caller holds the lock.
func (v *Viewer) advance() {
	if v.index < len(v.stories)-1 {
		v.index++
		v.progress = 0
		return
	}
	v.closed = true
}

// Previous steps back one story; allowed only when not already at the
// first one.
func (v *Viewer) Previous() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || v.index == 0 {
		return
	}
	v.index--
	v.progress = 0
}

// Tap interprets a tap at x on a surface of the given width: the left
// half means previous, the right half next.
func (v *Viewer) Tap(x, width float64) {
	if x < width/2 {
		v.Previous()
		return
	}
	v.Next()
}

// Close ends the session. Idempotent and safe after auto-close.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

// Closed reports whether the session has ended.
func (v *Viewer) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}
