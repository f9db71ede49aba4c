package models

import "time"

// StoryTTL is the fixed visibility window of a story. ExpiresTS is always
// exactly CreatedTS + StoryTTL; the boundary is exclusive (a story is
// inactive at exactly +24h).
const StoryTTL = 24 * time.Hour

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Valid reports whether k is a known media kind.
func (k MediaKind) Valid() bool {
	return k == MediaImage || k == MediaVideo
}

type Story struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	// MediaRef is an opaque reference to externally-stored media.
	MediaRef  string    `json:"media_ref"`
	MediaKind MediaKind `json:"media_kind"`
	CreatedTS int64     `json:"created_ts"`
	ExpiresTS int64     `json:"expires_ts"`
}

// Active reports whether the story is still visible at the given instant.
func (s Story) Active(now time.Time) bool {
	return s.ExpiresTS > now.UnixNano()
}

// StoryGroup is derived, not stored: all active stories for one author in
// chronological viewing order.
type StoryGroup struct {
	Author  string  `json:"author"`
	Stories []Story `json:"stories"`
}
