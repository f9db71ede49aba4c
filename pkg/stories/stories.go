// Package stories owns user-authored ephemeral content with a fixed
// 24-hour visibility window. Storage order is newest-first; grouping
// output order is chronological per author. Expired stories never appear
// in query results; physical purging is left to the sweeper.
package stories

import (
	"sync"
	"time"

	apperr "campusconnect/pkg/errors"
	"campusconnect/pkg/logger"
	"campusconnect/pkg/models"
	"campusconnect/pkg/telemetry"
	"campusconnect/pkg/undo"
	"campusconnect/pkg/utils"
)

// Persister mirrors the story list into durable storage.
type Persister interface {
	SaveStory(st models.Story) error
	DeleteStory(id string) error
	LoadStories() ([]models.Story, error)
}

// Suppressor hides items whose deletion is pending from listings.
type Suppressor interface {
	Suppressed(kind undo.Kind, id string) bool
}

type Options struct {
	Persister  Persister
	Suppressor Suppressor
	Now        func() time.Time
}

type Store struct {
	mu       sync.RWMutex
	items    []models.Story // newest-first
	persist  Persister
	suppress Suppressor
	now      func() time.Time
}

func New(opts Options) (*Store, error) {
	s := &Store{
		persist:  opts.Persister,
		suppress: opts.Suppressor,
		now:      opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.persist != nil {
		loaded, err := s.persist.LoadStories()
		if err != nil {
			logger.Error("story_load_failed", "error", err)
			telemetry.PersistFailures.Inc()
		} else {
			// disk order is creation order; memory keeps newest first
			for i := len(loaded) - 1; i >= 0; i-- {
				s.items = append(s.items, loaded[i])
			}
		}
	}
	return s, nil
}

// Add creates a story whose expiry is exactly 24h after creation and
// inserts it at the front of the list. On a persistence failure the
// story is still stored in memory and returned with a PERSISTENCE error.
func (s *Store) Add(author, mediaRef string, kind models.MediaKind) (models.Story, error) {
	if mediaRef == "" {
		return models.Story{}, apperr.ErrEmptyMediaRef
	}
	if !kind.Valid() {
		return models.Story{}, apperr.ErrInvalidMediaKind
	}
	created := s.now().UTC()
	st := models.Story{
		ID:        utils.GenID(),
		Author:    author,
		MediaRef:  mediaRef,
		MediaKind: kind,
		CreatedTS: created.UnixNano(),
		ExpiresTS: created.Add(models.StoryTTL).UnixNano(),
	}

	s.mu.Lock()
	s.items = append([]models.Story{st}, s.items...)
	s.mu.Unlock()
	telemetry.StoriesAdded.Inc()
	logger.Info("story_added", "id", st.ID, "author", author, "kind", string(kind))

	if s.persist != nil {
		if err := s.persist.SaveStory(st); err != nil {
			telemetry.PersistFailures.Inc()
			logger.Error("story_persist_failed", "id", st.ID, "error", err)
			return st, apperr.ErrPersistFailed(err)
		}
	}
	return st, nil
}

func (s *Store) visible(st models.Story, now time.Time) bool {
	if !st.Active(now) {
		return false
	}
	if s.suppress != nil && s.suppress.Suppressed(undo.KindStory, st.ID) {
		return false
	}
	return true
}

// GroupedByAuthor returns one group per author holding only active
// stories in chronological viewing order. Groups are ordered by their
// most recent story.
func (s *Store) GroupedByAuthor() []models.StoryGroup {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	index := map[string]int{}
	var groups []models.StoryGroup
	for _, st := range s.items { // newest first
		if !s.visible(st, now) {
			continue
		}
		i, ok := index[st.Author]
		if !ok {
			i = len(groups)
			index[st.Author] = i
			groups = append(groups, models.StoryGroup{Author: st.Author})
		}
		groups[i].Stories = append(groups[i].Stories, st)
	}
	// flip each group to oldest-first
	for i := range groups {
		sts := groups[i].Stories
		for l, r := 0, len(sts)-1; l < r; l, r = l+1, r-1 {
			sts[l], sts[r] = sts[r], sts[l]
		}
	}
	return groups
}

// HasActiveStory reports whether at least one non-expired story exists
// for the author.
func (s *Store) HasActiveStory(author string) bool {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.items {
		if st.Author == author && s.visible(st, now) {
			return true
		}
	}
	return false
}

// ActiveStories returns the author's active stories oldest-first.
func (s *Store) ActiveStories(author string) []models.Story {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Story
	for i := len(s.items) - 1; i >= 0; i-- {
		st := s.items[i]
		if st.Author == author && s.visible(st, now) {
			out = append(out, st)
		}
	}
	return out
}

// Story looks a single visible story up by id.
func (s *Store) Story(id string) (models.Story, bool) {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.items {
		if st.ID == id && s.visible(st, now) {
			return st, true
		}
	}
	return models.Story{}, false
}

// View opens a sequential viewer session over the author's active
// stories starting at index 0. False when the author has none.
func (s *Store) View(author string) (*Viewer, bool) {
	sts := s.ActiveStories(author)
	if len(sts) == 0 {
		return nil, false
	}
	return newViewer(sts), true
}

// Delete removes one story by id from memory and the mirror. Used by the
// undo controller's commit path and the sweeper. Absent ids are a no-op.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	kept := s.items[:0:0]
	removed := false
	for _, st := range s.items {
		if st.ID == id {
			removed = true
			continue
		}
		kept = append(kept, st)
	}
	if removed {
		s.items = kept
	}
	s.mu.Unlock()

	if !removed {
		return nil
	}
	if s.persist != nil {
		if err := s.persist.DeleteStory(id); err != nil {
			telemetry.PersistFailures.Inc()
			logger.Error("story_delete_persist_failed", "id", id, "error", err)
			return apperr.ErrPersistFailed(err)
		}
	}
	return nil
}

// PurgeExpired physically removes stories past their expiry. The
// observable contract does not depend on this; listings already exclude
// inactive stories.
func (s *Store) PurgeExpired() (int, error) {
	now := s.now()

	s.mu.Lock()
	kept := s.items[:0:0]
	var expired []models.Story
	for _, st := range s.items {
		if st.Active(now) {
			kept = append(kept, st)
			continue
		}
		expired = append(expired, st)
	}
	s.items = kept
	s.mu.Unlock()

	var firstErr error
	for _, st := range expired {
		if s.persist != nil {
			if err := s.persist.DeleteStory(st.ID); err != nil {
				telemetry.PersistFailures.Inc()
				logger.Error("story_purge_persist_failed", "id", st.ID, "error", err)
				if firstErr == nil {
					firstErr = apperr.ErrPersistFailed(err)
				}
				continue
			}
		}
		telemetry.StoriesPurged.Inc()
	}
	if len(expired) > 0 {
		logger.Info("stories_purged", "count", len(expired))
	}
	return len(expired), firstErr
}
