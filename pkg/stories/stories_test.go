package stories

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "campusconnect/pkg/errors"
	"campusconnect/pkg/models"
	"campusconnect/pkg/undo"
)

// clock is an adjustable time source for driving expiry.
type clock struct {
	t time.Time
}

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func TestAddValidation(t *testing.T) {
	s := newTestStore(t, Options{})

	_, err := s.Add("amy@campus.edu", "", models.MediaImage)
	assert.ErrorIs(t, err, apperr.ErrEmptyMediaRef)

	_, err = s.Add("amy@campus.edu", "ref://1", models.MediaKind("gif"))
	assert.ErrorIs(t, err, apperr.ErrInvalidMediaKind)
}

func TestAddSetsExpiry(t *testing.T) {
	clk := newClock()
	s := newTestStore(t, Options{Now: clk.now})

	st, err := s.Add("amy@campus.edu", "ref://1", models.MediaImage)
	require.NoError(t, err)
	assert.Equal(t, clk.t.UnixNano(), st.CreatedTS)
	assert.Equal(t, clk.t.Add(models.StoryTTL).UnixNano(), st.ExpiresTS)
}

func TestExpiryWindow(t *testing.T) {
	clk := newClock()
	s := newTestStore(t, Options{Now: clk.now})
	_, err := s.Add("amy@campus.edu", "ref://1", models.MediaImage)
	require.NoError(t, err)

	clk.advance(23*time.Hour + 59*time.Minute)
	assert.True(t, s.HasActiveStory("amy@campus.edu"))

	// boundary is exclusive: gone at exactly +24h
	clk.advance(time.Minute)
	assert.False(t, s.HasActiveStory("amy@campus.edu"))
	assert.Empty(t, s.ActiveStories("amy@campus.edu"))

	clk.advance(time.Second)
	assert.False(t, s.HasActiveStory("amy@campus.edu"))
}

func TestGroupedByAuthor(t *testing.T) {
	clk := newClock()
	s := newTestStore(t, Options{Now: clk.now})

	a1, err := s.Add("amy@campus.edu", "ref://a1", models.MediaImage)
	require.NoError(t, err)
	clk.advance(time.Minute)
	b1, err := s.Add("ben@campus.edu", "ref://b1", models.MediaVideo)
	require.NoError(t, err)
	clk.advance(time.Minute)
	a2, err := s.Add("amy@campus.edu", "ref://a2", models.MediaImage)
	require.NoError(t, err)

	groups := s.GroupedByAuthor()
	require.Len(t, groups, 2)

	// amy's latest story is newest overall, so her group comes first
	assert.Equal(t, "amy@campus.edu", groups[0].Author)
	require.Len(t, groups[0].Stories, 2)
	assert.Equal(t, a1.ID, groups[0].Stories[0].ID)
	assert.Equal(t, a2.ID, groups[0].Stories[1].ID)

	assert.Equal(t, "ben@campus.edu", groups[1].Author)
	require.Len(t, groups[1].Stories, 1)
	assert.Equal(t, b1.ID, groups[1].Stories[0].ID)
}

func TestGroupedByAuthorSkipsExpired(t *testing.T) {
	clk := newClock()
	s := newTestStore(t, Options{Now: clk.now})

	_, err := s.Add("amy@campus.edu", "ref://old", models.MediaImage)
	require.NoError(t, err)
	clk.advance(25 * time.Hour)
	fresh, err := s.Add("amy@campus.edu", "ref://fresh", models.MediaImage)
	require.NoError(t, err)

	groups := s.GroupedByAuthor()
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Stories, 1)
	assert.Equal(t, fresh.ID, groups[0].Stories[0].ID)
}

func TestViewSession(t *testing.T) {
	clk := newClock()
	s := newTestStore(t, Options{Now: clk.now})

	_, ok := s.View("nobody@campus.edu")
	assert.False(t, ok)

	first, err := s.Add("amy@campus.edu", "ref://1", models.MediaImage)
	require.NoError(t, err)
	clk.advance(time.Minute)
	_, err = s.Add("amy@campus.edu", "ref://2", models.MediaImage)
	require.NoError(t, err)

	v, ok := s.View("amy@campus.edu")
	require.True(t, ok)
	cur, ok := v.Current()
	require.True(t, ok)
	assert.Equal(t, first.ID, cur.ID) // sessions start at the oldest story
}

func TestStoryLookup(t *testing.T) {
	clk := newClock()
	s := newTestStore(t, Options{Now: clk.now})

	st, err := s.Add("amy@campus.edu", "ref://1", models.MediaImage)
	require.NoError(t, err)

	got, ok := s.Story(st.ID)
	require.True(t, ok)
	assert.Equal(t, st.ID, got.ID)

	_, ok = s.Story("absent")
	assert.False(t, ok)

	// expired stories are not visible through lookup either
	clk.advance(25 * time.Hour)
	_, ok = s.Story(st.ID)
	assert.False(t, ok)
}

func TestDeleteIdempotent(t *testing.T) {
	s := newTestStore(t, Options{})
	st, err := s.Add("amy@campus.edu", "ref://1", models.MediaImage)
	require.NoError(t, err)

	require.NoError(t, s.Delete(st.ID))
	assert.False(t, s.HasActiveStory("amy@campus.edu"))
	require.NoError(t, s.Delete(st.ID))
}

func TestPurgeExpired(t *testing.T) {
	clk := newClock()
	s := newTestStore(t, Options{Now: clk.now})

	_, err := s.Add("amy@campus.edu", "ref://old1", models.MediaImage)
	require.NoError(t, err)
	_, err = s.Add("amy@campus.edu", "ref://old2", models.MediaImage)
	require.NoError(t, err)
	clk.advance(25 * time.Hour)
	keep, err := s.Add("amy@campus.edu", "ref://keep", models.MediaImage)
	require.NoError(t, err)

	n, err := s.PurgeExpired()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got := s.ActiveStories("amy@campus.edu")
	require.Len(t, got, 1)
	assert.Equal(t, keep.ID, got[0].ID)

	// nothing left to purge
	n, err = s.PurgeExpired()
	require.NoError(t, err)
	assert.Zero(t, n)
}

type memPersister struct {
	saved   []models.Story
	deleted []string
	saveErr error
}

func (p *memPersister) SaveStory(st models.Story) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	p.saved = append(p.saved, st)
	return nil
}

func (p *memPersister) DeleteStory(id string) error {
	p.deleted = append(p.deleted, id)
	return nil
}

func (p *memPersister) LoadStories() ([]models.Story, error) { return p.saved, nil }

func TestPersistFailureKeepsStory(t *testing.T) {
	s := newTestStore(t, Options{Persister: &memPersister{saveErr: errors.New("disk full")}})

	st, err := s.Add("amy@campus.edu", "ref://1", models.MediaImage)
	require.Error(t, err)
	assert.Equal(t, apperr.CodePersistence, apperr.CodeOf(err))
	got := s.ActiveStories("amy@campus.edu")
	require.Len(t, got, 1)
	assert.Equal(t, st.ID, got[0].ID)
}

func TestLoadRestoresNewestFirst(t *testing.T) {
	clk := newClock()
	p := &memPersister{}
	s := newTestStore(t, Options{Persister: p, Now: clk.now})

	_, err := s.Add("amy@campus.edu", "ref://1", models.MediaImage)
	require.NoError(t, err)
	clk.advance(time.Minute)
	newest, err := s.Add("amy@campus.edu", "ref://2", models.MediaImage)
	require.NoError(t, err)

	reopened := newTestStore(t, Options{Persister: p, Now: clk.now})
	got := reopened.ActiveStories("amy@campus.edu")
	require.Len(t, got, 2)
	assert.Equal(t, newest.ID, got[1].ID) // oldest-first output preserved
}

type fixedSuppressor struct{ id string }

func (f fixedSuppressor) Suppressed(kind undo.Kind, id string) bool {
	return kind == undo.KindStory && id == f.id
}

func TestSuppressedStoryHidden(t *testing.T) {
	s := newTestStore(t, Options{})
	st, err := s.Add("amy@campus.edu", "ref://1", models.MediaImage)
	require.NoError(t, err)

	s.suppress = fixedSuppressor{id: st.ID}
	assert.False(t, s.HasActiveStory("amy@campus.edu"))
	assert.Empty(t, s.GroupedByAuthor())

	s.suppress = nil
	assert.True(t, s.HasActiveStory("amy@campus.edu"))
}
