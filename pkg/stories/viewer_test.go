package stories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusconnect/pkg/models"
)

func viewerOver(kinds ...models.MediaKind) *Viewer {
	sts := make([]models.Story, len(kinds))
	for i, k := range kinds {
		sts[i] = models.Story{ID: string(rune('a' + i)), MediaKind: k}
	}
	return newViewer(sts)
}

func TestTickAdvancesImageAfterFiftyTicks(t *testing.T) {
	v := viewerOver(models.MediaImage, models.MediaImage)

	for i := 0; i < 49; i++ {
		v.Tick()
	}
	assert.Equal(t, 0, v.Index())
	assert.InDelta(t, 98, v.Progress(), 0.01)

	v.Tick()
	assert.Equal(t, 1, v.Index())
	assert.Zero(t, v.Progress())
}

func TestVideoRunsLonger(t *testing.T) {
	v := viewerOver(models.MediaVideo)

	// 15s at 100ms per tick: 150 ticks to completion
	for i := 0; i < 149; i++ {
		v.Tick()
	}
	assert.False(t, v.Closed())
	v.Tick()
	assert.True(t, v.Closed())
}

func TestNextPastLastCloses(t *testing.T) {
	v := viewerOver(models.MediaImage)
	v.Next()
	assert.True(t, v.Closed())
	_, ok := v.Current()
	assert.False(t, ok)

	// further navigation is inert
	v.Next()
	v.Tick()
	assert.True(t, v.Closed())
}

func TestPreviousAtFirstIsNoop(t *testing.T) {
	v := viewerOver(models.MediaImage, models.MediaImage)
	v.Previous()
	assert.Equal(t, 0, v.Index())

	v.Next()
	require.Equal(t, 1, v.Index())
	v.Previous()
	assert.Equal(t, 0, v.Index())
}

func TestPreviousResetsProgress(t *testing.T) {
	v := viewerOver(models.MediaImage, models.MediaImage)
	v.Next()
	for i := 0; i < 10; i++ {
		v.Tick()
	}
	require.Positive(t, v.Progress())

	v.Previous()
	assert.Zero(t, v.Progress())
}

func TestTapHalves(t *testing.T) {
	v := viewerOver(models.MediaImage, models.MediaImage, models.MediaImage)

	v.Tap(300, 400) // right half: next
	assert.Equal(t, 1, v.Index())
	v.Tap(100, 400) // left half: previous
	assert.Equal(t, 0, v.Index())
}

func TestCloseIdempotent(t *testing.T) {
	v := viewerOver(models.MediaImage)
	v.Close()
	assert.True(t, v.Closed())
	v.Close()
	assert.True(t, v.Closed())
}
