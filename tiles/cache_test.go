package tiles_test

import (
	"image"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staticmap/tiles"
)

// countingSource counts how often the inner source is actually hit.
type countingSource struct {
	calls atomic.Int32
	delay time.Duration
}

func (s *countingSource) MaxZoom() int  { return tiles.ZoomMax }
func (s *countingSource) TileSize() int { return tiles.DefaultTileSize }

func (s *countingSource) Locator(tiles.Address) (string, error) {
	return "", tiles.ErrNoLocator
}

func (s *countingSource) Fetch(tiles.Address) (image.Image, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return image.NewRGBA(image.Rect(0, 0, tiles.DefaultTileSize, tiles.DefaultTileSize)), nil
}

func TestCachedSingleFlight(t *testing.T) {
	inner := &countingSource{delay: 50 * time.Millisecond}
	cached := tiles.NewCached(inner, tiles.NewDiskCache(t.TempDir(), 0))
	addr := tiles.Address{X: 3, Y: 4, Zoom: 5}

	const callers = 16
	var wg sync.WaitGroup
	results := make([]image.Image, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cached.Fetch(addr)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), inner.calls.Load(), "duplicate fetches issued")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
}

func TestCachedMemoryHitSkipsEverything(t *testing.T) {
	inner := &countingSource{}
	cached := tiles.NewCached(inner, tiles.NewDiskCache(t.TempDir(), 0))
	addr := tiles.Address{X: 1, Y: 1, Zoom: 2}

	_, err := cached.Fetch(addr)
	require.NoError(t, err)
	_, err = cached.Fetch(addr)
	require.NoError(t, err)

	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, 1, cached.MemoryLen())
	assert.Contains(t, cached.CachedAddresses(), addr)
}

func TestDiskCacheFreshFileShortCircuitsInner(t *testing.T) {
	dir := t.TempDir()
	addr := tiles.Address{X: 7, Y: 8, Zoom: 9}

	warm := &countingSource{}
	_, err := tiles.NewCached(warm, tiles.NewDiskCache(dir, 0)).Fetch(addr)
	require.NoError(t, err)
	require.Equal(t, int32(1), warm.calls.Load())

	// the file name is part of the on-disk contract
	path := filepath.Join(dir, "9-7-8.png")
	_, err = os.Stat(path)
	require.NoError(t, err)

	// a fresh process with a cold memory tier must not touch the inner source
	cold := &countingSource{}
	_, err = tiles.NewCached(cold, tiles.NewDiskCache(dir, 0)).Fetch(addr)
	require.NoError(t, err)
	assert.Zero(t, cold.calls.Load())
}

func TestDiskCacheStaleFileTriggersRefetch(t *testing.T) {
	dir := t.TempDir()
	addr := tiles.Address{X: 7, Y: 8, Zoom: 9}
	path := filepath.Join(dir, "9-7-8.png")

	warm := &countingSource{}
	_, err := tiles.NewCached(warm, tiles.NewDiskCache(dir, 0)).Fetch(addr)
	require.NoError(t, err)

	stale := time.Now().Add(-8 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(path, stale, stale))

	inner := &countingSource{}
	_, err = tiles.NewCached(inner, tiles.NewDiskCache(dir, 0)).Fetch(addr)
	require.NoError(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())

	// the stale file was overwritten
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), info.ModTime(), time.Minute)
}

func TestCachedPreservesSourceContract(t *testing.T) {
	inner := &countingSource{}
	cached := tiles.NewCached(inner, tiles.NewDiskCache(t.TempDir(), 0))

	assert.Equal(t, inner.MaxZoom(), cached.MaxZoom())
	assert.Equal(t, inner.TileSize(), cached.TileSize())

	_, err := cached.Locator(tiles.Address{X: 1, Y: 1, Zoom: 1})
	assert.ErrorIs(t, err, tiles.ErrNoLocator)
}
