package cache

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"braingraph/domain/core/valueobjects"
	pkgerrors "braingraph/pkg/errors"
)

// gatedFetcher blocks each fetch until release is closed
type gatedFetcher struct {
	calls     atomic.Int32
	cancelled atomic.Int32
	mu        sync.Mutex
	release   chan struct{}
	fail      map[string]bool
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{release: make(chan struct{}), fail: map[string]bool{}}
}

func (f *gatedFetcher) FetchThumbnail(ctx context.Context, id valueobjects.NodeID) (image.Image, error) {
	f.calls.Add(1)
	select {
	case <-f.release:
	case <-ctx.Done():
		f.cancelled.Add(1)
		return nil, ctx.Err()
	}
	f.mu.Lock()
	fail := f.fail[id.String()]
	f.mu.Unlock()
	if fail {
		return nil, errors.New("decode failed")
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (f *gatedFetcher) open() { close(f.release) }

func TestThumbnailCache_DeduplicatesConcurrentReads(t *testing.T) {
	// Arrange
	fetcher := newGatedFetcher()
	c := NewThumbnailCache(fetcher, 10, nil, zap.NewNop())
	defer c.Close()
	id := valueobjects.ParseNodeID("image-1")

	// Act
	img1, ok1 := c.Thumbnail(id)
	img2, ok2 := c.Thumbnail(id)

	// Assert
	assert.Nil(t, img1)
	assert.False(t, ok1)
	assert.Nil(t, img2)
	assert.False(t, ok2)
	assert.Equal(t, ThumbLoading, c.State(id))

	fetcher.open()
	c.Wait()
	assert.Equal(t, int32(1), fetcher.calls.Load())

	img, ok := c.Thumbnail(id)
	assert.True(t, ok)
	assert.NotNil(t, img)
	assert.Equal(t, ThumbLoaded, c.State(id))
}

func TestThumbnailCache_EvictsOldestInserted(t *testing.T) {
	// Arrange
	fetcher := newGatedFetcher()
	fetcher.open()
	c := NewThumbnailCache(fetcher, 2, nil, zap.NewNop())
	defer c.Close()
	a := valueobjects.ParseNodeID("image-1")
	b := valueobjects.ParseNodeID("image-2")
	d := valueobjects.ParseNodeID("image-3")

	// Act
	c.Thumbnail(a)
	c.Thumbnail(b)
	c.Wait()
	c.Thumbnail(a) // a hit does not refresh a
	c.Thumbnail(d)
	c.Wait()

	// Assert
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, ThumbUnstarted, c.State(a))
	assert.Equal(t, []string{"image-2", "image-3"}, c.Keys())
}

func TestThumbnailCache_HitsDoNotRefreshOrder(t *testing.T) {
	// Arrange
	fetcher := newGatedFetcher()
	fetcher.open()
	c := NewThumbnailCache(fetcher, 3, nil, zap.NewNop())
	defer c.Close()
	ids := []valueobjects.NodeID{
		valueobjects.ParseNodeID("image-1"),
		valueobjects.ParseNodeID("image-2"),
		valueobjects.ParseNodeID("image-3"),
	}
	for _, id := range ids {
		c.Thumbnail(id)
	}
	c.Wait()

	// Act
	for i := 0; i < 3; i++ {
		_, ok := c.Thumbnail(ids[0])
		require.True(t, ok)
	}
	c.State(ids[1])
	c.Err(ids[1])
	c.Thumbnail(valueobjects.ParseNodeID("image-4"))
	c.Wait()

	// Assert
	assert.Equal(t, []string{"image-2", "image-3", "image-4"}, c.Keys())
	assert.Equal(t, ThumbUnstarted, c.State(ids[0]))
}

func TestThumbnailCache_EvictionCancelsInFlightLoad(t *testing.T) {
	// Arrange
	fetcher := newGatedFetcher()
	c := NewThumbnailCache(fetcher, 1, nil, zap.NewNop())
	defer c.Close()

	// Act
	c.Thumbnail(valueobjects.ParseNodeID("image-1"))
	c.Thumbnail(valueobjects.ParseNodeID("image-2"))

	// Assert
	require.Eventually(t, func() bool { return fetcher.cancelled.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, ThumbLoading, c.State(valueobjects.ParseNodeID("image-2")))
	fetcher.open()
	c.Wait()
	assert.Equal(t, []string{"image-2"}, c.Keys())
	assert.Equal(t, ThumbLoaded, c.State(valueobjects.ParseNodeID("image-2")))
}

func TestThumbnailCache_FailureIsPermanent(t *testing.T) {
	// Arrange
	fetcher := newGatedFetcher()
	fetcher.fail["image-9"] = true
	fetcher.open()
	c := NewThumbnailCache(fetcher, 5, nil, zap.NewNop())
	defer c.Close()
	id := valueobjects.ParseNodeID("image-9")

	// Act
	c.Thumbnail(id)
	c.Wait()
	img, ok := c.Thumbnail(id)
	c.Wait()

	// Assert
	assert.Nil(t, img)
	assert.False(t, ok)
	assert.Equal(t, ThumbFailed, c.State(id))
	assert.Equal(t, int32(1), fetcher.calls.Load())
	require.Error(t, c.Err(id))
	assert.True(t, pkgerrors.IsType(c.Err(id), pkgerrors.ErrorTypeThumbnailLoad))
}

func TestThumbnailCache_DiscardsLoadAfterEviction(t *testing.T) {
	// Arrange
	fetcher := newGatedFetcher()
	c := NewThumbnailCache(fetcher, 1, nil, zap.NewNop())
	defer c.Close()
	first := valueobjects.ParseNodeID("image-1")
	second := valueobjects.ParseNodeID("image-2")

	var ready []string
	var mu sync.Mutex
	c.OnReady(func(id string) {
		mu.Lock()
		ready = append(ready, id)
		mu.Unlock()
	})

	// Act
	c.Thumbnail(first)
	c.Thumbnail(second)
	fetcher.open()
	c.Wait()

	// Assert
	assert.Equal(t, ThumbUnstarted, c.State(first))
	assert.Equal(t, ThumbLoaded, c.State(second))
	mu.Lock()
	assert.Equal(t, []string{"image-2"}, ready)
	mu.Unlock()
}

func TestThumbnailCache_ClosedCacheStartsNothing(t *testing.T) {
	fetcher := newGatedFetcher()
	c := NewThumbnailCache(fetcher, 3, nil, zap.NewNop())
	c.Close()

	_, ok := c.Thumbnail(valueobjects.ParseNodeID("image-1"))

	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int32(0), fetcher.calls.Load())
}
