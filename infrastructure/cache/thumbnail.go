package cache

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.uber.org/zap"

	"braingraph/application/ports"
	"braingraph/domain/core/valueobjects"
	pkgerrors "braingraph/pkg/errors"
	"braingraph/pkg/observability"
)

// ThumbState is the observable state of one thumbnail entry
type ThumbState int

const (
	ThumbUnstarted ThumbState = iota
	ThumbLoading
	ThumbLoaded
	ThumbFailed
)

func (s ThumbState) String() string {
	switch s {
	case ThumbLoading:
		return "loading"
	case ThumbLoaded:
		return "loaded"
	case ThumbFailed:
		return "failed"
	default:
		return "unstarted"
	}
}

const defaultThumbnailTimeout = 15 * time.Second

type thumbEntry struct {
	key    string
	state  ThumbState
	img    image.Image
	err    error
	cancel context.CancelFunc
}

// ThumbnailCache holds decoded thumbnails keyed by node id. Eviction is by
// insertion order: entries are only read through Peek, so a hit does not
// refresh an entry. Failures are permanent.
type ThumbnailCache struct {
	fetcher ports.ImageFetcher
	timeout time.Duration
	metrics *observability.Collector
	logger  *zap.Logger

	mu      sync.Mutex
	entries *simplelru.LRU[string, *thumbEntry]
	onReady func(id string)
	closed  bool

	root   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewThumbnailCache creates a cache holding at most capacity entries
func NewThumbnailCache(fetcher ports.ImageFetcher, capacity int, metrics *observability.Collector, logger *zap.Logger) *ThumbnailCache {
	if capacity <= 0 {
		capacity = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	root, cancel := context.WithCancel(context.Background())
	c := &ThumbnailCache{
		fetcher: fetcher,
		timeout: defaultThumbnailTimeout,
		metrics: metrics,
		logger:  logger,
		root:    root,
		cancel:  cancel,
	}
	// NewLRU only fails on a non-positive size
	c.entries, _ = simplelru.NewLRU[string, *thumbEntry](capacity, c.onEvict)
	return c
}

// OnReady registers a callback run after each load settles, typically a
// repaint request. It runs outside the cache lock.
func (c *ThumbnailCache) OnReady(fn func(id string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReady = fn
}

// Thumbnail returns the image for id when it is loaded. The first read of an
// unknown id starts a background load; until it resolves the result is
// (nil, false).
func (c *ThumbnailCache) Thumbnail(id valueobjects.NodeID) (image.Image, bool) {
	key := id.String()

	c.mu.Lock()
	if e, ok := c.entries.Peek(key); ok {
		img, loaded := e.img, e.state == ThumbLoaded
		c.mu.Unlock()
		return img, loaded
	}
	if c.closed {
		c.mu.Unlock()
		return nil, false
	}

	ctx, cancel := context.WithTimeout(c.root, c.timeout)
	e := &thumbEntry{key: key, state: ThumbLoading, cancel: cancel}
	c.entries.Add(key, e)
	if c.metrics != nil {
		c.metrics.ThumbnailEntries.Set(float64(c.entries.Len()))
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go c.load(ctx, id, e)
	return nil, false
}

// State reports the state of id without starting a load
func (c *ThumbnailCache) State(id valueobjects.NodeID) ThumbState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries.Peek(id.String()); ok {
		return e.state
	}
	return ThumbUnstarted
}

// Err returns the recorded failure for id, if any
func (c *ThumbnailCache) Err(id valueobjects.NodeID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries.Peek(id.String()); ok {
		return e.err
	}
	return nil
}

// Len reports the number of entries in any state
func (c *ThumbnailCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Keys returns entry keys oldest first
func (c *ThumbnailCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Keys()
}

// Wait blocks until every started load has settled
func (c *ThumbnailCache) Wait() {
	c.wg.Wait()
}

// Close cancels outstanding loads and stops new ones
func (c *ThumbnailCache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}

// onEvict runs inside entries.Add, so c.mu is already held
func (c *ThumbnailCache) onEvict(key string, e *thumbEntry) {
	if e.state == ThumbLoading {
		e.cancel()
	}
	c.logger.Debug("thumbnail evicted", zap.String("node_id", key))
}

func (c *ThumbnailCache) load(ctx context.Context, id valueobjects.NodeID, e *thumbEntry) {
	defer c.wg.Done()
	defer e.cancel()

	img, err := c.fetch(ctx, id)

	c.mu.Lock()
	current, ok := c.entries.Peek(e.key)
	if !ok || current != e {
		c.mu.Unlock()
		c.observe("discarded")
		return
	}
	if err != nil {
		e.state, e.err = ThumbFailed, pkgerrors.NewThumbnailLoadError(e.key, err)
	} else {
		e.state, e.img = ThumbLoaded, img
	}
	ready := c.onReady
	c.mu.Unlock()

	if err != nil {
		c.observe("failed")
		c.logger.Debug("thumbnail load failed", zap.String("node_id", e.key), zap.Error(err))
	} else {
		c.observe("loaded")
	}
	if ready != nil {
		ready(e.key)
	}
}

func (c *ThumbnailCache) fetch(ctx context.Context, id valueobjects.NodeID) (img image.Image, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = pkgerrors.NewInternalError("thumbnail decoder panicked")
		}
	}()
	img, err = c.fetcher.FetchThumbnail(ctx, id)
	if err == nil && img == nil {
		err = pkgerrors.NewInternalError("empty thumbnail")
	}
	return img, err
}

func (c *ThumbnailCache) observe(result string) {
	if c.metrics != nil {
		c.metrics.ThumbnailLoads.WithLabelValues(result).Inc()
	}
}
