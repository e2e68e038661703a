// Package ratelimit limits how often a client may hit expensive endpoints.
package ratelimit

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxClients bounds how many client windows are tracked at once
const DefaultMaxClients = 4096

// Limiter decides whether a request keyed by client may proceed
type Limiter interface {
	// Allow reports whether the request may proceed. When it may not,
	// retryAfter is how long until the oldest request leaves the window.
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
	Reset(ctx context.Context, key string) error
}

// SlidingWindowLimiter allows at most limit requests per window per key.
// The least recently seen clients are forgotten once maxClients is reached.
type SlidingWindowLimiter struct {
	windows    *lru.Cache[string, *window]
	limit      int
	windowSize time.Duration
	now        func() time.Time
	mu         sync.Mutex
}

type window struct {
	mu       sync.Mutex
	requests []time.Time
}

// Option configures a SlidingWindowLimiter
type Option func(*SlidingWindowLimiter)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(l *SlidingWindowLimiter) { l.now = now }
}

// NewSlidingWindowLimiter creates a sliding window limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration, maxClients int, opts ...Option) (*SlidingWindowLimiter, error) {
	if maxClients <= 0 {
		maxClients = DefaultMaxClients
	}
	windows, err := lru.New[string, *window](maxClients)
	if err != nil {
		return nil, err
	}
	l := &SlidingWindowLimiter{
		windows:    windows,
		limit:      limit,
		windowSize: windowSize,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// PerMinute creates a limiter allowing n requests per minute per client
func PerMinute(n int) (*SlidingWindowLimiter, error) {
	return NewSlidingWindowLimiter(n, time.Minute, DefaultMaxClients)
}

// Allow checks if a request is allowed
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return false, 0, err
	}

	l.mu.Lock()
	w, ok := l.windows.Get(key)
	if !ok {
		w = &window{}
		l.windows.Add(key, w)
	}
	l.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.windowSize)

	// drop requests that left the window; requests are in arrival order
	kept := w.requests[:0]
	for _, t := range w.requests {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	w.requests = kept

	if len(w.requests) >= l.limit {
		return false, w.requests[0].Sub(windowStart), nil
	}
	w.requests = append(w.requests, now)
	return true, 0, nil
}

// Reset forgets a key
func (l *SlidingWindowLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows.Remove(key)
	return nil
}

// Clients returns the number of tracked clients
func (l *SlidingWindowLimiter) Clients() int {
	return l.windows.Len()
}
