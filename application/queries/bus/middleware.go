package bus

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"braingraph/application/ports"
	pkgerrors "braingraph/pkg/errors"
	"braingraph/pkg/observability"
)

// CachingMiddleware serves fresh results from cache. Only successful results
// are stored; the window comes from the query's StaleTime.
type CachingMiddleware struct {
	cache      ports.Cache
	defaultTTL time.Duration
	metrics    *observability.Collector
}

// NewCachingMiddleware creates a new caching middleware
func NewCachingMiddleware(cache ports.Cache, defaultTTL time.Duration, metrics *observability.Collector) *CachingMiddleware {
	return &CachingMiddleware{cache: cache, defaultTTL: defaultTTL, metrics: metrics}
}

// Wrap wraps a query handler with caching
func (m *CachingMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		key := "q:" + CacheKeyOf(query)
		name := NameOf(query)

		if cached, found := m.cache.Get(ctx, key); found {
			m.metrics.ObserveCache(name, true)
			return cached, nil
		}
		m.metrics.ObserveCache(name, false)

		result, err := next.Handle(ctx, query)
		if err != nil {
			return nil, err
		}

		ttl := m.defaultTTL
		if c, ok := query.(Cacheable); ok && c.StaleTime() > 0 {
			ttl = c.StaleTime()
		}
		_ = m.cache.Set(ctx, key, result, ttl)
		return result, nil
	})
}

// MetricsMiddleware records count and latency per query
type MetricsMiddleware struct {
	metrics *observability.Collector
}

// NewMetricsMiddleware creates a new metrics middleware
func NewMetricsMiddleware(metrics *observability.Collector) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: metrics}
}

// Wrap wraps a query handler with metrics
func (m *MetricsMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		start := time.Now()
		result, err := next.Handle(ctx, query)

		status := "success"
		switch {
		case pkgerrors.IsCancelled(err):
			status = "cancelled"
		case err != nil:
			status = "error"
		}
		m.metrics.ObserveQuery(NameOf(query), status, time.Since(start))
		return result, err
	})
}

// TracingMiddleware opens a span per query
type TracingMiddleware struct {
	tracer *observability.Tracer
}

// NewTracingMiddleware creates a new tracing middleware
func NewTracingMiddleware(tracer *observability.Tracer) *TracingMiddleware {
	return &TracingMiddleware{tracer: tracer}
}

// Wrap wraps a query handler with a span
func (m *TracingMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		ctx, span := m.tracer.StartSpan(ctx, "query."+NameOf(query),
			attribute.String("query.key", CacheKeyOf(query)),
		)
		defer span.End()

		result, err := next.Handle(ctx, query)
		if err != nil && !pkgerrors.IsCancelled(err) {
			observability.RecordError(span, err)
		}
		return result, err
	})
}

// DedupMiddleware collapses identical in-flight queries into one backend call.
// The shared call runs detached from any single caller and is cancelled only
// when every waiter has gone away.
type DedupMiddleware struct {
	group   singleflight.Group
	mu      sync.Mutex
	flights map[string]*flight
	logger  *zap.Logger
}

type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewDedupMiddleware creates a new deduplicating middleware
func NewDedupMiddleware(logger *zap.Logger) *DedupMiddleware {
	return &DedupMiddleware{flights: make(map[string]*flight), logger: logger}
}

// Wrap wraps a query handler with request deduplication
func (m *DedupMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		key := CacheKeyOf(query)
		f, ch := m.join(ctx, key, func(fctx context.Context) (interface{}, error) {
			return next.Handle(fctx, query)
		})

		select {
		case res := <-ch:
			m.leave(key, f)
			if res.Shared {
				m.logger.Debug("deduplicated query", zap.String("key", key))
			}
			return res.Val, res.Err
		case <-ctx.Done():
			m.leave(key, f)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, pkgerrors.NewNetworkError("query deadline exceeded", ctx.Err())
			}
			return nil, pkgerrors.NewCancelledError(NameOf(query))
		}
	})
}

// InFlight reports how many distinct queries are running
func (m *DedupMiddleware) InFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flights)
}

// join registers a waiter and attaches it to the shared call under one lock,
// so a concurrent last leaver cannot cancel a flight that is being joined
func (m *DedupMiddleware) join(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (*flight, <-chan singleflight.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		m.flights[key] = f
	}
	f.waiters++
	ch := m.group.DoChan(key, func() (interface{}, error) {
		return fn(f.ctx)
	})
	return f, ch
}

func (m *DedupMiddleware) leave(key string, f *flight) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if m.flights[key] == f {
		delete(m.flights, key)
		m.group.Forget(key)
	}
}
