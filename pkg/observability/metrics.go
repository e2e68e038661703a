package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds the Prometheus metrics of the graph engine
type Collector struct {
	registry *prometheus.Registry

	// Data service
	QueryRequests  *prometheus.CounterVec
	QueryDuration  *prometheus.HistogramVec
	QueryCacheHits *prometheus.CounterVec
	QueryCancelled *prometheus.CounterVec

	// Backend transport
	BackendRequests *prometheus.CounterVec

	// Thumbnails
	ThumbnailLoads   *prometheus.CounterVec
	ThumbnailEntries prometheus.Gauge

	// Rendering
	FrameDuration prometheus.Histogram
	VisibleNodes  prometheus.Gauge
	VisibleEdges  prometheus.Gauge

	// Preview surface
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewCollector creates the metrics collector for namespace. Repeated calls return
// the same collector so tests can build several containers.
func NewCollector(namespace string) *Collector {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	if globalCollector != nil {
		return globalCollector
	}

	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		QueryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_requests_total",
			Help:      "Graph queries dispatched, by query and outcome",
		}, []string{"query", "status"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Graph query latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"query"}),
		QueryCacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_total",
			Help:      "Query cache lookups, by query and result",
		}, []string{"query", "result"}),
		QueryCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cancelled_total",
			Help:      "Queries cancelled because a newer request superseded them",
		}, []string{"slot"}),
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "HTTP requests sent to the graph backend",
		}, []string{"endpoint", "status"}),
		ThumbnailLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnail_loads_total",
			Help:      "Thumbnail loads by outcome",
		}, []string{"result"}),
		ThumbnailEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "thumbnail_cache_entries",
			Help:      "Entries currently held by the thumbnail cache",
		}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent painting one frame",
			Buckets:   []float64{0.001, 0.004, 0.008, 0.016, 0.033, 0.066, 0.1, 0.25},
		}),
		VisibleNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visible_nodes",
			Help:      "Nodes painted in the last frame",
		}),
		VisibleEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visible_edges",
			Help:      "Edges painted in the last frame",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of preview HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Preview HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		c.QueryRequests,
		c.QueryDuration,
		c.QueryCacheHits,
		c.QueryCancelled,
		c.BackendRequests,
		c.ThumbnailLoads,
		c.ThumbnailEntries,
		c.FrameDuration,
		c.VisibleNodes,
		c.VisibleEdges,
		c.HTTPRequests,
		c.HTTPDuration,
	)

	globalCollector = c
	return c
}

// Registry exposes the registry for the /metrics handler
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveQuery records one query dispatch
func (c *Collector) ObserveQuery(query, status string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.QueryRequests.WithLabelValues(query, status).Inc()
	c.QueryDuration.WithLabelValues(query).Observe(elapsed.Seconds())
}

// ObserveCache records a query cache lookup
func (c *Collector) ObserveCache(query string, hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.QueryCacheHits.WithLabelValues(query, result).Inc()
}

// ObserveFrame records paint time and the size of the painted scene
func (c *Collector) ObserveFrame(elapsed time.Duration, nodes, edges int) {
	if c == nil {
		return
	}
	c.FrameDuration.Observe(elapsed.Seconds())
	c.VisibleNodes.Set(float64(nodes))
	c.VisibleEdges.Set(float64(edges))
}
