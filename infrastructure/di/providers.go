package di

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"braingraph/application/ports"
	"braingraph/application/queries"
	querybus "braingraph/application/queries/bus"
	queries_handlers "braingraph/application/queries/handlers"
	"braingraph/application/services"
	domainconfig "braingraph/domain/config"
	"braingraph/infrastructure/backend"
	"braingraph/infrastructure/cache"
	"braingraph/infrastructure/config"
	"braingraph/infrastructure/settings"
	"braingraph/interfaces/http/rest"
	"braingraph/interfaces/http/rest/handlers"
	"braingraph/interfaces/render"
	"braingraph/interfaces/snapshot"
	"braingraph/pkg/observability"
)

const (
	serviceName       = "braingraph"
	cacheSweep        = time.Minute
	httpRequestBudget = 60 * time.Second
)

// ReaderFactory opens a data service for one request
type ReaderFactory func() handlers.GraphReader

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", serviceName)), nil
}

// ProvideDomainConfig derives the engine configuration
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return cfg.DomainConfig()
}

// ProvideMetrics creates the metrics collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector(serviceName)
}

// ProvideTracer creates a tracer, or nil when tracing is disabled
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer(serviceName)
}

// ProvideBackendClient creates the graph backend client
func ProvideBackendClient(cfg *config.Config, logger *zap.Logger, metrics *observability.Collector, tracer *observability.Tracer) (*backend.Client, error) {
	breaker := backend.DefaultBreakerConfig()
	breaker.FailureThreshold = cfg.BreakerThreshold
	if cfg.BreakerMinReqs > 0 {
		breaker.MinRequests = cfg.BreakerMinReqs
	}
	if cfg.BreakerOpenFor > 0 {
		breaker.Timeout = cfg.BreakerOpenFor
	}
	return backend.NewClient(backend.Config{
		BaseURL:   cfg.BackendURL,
		Timeout:   cfg.BackendTimeout,
		UserAgent: serviceName,
		Breaker:   breaker,
	}, nil, logger, metrics, tracer)
}

// ProvideGraphBackend exposes the client as the backend port
func ProvideGraphBackend(client *backend.Client) ports.GraphBackend {
	return client
}

// ProvideImageFetcher exposes the client as the thumbnail fetcher port
func ProvideImageFetcher(client *backend.Client) ports.ImageFetcher {
	return client
}

// ProvideCache creates the query cache chosen by configuration
func ProvideCache(cfg *config.Config, logger *zap.Logger) (ports.Cache, func(), error) {
	switch cfg.CacheProvider {
	case "ristretto":
		c, err := cache.NewQueryCache(cache.QueryCacheConfig{MaxCost: cfg.CacheMaxCost})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create ristretto cache: %w", err)
		}
		logger.Info("query cache ready", zap.String("provider", "ristretto"), zap.Int64("max_cost", cfg.CacheMaxCost))
		return c, c.Close, nil
	default:
		c := cache.NewMemoryCache(cacheSweep)
		logger.Info("query cache ready", zap.String("provider", "memory"))
		return c, c.Close, nil
	}
}

// ProvideStaleTimes returns the per-query cache windows
func ProvideStaleTimes() queries.StaleTimes {
	return queries.DefaultStaleTimes()
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	cfg *config.Config,
	graphBackend ports.GraphBackend,
	queryCache ports.Cache,
	metrics *observability.Collector,
	tracer *observability.Tracer,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	middlewares := []querybus.Middleware{querybus.NewMetricsMiddleware(metrics)}
	if tracer != nil {
		middlewares = append(middlewares, querybus.NewTracingMiddleware(tracer))
	}
	middlewares = append(middlewares,
		querybus.NewCachingMiddleware(queryCache, cfg.CacheStale, metrics),
		querybus.NewDedupMiddleware(logger),
	)

	queryBus := querybus.NewQueryBus(middlewares...)
	if err := queries_handlers.RegisterAll(queryBus, graphBackend, logger); err != nil {
		return nil, err
	}
	return queryBus, nil
}

// ProvideReaderFactory opens one data service per request so concurrent
// requests never supersede each other's slots
func ProvideReaderFactory(
	queryBus *querybus.QueryBus,
	domain *domainconfig.DomainConfig,
	stale queries.StaleTimes,
	metrics *observability.Collector,
	logger *zap.Logger,
) ReaderFactory {
	return func() handlers.GraphReader {
		return services.NewGraphDataService(queryBus, domain, stale, metrics, logger)
	}
}

// ProvideThumbnailCache creates the thumbnail cache
func ProvideThumbnailCache(fetcher ports.ImageFetcher, domain *domainconfig.DomainConfig, metrics *observability.Collector, logger *zap.Logger) (*cache.ThumbnailCache, func()) {
	thumbs := cache.NewThumbnailCache(fetcher, domain.ThumbnailCapacity, metrics, logger)
	return thumbs, thumbs.Close
}

// ProvidePresetWatcher loads layout presets and hot reloads the presets file
func ProvidePresetWatcher(cfg *config.Config, logger *zap.Logger) (*config.PresetWatcher, func(), error) {
	w, err := config.NewPresetWatcher(cfg.PresetsFile, logger)
	if err != nil {
		return nil, nil, err
	}
	return w, func() { w.Close() }, nil
}

// ProvidePreferenceStore opens the preferences backend
func ProvidePreferenceStore(cfg *config.Config, logger *zap.Logger) (ports.PreferenceStore, func(), error) {
	store, closeFn, err := settings.NewStore(cfg.PreferencesBackend, cfg.PreferencesPath, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := closeFn(); err != nil {
			logger.Warn("failed to close preference store", zap.Error(err))
		}
	}, nil
}

// ProvideRenderer creates the paint pipeline
func ProvideRenderer(domain *domainconfig.DomainConfig, metrics *observability.Collector, logger *zap.Logger) *render.Renderer {
	return render.NewRenderer(domain, metrics, logger)
}

// ProvideSnapshotService creates the snapshot renderer
func ProvideSnapshotService(
	queryBus *querybus.QueryBus,
	domain *domainconfig.DomainConfig,
	stale queries.StaleTimes,
	presets *config.PresetWatcher,
	thumbs *cache.ThumbnailCache,
	prefs ports.PreferenceStore,
	renderer *render.Renderer,
	metrics *observability.Collector,
	logger *zap.Logger,
) *snapshot.Service {
	return snapshot.NewService(snapshot.Deps{
		Bus:         queryBus,
		Config:      domain,
		Stale:       stale,
		Presets:     presets,
		Thumbs:      thumbs,
		Preferences: prefs,
		Renderer:    renderer,
		Metrics:     metrics,
		Logger:      logger,
	})
}

// ProvideRouter creates the preview HTTP router
func ProvideRouter(
	cfg *config.Config,
	snapshots *snapshot.Service,
	newReader ReaderFactory,
	presets *config.PresetWatcher,
	client *backend.Client,
	metrics *observability.Collector,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(
		rest.RouterConfig{
			EnableCORS:      cfg.EnableCORS,
			AllowedOrigins:  cfg.AllowedOrigins,
			EnableMetrics:   cfg.EnableMetrics,
			Debug:           cfg.IsDevelopment(),
			RequestTimeout:  httpRequestBudget,
			RenderRateLimit: cfg.RenderRateLimit,
		},
		snapshots,
		newReader,
		presets,
		backendReady(client),
		metrics,
		logger,
	)
}

func backendReady(client *backend.Client) func() error {
	return func() error {
		if client.BreakerState() == gobreaker.StateOpen {
			return errors.New("graph backend circuit breaker is open")
		}
		return nil
	}
}
