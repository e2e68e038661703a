//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"braingraph/application/ports"
	querybus "braingraph/application/queries/bus"
	"braingraph/infrastructure/backend"
	"braingraph/infrastructure/cache"
	"braingraph/infrastructure/config"
	"braingraph/interfaces/http/rest"
	"braingraph/interfaces/snapshot"
	"braingraph/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *observability.Collector
	Backend     *backend.Client
	Cache       ports.Cache
	QueryBus    *querybus.QueryBus
	Readers     ReaderFactory
	Thumbnails  *cache.ThumbnailCache
	Presets     *config.PresetWatcher
	Preferences ports.PreferenceStore
	Snapshots   *snapshot.Service
	Router      *rest.Router
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideMetrics,
	ProvideTracer,
	ProvideBackendClient,
	ProvideGraphBackend,
	ProvideImageFetcher,
	ProvideCache,
	ProvideStaleTimes,
	ProvideQueryBus,
	ProvideReaderFactory,
	ProvideThumbnailCache,
	ProvidePresetWatcher,
	ProvidePreferenceStore,
	ProvideRenderer,
	ProvideSnapshotService,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The cleanup function
// releases caches, watchers and stores in reverse order.
func InitializeContainer(cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
