package views

import (
	"context"

	"go.uber.org/zap"

	"braingraph/application/ports"
	"braingraph/application/services"
	"braingraph/domain/config"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/interaction"
	"braingraph/domain/specifications"
	pkgerrors "braingraph/pkg/errors"
)

// MapView shows the clustered overview with community labels
type MapView struct {
	source GraphSource
	cfg    *config.DomainConfig
	logger *zap.Logger
	res    *services.Resource[*ports.MapData]
}

// NewMapView creates the Map view
func NewMapView(source GraphSource, cfg *config.DomainConfig, logger *zap.Logger) *MapView {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MapView{
		source: source,
		cfg:    cfg,
		logger: logger,
		res:    services.NewResource[*ports.MapData]("map", logger),
	}
}

// Load fetches the overview for scope and applies filter
func (v *MapView) Load(ctx context.Context, scope string, filter specifications.FilterState) (Scene, error) {
	data, err := loadMap(ctx, v.res, v.source, scope)
	if err != nil {
		if pkgerrors.IsCancelled(err) {
			return Scene{View: interaction.ViewMap, Status: StatusEmpty}, err
		}
		return errorScene(interaction.ViewMap, err), err
	}
	return BuildMapScene(data, filter, v.cfg), nil
}

// BuildMapScene annotates the overview, filters it and computes a centroid
// per community from the visible positioned members
func BuildMapScene(data *ports.MapData, filter specifications.FilterState, cfg *config.DomainConfig) Scene {
	if data == nil || data.Graph == nil || data.Graph.IsEmpty() {
		return Scene{View: interaction.ViewMap, Status: StatusEmpty}
	}

	annotated := aggregates.Annotate(data.Graph, aggregates.AnnotateOptions{
		HubMinConnections: cfg.HubMinConnections,
	})
	visible := specifications.NewFilter(filter).Apply(annotated)

	return Scene{
		View:        interaction.ViewMap,
		Status:      StatusReady,
		Graph:       visible,
		Centroids:   aggregates.Centroids(visible.Nodes()),
		Communities: data.Communities,
	}
}

func loadMap(ctx context.Context, res *services.Resource[*ports.MapData], source GraphSource, scope string) (*ports.MapData, error) {
	var loadErr error
	snap := res.Load(ctx, func(ctx context.Context) (*ports.MapData, error) {
		data, err := source.Map(ctx, scope)
		loadErr = err
		return data, err
	})
	if loadErr != nil {
		return nil, loadErr
	}
	if snap.State == services.StateError {
		return nil, snap.Err
	}
	return snap.Data, nil
}
