package views

import (
	"context"

	"go.uber.org/zap"

	"braingraph/application/ports"
	"braingraph/application/services"
	"braingraph/domain/config"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/interaction"
	pkgerrors "braingraph/pkg/errors"
)

// PathView draws the path between two nodes as a chain
type PathView struct {
	source GraphSource
	cfg    *config.DomainConfig
	logger *zap.Logger
	res    *services.Resource[*ports.PathData]
}

// NewPathView creates the PathFinder view
func NewPathView(source GraphSource, cfg *config.DomainConfig, logger *zap.Logger) *PathView {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PathView{
		source: source,
		cfg:    cfg,
		logger: logger,
		res:    services.NewResource[*ports.PathData]("path", logger),
	}
}

// Load fetches the path from -> to. Without both endpoints the view asks
// for them.
func (v *PathView) Load(ctx context.Context, from, to valueobjects.NodeID, limit int) (Scene, error) {
	if from.IsZero() || to.IsZero() {
		return Scene{View: interaction.ViewPath, Status: StatusWelcome}, nil
	}
	if limit <= 0 {
		limit = v.cfg.PathLimit
	}

	var loadErr error
	snap := v.res.Load(ctx, func(ctx context.Context) (*ports.PathData, error) {
		data, err := v.source.Path(ctx, from.String(), to.String(), limit)
		loadErr = err
		return data, err
	})
	if loadErr != nil {
		if pkgerrors.IsCancelled(loadErr) {
			return Scene{View: interaction.ViewPath, Status: StatusWelcome}, loadErr
		}
		return errorScene(interaction.ViewPath, loadErr), loadErr
	}
	if snap.State == services.StateError {
		return errorScene(interaction.ViewPath, snap.Err), snap.Err
	}
	return BuildPathScene(snap.Data, v.cfg), nil
}

// BuildPathScene turns the ordered path into a chain graph with hop labels
func BuildPathScene(data *ports.PathData, cfg *config.DomainConfig) Scene {
	if data == nil || len(data.Path) == 0 {
		return Scene{View: interaction.ViewPath, Status: StatusNoPath}
	}

	chain, hops := aggregates.ChainFromPath(data.Path, data.Edges)
	annotated := aggregates.Annotate(chain, aggregates.AnnotateOptions{
		HubMinConnections: cfg.HubMinConnections,
	})
	return Scene{
		View:   interaction.ViewPath,
		Status: StatusReady,
		Graph:  annotated,
		Hops:   hops,
	}
}
