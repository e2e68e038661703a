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
	"braingraph/domain/specifications"
	pkgerrors "braingraph/pkg/errors"
)

// MediaTypes are the node types the Media view keeps
var MediaTypes = []valueobjects.NodeType{
	valueobjects.NodeTypeNote,
	valueobjects.NodeTypeImage,
	valueobjects.NodeTypeTag,
}

// MediaView re-filters the overview to notes, images and tags. It ignores
// the user's layer toggles.
type MediaView struct {
	source GraphSource
	cfg    *config.DomainConfig
	logger *zap.Logger
	res    *services.Resource[*ports.MapData]
}

// NewMediaView creates the Media view
func NewMediaView(source GraphSource, cfg *config.DomainConfig, logger *zap.Logger) *MediaView {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaView{
		source: source,
		cfg:    cfg,
		logger: logger,
		res:    services.NewResource[*ports.MapData]("media", logger),
	}
}

// Load fetches the overview and keeps the media subset
func (v *MediaView) Load(ctx context.Context, scope string) (Scene, error) {
	data, err := loadMap(ctx, v.res, v.source, scope)
	if err != nil {
		if pkgerrors.IsCancelled(err) {
			return Scene{View: interaction.ViewMedia, Status: StatusEmpty}, err
		}
		return errorScene(interaction.ViewMedia, err), err
	}
	return BuildMediaScene(data, v.cfg), nil
}

// BuildMediaScene keeps MediaTypes only
func BuildMediaScene(data *ports.MapData, cfg *config.DomainConfig) Scene {
	if data == nil || data.Graph == nil || data.Graph.IsEmpty() {
		return Scene{View: interaction.ViewMedia, Status: StatusEmpty}
	}

	keep := specifications.NodeOfTypes(MediaTypes...)
	visible := aggregates.Annotate(data.Graph, aggregates.AnnotateOptions{
		HubMinConnections: cfg.HubMinConnections,
	}).Restrict(func(n aggregates.AnnotatedNode) bool { return keep.IsSatisfiedBy(n.Node) }, nil)

	if visible.NodeCount() == 0 {
		return Scene{View: interaction.ViewMedia, Status: StatusEmpty}
	}
	return Scene{
		View:        interaction.ViewMedia,
		Status:      StatusReady,
		Graph:       visible,
		Communities: data.Communities,
	}
}
