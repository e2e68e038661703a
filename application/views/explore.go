package views

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"braingraph/application/services"
	"braingraph/domain/config"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/interaction"
	"braingraph/domain/specifications"
	pkgerrors "braingraph/pkg/errors"
)

// ExploreRequest is what the Explore view needs to load
type ExploreRequest struct {
	Focus  valueobjects.NodeID
	Depth  int
	Filter specifications.FilterState
}

// ExploreView shows the neighborhood of the focus node
type ExploreView struct {
	source GraphSource
	cfg    *config.DomainConfig
	logger *zap.Logger
	res    *services.Resource[*aggregates.Graph]

	mu   sync.Mutex
	last Scene
}

// NewExploreView creates the Explore view
func NewExploreView(source GraphSource, cfg *config.DomainConfig, logger *zap.Logger) *ExploreView {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExploreView{
		source: source,
		cfg:    cfg,
		logger: logger,
		res:    services.NewResource[*aggregates.Graph]("explore", logger),
		last:   Scene{View: interaction.ViewExplore, Status: StatusWelcome},
	}
}

// Load fetches and projects the neighborhood of req.Focus. A superseded load
// returns the previous scene with a cancellation error.
func (v *ExploreView) Load(ctx context.Context, req ExploreRequest) (Scene, error) {
	if req.Focus.IsZero() {
		v.res.Reset()
		return v.remember(Scene{View: interaction.ViewExplore, Status: StatusWelcome}), nil
	}

	depth := clampDepth(req.Depth, v.cfg)
	var loadErr error
	snap := v.res.Load(ctx, func(ctx context.Context) (*aggregates.Graph, error) {
		g, err := v.source.LocalNeighborhood(ctx, req.Focus.String(), depth, req.Filter.LayerNames(), req.Filter.MinWeight)
		loadErr = err
		return g, err
	})

	if pkgerrors.IsCancelled(loadErr) {
		return v.Last(), loadErr
	}
	if snap.State == services.StateError {
		return v.remember(errorScene(interaction.ViewExplore, snap.Err)), snap.Err
	}

	scene := BuildExploreScene(snap.Data, req.Focus, req.Filter, v.cfg)
	v.logger.Debug("explore scene built",
		zap.String("focus", req.Focus.String()),
		zap.Int("depth", depth),
		zap.String("status", string(scene.Status)),
	)
	return v.remember(scene), nil
}

// Last returns the most recent scene
func (v *ExploreView) Last() Scene {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}

func (v *ExploreView) remember(s Scene) Scene {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.last = s
	return s
}

// BuildExploreScene annotates g around focus, pins the focus at the origin and
// applies the filter. The focus itself is never filtered out. A fetch that
// holds nothing besides the focus is an empty neighborhood; a neighborhood
// emptied by the filter stays Ready.
func BuildExploreScene(g *aggregates.Graph, focus valueobjects.NodeID, filter specifications.FilterState, cfg *config.DomainConfig) Scene {
	if g == nil || g.IsEmpty() || (g.NodeCount() == 1 && g.Has(focus)) {
		return Scene{View: interaction.ViewExplore, Status: StatusEmpty, Focus: focus}
	}

	annotated := aggregates.Annotate(g, aggregates.AnnotateOptions{
		Focus:             focus,
		MaxDepth:          cfg.MaxDepth,
		HubMinConnections: cfg.HubMinConnections,
	}).Pin(focus, valueobjects.Origin)

	f := specifications.NewFilter(filter)
	visible := annotated.Restrict(
		func(n aggregates.AnnotatedNode) bool { return n.IsFocus || f.IsNodeVisible(n.Node) },
		f.IsEdgeVisible,
	)

	return Scene{
		View:       interaction.ViewExplore,
		Status:     StatusReady,
		Graph:      visible,
		Focus:      focus,
		DepthAware: true,
	}
}

func clampDepth(depth int, cfg *config.DomainConfig) int {
	if depth <= 0 {
		depth = cfg.DefaultDepth
	}
	if depth > cfg.MaxDepth {
		depth = cfg.MaxDepth
	}
	return depth
}
