package views

import (
	"context"

	"braingraph/application/ports"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/interaction"
	pkgerrors "braingraph/pkg/errors"
)

// GraphSource is the slice of the data service the views read from
type GraphSource interface {
	LocalNeighborhood(ctx context.Context, nodeID string, depth int, layers []string, minWeight float64) (*aggregates.Graph, error)
	Map(ctx context.Context, scope string) (*ports.MapData, error)
	Path(ctx context.Context, from, to string, limit int) (*ports.PathData, error)
	Search(ctx context.Context, query string, limit int) ([]entities.Node, error)
}

// Status is what a view shows
type Status string

const (
	StatusWelcome Status = "welcome"
	StatusReady   Status = "ready"
	StatusEmpty   Status = "empty"
	StatusNoPath  Status = "no_path"
	StatusError   Status = "error"
)

// Scene is a view's renderable output: the visible annotated graph plus the
// overlays that view draws
type Scene struct {
	View   interaction.View
	Status Status
	Graph  *aggregates.AnnotatedGraph
	Focus  valueobjects.NodeID

	// DepthAware enables depth opacity and depth label gating
	DepthAware bool

	Centroids   []aggregates.Centroid
	Communities []entities.Community
	Hops        []aggregates.PathHop

	Err error
}

// Ready reports whether there is a graph to draw
func (s Scene) Ready() bool {
	return s.Status == StatusReady && s.Graph != nil
}

// Retryable reports whether the error state offers a retry action
func (s Scene) Retryable() bool {
	return s.Status == StatusError && pkgerrors.IsRetryable(s.Err)
}

// CommunityLabel returns the display label for a community id
func (s Scene) CommunityLabel(id string) string {
	for _, c := range s.Communities {
		if c.ID == id {
			return c.DisplayLabel()
		}
	}
	return entities.Community{ID: id}.DisplayLabel()
}

// Message is the placeholder text for non-ready states
func (s Scene) Message() string {
	switch s.Status {
	case StatusWelcome:
		switch s.View {
		case interaction.ViewPath:
			return "Pick two nodes to find the path between them"
		default:
			return "Select a node to explore its neighborhood"
		}
	case StatusEmpty:
		return "Nothing to show here yet"
	case StatusNoPath:
		return "No path connects these nodes"
	case StatusError:
		if s.Retryable() {
			return "Could not load the graph. Retry?"
		}
		return "Could not load the graph"
	default:
		return ""
	}
}

func errorScene(view interaction.View, err error) Scene {
	return Scene{View: view, Status: StatusError, Err: err}
}
