package ports

import (
	"context"
	"image"

	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
)

// GraphBackend is the read-only graph query surface. This is a port in
// hexagonal architecture: the HTTP client in infrastructure/backend implements it.
type GraphBackend interface {
	// LocalNeighborhood returns the subgraph within depth hops of nodeID
	LocalNeighborhood(ctx context.Context, nodeID string, depth int, layers []string, minWeight float64) (*aggregates.Graph, error)

	// Map returns the clustered overview for scope
	Map(ctx context.Context, scope string) (*MapData, error)

	// Path returns the ordered path between two nodes; an empty Path means none exists
	Path(ctx context.Context, from, to string, limit int) (*PathData, error)

	// Search returns nodes whose content matches query
	Search(ctx context.Context, query string, limit int) ([]entities.Node, error)

	// Stats returns graph-wide counts
	Stats(ctx context.Context) (*GraphStats, error)
}

// ImageFetcher loads thumbnail bitmaps for image nodes
type ImageFetcher interface {
	FetchThumbnail(ctx context.Context, id valueobjects.NodeID) (image.Image, error)
}

// MapData is the clustered overview. Graph nodes already carry backend positions.
type MapData struct {
	Graph       *aggregates.Graph
	Communities []entities.Community
}

// Community returns the community with id
func (m *MapData) Community(id string) (entities.Community, bool) {
	for _, c := range m.Communities {
		if c.ID == id {
			return c, true
		}
	}
	return entities.Community{}, false
}

// PathData is an ordered path plus the edges the backend found along it
type PathData struct {
	Path  []entities.Node
	Edges []entities.Edge
}

// GraphStats summarises the whole graph
type GraphStats struct {
	TotalNodes  int            `json:"total_nodes"`
	TotalEdges  int            `json:"total_edges"`
	NodeCounts  map[string]int `json:"node_counts"`
	EdgeCounts  map[string]int `json:"edge_counts"`
	Communities int            `json:"communities"`
}
