package aggregates

import (
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
)

// Graph is an immutable snapshot of one query result. Node ids are unique: a
// repeated id is dropped and counted. Edges are kept as received, including
// multi-edges and edges whose endpoints are missing; projections drop the latter.
type Graph struct {
	nodes      []entities.Node
	index      map[string]int
	edges      []entities.Edge
	duplicates int
}

// NewGraph creates a snapshot. The first occurrence of a node id wins.
func NewGraph(nodes []entities.Node, edges []entities.Edge) *Graph {
	g := &Graph{
		nodes: make([]entities.Node, 0, len(nodes)),
		index: make(map[string]int, len(nodes)),
		edges: make([]entities.Edge, len(edges)),
	}
	for _, n := range nodes {
		key := n.ID().String()
		if _, seen := g.index[key]; seen {
			g.duplicates++
			continue
		}
		g.index[key] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}
	copy(g.edges, edges)
	return g
}

// EmptyGraph returns a snapshot without nodes
func EmptyGraph() *Graph {
	return NewGraph(nil, nil)
}

// Nodes returns a copy of the node list in backend order
func (g *Graph) Nodes() []entities.Node {
	out := make([]entities.Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns a copy of the raw edge list
func (g *Graph) Edges() []entities.Edge {
	out := make([]entities.Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Node looks up a node by id
func (g *Graph) Node(id valueobjects.NodeID) (entities.Node, bool) {
	i, ok := g.index[id.String()]
	if !ok {
		return entities.Node{}, false
	}
	return g.nodes[i], true
}

// Has reports whether id is in the snapshot
func (g *Graph) Has(id valueobjects.NodeID) bool {
	_, ok := g.index[id.String()]
	return ok
}

// NodeCount returns the number of unique nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of raw edges
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Duplicates returns how many repeated node ids were dropped
func (g *Graph) Duplicates() int {
	return g.duplicates
}

// IsEmpty reports whether the snapshot has no nodes
func (g *Graph) IsEmpty() bool {
	return len(g.nodes) == 0
}

// ConnectedEdges returns the edges whose endpoints are both present
func (g *Graph) ConnectedEdges() []entities.Edge {
	out := make([]entities.Edge, 0, len(g.edges))
	for _, e := range g.edges {
		if g.Has(e.Source) && g.Has(e.Target) {
			out = append(out, e)
		}
	}
	return out
}

// Adjacency returns the undirected neighbor lists over connected edges
func (g *Graph) Adjacency() map[string][]string {
	adj := make(map[string][]string, len(g.nodes))
	for _, e := range g.ConnectedEdges() {
		s, t := e.Source.String(), e.Target.String()
		adj[s] = append(adj[s], t)
		if s != t {
			adj[t] = append(adj[t], s)
		}
	}
	return adj
}

// EdgeTypeCounts counts the connected edges of id by type
func (g *Graph) EdgeTypeCounts(id valueobjects.NodeID) map[valueobjects.EdgeType]int {
	counts := make(map[valueobjects.EdgeType]int)
	for _, e := range g.ConnectedEdges() {
		if e.Touches(id) {
			counts[e.Type]++
		}
	}
	return counts
}

// Filter returns a new snapshot keeping only the matching nodes. Edges are kept
// as-is and fall out of projections when an endpoint is gone.
func (g *Graph) Filter(keep func(entities.Node) bool) *Graph {
	nodes := make([]entities.Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if keep(n) {
			nodes = append(nodes, n)
		}
	}
	return NewGraph(nodes, g.edges)
}

// WithPositions returns a snapshot whose nodes carry the given positions
func (g *Graph) WithPositions(positions map[string]valueobjects.Point) *Graph {
	if len(positions) == 0 {
		return g
	}
	nodes := make([]entities.Node, len(g.nodes))
	for i, n := range g.nodes {
		if p, ok := positions[n.ID().String()]; ok {
			n = n.WithPosition(p)
		}
		nodes[i] = n
	}
	return NewGraph(nodes, g.edges)
}
