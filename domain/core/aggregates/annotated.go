package aggregates

import (
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
)

// AnnotatedNode is a fetched node plus the fields derived for one view
type AnnotatedNode struct {
	entities.Node
	Connections int
	Depth       *int
	IsHub       bool
	IsFocus     bool
}

// DepthOr returns the BFS depth or fallback when the node has none
func (n AnnotatedNode) DepthOr(fallback int) int {
	if n.Depth == nil {
		return fallback
	}
	return *n.Depth
}

// AnnotateOptions controls derivation
type AnnotateOptions struct {
	// Focus enables BFS depth; zero means no depth annotation
	Focus valueobjects.NodeID
	// MaxDepth caps reported depth. Unreachable nodes report the cap.
	MaxDepth int
	// HubMinConnections is the degree at which a node counts as a hub
	HubMinConnections int
}

// AnnotatedGraph is a derived, read-only projection of a Graph. Every edge it
// holds has both endpoints in its node set.
type AnnotatedGraph struct {
	nodes []AnnotatedNode
	index map[string]int
	edges []entities.Edge
	focus valueobjects.NodeID
	opts  AnnotateOptions
}

// Annotate derives connections, depth and hub/focus flags from g. g is not modified.
func Annotate(g *Graph, opts AnnotateOptions) *AnnotatedGraph {
	edges := g.ConnectedEdges()

	var depths map[string]int
	if !opts.Focus.IsZero() && g.Has(opts.Focus) {
		depths = BFSDepths(g.Adjacency(), opts.Focus.String(), opts.MaxDepth)
	}

	nodes := make([]AnnotatedNode, 0, g.NodeCount())
	for _, n := range g.nodes {
		an := AnnotatedNode{Node: n}
		if depths != nil {
			d, ok := depths[n.ID().String()]
			if !ok {
				d = opts.MaxDepth
			}
			an.Depth = &d
			an.IsFocus = n.ID().Equals(opts.Focus)
		}
		nodes = append(nodes, an)
	}

	ag := &AnnotatedGraph{nodes: nodes, edges: edges, focus: opts.Focus, opts: opts}
	ag.reindex()
	ag.recount()
	return ag
}

// BFSDepths returns hop distance from root over adj, capped at maxDepth. A
// non-positive maxDepth means uncapped. Unreachable nodes are absent.
func BFSDepths(adj map[string][]string, root string, maxDepth int) map[string]int {
	depths := map[string]int{root: 0}
	queue := []string{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		next := depths[current] + 1
		for _, neighbor := range adj[current] {
			if _, seen := depths[neighbor]; seen {
				continue
			}
			depths[neighbor] = next
			queue = append(queue, neighbor)
		}
	}
	if maxDepth > 0 {
		for id, d := range depths {
			if d > maxDepth {
				depths[id] = maxDepth
			}
		}
	}
	return depths
}

// Restrict keeps nodes and edges that pass the predicates, drops edges left
// dangling, and recomputes connections and hub flags for the new edge set.
// Depth is kept: it describes the fetched neighborhood, not the visible one.
func (ag *AnnotatedGraph) Restrict(nodeVisible func(AnnotatedNode) bool, edgeVisible func(entities.Edge) bool) *AnnotatedGraph {
	out := &AnnotatedGraph{focus: ag.focus, opts: ag.opts}
	for _, n := range ag.nodes {
		if nodeVisible == nil || nodeVisible(n) {
			out.nodes = append(out.nodes, n)
		}
	}
	out.reindex()
	for _, e := range ag.edges {
		if edgeVisible != nil && !edgeVisible(e) {
			continue
		}
		if out.Has(e.Source) && out.Has(e.Target) {
			out.edges = append(out.edges, e)
		}
	}
	out.recount()
	return out
}

// Nodes returns a copy of the annotated nodes
func (ag *AnnotatedGraph) Nodes() []AnnotatedNode {
	out := make([]AnnotatedNode, len(ag.nodes))
	copy(out, ag.nodes)
	return out
}

// Edges returns a copy of the connected edges
func (ag *AnnotatedGraph) Edges() []entities.Edge {
	out := make([]entities.Edge, len(ag.edges))
	copy(out, ag.edges)
	return out
}

// Node looks up an annotated node
func (ag *AnnotatedGraph) Node(id valueobjects.NodeID) (AnnotatedNode, bool) {
	i, ok := ag.index[id.String()]
	if !ok {
		return AnnotatedNode{}, false
	}
	return ag.nodes[i], true
}

// Has reports whether id is in the projection
func (ag *AnnotatedGraph) Has(id valueobjects.NodeID) bool {
	_, ok := ag.index[id.String()]
	return ok
}

// Focus returns the focus the projection was derived for
func (ag *AnnotatedGraph) Focus() valueobjects.NodeID {
	return ag.focus
}

// NodeCount returns the number of nodes
func (ag *AnnotatedGraph) NodeCount() int {
	return len(ag.nodes)
}

// EdgeCount returns the number of edges
func (ag *AnnotatedGraph) EdgeCount() int {
	return len(ag.edges)
}

// Pin returns a projection with id fixed at p
func (ag *AnnotatedGraph) Pin(id valueobjects.NodeID, p valueobjects.Point) *AnnotatedGraph {
	i, ok := ag.index[id.String()]
	if !ok {
		return ag
	}
	out := ag.clone()
	out.nodes[i].Node = out.nodes[i].Node.WithFixed(p)
	return out
}

// Positioned returns a projection whose nodes carry the given positions
func (ag *AnnotatedGraph) Positioned(positions map[string]valueobjects.Point) *AnnotatedGraph {
	out := ag.clone()
	for i, n := range out.nodes {
		if p, ok := positions[n.ID().String()]; ok {
			out.nodes[i].Node = n.Node.WithPosition(p)
		}
	}
	return out
}

func (ag *AnnotatedGraph) clone() *AnnotatedGraph {
	out := &AnnotatedGraph{
		nodes: make([]AnnotatedNode, len(ag.nodes)),
		edges: ag.edges,
		focus: ag.focus,
		opts:  ag.opts,
	}
	copy(out.nodes, ag.nodes)
	out.reindex()
	return out
}

func (ag *AnnotatedGraph) reindex() {
	ag.index = make(map[string]int, len(ag.nodes))
	for i, n := range ag.nodes {
		ag.index[n.ID().String()] = i
	}
}

func (ag *AnnotatedGraph) recount() {
	degree := make(map[string]int, len(ag.nodes))
	for _, e := range ag.edges {
		degree[e.Source.String()]++
		if !e.Source.Equals(e.Target) {
			degree[e.Target.String()]++
		}
	}
	for i := range ag.nodes {
		c := degree[ag.nodes[i].ID().String()]
		ag.nodes[i].Connections = c
		ag.nodes[i].IsHub = ag.opts.HubMinConnections > 0 && c >= ag.opts.HubMinConnections
	}
}
