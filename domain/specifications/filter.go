package specifications

import (
	"sort"
	"strconv"
	"strings"

	"braingraph/domain/config"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
)

// FilterState is the user-controlled visibility state. Values are treated as
// immutable: the toggle helpers return modified copies.
type FilterState struct {
	NodeLayers  []valueobjects.Layer    `json:"node_layers" yaml:"node_layers"`
	EdgeLayers  []valueobjects.EdgeType `json:"edge_layers" yaml:"edge_layers"`
	MinWeight   float64                 `json:"min_weight" yaml:"min_weight"`
	SearchQuery string                  `json:"search_query,omitempty" yaml:"search_query"`
	CommunityID string                  `json:"community_id,omitempty" yaml:"community_id"`
	Depth       int                     `json:"depth" yaml:"depth"`
}

// DefaultFilterState enables every layer with no weight threshold
func DefaultFilterState(cfg *config.DomainConfig) FilterState {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return FilterState{
		NodeLayers: valueobjects.AllLayers(),
		EdgeLayers: valueobjects.AllEdgeTypes(),
		MinWeight:  cfg.DefaultMinWeight,
		Depth:      cfg.DefaultDepth,
	}
}

// ToggleNodeLayer flips one node layer
func (s FilterState) ToggleNodeLayer(layer valueobjects.Layer) FilterState {
	out := s.clone()
	for i, l := range out.NodeLayers {
		if l == layer {
			out.NodeLayers = append(out.NodeLayers[:i], out.NodeLayers[i+1:]...)
			return out
		}
	}
	out.NodeLayers = append(out.NodeLayers, layer)
	return out
}

// ToggleEdgeLayer flips one edge layer
func (s FilterState) ToggleEdgeLayer(edgeType valueobjects.EdgeType) FilterState {
	out := s.clone()
	for i, l := range out.EdgeLayers {
		if l == edgeType {
			out.EdgeLayers = append(out.EdgeLayers[:i], out.EdgeLayers[i+1:]...)
			return out
		}
	}
	out.EdgeLayers = append(out.EdgeLayers, edgeType)
	return out
}

// HasNodeLayer reports whether layer is enabled
func (s FilterState) HasNodeLayer(layer valueobjects.Layer) bool {
	for _, l := range s.NodeLayers {
		if l == layer {
			return true
		}
	}
	return false
}

// WithMinWeight returns a copy with the threshold clamped into [0,1]
func (s FilterState) WithMinWeight(w float64) FilterState {
	out := s.clone()
	switch {
	case w < 0:
		w = 0
	case w > 1:
		w = 1
	}
	out.MinWeight = w
	return out
}

// WithSearch returns a copy with the free-text query set
func (s FilterState) WithSearch(query string) FilterState {
	out := s.clone()
	out.SearchQuery = query
	return out
}

// WithCommunity returns a copy isolating community id; "" clears isolation
func (s FilterState) WithCommunity(id string) FilterState {
	out := s.clone()
	out.CommunityID = NormalizeCommunityID(id)
	return out
}

// WithDepth returns a copy with depth set
func (s FilterState) WithDepth(depth int) FilterState {
	out := s.clone()
	out.Depth = depth
	return out
}

// LayerNames returns the enabled node layers as sorted strings, the form sent
// to the neighborhood query
func (s FilterState) LayerNames() []string {
	names := make([]string, 0, len(s.NodeLayers))
	for _, l := range s.NodeLayers {
		names = append(names, string(l))
	}
	sort.Strings(names)
	return names
}

func (s FilterState) clone() FilterState {
	out := s
	out.NodeLayers = append([]valueobjects.Layer(nil), s.NodeLayers...)
	out.EdgeLayers = append([]valueobjects.EdgeType(nil), s.EdgeLayers...)
	return out
}

// NormalizeCommunityID renders numeric ids the way node metadata does ("7.0" → "7")
func NormalizeCommunityID(id string) string {
	id = strings.TrimSpace(id)
	if f, err := strconv.ParseFloat(id, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return id
}

// Filter evaluates a FilterState against nodes and edges
type Filter struct {
	state FilterState
	node  Specification[entities.Node]
	edge  Specification[entities.Edge]
}

// NewFilter compiles state into node and edge specifications
func NewFilter(state FilterState) *Filter {
	state = state.clone()
	state.CommunityID = NormalizeCommunityID(state.CommunityID)
	return &Filter{
		state: state,
		node: NodeInLayers(state.NodeLayers).
			And(NodeTitleContains(state.SearchQuery)).
			And(NodeInCommunity(state.CommunityID)),
		edge: EdgeInLayers(state.EdgeLayers).And(EdgeMinWeight(state.MinWeight)),
	}
}

// State returns the compiled state
func (f *Filter) State() FilterState {
	return f.state.clone()
}

// IsNodeVisible reports whether n passes layer, search and community filters
func (f *Filter) IsNodeVisible(n entities.Node) bool {
	return f.node.IsSatisfiedBy(n)
}

// IsEdgeVisible reports whether e passes layer and weight filters. Endpoint
// visibility is checked by Apply.
func (f *Filter) IsEdgeVisible(e entities.Edge) bool {
	return f.edge.IsSatisfiedBy(e)
}

// Apply restricts an annotated graph to the visible subset
func (f *Filter) Apply(g *aggregates.AnnotatedGraph) *aggregates.AnnotatedGraph {
	return g.Restrict(
		func(n aggregates.AnnotatedNode) bool { return f.IsNodeVisible(n.Node) },
		f.IsEdgeVisible,
	)
}
