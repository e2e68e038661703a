package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"braingraph/application/ports"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/specifications"
)

type wirePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wireNode struct {
	ID       string                 `json:"id"`
	Title    string                 `json:"title"`
	Name     string                 `json:"name,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Val      float64                `json:"val,omitempty"`
	X        *float64               `json:"x,omitempty"`
	Y        *float64               `json:"y,omitempty"`
	Fx       *float64               `json:"fx,omitempty"`
	Fy       *float64               `json:"fy,omitempty"`
}

type wireEdge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Type     string  `json:"type"`
	Weight   float64 `json:"weight"`
	Evidence string  `json:"evidence,omitempty"`
}

type wireCommunity struct {
	ID        interface{} `json:"id"`
	Label     string      `json:"label"`
	NodeCount int         `json:"node_count"`
	TopTerms  []string    `json:"top_terms"`
}

// wireGraph accepts both the "edges" and the d3-style "links" key
type wireGraph struct {
	Nodes       []wireNode           `json:"nodes"`
	Edges       []wireEdge           `json:"edges"`
	Links       []wireEdge           `json:"links"`
	Positions   map[string]wirePoint `json:"positions,omitempty"`
	Communities []wireCommunity      `json:"communities,omitempty"`
}

type wirePath struct {
	Path  json.RawMessage `json:"path"`
	Nodes []wireNode      `json:"nodes,omitempty"`
	Edges []wireEdge      `json:"edges"`
	Links []wireEdge      `json:"links"`
}

type wireSearch struct {
	Nodes   []wireNode `json:"nodes"`
	Results []wireNode `json:"results,omitempty"`
}

func (n wireNode) toEntity(positions map[string]wirePoint) (entities.Node, error) {
	title := n.Title
	if title == "" {
		title = n.Name
	}
	props := entities.NodeProps{
		ID:       n.ID,
		Title:    title,
		Metadata: n.Metadata,
		Val:      n.Val,
	}
	if n.X != nil && n.Y != nil {
		props.Position = &valueobjects.Point{X: *n.X, Y: *n.Y}
	} else if p, ok := positions[n.ID]; ok {
		props.Position = &valueobjects.Point{X: p.X, Y: p.Y}
	}
	if n.Fx != nil && n.Fy != nil {
		props.Fixed = &valueobjects.Point{X: *n.Fx, Y: *n.Fy}
	}
	return entities.NewNode(props)
}

func (e wireEdge) toEntity() (entities.Edge, error) {
	edge, err := entities.NewEdge(e.Source, e.Target, valueobjects.EdgeType(e.Type), e.Weight)
	if err != nil {
		return entities.Edge{}, err
	}
	edge.Evidence = e.Evidence
	return edge, nil
}

func (c wireCommunity) toEntity() entities.Community {
	var id string
	switch v := c.ID.(type) {
	case string:
		id = v
	case nil:
	default:
		id = fmt.Sprint(v)
	}
	return entities.Community{
		ID:        specifications.NormalizeCommunityID(id),
		Label:     c.Label,
		NodeCount: c.NodeCount,
		TopTerms:  c.TopTerms,
	}
}

func convertNodes(in []wireNode, positions map[string]wirePoint) ([]entities.Node, error) {
	out := make([]entities.Node, 0, len(in))
	for i, n := range in {
		node, err := n.toEntity(positions)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		out = append(out, node)
	}
	return out, nil
}

func convertEdges(primary, fallback []wireEdge) ([]entities.Edge, error) {
	in := primary
	if len(in) == 0 {
		in = fallback
	}
	out := make([]entities.Edge, 0, len(in))
	for i, e := range in {
		edge, err := e.toEntity()
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		out = append(out, edge)
	}
	return out, nil
}

func decodeGraph(body []byte) (*aggregates.Graph, []entities.Community, error) {
	var wg wireGraph
	if err := json.Unmarshal(body, &wg); err != nil {
		return nil, nil, err
	}
	nodes, err := convertNodes(wg.Nodes, wg.Positions)
	if err != nil {
		return nil, nil, err
	}
	edges, err := convertEdges(wg.Edges, wg.Links)
	if err != nil {
		return nil, nil, err
	}
	communities := make([]entities.Community, 0, len(wg.Communities))
	for _, c := range wg.Communities {
		communities = append(communities, c.toEntity())
	}
	return aggregates.NewGraph(nodes, edges), communities, nil
}

// decodePath accepts "path" as either node objects or bare ids. Bare ids are
// resolved against "nodes" when the backend sends them alongside.
func decodePath(body []byte) (*ports.PathData, error) {
	var wp wirePath
	if err := json.Unmarshal(body, &wp); err != nil {
		return nil, err
	}
	edges, err := convertEdges(wp.Edges, wp.Links)
	if err != nil {
		return nil, err
	}

	raw := bytes.TrimSpace(wp.Path)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return &ports.PathData{Edges: edges}, nil
	}

	var objects []wireNode
	if err := json.Unmarshal(raw, &objects); err == nil {
		nodes, err := convertNodes(objects, nil)
		if err != nil {
			return nil, err
		}
		return &ports.PathData{Path: nodes, Edges: edges}, nil
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("path is neither nodes nor ids: %w", err)
	}
	known := make(map[string]wireNode, len(wp.Nodes))
	for _, n := range wp.Nodes {
		known[n.ID] = n
	}
	path := make([]entities.Node, 0, len(ids))
	for _, id := range ids {
		n, ok := known[id]
		if !ok {
			n = wireNode{ID: id}
		}
		node, err := n.toEntity(nil)
		if err != nil {
			return nil, err
		}
		path = append(path, node)
	}
	return &ports.PathData{Path: path, Edges: edges}, nil
}

func decodeSearch(body []byte) ([]entities.Node, error) {
	var ws wireSearch
	if err := json.Unmarshal(body, &ws); err != nil {
		return nil, err
	}
	in := ws.Nodes
	if len(in) == 0 {
		in = ws.Results
	}
	return convertNodes(in, nil)
}

func decodeStats(body []byte) (*ports.GraphStats, error) {
	var stats ports.GraphStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, err
	}
	if stats.NodeCounts == nil {
		stats.NodeCounts = map[string]int{}
	}
	if stats.EdgeCounts == nil {
		stats.EdgeCounts = map[string]int{}
	}
	return &stats, nil
}
