package entities

import (
	"braingraph/domain/core/valueobjects"
	pkgerrors "braingraph/pkg/errors"
)

// Edge is a typed, weighted relationship between two nodes
type Edge struct {
	Source   valueobjects.NodeID
	Target   valueobjects.NodeID
	Type     valueobjects.EdgeType
	Weight   float64
	Evidence string
}

// NewEdge creates an edge, clamping weight into [0,1]
func NewEdge(source, target string, edgeType valueobjects.EdgeType, weight float64) (Edge, error) {
	if source == "" || target == "" {
		return Edge{}, pkgerrors.NewValidationError("edge endpoints cannot be empty")
	}
	switch {
	case weight < 0:
		weight = 0
	case weight > 1:
		weight = 1
	}
	return Edge{
		Source: valueobjects.ParseNodeID(source),
		Target: valueobjects.ParseNodeID(target),
		Type:   edgeType,
		Weight: weight,
	}, nil
}

// MustEdge builds an edge and panics on invalid input. Test and fixture helper.
func MustEdge(source, target string, edgeType valueobjects.EdgeType, weight float64) Edge {
	e, err := NewEdge(source, target, edgeType, weight)
	if err != nil {
		panic(err)
	}
	return e
}

// Key identifies an edge. Multi-edges differing by type have distinct keys.
func (e Edge) Key() string {
	return e.Source.String() + "|" + e.Target.String() + "|" + string(e.Type)
}

// Touches reports whether id is either endpoint
func (e Edge) Touches(id valueobjects.NodeID) bool {
	return e.Source.Equals(id) || e.Target.Equals(id)
}

// Other returns the endpoint opposite id
func (e Edge) Other(id valueobjects.NodeID) valueobjects.NodeID {
	if e.Source.Equals(id) {
		return e.Target
	}
	return e.Source
}
