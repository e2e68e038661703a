package specifications

import (
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
)

// EdgeInLayers matches edges whose type is one of layers. An edge of an
// unrecognised type is never in an enabled layer and is hidden.
func EdgeInLayers(layers []valueobjects.EdgeType) Specification[entities.Edge] {
	enabled := make(map[valueobjects.EdgeType]struct{}, len(layers))
	for _, l := range layers {
		enabled[l] = struct{}{}
	}
	return NewBaseSpecification(func(e entities.Edge) bool {
		_, ok := enabled[e.Type]
		return ok
	})
}

// EdgeMinWeight matches edges with weight >= min
func EdgeMinWeight(min float64) Specification[entities.Edge] {
	return NewBaseSpecification(func(e entities.Edge) bool {
		return e.Weight >= min
	})
}
