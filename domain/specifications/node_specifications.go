package specifications

import (
	"strings"

	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
)

// NodeInLayers matches nodes whose type maps to one of layers. Unknown types
// have no layer and are never hidden by layer toggles.
func NodeInLayers(layers []valueobjects.Layer) Specification[entities.Node] {
	enabled := make(map[valueobjects.Layer]struct{}, len(layers))
	for _, l := range layers {
		enabled[l] = struct{}{}
	}
	return NewBaseSpecification(func(n entities.Node) bool {
		if !n.Type().IsKnown() {
			return true
		}
		_, ok := enabled[n.Type().Layer()]
		return ok
	})
}

// NodeTitleContains matches titles containing query, case-insensitively.
// A blank query matches everything.
func NodeTitleContains(query string) Specification[entities.Node] {
	needle := strings.ToLower(strings.TrimSpace(query))
	return NewBaseSpecification(func(n entities.Node) bool {
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(n.Title()), needle)
	})
}

// NodeInCommunity isolates one community. An empty id matches everything.
func NodeInCommunity(communityID string) Specification[entities.Node] {
	return NewBaseSpecification(func(n entities.Node) bool {
		if communityID == "" {
			return true
		}
		got, ok := n.Metadata().CommunityID()
		return ok && got == communityID
	})
}

// NodeOfTypes matches a fixed set of node types
func NodeOfTypes(types ...valueobjects.NodeType) Specification[entities.Node] {
	allowed := make(map[valueobjects.NodeType]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	return NewBaseSpecification(func(n entities.Node) bool {
		_, ok := allowed[n.Type()]
		return ok
	})
}
