package aggregates

import (
	"fmt"
	"math"

	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
)

// PathHop is one step of a rendered path
type PathHop struct {
	From  valueobjects.NodeID
	To    valueobjects.NodeID
	Edge  entities.Edge
	Label string
}

// ChainFromPath turns an ordered path into a linear chain graph: only i↔i+1
// edges are kept. The connecting backend edge (either direction) supplies type
// and weight; when none was returned the hop gets an untyped edge of weight 1.
func ChainFromPath(path []entities.Node, edges []entities.Edge) (*Graph, []PathHop) {
	if len(path) == 0 {
		return EmptyGraph(), nil
	}

	lookup := make(map[string]entities.Edge, len(edges))
	for _, e := range edges {
		lookup[pairKey(e.Source, e.Target)] = e
		if _, ok := lookup[pairKey(e.Target, e.Source)]; !ok {
			lookup[pairKey(e.Target, e.Source)] = e
		}
	}

	chain := make([]entities.Edge, 0, len(path)-1)
	hops := make([]PathHop, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		from, to := path[i].ID(), path[i+1].ID()
		e, ok := lookup[pairKey(from, to)]
		if !ok {
			e = entities.Edge{Source: from, Target: to, Weight: 1}
		} else {
			e.Source, e.Target = from, to
		}
		chain = append(chain, e)
		hops = append(hops, PathHop{From: from, To: to, Edge: e, Label: HopLabel(e)})
	}
	return NewGraph(path, chain), hops
}

// HopLabel renders "type · weight" for a path hop
func HopLabel(e entities.Edge) string {
	if e.Type == "" {
		return fmt.Sprintf("%.2f", e.Weight)
	}
	return fmt.Sprintf("%s · %.2f", e.Type, e.Weight)
}

// PercentLabel renders "type · NN%" for a highlighted edge
func PercentLabel(e entities.Edge) string {
	pct := int(math.Round(e.Weight * 100))
	if e.Type == "" {
		return fmt.Sprintf("%d%%", pct)
	}
	return fmt.Sprintf("%s · %d%%", e.Type, pct)
}

func pairKey(a, b valueobjects.NodeID) string {
	return a.String() + "→" + b.String()
}
