package aggregates

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"braingraph/domain/core/valueobjects"
)

// Centroid is the mean position of a community's positioned members
type Centroid struct {
	CommunityID string
	Position    valueobjects.Point
	Members     int
}

// Centroids groups nodes by metadata.communityId and averages the members that
// hold a non-origin position. Communities with fewer than two such members get
// no centroid. Results are sorted by community id.
func Centroids(nodes []AnnotatedNode) []Centroid {
	xs := make(map[string][]float64)
	ys := make(map[string][]float64)
	for _, n := range nodes {
		cid, ok := n.Metadata().CommunityID()
		if !ok || cid == "" {
			continue
		}
		p, ok := n.Position()
		if !ok || p.IsOrigin() {
			continue
		}
		xs[cid] = append(xs[cid], p.X)
		ys[cid] = append(ys[cid], p.Y)
	}

	out := make([]Centroid, 0, len(xs))
	for cid, x := range xs {
		if len(x) < 2 {
			continue
		}
		out = append(out, Centroid{
			CommunityID: cid,
			Position:    valueobjects.Point{X: stat.Mean(x, nil), Y: stat.Mean(ys[cid], nil)},
			Members:     len(x),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CommunityID < out[j].CommunityID })
	return out
}
