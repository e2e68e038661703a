package valueobjects

import "math"

// Point is a position in graph (simulation) space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Origin is the graph-space anchor for a focused node
var Origin = Point{}

// IsOrigin reports whether p sits exactly at the origin. Unpositioned nodes are
// reported there by the layout, so callers treat it as "no position yet".
func (p Point) IsOrigin() bool {
	return p.X == 0 && p.Y == 0
}

// DistanceTo returns the euclidean distance between two points
func (p Point) DistanceTo(other Point) float64 {
	return math.Hypot(other.X-p.X, other.Y-p.Y)
}

// Midpoint returns the point halfway to other
func (p Point) Midpoint(other Point) Point {
	return Point{X: (p.X + other.X) / 2, Y: (p.Y + other.Y) / 2}
}
