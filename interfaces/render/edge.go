package render

import (
	"math"

	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
)

// edgePainter draws one edge: optional curve, weight-scaled opacity, a glow
// pass when emphasized and a midpoint "type · NN%" label when highlighted
type edgePainter struct{}

// emphasis classifies an edge for the current frame
type emphasis struct {
	selected    bool
	highlighted bool
	hovered     bool
}

func (f *frame) emphasis(e entities.Edge) emphasis {
	var em emphasis
	if f.state.SelectedEdge != nil && f.state.SelectedEdge.Key() == e.Key() {
		em.selected = true
	}
	if f.hasHover && e.Touches(f.hovered) {
		em.hovered = true
	}
	switch {
	case f.pathView:
		em.highlighted = true
	case f.state.SelectedNode != nil && e.Touches(*f.state.SelectedNode):
		em.highlighted = true
	case f.state.IsHighlighted(e.Source) && f.state.IsHighlighted(e.Target):
		em.highlighted = true
	}
	return em
}

// skip reports whether LOD suppresses e this frame
func (f *frame) skipEdge(em emphasis) bool {
	return !f.lod.ShowEdges && !em.selected && !em.hovered
}

// EdgeOpacity scales the preset edge opacity by weight, keeping a faint floor
func EdgeOpacity(weight, base float64) float64 {
	if base <= 0 {
		base = 1
	}
	return base * (0.15 + 0.85*math.Max(0, math.Min(1, weight)))
}

// CurveControl returns the quadratic control point for a curved edge: the
// midpoint pushed perpendicular by curvature*length, capped at maxOffset
func CurveControl(from, to valueobjects.Point, curvature, maxOffset float64) valueobjects.Point {
	mid := from.Midpoint(to)
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return mid
	}
	offset := curvature * length
	if maxOffset > 0 {
		offset = math.Min(offset, maxOffset)
	}
	return valueobjects.Point{X: mid.X - dy/length*offset, Y: mid.Y + dx/length*offset}
}

func (edgePainter) paint(c Canvas, e entities.Edge, from, to valueobjects.Point, f *frame) {
	em := f.emphasis(e)
	if f.skipEdge(em) {
		return
	}

	base := f.theme.EdgeColor(e.Type)
	emphasized := em.selected || em.highlighted || em.hovered
	alpha := EdgeOpacity(e.Weight, f.display.EdgeOpacity)
	width := 1.0
	if emphasized {
		alpha = 1
		width = 2
	}

	curved := f.display.CurvedEdges
	var ctrl valueobjects.Point
	if curved {
		ctrl = CurveControl(from, to, f.cfg.EdgeCurvature, f.cfg.EdgeMaxCurveOffset*f.zoom)
	}
	stroke := func(w float64, a float64) {
		col := withAlpha(base, a)
		if curved {
			c.StrokeQuad(from, ctrl, to, w, col)
		} else {
			c.StrokeLine(from, to, w, col)
		}
	}

	if em.selected || em.highlighted {
		stroke(width+4, 0.25)
	}
	stroke(width, alpha)

	if em.highlighted || em.selected {
		mid := from.Midpoint(to)
		if curved {
			// point on the quadratic at t=0.5
			mid = valueobjects.Point{
				X: 0.25*from.X + 0.5*ctrl.X + 0.25*to.X,
				Y: 0.25*from.Y + 0.5*ctrl.Y + 0.25*to.Y,
			}
		}
		label := aggregates.PercentLabel(e)
		if f.pathView {
			label = aggregates.HopLabel(e)
		}
		c.FillText(label, mid, f.theme.Muted, AlignCenter)
	}
}
