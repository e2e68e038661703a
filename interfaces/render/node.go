package render

import (
	"image"
	"math"
	"strconv"

	"braingraph/domain/config"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/interaction"
	"braingraph/domain/layout"
)

// ThumbnailSource yields decoded thumbnails. A miss starts a load; callers
// draw a plain circle until a later frame sees the image.
type ThumbnailSource interface {
	Thumbnail(id valueobjects.NodeID) (image.Image, bool)
}

// frame is the read-only input shared by the painters for one paint pass
type frame struct {
	theme      Theme
	cfg        *config.DomainConfig
	lod        layout.LOD
	display    layout.Display
	state      interaction.State
	camera     *Camera
	zoom       float64
	hovered    valueobjects.NodeID
	hasHover   bool
	pulse      float64
	depthAware bool
	pathView   bool
	thumbs     ThumbnailSource
}

func (f *frame) isHovered(id valueobjects.NodeID) bool {
	return f.hasHover && f.hovered.Equals(id)
}

// NodeRadius is the graph-space radius of a plain node:
// sqrt(connections) scaled and clamped. Far-out LOD lowers the minimum.
func NodeRadius(connections int, cfg *config.DomainConfig, lod layout.LOD, display layout.Display) float64 {
	scale := display.NodeScale
	if scale <= 0 {
		scale = 1
	}
	minScale := lod.MinNodeScale
	if minScale <= 0 {
		minScale = 1
	}
	lo := cfg.NodeMinRadius * minScale
	if lod.Level == layout.LevelLow && cfg.LODNodeMinRadius > 0 {
		lo = math.Min(lo, cfg.LODNodeMinRadius)
	}
	r := math.Sqrt(float64(connections)) * cfg.NodeRadiusScale
	r = math.Max(lo, math.Min(cfg.NodeMaxRadius, r))
	return r * scale
}

// NodeOpacity is the depth falloff in depth-aware views and opaque elsewhere
func NodeOpacity(n aggregates.AnnotatedNode, depthAware bool, maxDepth int) float64 {
	if !depthAware {
		return 1
	}
	return DepthOpacity(n.DepthOr(maxDepth))
}

// nodePainter draws one node in the fixed layer order: pulse, glow, body,
// pin, highlight ring, badge, label
type nodePainter struct{}

func (nodePainter) paint(c Canvas, n aggregates.AnnotatedNode, at valueobjects.Point, f *frame) {
	id := n.ID()
	radius := NodeRadius(n.Connections, f.cfg, f.lod, f.display) * f.zoom
	radius = math.Max(radius, 1)
	if !f.camera.Visible(at, radius*2) {
		return
	}

	alpha := NodeOpacity(n, f.depthAware, f.cfg.MaxDepth)
	selected := f.state.IsSelected(id)
	hovered := f.isHovered(id)
	focused := n.IsFocus || f.state.IsFocus(id)
	base := f.theme.NodeColor(n.Type())

	// (a) focus pulse
	if focused && f.depthAware {
		scale, ringAlpha := PulseRing(f.pulse)
		c.StrokeCircle(at, radius*scale+2, 2, withAlpha(f.theme.Pulse, ringAlpha))
	}

	// (b) selection / hover glow
	switch {
	case selected:
		c.FillCircle(at, radius+6, withAlpha(f.theme.Selection, 0.35))
	case hovered:
		c.FillCircle(at, radius+4, withAlpha(base, 0.3))
	}

	// (c) thumbnail or plain circle
	drewImage := false
	if n.Type() == valueobjects.NodeTypeImage && f.thumbs != nil && f.zoom >= f.cfg.ThumbnailMinZoom {
		if img, ok := f.thumbs.Thumbnail(id); ok {
			c.DrawImage(img, at, radius, alpha)
			drewImage = true
		}
	}
	if !drewImage {
		c.FillCircle(at, radius, withAlpha(base, alpha))
	}

	// (d) pin marker
	if f.state.IsPinned(id) || (n.IsPinned() && !focused) {
		marker := valueobjects.Point{X: at.X - radius*0.7, Y: at.Y - radius*0.7}
		c.FillCircle(marker, math.Max(2, radius*0.3), withAlpha(f.theme.Pin, alpha))
	}

	// (e) search highlight
	if f.state.IsHighlighted(id) {
		c.StrokeCircle(at, radius+3, 2, f.theme.Highlight)
	}

	// (f) connection badge
	if f.cfg.BadgeThreshold > 0 && n.Connections >= f.cfg.BadgeThreshold && f.lod.Level != layout.LevelLow {
		badge := valueobjects.Point{X: at.X + radius*0.8, Y: at.Y - radius*0.8}
		c.FillCircle(badge, 7, withAlpha(f.theme.Badge, alpha))
		c.FillText(strconv.Itoa(n.Connections), valueobjects.Point{X: badge.X, Y: badge.Y + 4}, f.theme.BadgeText, AlignCenter)
	}

	// (g) label
	if showLabel(n, selected, hovered, focused, f) {
		label := truncate(n.Title(), f.cfg.TooltipTitleMaxRune)
		c.FillText(label, valueobjects.Point{X: at.X, Y: at.Y + radius + 12}, withAlpha(f.theme.Label, alpha), AlignCenter)
	}
}

func showLabel(n aggregates.AnnotatedNode, selected, hovered, focused bool, f *frame) bool {
	switch {
	case selected, hovered, focused:
		return true
	case n.IsHub && f.lod.ShowHubLabels:
		return true
	case f.lod.ShowAllLabels && f.display.ShowLabels:
		return true
	default:
		return false
	}
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
