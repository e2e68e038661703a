package render

import (
	"image/color"
	"math"

	"braingraph/domain/core/valueobjects"
)

// Theme is the palette a frame is painted with
type Theme struct {
	Background color.RGBA
	Label      color.RGBA
	Muted      color.RGBA
	Selection  color.RGBA
	Highlight  color.RGBA
	Pulse      color.RGBA
	Pin        color.RGBA
	Badge      color.RGBA
	BadgeText  color.RGBA
	Nodes      map[valueobjects.NodeType]color.RGBA
	Edges      map[valueobjects.EdgeType]color.RGBA
	// Fallback styles unknown node and edge types
	FallbackNode color.RGBA
	FallbackEdge color.RGBA
}

// DarkTheme is the default palette
var DarkTheme = Theme{
	Background: color.RGBA{R: 0x11, G: 0x14, B: 0x1a, A: 0xff},
	Label:      color.RGBA{R: 0xe6, G: 0xe8, B: 0xee, A: 0xff},
	Muted:      color.RGBA{R: 0x8b, G: 0x93, B: 0xa7, A: 0xff},
	Selection:  color.RGBA{R: 0xff, G: 0xd1, B: 0x66, A: 0xff},
	Highlight:  color.RGBA{R: 0x4c, G: 0xc9, B: 0xf0, A: 0xff},
	Pulse:      color.RGBA{R: 0xf7, G: 0x25, B: 0x85, A: 0xff},
	Pin:        color.RGBA{R: 0xff, G: 0x6b, B: 0x6b, A: 0xff},
	Badge:      color.RGBA{R: 0x3a, G: 0x0c, B: 0xa3, A: 0xff},
	BadgeText:  color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	Nodes: map[valueobjects.NodeType]color.RGBA{
		valueobjects.NodeTypeNote:     {R: 0x4e, G: 0x79, B: 0xa7, A: 0xff},
		valueobjects.NodeTypeTag:      {R: 0x59, G: 0xa1, B: 0x4f, A: 0xff},
		valueobjects.NodeTypeImage:    {R: 0xf2, G: 0x8e, B: 0x2b, A: 0xff},
		valueobjects.NodeTypeEntity:   {R: 0xb0, G: 0x7a, B: 0xa1, A: 0xff},
		valueobjects.NodeTypeDocument: {R: 0x76, G: 0xb7, B: 0xb2, A: 0xff},
	},
	Edges: map[valueobjects.EdgeType]color.RGBA{
		valueobjects.EdgeTypeWikilink: {R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff},
		valueobjects.EdgeTypeTag:      {R: 0x59, G: 0xa1, B: 0x4f, A: 0xff},
		valueobjects.EdgeTypeImage:    {R: 0xf2, G: 0x8e, B: 0x2b, A: 0xff},
		valueobjects.EdgeTypeSource:   {R: 0x76, G: 0xb7, B: 0xb2, A: 0xff},
		valueobjects.EdgeTypeSemantic: {R: 0xed, G: 0xc9, B: 0x48, A: 0xff},
		valueobjects.EdgeTypeMentions: {R: 0xb0, G: 0x7a, B: 0xa1, A: 0xff},
		valueobjects.EdgeTypeSession:  {R: 0xff, G: 0x9d, B: 0xa7, A: 0xff},
	},
	FallbackNode: color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff},
	FallbackEdge: color.RGBA{R: 0x4b, G: 0x55, B: 0x63, A: 0xff},
}

// LightTheme is used when the saved theme is "light"
var LightTheme = func() Theme {
	t := DarkTheme
	t.Background = color.RGBA{R: 0xfa, G: 0xfa, B: 0xfb, A: 0xff}
	t.Label = color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	t.Muted = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	return t
}()

// ThemeByName maps a preference value to a palette
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme
	}
	return DarkTheme
}

// NodeColor returns the fill for a node type
func (t Theme) NodeColor(nt valueobjects.NodeType) color.RGBA {
	if c, ok := t.Nodes[nt]; ok {
		return c
	}
	return t.FallbackNode
}

// EdgeColor returns the stroke for an edge type
func (t Theme) EdgeColor(et valueobjects.EdgeType) color.RGBA {
	if c, ok := t.Edges[et]; ok {
		return c
	}
	return t.FallbackEdge
}

// withAlpha returns c with its alpha scaled by a in [0,1]
func withAlpha(c color.RGBA, a float64) color.NRGBA {
	a = math.Max(0, math.Min(1, a))
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(float64(c.A) * a))}
}

// DepthOpacity is the four-step falloff by BFS depth
func DepthOpacity(depth int) float64 {
	switch {
	case depth <= 0:
		return 1
	case depth == 1:
		return 0.75
	case depth == 2:
		return 0.5
	default:
		return 0.3
	}
}
