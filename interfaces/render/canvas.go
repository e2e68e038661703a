// Package render paints a graph frame onto a Canvas. It owns the per-frame
// pipeline (LOD, depth falloff, node and edge painters, tooltips), the camera
// projection, hover tracking and the focus pulse clock.
package render

import (
	"image"
	"image/color"

	"braingraph/domain/core/valueobjects"
)

// Align is the horizontal anchor of a text run
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Canvas is a 2D drawing surface in screen pixels. Implementations need not
// be safe for concurrent use; a frame is painted by one goroutine.
type Canvas interface {
	Size() (width, height int)
	Clear(c color.Color)
	FillRect(min, max valueobjects.Point, c color.Color)
	FillCircle(center valueobjects.Point, radius float64, c color.Color)
	StrokeCircle(center valueobjects.Point, radius, width float64, c color.Color)
	StrokeLine(from, to valueobjects.Point, width float64, c color.Color)
	StrokeQuad(from, ctrl, to valueobjects.Point, width float64, c color.Color)
	// DrawImage draws img scaled into the circle at center, at opacity alpha
	DrawImage(img image.Image, center valueobjects.Point, radius, alpha float64)
	FillText(text string, at valueobjects.Point, c color.Color, align Align)
	TextWidth(text string) float64
}
