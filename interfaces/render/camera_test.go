package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"braingraph/domain/core/valueobjects"
)

func TestCamera_ProjectionRoundTrip(t *testing.T) {
	cam := NewCamera(800, 600)
	cam.CenterOn(valueobjects.Point{X: 50, Y: -20})
	cam.SetZoom(2)

	s := cam.ToScreen(valueobjects.Point{X: 60, Y: -20})
	back := cam.ToGraph(s)

	assert.Equal(t, valueobjects.Point{X: 420, Y: 300}, s)
	assert.InDelta(t, 60, back.X, 1e-9)
	assert.InDelta(t, -20, back.Y, 1e-9)
}

func TestCamera_ZoomAtKeepsAnchorFixed(t *testing.T) {
	cam := NewCamera(400, 400)
	anchor := valueobjects.Point{X: 300, Y: 100}
	before := cam.ToGraph(anchor)

	cam.ZoomAt(2.5, anchor)

	after := cam.ToGraph(anchor)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
	assert.Equal(t, 2.5, cam.Zoom())
}

func TestCamera_ZoomIsClamped(t *testing.T) {
	cam := NewCamera(400, 400)

	cam.SetZoom(100)
	assert.Equal(t, MaxZoom, cam.Zoom())

	cam.ZoomAt(0.0001, valueobjects.Point{})
	assert.Equal(t, MinZoom, cam.Zoom())
}

func TestCamera_PanMovesContentWithPointer(t *testing.T) {
	cam := NewCamera(400, 400)
	cam.SetZoom(2)
	p := valueobjects.Point{X: 10, Y: 10}
	before := cam.ToScreen(p)

	cam.Pan(30, -10)

	after := cam.ToScreen(p)
	assert.InDelta(t, before.X+30, after.X, 1e-9)
	assert.InDelta(t, before.Y-10, after.Y, 1e-9)
}

func TestCamera_FitFramesBounds(t *testing.T) {
	cam := NewCamera(500, 300)

	cam.Fit(valueobjects.Point{X: -100, Y: -50}, valueobjects.Point{X: 100, Y: 50}, 50)

	assert.Equal(t, 2.0, cam.Zoom())
	assert.Equal(t, valueobjects.Point{}, cam.Center())
	assert.True(t, cam.Visible(cam.ToScreen(valueobjects.Point{X: 100, Y: 50}), 0))
	assert.False(t, cam.Visible(cam.ToScreen(valueobjects.Point{X: 400, Y: 0}), 5))
}
