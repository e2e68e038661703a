package render

import (
	"math"
	"sync"

	"braingraph/domain/core/valueobjects"
)

const (
	MinZoom = 0.05
	MaxZoom = 8.0
)

// Camera maps graph space to screen space. The graph point at Center is drawn
// in the middle of the viewport, scaled by Zoom.
type Camera struct {
	mu     sync.RWMutex
	center valueobjects.Point
	zoom   float64
	width  float64
	height float64
}

// NewCamera creates a camera for a viewport, centered on the origin at zoom 1
func NewCamera(width, height int) *Camera {
	return &Camera{zoom: 1, width: float64(width), height: float64(height)}
}

// Resize changes the viewport size
func (c *Camera) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = float64(width), float64(height)
}

// Zoom returns the current scale
func (c *Camera) Zoom() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.zoom
}

// Center returns the graph point in the middle of the viewport
func (c *Camera) Center() valueobjects.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.center
}

// ToScreen projects a graph point into screen pixels
func (c *Camera) ToScreen(p valueobjects.Point) valueobjects.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return valueobjects.Point{
		X: (p.X-c.center.X)*c.zoom + c.width/2,
		Y: (p.Y-c.center.Y)*c.zoom + c.height/2,
	}
}

// ToGraph is the inverse of ToScreen
func (c *Camera) ToGraph(s valueobjects.Point) valueobjects.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return valueobjects.Point{
		X: (s.X-c.width/2)/c.zoom + c.center.X,
		Y: (s.Y-c.height/2)/c.zoom + c.center.Y,
	}
}

// CenterOn moves the camera so p is in the middle of the viewport
func (c *Camera) CenterOn(p valueobjects.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.center = p
}

// Pan shifts the view by a screen-space delta
func (c *Camera) Pan(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.center.X -= dx / c.zoom
	c.center.Y -= dy / c.zoom
}

// ZoomAt scales by factor keeping the graph point under anchor fixed
func (c *Camera) ZoomAt(factor float64, anchor valueobjects.Point) {
	if factor <= 0 {
		return
	}
	before := c.ToGraph(anchor)

	c.mu.Lock()
	c.zoom = clampZoom(c.zoom * factor)
	c.mu.Unlock()

	after := c.ToGraph(anchor)
	c.mu.Lock()
	c.center.X += before.X - after.X
	c.center.Y += before.Y - after.Y
	c.mu.Unlock()
}

// SetZoom sets the scale directly
func (c *Camera) SetZoom(z float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = clampZoom(z)
}

// Fit frames the box [lo,hi] with padding pixels on each side
func (c *Camera) Fit(lo, hi valueobjects.Point, padding float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := math.Max(hi.X-lo.X, 1)
	h := math.Max(hi.Y-lo.Y, 1)
	availW := math.Max(c.width-2*padding, 1)
	availH := math.Max(c.height-2*padding, 1)

	c.zoom = clampZoom(math.Min(availW/w, availH/h))
	c.center = lo.Midpoint(hi)
}

// Visible reports whether a screen-space circle intersects the viewport
func (c *Camera) Visible(s valueobjects.Point, radius float64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return s.X+radius >= 0 && s.Y+radius >= 0 && s.X-radius <= c.width && s.Y-radius <= c.height
}

func clampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}
