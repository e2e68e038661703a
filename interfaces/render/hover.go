package render

import (
	"sync"

	"braingraph/domain/core/valueobjects"
)

// HoverTracker holds the node under the pointer. It sits outside the
// interaction state so hovering never triggers a layout or refresh.
type HoverTracker struct {
	mu      sync.RWMutex
	id      valueobjects.NodeID
	has     bool
	pointer valueobjects.Point
}

// NewHoverTracker creates an empty tracker
func NewHoverTracker() *HoverTracker {
	return &HoverTracker{}
}

// Set records the hovered node and pointer position and reports whether the
// hovered node changed
func (h *HoverTracker) Set(id valueobjects.NodeID, pointer valueobjects.Point) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	changed := !h.has || !h.id.Equals(id)
	h.id, h.has, h.pointer = id, true, pointer
	return changed
}

// Clear forgets the hovered node and reports whether one was set
func (h *HoverTracker) Clear() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	was := h.has
	h.id, h.has = valueobjects.NodeID{}, false
	return was
}

// Current returns the hovered node
func (h *HoverTracker) Current() (valueobjects.NodeID, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.id, h.has
}

// Is reports whether id is hovered
func (h *HoverTracker) Is(id valueobjects.NodeID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.has && h.id.Equals(id)
}

// Pointer returns the last pointer position
func (h *HoverTracker) Pointer() valueobjects.Point {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.pointer
}
