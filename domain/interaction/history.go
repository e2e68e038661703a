package interaction

import "braingraph/domain/core/valueobjects"

// History is a browser-like stack of focused node ids with a movable index
type History struct {
	entries []valueobjects.NodeID
	index   int
	limit   int
}

// NewHistory creates an empty history. limit <= 0 means unbounded.
func NewHistory(limit int) *History {
	return &History{index: -1, limit: limit}
}

// Push records id as the new current entry, truncating forward entries.
// Pushing the current entry again is a no-op.
func (h *History) Push(id valueobjects.NodeID) {
	if cur, ok := h.Current(); ok && cur.Equals(id) {
		return
	}
	h.entries = append(h.entries[:h.index+1], id)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	h.index = len(h.entries) - 1
}

// Back moves the index one step back
func (h *History) Back() (valueobjects.NodeID, bool) {
	if !h.CanGoBack() {
		return valueobjects.NodeID{}, false
	}
	h.index--
	return h.entries[h.index], true
}

// Forward moves the index one step forward
func (h *History) Forward() (valueobjects.NodeID, bool) {
	if !h.CanGoForward() {
		return valueobjects.NodeID{}, false
	}
	h.index++
	return h.entries[h.index], true
}

// Current returns the entry at the index
func (h *History) Current() (valueobjects.NodeID, bool) {
	if h.index < 0 {
		return valueobjects.NodeID{}, false
	}
	return h.entries[h.index], true
}

func (h *History) CanGoBack() bool    { return h.index > 0 }
func (h *History) CanGoForward() bool { return h.index >= 0 && h.index < len(h.entries)-1 }

// Len returns the number of entries
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the stack
func (h *History) Entries() []valueobjects.NodeID {
	out := make([]valueobjects.NodeID, len(h.entries))
	copy(out, h.entries)
	return out
}

// Clear empties the stack
func (h *History) Clear() {
	h.entries = nil
	h.index = -1
}
