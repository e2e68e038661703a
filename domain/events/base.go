package events

import (
	"time"

	"braingraph/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields. The aggregate is the graph session.
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(sessionID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{AggregateID: sessionID, EventType: eventType, Timestamp: timestamp, Version: 1}
}

// Event type names
const (
	TypeFocusChanged        = "graph.focus_changed"
	TypeReheatRequested     = "graph.reheat_requested"
	TypeRecenterRequested   = "graph.recenter_requested"
	TypeNavigationRequested = "graph.navigation_requested"
	TypeViewSwitchRequested = "graph.view_switch_requested"
	TypePinToggled          = "graph.pin_toggled"
	TypeDepthExpanded       = "graph.depth_expanded"
	TypePresetChanged       = "graph.preset_changed"
)

// FocusChanged is raised when the focus node moves. Previous is zero for the first focus.
type FocusChanged struct {
	BaseEvent
	Previous valueobjects.NodeID `json:"previous"`
	Current  valueobjects.NodeID `json:"current"`
	// FromHistory is set when the change came from back/forward navigation
	FromHistory bool `json:"from_history"`
}

// NewFocusChanged creates a FocusChanged event
func NewFocusChanged(sessionID string, previous, current valueobjects.NodeID, fromHistory bool, timestamp time.Time) FocusChanged {
	return FocusChanged{
		BaseEvent:   newBase(sessionID, TypeFocusChanged, timestamp),
		Previous:    previous,
		Current:     current,
		FromHistory: fromHistory,
	}
}

// ReheatRequested asks the physics integrator to reset alpha and velocities
type ReheatRequested struct {
	BaseEvent
	Reason string `json:"reason"`
}

// NewReheatRequested creates a ReheatRequested event
func NewReheatRequested(sessionID, reason string, timestamp time.Time) ReheatRequested {
	return ReheatRequested{BaseEvent: newBase(sessionID, TypeReheatRequested, timestamp), Reason: reason}
}

// RecenterRequested asks the camera to center on a node
type RecenterRequested struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

// NewRecenterRequested creates a RecenterRequested event
func NewRecenterRequested(sessionID string, nodeID valueobjects.NodeID, timestamp time.Time) RecenterRequested {
	return RecenterRequested{BaseEvent: newBase(sessionID, TypeRecenterRequested, timestamp), NodeID: nodeID}
}

// NavigationRequested carries a resolved route for the host router
type NavigationRequested struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
	Path   string              `json:"path"`
}

// NewNavigationRequested creates a NavigationRequested event
func NewNavigationRequested(sessionID string, nodeID valueobjects.NodeID, path string, timestamp time.Time) NavigationRequested {
	return NavigationRequested{
		BaseEvent: newBase(sessionID, TypeNavigationRequested, timestamp),
		NodeID:    nodeID,
		Path:      path,
	}
}

// ViewSwitchRequested asks the host to activate another graph view
type ViewSwitchRequested struct {
	BaseEvent
	View   string              `json:"view"`
	NodeID valueobjects.NodeID `json:"node_id"`
}

// NewViewSwitchRequested creates a ViewSwitchRequested event
func NewViewSwitchRequested(sessionID, view string, nodeID valueobjects.NodeID, timestamp time.Time) ViewSwitchRequested {
	return ViewSwitchRequested{
		BaseEvent: newBase(sessionID, TypeViewSwitchRequested, timestamp),
		View:      view,
		NodeID:    nodeID,
	}
}

// PinToggled is raised when a node is pinned or released
type PinToggled struct {
	BaseEvent
	NodeID   valueobjects.NodeID `json:"node_id"`
	Pinned   bool                `json:"pinned"`
	Position valueobjects.Point  `json:"position"`
}

// NewPinToggled creates a PinToggled event
func NewPinToggled(sessionID string, nodeID valueobjects.NodeID, pinned bool, pos valueobjects.Point, timestamp time.Time) PinToggled {
	return PinToggled{
		BaseEvent: newBase(sessionID, TypePinToggled, timestamp),
		NodeID:    nodeID,
		Pinned:    pinned,
		Position:  pos,
	}
}

// DepthExpanded is raised when the neighborhood query should widen
type DepthExpanded struct {
	BaseEvent
	Depth int `json:"depth"`
}

// NewDepthExpanded creates a DepthExpanded event
func NewDepthExpanded(sessionID string, depth int, timestamp time.Time) DepthExpanded {
	return DepthExpanded{BaseEvent: newBase(sessionID, TypeDepthExpanded, timestamp), Depth: depth}
}

// PresetChanged is raised when the active layout preset changes
type PresetChanged struct {
	BaseEvent
	Preset string `json:"preset"`
}

// NewPresetChanged creates a PresetChanged event
func NewPresetChanged(sessionID, preset string, timestamp time.Time) PresetChanged {
	return PresetChanged{BaseEvent: newBase(sessionID, TypePresetChanged, timestamp), Preset: preset}
}
