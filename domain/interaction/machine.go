package interaction

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"braingraph/domain/config"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/events"
)

// ContextMenu is an open right-click menu anchored at screen coordinates
type ContextMenu struct {
	X      float64
	Y      float64
	NodeID valueobjects.NodeID
}

// ContextAction is an entry of the node context menu
type ContextAction string

const (
	ActionFocus    ContextAction = "focus"
	ActionPin      ContextAction = "pin"
	ActionExpand   ContextAction = "expand"
	ActionPathFrom ContextAction = "path_from"
	ActionPathTo   ContextAction = "path_to"
	ActionOpen     ContextAction = "open"
)

// Keys handled by HandleKey
const (
	KeyEscape    = "Escape"
	KeyBackspace = "Backspace"
	KeyPin       = "p"
	KeyExpand    = "+"
)

// State is a copy of the interaction state at one instant
type State struct {
	SelectedNode       *valueobjects.NodeID
	SelectedEdge       *entities.Edge
	FocusNodeID        *valueobjects.NodeID
	PinnedNodeIDs      map[string]struct{}
	ExpandedDepth      int
	ContextMenu        *ContextMenu
	PathSourceID       *valueobjects.NodeID
	PathTargetID       *valueobjects.NodeID
	HighlightedNodeIDs map[string]struct{}
	EditBreakdown      map[valueobjects.EdgeType]int
	CanGoBack          bool
	CanGoForward       bool
}

// IsPinned reports whether id is user-pinned
func (s State) IsPinned(id valueobjects.NodeID) bool {
	_, ok := s.PinnedNodeIDs[id.String()]
	return ok
}

// IsHighlighted reports whether id is in the search highlight set
func (s State) IsHighlighted(id valueobjects.NodeID) bool {
	_, ok := s.HighlightedNodeIDs[id.String()]
	return ok
}

// IsSelected reports whether id is the selected node
func (s State) IsSelected(id valueobjects.NodeID) bool {
	return s.SelectedNode != nil && s.SelectedNode.Equals(id)
}

// IsFocus reports whether id is the focus node
func (s State) IsFocus(id valueobjects.NodeID) bool {
	return s.FocusNodeID != nil && s.FocusNodeID.Equals(id)
}

// MachineDeps are the collaborators of a Machine
type MachineDeps struct {
	SessionID  string
	Config     *config.DomainConfig
	Clock      func() time.Time
	Scheduler  Scheduler
	Layout     LayoutPort
	Router     func(path string)
	Dispatcher *events.Dispatcher
	Logger     *zap.Logger
}

// Machine owns selection, focus, pins, navigation history, the context menu
// and the path-finder endpoints for one graph session.
type Machine struct {
	mu sync.Mutex

	sessionID  string
	cfg        *config.DomainConfig
	clock      func() time.Time
	scheduler  Scheduler
	layout     LayoutPort
	router     func(path string)
	dispatcher *events.Dispatcher
	logger     *zap.Logger

	// view-specific double-click handling; returns true when it consumed the click
	doubleClickOverride func(entities.Node) bool

	graph     *aggregates.Graph
	baseDepth int

	selectedNode *valueobjects.NodeID
	selectedEdge *entities.Edge
	focus        *valueobjects.NodeID
	pinned       map[string]struct{}
	expanded     int
	menu         *ContextMenu
	pathSource   *valueobjects.NodeID
	pathTarget   *valueobjects.NodeID
	highlighted  map[string]struct{}
	breakdown    map[valueobjects.EdgeType]int
	history      *History

	lastClickID valueobjects.NodeID
	lastClickAt time.Time

	recenter Timer
}

// NewMachine creates a machine in its initial state
func NewMachine(deps MachineDeps) *Machine {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	scheduler := deps.Scheduler
	if scheduler == nil {
		scheduler = RealScheduler{}
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewDispatcher()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Machine{
		sessionID:   deps.SessionID,
		cfg:         cfg,
		clock:       clock,
		scheduler:   scheduler,
		layout:      deps.Layout,
		router:      deps.Router,
		dispatcher:  dispatcher,
		logger:      logger,
		baseDepth:   cfg.DefaultDepth,
		pinned:      make(map[string]struct{}),
		highlighted: make(map[string]struct{}),
		breakdown:   make(map[valueobjects.EdgeType]int),
		history:     NewHistory(0),
	}
}

// Events returns the dispatcher side effects are published on
func (m *Machine) Events() *events.Dispatcher {
	return m.dispatcher
}

// SetLayout attaches the physics integrator
func (m *Machine) SetLayout(layout LayoutPort) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layout = layout
}

// SetDoubleClickOverride installs a view-specific double-click handler
func (m *Machine) SetDoubleClickOverride(fn func(entities.Node) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doubleClickOverride = fn
}

// SetGraph tells the machine which snapshot is on screen. The edit breakdown
// of the selected node is recomputed against it.
func (m *Machine) SetGraph(g *aggregates.Graph) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.graph = g
	m.recomputeBreakdown()
}

// SetBaseDepth sets the configured neighborhood depth expansions build on
func (m *Machine) SetBaseDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if depth < 1 {
		depth = 1
	}
	if depth > m.cfg.MaxDepth {
		depth = m.cfg.MaxDepth
	}
	m.baseDepth = depth
	if m.baseDepth+m.expanded > m.cfg.MaxDepth {
		m.expanded = m.cfg.MaxDepth - m.baseDepth
	}
}

// BaseDepth is the configured depth without expansion
func (m *Machine) BaseDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseDepth
}

// EffectiveDepth is the base depth plus any expansion
func (m *Machine) EffectiveDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseDepth + m.expanded
}

// State returns a copy of the current state
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := State{
		SelectedNode:       copyID(m.selectedNode),
		FocusNodeID:        copyID(m.focus),
		PinnedNodeIDs:      copySet(m.pinned),
		ExpandedDepth:      m.expanded,
		PathSourceID:       copyID(m.pathSource),
		PathTargetID:       copyID(m.pathTarget),
		HighlightedNodeIDs: copySet(m.highlighted),
		EditBreakdown:      make(map[valueobjects.EdgeType]int, len(m.breakdown)),
		CanGoBack:          m.history.CanGoBack(),
		CanGoForward:       m.history.CanGoForward(),
	}
	if m.selectedEdge != nil {
		e := *m.selectedEdge
		s.SelectedEdge = &e
	}
	if m.menu != nil {
		menu := *m.menu
		s.ContextMenu = &menu
	}
	for k, v := range m.breakdown {
		s.EditBreakdown[k] = v
	}
	return s
}

// HandleNodeClick selects n. A second click on the same node inside the
// double-click window is dispatched as a double-click instead.
func (m *Machine) HandleNodeClick(n entities.Node) {
	m.mu.Lock()
	now := m.clock()
	if !m.lastClickID.IsZero() && m.lastClickID.Equals(n.ID()) && now.Sub(m.lastClickAt) <= m.cfg.DoubleClickWindow {
		m.lastClickID = valueobjects.NodeID{}
		m.lastClickAt = time.Time{}
		m.mu.Unlock()
		m.HandleNodeDoubleClick(n)
		return
	}
	m.lastClickID = n.ID()
	m.lastClickAt = now

	id := n.ID()
	m.selectedNode = &id
	m.selectedEdge = nil
	m.menu = nil
	m.recomputeBreakdown()
	m.mu.Unlock()
}

// HandleNodeDoubleClick routes to the node's native view. Graph state is untouched.
func (m *Machine) HandleNodeDoubleClick(n entities.Node) {
	m.mu.Lock()
	override := m.doubleClickOverride
	router := m.router
	m.mu.Unlock()

	if override != nil && override(n) {
		return
	}

	path, ok := NativePath(n)
	if !ok {
		m.logger.Debug("node has no native view", zap.String("node_id", n.ID().String()))
		return
	}
	if router != nil {
		router(path)
	}
	m.dispatcher.Publish(events.NewNavigationRequested(m.sessionID, n.ID(), path, m.clock()))
}

// HandleEdgeClick selects an edge and clears node selection
func (m *Machine) HandleEdgeClick(e entities.Edge) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selectedEdge = &e
	m.selectedNode = nil
	m.menu = nil
	m.recomputeBreakdown()
}

// HandleBackgroundClick closes the context menu and clears selection
func (m *Machine) HandleBackgroundClick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.menu != nil {
		m.menu = nil
		return
	}
	m.selectedNode = nil
	m.selectedEdge = nil
	m.lastClickID = valueobjects.NodeID{}
	m.recomputeBreakdown()
}

// HandleKey applies a keyboard shortcut. It reports whether the key was handled.
func (m *Machine) HandleKey(key string) bool {
	switch key {
	case KeyEscape:
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.menu != nil {
			m.menu = nil
			return true
		}
		if m.selectedNode != nil || m.selectedEdge != nil {
			m.selectedNode = nil
			m.selectedEdge = nil
			m.recomputeBreakdown()
			return true
		}
		return false
	case KeyBackspace:
		return m.NavigateBack()
	case KeyPin:
		return m.PinSelected()
	case KeyExpand:
		return m.ExpandSelected()
	default:
		return false
	}
}

// SetFocus makes id the focus node and records it in history
func (m *Machine) SetFocus(id valueobjects.NodeID) {
	if id.IsZero() {
		return
	}
	m.mu.Lock()
	if m.focus != nil && m.focus.Equals(id) {
		m.mu.Unlock()
		return
	}
	m.history.Push(id)
	evts := m.applyFocus(id, false)
	m.mu.Unlock()

	m.dispatcher.Publish(evts...)
}

// SetFocusNodeID is an alias of SetFocus taking the wire id
func (m *Machine) SetFocusNodeID(id string) {
	m.SetFocus(valueobjects.ParseNodeID(id))
}

// NavigateBack focuses the previous history entry. No-op at the start.
func (m *Machine) NavigateBack() bool {
	m.mu.Lock()
	id, ok := m.history.Back()
	if !ok {
		m.mu.Unlock()
		return false
	}
	evts := m.applyFocus(id, true)
	m.mu.Unlock()

	m.dispatcher.Publish(evts...)
	return true
}

// NavigateForward focuses the next history entry. No-op at the tail.
func (m *Machine) NavigateForward() bool {
	m.mu.Lock()
	id, ok := m.history.Forward()
	if !ok {
		m.mu.Unlock()
		return false
	}
	evts := m.applyFocus(id, true)
	m.mu.Unlock()

	m.dispatcher.Publish(evts...)
	return true
}

// applyFocus must be called with m.mu held
func (m *Machine) applyFocus(id valueobjects.NodeID, fromHistory bool) []events.DomainEvent {
	now := m.clock()
	var previous valueobjects.NodeID
	if m.focus != nil {
		previous = *m.focus
		if _, userPinned := m.pinned[previous.String()]; !userPinned && m.layout != nil {
			m.layout.Release(previous)
		}
	}

	m.focus = &id
	m.expanded = 0
	m.menu = nil

	if m.recenter != nil {
		m.recenter.Stop()
	}
	target := id
	m.recenter = m.scheduler.AfterFunc(m.cfg.RecenterDelay, func() {
		m.fireRecenter(target)
	})

	m.logger.Debug("focus changed",
		zap.String("session_id", m.sessionID),
		zap.String("previous", previous.String()),
		zap.String("current", id.String()),
		zap.Bool("from_history", fromHistory),
	)

	return []events.DomainEvent{
		events.NewFocusChanged(m.sessionID, previous, id, fromHistory, now),
		events.NewReheatRequested(m.sessionID, "focus", now),
	}
}

func (m *Machine) fireRecenter(id valueobjects.NodeID) {
	m.mu.Lock()
	current := m.focus != nil && m.focus.Equals(id)
	m.recenter = nil
	m.mu.Unlock()

	if !current {
		return
	}
	m.dispatcher.Publish(events.NewRecenterRequested(m.sessionID, id, m.clock()))
}

// ExpandSelected widens the neighborhood by one hop, up to base+1 and never
// beyond the absolute maximum. Focus is unchanged.
func (m *Machine) ExpandSelected() bool {
	m.mu.Lock()
	if m.focus == nil {
		m.mu.Unlock()
		return false
	}
	limit := 1
	if m.baseDepth+limit > m.cfg.MaxDepth {
		limit = m.cfg.MaxDepth - m.baseDepth
	}
	if m.expanded >= limit {
		m.mu.Unlock()
		return false
	}
	m.expanded++
	depth := m.baseDepth + m.expanded
	m.menu = nil
	m.mu.Unlock()

	m.dispatcher.Publish(events.NewDepthExpanded(m.sessionID, depth, m.clock()))
	return true
}

// TogglePin pins id at its current simulated position, or releases it
func (m *Machine) TogglePin(id valueobjects.NodeID) bool {
	m.mu.Lock()
	key := id.String()
	now := m.clock()

	if _, ok := m.pinned[key]; ok {
		delete(m.pinned, key)
		isFocus := m.focus != nil && m.focus.Equals(id)
		if m.layout != nil && !isFocus {
			m.layout.Release(id)
		}
		m.mu.Unlock()
		m.dispatcher.Publish(events.NewPinToggled(m.sessionID, id, false, valueobjects.Point{}, now))
		return true
	}

	if m.layout == nil {
		m.mu.Unlock()
		return false
	}
	pos, ok := m.layout.PositionOf(id)
	if !ok {
		m.mu.Unlock()
		return false
	}
	m.layout.Fix(id, pos)
	m.pinned[key] = struct{}{}
	m.mu.Unlock()

	m.dispatcher.Publish(events.NewPinToggled(m.sessionID, id, true, pos, now))
	return true
}

// PinSelected toggles the pin of the selected node
func (m *Machine) PinSelected() bool {
	m.mu.Lock()
	sel := copyID(m.selectedNode)
	m.mu.Unlock()
	if sel == nil {
		return false
	}
	return m.TogglePin(*sel)
}

// SetContextMenu opens a menu, or closes it when menu is nil
func (m *Machine) SetContextMenu(menu *ContextMenu) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if menu == nil {
		m.menu = nil
		return
	}
	c := *menu
	m.menu = &c
}

// RunContextAction performs action on the menu's node and closes the menu
func (m *Machine) RunContextAction(action ContextAction) bool {
	m.mu.Lock()
	menu := m.menu
	m.menu = nil
	var node entities.Node
	var haveNode bool
	if menu != nil && m.graph != nil {
		node, haveNode = m.graph.Node(menu.NodeID)
	}
	m.mu.Unlock()

	if menu == nil {
		return false
	}

	switch action {
	case ActionFocus:
		m.SetFocus(menu.NodeID)
	case ActionPin:
		return m.TogglePin(menu.NodeID)
	case ActionExpand:
		return m.ExpandSelected()
	case ActionPathFrom:
		m.SetPathSource(menu.NodeID)
	case ActionPathTo:
		m.SetPathTarget(menu.NodeID)
	case ActionOpen:
		if !haveNode {
			node = entities.MustNode(menu.NodeID.String(), "")
		}
		m.HandleNodeDoubleClick(node)
	default:
		return false
	}
	return true
}

// SetPathSource seeds the path finder's "from" endpoint and asks for the path view
func (m *Machine) SetPathSource(id valueobjects.NodeID) {
	m.mu.Lock()
	m.pathSource = &id
	m.mu.Unlock()
	m.dispatcher.Publish(events.NewViewSwitchRequested(m.sessionID, string(ViewPath), id, m.clock()))
}

// SetPathTarget seeds the path finder's "to" endpoint
func (m *Machine) SetPathTarget(id valueobjects.NodeID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pathTarget = &id
}

// SetHighlighted replaces the search highlight set
func (m *Machine) SetHighlighted(ids []valueobjects.NodeID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.highlighted = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m.highlighted[id.String()] = struct{}{}
	}
}

// Reset returns the machine to its initial state. Used on logout or when the
// user leaves the graph.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recenter != nil {
		m.recenter.Stop()
		m.recenter = nil
	}
	if m.layout != nil {
		for key := range m.pinned {
			m.layout.Release(valueobjects.ParseNodeID(key))
		}
		if m.focus != nil {
			m.layout.Release(*m.focus)
		}
	}
	m.selectedNode = nil
	m.selectedEdge = nil
	m.focus = nil
	m.pinned = make(map[string]struct{})
	m.expanded = 0
	m.menu = nil
	m.pathSource = nil
	m.pathTarget = nil
	m.highlighted = make(map[string]struct{})
	m.breakdown = make(map[valueobjects.EdgeType]int)
	m.history.Clear()
	m.lastClickID = valueobjects.NodeID{}
	m.lastClickAt = time.Time{}
}

// Close cancels pending timers
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recenter != nil {
		m.recenter.Stop()
		m.recenter = nil
	}
}

func (m *Machine) recomputeBreakdown() {
	m.breakdown = make(map[valueobjects.EdgeType]int)
	if m.selectedNode == nil || m.graph == nil {
		return
	}
	m.breakdown = m.graph.EdgeTypeCounts(*m.selectedNode)
}

func copyID(id *valueobjects.NodeID) *valueobjects.NodeID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func copySet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}
