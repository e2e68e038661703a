package views

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"braingraph/application/ports"
	"braingraph/domain/config"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/events"
	"braingraph/domain/interaction"
	"braingraph/domain/layout"
	"braingraph/domain/specifications"
	pkgerrors "braingraph/pkg/errors"
)

// Animator is the focus pulse loop. It must only run while a node is focused
// in a depth-aware view.
type Animator interface {
	Start()
	Stop()
}

// SessionDeps are the collaborators of a Session
type SessionDeps struct {
	SessionID   string
	Config      *config.DomainConfig
	Source      GraphSource
	Simulation  ports.Simulation
	Presets     *layout.Registry
	Preferences ports.PreferenceStore
	Pulse       Animator
	Router      func(path string)
	Scheduler   interaction.Scheduler
	Clock       func() time.Time
	Logger      *zap.Logger
}

// Frame is everything a paint pass reads
type Frame struct {
	View    interaction.View
	Scene   Scene
	State   interaction.State
	Display layout.Display
}

// Session is one open graph surface. It owns the interaction machine, the
// simulation and the active view, and turns machine events into simulation,
// camera and view changes.
type Session struct {
	id      string
	cfg     *config.DomainConfig
	logger  *zap.Logger
	clock   func() time.Time
	source  GraphSource
	sim     ports.Simulation
	presets *layout.Registry
	prefs   ports.PreferenceStore
	pulse   Animator
	machine *interaction.Machine

	explore *ExploreView
	mapView *MapView
	media   *MediaView
	path    *PathView

	mu          sync.Mutex
	view        interaction.View
	scope       string
	filter      specifications.FilterState
	preset      layout.Preset
	theme       string
	scene       Scene
	dirty       bool
	recenter    *valueobjects.NodeID
	pulsing     bool
	closed      bool
	unsubscribe func()
}

// NewSession wires a session and restores saved preferences
func NewSession(ctx context.Context, deps SessionDeps) (*Session, error) {
	if deps.Source == nil || deps.Simulation == nil {
		return nil, pkgerrors.NewValidationError("session requires a graph source and a simulation")
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	presets := deps.Presets
	if presets == nil {
		presets = layout.NewRegistry()
	}
	id := deps.SessionID
	if id == "" {
		id = uuid.New().String()
	}
	logger = logger.With(zap.String("session_id", id))

	s := &Session{
		id:      id,
		cfg:     cfg,
		logger:  logger,
		clock:   clock,
		source:  deps.Source,
		sim:     deps.Simulation,
		presets: presets,
		prefs:   deps.Preferences,
		pulse:   deps.Pulse,
		explore: NewExploreView(deps.Source, cfg, logger),
		mapView: NewMapView(deps.Source, cfg, logger),
		media:   NewMediaView(deps.Source, cfg, logger),
		path:    NewPathView(deps.Source, cfg, logger),
		view:    interaction.ViewExplore,
		filter:  specifications.DefaultFilterState(cfg),
		preset:  presets.Default(),
		scene:   Scene{View: interaction.ViewExplore, Status: StatusWelcome},
		dirty:   true,
	}

	s.machine = interaction.NewMachine(interaction.MachineDeps{
		SessionID: id,
		Config:    cfg,
		Clock:     clock,
		Scheduler: deps.Scheduler,
		Layout:    deps.Simulation,
		Router:    deps.Router,
		Logger:    logger,
	})
	s.machine.SetDoubleClickOverride(s.handleDoubleClick)
	s.unsubscribe = s.machine.Events().Subscribe(s.handle)

	s.restore(ctx)
	s.sim.SetPhysics(s.preset.Physics)
	return s, nil
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Machine exposes the interaction machine for input handling
func (s *Session) Machine() *interaction.Machine { return s.machine }

// View returns the active view
func (s *Session) View() interaction.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Filter returns the current filter state
func (s *Session) Filter() specifications.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Preset returns the active preset
func (s *Session) Preset() layout.Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preset
}

// Scene returns the last installed scene
func (s *Session) Scene() Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene
}

// Dirty reports whether the scene must be refreshed
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// SwitchView activates view
func (s *Session) SwitchView(view interaction.View) {
	s.mu.Lock()
	if s.view != view {
		s.view = view
		s.dirty = true
	}
	s.mu.Unlock()
	s.syncPulse()
}

// SetScope limits Map and Media to a scope
func (s *Session) SetScope(scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scope = scope
	s.dirty = true
}

// Focus focuses id in the current view
func (s *Session) Focus(id valueobjects.NodeID) {
	s.machine.SetFocus(id)
}

// ExploreFrom switches to Explore seeded with id
func (s *Session) ExploreFrom(id valueobjects.NodeID) {
	s.SwitchView(interaction.ViewExplore)
	s.machine.SetFocus(id)
}

// SetFilter replaces the filter state
func (s *Session) SetFilter(state specifications.FilterState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = state
	s.dirty = true
}

// UpdateFilter applies fn to the filter state
func (s *Session) UpdateFilter(fn func(specifications.FilterState) specifications.FilterState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = fn(s.filter)
	s.dirty = true
}

// SetDepth changes the base neighborhood depth and remembers it
func (s *Session) SetDepth(ctx context.Context, depth int) {
	s.machine.SetBaseDepth(depth)
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
	s.persist(ctx)
}

// SetPreset activates a named preset. The simulation is reheated so the new
// parameters take effect at once.
func (s *Session) SetPreset(ctx context.Context, name string) error {
	s.mu.Lock()
	presets := s.presets
	s.mu.Unlock()
	preset, err := presets.Get(name)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	s.mu.Lock()
	s.preset = preset
	s.mu.Unlock()

	s.sim.SetPhysics(preset.Physics)
	s.sim.Reheat()
	s.persist(ctx)
	s.machine.Events().Publish(events.NewPresetChanged(s.id, string(preset.Name), s.clock()))
	return nil
}

// SetPresets swaps the preset registry. When the active preset changed in the
// new registry its physics are applied and the simulation reheated.
func (s *Session) SetPresets(r *layout.Registry) {
	if r == nil {
		return
	}
	s.mu.Lock()
	s.presets = r
	current := s.preset
	next, err := r.Get(string(current.Name))
	changed := err == nil && next != current
	if changed {
		s.preset = next
	}
	s.mu.Unlock()

	if changed {
		s.sim.SetPhysics(next.Physics)
		s.sim.Reheat()
		s.logger.Info("active preset reloaded", zap.String("preset", string(next.Name)))
	}
}

// Search highlights nodes matching query. Short queries clear the highlight.
func (s *Session) Search(ctx context.Context, query string) ([]entities.Node, error) {
	nodes, err := s.source.Search(ctx, query, s.cfg.SearchLimit)
	if err != nil {
		return nil, err
	}
	ids := make([]valueobjects.NodeID, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID())
	}
	s.machine.SetHighlighted(ids)
	return nodes, nil
}

// Refresh loads the active view and installs its scene into the simulation.
// A superseded refresh leaves the current scene in place.
func (s *Session) Refresh(ctx context.Context) (Scene, error) {
	s.mu.Lock()
	view, scope, filter := s.view, s.scope, s.filter
	s.mu.Unlock()
	st := s.machine.State()

	var (
		scene Scene
		err   error
	)
	switch view {
	case interaction.ViewMap:
		scene, err = s.mapView.Load(ctx, scope, filter)
	case interaction.ViewMedia:
		scene, err = s.media.Load(ctx, scope)
	case interaction.ViewPath:
		scene, err = s.path.Load(ctx, deref(st.PathSourceID), deref(st.PathTargetID), 0)
	default:
		scene, err = s.explore.Load(ctx, ExploreRequest{
			Focus:  deref(st.FocusNodeID),
			Depth:  s.machine.EffectiveDepth(),
			Filter: filter,
		})
	}

	if pkgerrors.IsCancelled(err) {
		return s.Scene(), err
	}
	s.install(scene)
	s.syncPulse()
	return scene, err
}

// Frame returns the current scene positioned by the simulation
func (s *Session) Frame() Frame {
	s.mu.Lock()
	scene, view, display := s.scene, s.view, s.preset.Display
	s.mu.Unlock()

	if scene.Graph != nil {
		scene.Graph = scene.Graph.Positioned(s.sim.Positions())
	}
	return Frame{View: view, Scene: scene, State: s.machine.State(), Display: display}
}

// TakeRecenter returns and clears a pending camera target
func (s *Session) TakeRecenter() (valueobjects.NodeID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recenter == nil {
		return valueobjects.NodeID{}, false
	}
	id := *s.recenter
	s.recenter = nil
	return id, true
}

// Settle ticks the simulation until it cools or maxTicks is reached and
// returns the number of ticks run
func (s *Session) Settle(maxTicks int) int {
	ticks := 0
	for ticks < maxTicks {
		ticks++
		if !s.sim.Tick() {
			break
		}
	}
	return ticks
}

// Step advances the simulation one tick and reports whether it is still active
func (s *Session) Step() bool {
	return s.sim.Tick()
}

// Theme returns the saved theme name
func (s *Session) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetTheme changes and remembers the theme
func (s *Session) SetTheme(ctx context.Context, theme string) {
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	s.persist(ctx)
}

// Close tears the session down: timers, pulse loop and in-flight requests
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubscribe := s.unsubscribe
	pulsing := s.pulsing
	s.pulsing = false
	s.mu.Unlock()

	unsubscribe()
	s.machine.Close()
	if pulsing && s.pulse != nil {
		s.pulse.Stop()
	}
	if c, ok := s.source.(interface{ CancelAll() }); ok {
		c.CancelAll()
	}
}

func (s *Session) install(scene Scene) {
	if scene.Ready() {
		annotated := scene.Graph.Nodes()
		nodes := make([]entities.Node, 0, len(annotated))
		for _, n := range annotated {
			nodes = append(nodes, n.Node)
		}
		edges := scene.Graph.Edges()
		s.sim.SetGraph(nodes, edges)
		s.sim.Reheat()
		s.machine.SetGraph(aggregates.NewGraph(nodes, edges))
	}

	s.mu.Lock()
	s.scene = scene
	s.dirty = false
	s.mu.Unlock()
}

func (s *Session) handle(evt events.DomainEvent) {
	switch e := evt.(type) {
	case events.ReheatRequested:
		s.sim.Reheat()
	case events.RecenterRequested:
		s.mu.Lock()
		id := e.NodeID
		s.recenter = &id
		s.mu.Unlock()
	case events.ViewSwitchRequested:
		if view, ok := interaction.ParseView(e.View); ok {
			s.SwitchView(view)
		}
	case events.FocusChanged:
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		s.syncPulse()
	case events.DepthExpanded:
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
	case events.NavigationRequested:
		s.logger.Info("navigation requested",
			zap.String("node_id", e.NodeID.String()),
			zap.String("path", e.Path),
		)
	case events.PinToggled:
		s.logger.Debug("pin toggled",
			zap.String("node_id", e.NodeID.String()),
			zap.Bool("pinned", e.Pinned),
		)
	}
}

// handleDoubleClick routes Map double-clicks into Explore
func (s *Session) handleDoubleClick(n entities.Node) bool {
	if s.View() != interaction.ViewMap {
		return false
	}
	s.ExploreFrom(n.ID())
	return true
}

func (s *Session) syncPulse() {
	if s.pulse == nil {
		return
	}
	focused := s.machine.State().FocusNodeID != nil

	s.mu.Lock()
	want := focused && s.view == interaction.ViewExplore && !s.closed
	change := want != s.pulsing
	s.pulsing = want
	s.mu.Unlock()

	if !change {
		return
	}
	if want {
		s.pulse.Start()
	} else {
		s.pulse.Stop()
	}
}

func (s *Session) restore(ctx context.Context) {
	if s.prefs == nil {
		return
	}
	prefs, err := s.prefs.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load preferences", zap.Error(err))
		return
	}
	if prefs.LastDepth > 0 {
		s.machine.SetBaseDepth(prefs.LastDepth)
	}
	if prefs.Preset != "" {
		if p, err := s.presets.Get(prefs.Preset); err == nil {
			s.preset = p
		} else {
			s.logger.Warn("saved preset not found", zap.String("preset", prefs.Preset))
		}
	}
	s.theme = prefs.Theme
}

func (s *Session) persist(ctx context.Context) {
	if s.prefs == nil {
		return
	}
	depth := s.machine.BaseDepth()
	s.mu.Lock()
	prefs := ports.Preferences{
		LastDepth: depth,
		Preset:    string(s.preset.Name),
		Theme:     s.theme,
	}
	s.mu.Unlock()
	if err := s.prefs.Save(ctx, prefs); err != nil {
		s.logger.Warn("failed to save preferences", zap.Error(err))
	}
}

func deref(id *valueobjects.NodeID) valueobjects.NodeID {
	if id == nil {
		return valueobjects.NodeID{}
	}
	return *id
}
