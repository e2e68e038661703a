package views

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"braingraph/application/ports"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/interaction"
	"braingraph/domain/layout"
	"braingraph/infrastructure/physics"
	pkgerrors "braingraph/pkg/errors"
)

type fakeTimer struct {
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) interaction.Timer {
	t := &fakeTimer{fn: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) RunPending() {
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			t.fn()
		}
	}
}

type fakePulse struct {
	mu      sync.Mutex
	running bool
	starts  int
	stops   int
}

func (p *fakePulse) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = true
	p.starts++
}

func (p *fakePulse) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	p.stops++
}

func (p *fakePulse) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

type memoryPrefs struct {
	mu    sync.Mutex
	prefs ports.Preferences
	saves int
}

func (m *memoryPrefs) Load(ctx context.Context) (ports.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, nil
}

func (m *memoryPrefs) Save(ctx context.Context, prefs ports.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = prefs
	m.saves++
	return nil
}

func (m *memoryPrefs) Saved() ports.Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs
}

type sessionHarness struct {
	session   *Session
	source    *MockGraphSource
	sim       *physics.Simulation
	pulse     *fakePulse
	prefs     *memoryPrefs
	scheduler *fakeScheduler
	routed    []string
}

func newSessionHarness(t *testing.T, saved ports.Preferences) *sessionHarness {
	t.Helper()
	balanced, ok := layout.Builtin(layout.PresetBalanced)
	require.True(t, ok)

	h := &sessionHarness{
		source:    new(MockGraphSource),
		sim:       physics.NewSimulation(balanced.Physics),
		pulse:     &fakePulse{},
		prefs:     &memoryPrefs{prefs: saved},
		scheduler: &fakeScheduler{},
	}
	s, err := NewSession(context.Background(), SessionDeps{
		SessionID:   "session-1",
		Source:      h.source,
		Simulation:  h.sim,
		Preferences: h.prefs,
		Pulse:       h.pulse,
		Router:      func(path string) { h.routed = append(h.routed, path) },
		Scheduler:   h.scheduler,
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	h.session = s
	t.Cleanup(s.Close)
	return h
}

func TestNewSession_RequiresSourceAndSimulation(t *testing.T) {
	_, err := NewSession(context.Background(), SessionDeps{})

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSession_InitialState(t *testing.T) {
	h := newSessionHarness(t, ports.Preferences{})

	assert.Equal(t, "session-1", h.session.ID())
	assert.Equal(t, interaction.ViewExplore, h.session.View())
	assert.Equal(t, StatusWelcome, h.session.Scene().Status)
	assert.Equal(t, layout.PresetBalanced, h.session.Preset().Name)
	assert.True(t, h.session.Dirty())
	assert.False(t, h.pulse.Running())
}

func TestSession_RefreshInstallsExploreScene(t *testing.T) {
	// Arrange
	h := newSessionHarness(t, ports.Preferences{})
	h.source.On("LocalNeighborhood", mock.Anything, "note-1", 2, mock.Anything, 0.0).Return(scenarioGraph(), nil)

	// Act
	h.session.Focus(id("note-1"))
	scene, err := h.session.Refresh(context.Background())
	h.session.Settle(50)

	// Assert
	require.NoError(t, err)
	require.True(t, scene.Ready())
	assert.False(t, h.session.Dirty())
	assert.True(t, h.pulse.Running())
	assert.Equal(t, []string{"note-1", "note-2", "tag-5"}, h.sim.IDs())

	frame := h.session.Frame()
	focus, ok := frame.Scene.Graph.Node(id("note-1"))
	require.True(t, ok)
	pos, ok := focus.Position()
	require.True(t, ok)
	assert.Equal(t, valueobjects.Origin, pos)
	assert.Equal(t, "note-1", frame.State.FocusNodeID.String())
}

func TestSession_FocusSchedulesRecenter(t *testing.T) {
	h := newSessionHarness(t, ports.Preferences{})

	h.session.Focus(id("note-1"))
	_, pending := h.session.TakeRecenter()
	h.scheduler.RunPending()
	target, ok := h.session.TakeRecenter()
	_, again := h.session.TakeRecenter()

	assert.False(t, pending)
	require.True(t, ok)
	assert.Equal(t, "note-1", target.String())
	assert.False(t, again)
}

func TestSession_MapDoubleClickOpensExplore(t *testing.T) {
	// Arrange
	h := newSessionHarness(t, ports.Preferences{})
	h.session.SwitchView(interaction.ViewMap)
	require.False(t, h.pulse.Running())

	// Act
	h.session.Machine().HandleNodeDoubleClick(entities.MustNode("note-7", "Seven"))

	// Assert
	assert.Equal(t, interaction.ViewExplore, h.session.View())
	assert.Equal(t, "note-7", h.session.Machine().State().FocusNodeID.String())
	assert.True(t, h.pulse.Running())
	assert.Empty(t, h.routed)
}

func TestSession_ExploreDoubleClickRoutesToNativeView(t *testing.T) {
	h := newSessionHarness(t, ports.Preferences{})

	h.session.Machine().HandleNodeDoubleClick(entities.MustNode("note-7", "Seven"))

	assert.Equal(t, []string{"/notes/7"}, h.routed)
	assert.Equal(t, interaction.ViewExplore, h.session.View())
}

func TestSession_PulseOnlyRunsInDepthAwareView(t *testing.T) {
	h := newSessionHarness(t, ports.Preferences{})
	h.session.Focus(id("note-1"))
	require.True(t, h.pulse.Running())

	h.session.SwitchView(interaction.ViewMedia)
	assert.False(t, h.pulse.Running())

	h.session.SwitchView(interaction.ViewExplore)
	assert.True(t, h.pulse.Running())
}

func TestSession_SetPathSourceSwitchesToPathView(t *testing.T) {
	h := newSessionHarness(t, ports.Preferences{})

	h.session.Machine().SetPathSource(id("note-1"))
	scene, err := h.session.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, interaction.ViewPath, h.session.View())
	assert.Equal(t, StatusWelcome, scene.Status)
	h.source.AssertNotCalled(t, "Path", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_SetPresetReheatsAndPersists(t *testing.T) {
	// Arrange
	h := newSessionHarness(t, ports.Preferences{})
	h.source.On("LocalNeighborhood", mock.Anything, "note-1", 2, mock.Anything, 0.0).Return(scenarioGraph(), nil)
	h.session.Focus(id("note-1"))
	_, err := h.session.Refresh(context.Background())
	require.NoError(t, err)
	h.session.Settle(20)
	require.Less(t, h.sim.Alpha(), 1.0)

	// Act
	err = h.session.SetPreset(context.Background(), "Tight")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1.0, h.sim.Alpha())
	assert.Equal(t, layout.PresetTight, h.session.Preset().Name)
	assert.Equal(t, "tight", h.prefs.Saved().Preset)
}

func TestSession_SetPresetUnknown(t *testing.T) {
	h := newSessionHarness(t, ports.Preferences{})

	err := h.session.SetPreset(context.Background(), "galaxy")

	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, layout.PresetBalanced, h.session.Preset().Name)
}

func TestSession_RestoresAndPersistsPreferences(t *testing.T) {
	h := newSessionHarness(t, ports.Preferences{LastDepth: 3, Preset: "spread", Theme: "dark"})

	assert.Equal(t, 3, h.session.Machine().BaseDepth())
	assert.Equal(t, layout.PresetSpread, h.session.Preset().Name)

	h.session.SetDepth(context.Background(), 1)

	saved := h.prefs.Saved()
	assert.Equal(t, 1, saved.LastDepth)
	assert.Equal(t, "spread", saved.Preset)
	assert.Equal(t, "dark", saved.Theme)
}

func TestSession_SearchHighlights(t *testing.T) {
	h := newSessionHarness(t, ports.Preferences{})
	h.source.On("Search", mock.Anything, "go", 20).Return([]entities.Node{entities.MustNode("note-2", "Go")}, nil)

	nodes, err := h.session.Search(context.Background(), "go")

	require.NoError(t, err)
	assert.Len(t, nodes, 1)
	assert.True(t, h.session.Machine().State().IsHighlighted(id("note-2")))
}

func TestSession_CancelledRefreshKeepsScene(t *testing.T) {
	// Arrange
	h := newSessionHarness(t, ports.Preferences{})
	h.source.On("LocalNeighborhood", mock.Anything, "note-1", 2, mock.Anything, 0.0).Return(scenarioGraph(), nil)
	h.source.On("LocalNeighborhood", mock.Anything, "note-2", 2, mock.Anything, 0.0).
		Return(nil, pkgerrors.NewCancelledError("explore"))
	h.session.Focus(id("note-1"))
	first, err := h.session.Refresh(context.Background())
	require.NoError(t, err)

	// Act
	h.session.Focus(id("note-2"))
	scene, err := h.session.Refresh(context.Background())

	// Assert
	assert.True(t, pkgerrors.IsCancelled(err))
	assert.Equal(t, first.Focus, scene.Focus)
	assert.True(t, h.session.Dirty())
}

func TestSession_CloseStopsPulse(t *testing.T) {
	h := newSessionHarness(t, ports.Preferences{})
	h.session.Focus(id("note-1"))
	require.True(t, h.pulse.Running())

	h.session.Close()
	h.session.Close()

	assert.False(t, h.pulse.Running())
	assert.Equal(t, 1, h.pulse.stops)

	h.session.SwitchView(interaction.ViewExplore)
	assert.False(t, h.pulse.Running())
}

func TestSession_SetPresetsReappliesActivePreset(t *testing.T) {
	h := newSessionHarness(t, ports.Preferences{})
	h.session.Settle(5)
	balanced := h.session.Preset()
	balanced.Physics.LinkDistance = 300

	h.session.SetPresets(layout.NewRegistry().Merge(balanced))

	assert.Equal(t, 300.0, h.session.Preset().Physics.LinkDistance)
	assert.Equal(t, 1.0, h.sim.Alpha())
}
