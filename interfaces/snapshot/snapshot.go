// Package snapshot renders one view of the graph to a PNG. It builds a
// throwaway session per request on top of the shared query bus, so caching
// and request dedup are shared while slot superseding stays per request.
package snapshot

import (
	"bytes"
	"context"
	"time"

	"go.uber.org/zap"

	"braingraph/application/ports"
	"braingraph/application/queries"
	"braingraph/application/queries/bus"
	"braingraph/application/services"
	"braingraph/application/views"
	"braingraph/domain/config"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/interaction"
	"braingraph/domain/layout"
	"braingraph/infrastructure/physics"
	"braingraph/interfaces/canvas"
	"braingraph/interfaces/render"
	pkgerrors "braingraph/pkg/errors"
	"braingraph/pkg/observability"
	"braingraph/pkg/utils"
)

const (
	DefaultWidth    = 1200
	DefaultHeight   = 800
	DefaultMaxTicks = 300
)

// Request describes one snapshot
type Request struct {
	View   string `json:"view" validate:"required,oneof=explore map media path"`
	NodeID string `json:"node_id" validate:"required_if=View explore"`
	From   string `json:"from" validate:"required_if=View path"`
	To     string `json:"to" validate:"required_if=View path"`
	Depth  int    `json:"depth" validate:"gte=0,lte=3"`
	Scope  string `json:"scope"`
	Preset string `json:"preset"`
	Theme  string `json:"theme" validate:"omitempty,oneof=light dark system"`
	Search string `json:"search"`
	Width  int    `json:"width" validate:"gte=0,lte=4096"`
	Height int    `json:"height" validate:"gte=0,lte=4096"`

	// WaitThumbnails repaints once pending thumbnails have resolved
	WaitThumbnails bool `json:"wait_thumbnails"`
}

// Result is a rendered snapshot
type Result struct {
	PNG   []byte
	Scene views.Scene
	Stats render.Stats
	Ticks int
}

// PresetSource supplies the current preset registry
type PresetSource interface {
	Registry() *layout.Registry
}

// Thumbnails is the thumbnail cache as the snapshot service sees it
type Thumbnails interface {
	render.ThumbnailSource
	Wait()
}

// Deps are the collaborators of a Service
type Deps struct {
	Bus     *bus.QueryBus
	Config  *config.DomainConfig
	Stale   queries.StaleTimes
	Presets PresetSource
	Thumbs  Thumbnails

	// Preferences, when set, supply the default depth, preset and theme.
	// Snapshots never write them back.
	Preferences ports.PreferenceStore

	Renderer *render.Renderer
	Metrics  *observability.Collector
	Logger   *zap.Logger
	MaxTicks int
}

// Service renders snapshots
type Service struct {
	bus      *bus.QueryBus
	cfg      config.DomainConfig
	stale    queries.StaleTimes
	presets  PresetSource
	thumbs   Thumbnails
	prefs    ports.PreferenceStore
	renderer *render.Renderer
	metrics  *observability.Collector
	logger   *zap.Logger
	maxTicks int
}

// NewService creates a snapshot service
func NewService(deps Deps) *Service {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = render.NewRenderer(cfg, deps.Metrics, logger)
	}
	maxTicks := deps.MaxTicks
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicks
	}
	var prefs ports.PreferenceStore
	if deps.Preferences != nil {
		prefs = readOnlyPreferences{deps.Preferences}
	}
	s := &Service{
		bus:      deps.Bus,
		prefs:    prefs,
		cfg:      *cfg,
		stale:    deps.Stale,
		presets:  deps.Presets,
		thumbs:   deps.Thumbs,
		renderer: renderer,
		metrics:  deps.Metrics,
		logger:   logger,
		maxTicks: maxTicks,
	}
	// one-shot renders have no keystrokes to debounce
	s.cfg.SearchDebounce = 0
	return s
}

// Session opens a session for req with its view, focus and options applied
// but not yet loaded. The caller closes it.
func (s *Service) Session(ctx context.Context, req Request) (*views.Session, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	view, _ := interaction.ParseView(req.View)

	var presets *layout.Registry
	if s.presets != nil {
		presets = s.presets.Registry()
	}
	session, err := views.NewSession(ctx, views.SessionDeps{
		Config:      &s.cfg,
		Source:      services.NewGraphDataService(s.bus, &s.cfg, s.stale, s.metrics, s.logger),
		Simulation:  physics.NewSimulation(layout.NewRegistry().Default().Physics),
		Presets:     presets,
		Preferences: s.prefs,
		Scheduler:   interaction.RealScheduler{},
		Logger:      s.logger,
	})
	if err != nil {
		return nil, err
	}

	if req.Preset != "" {
		if err := session.SetPreset(ctx, req.Preset); err != nil {
			session.Close()
			return nil, err
		}
	}
	if req.Theme != "" {
		session.SetTheme(ctx, req.Theme)
	}
	if req.Depth > 0 {
		session.SetDepth(ctx, req.Depth)
	}
	if req.Scope != "" {
		session.SetScope(req.Scope)
	}

	switch view {
	case interaction.ViewPath:
		session.Machine().SetPathTarget(valueobjects.ParseNodeID(req.To))
		session.Machine().SetPathSource(valueobjects.ParseNodeID(req.From))
	case interaction.ViewExplore:
		session.ExploreFrom(valueobjects.ParseNodeID(req.NodeID))
	default:
		session.SwitchView(view)
		if req.NodeID != "" {
			session.Focus(valueobjects.ParseNodeID(req.NodeID))
		}
	}
	return session, nil
}

// Render loads the requested view, settles the layout and paints it
func (s *Service) Render(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	session, err := s.Session(ctx, req)
	if err != nil {
		return nil, err
	}

	width, height := req.Width, req.Height
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	surface := render.NewSurface(render.SurfaceDeps{
		Session:  session,
		Renderer: s.renderer,
		Thumbs:   s.thumbs,
		Width:    width,
		Height:   height,
		Logger:   s.logger,
	})
	defer surface.Close()

	scene, err := session.Refresh(ctx)
	if err != nil && scene.Status != views.StatusError {
		return nil, err
	}
	if scene.Status == views.StatusError && scene.Err != nil {
		return nil, scene.Err
	}
	if req.Search != "" {
		if _, err := session.Search(ctx, req.Search); err != nil {
			return nil, err
		}
	}

	ticks := session.Settle(s.maxTicks)
	surface.ZoomToFit()

	raster := canvas.New(width, height)
	stats := surface.Paint(raster)
	if req.WaitThumbnails && s.thumbs != nil && s.waitThumbnails(ctx) {
		stats = surface.Paint(raster)
	}

	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf); err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode snapshot").WithCause(err)
	}

	s.logger.Debug("snapshot rendered",
		zap.String("session_id", session.ID()),
		zap.String("view", req.View),
		zap.String("status", string(scene.Status)),
		zap.Int("nodes", stats.Nodes),
		zap.Int("ticks", ticks),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Result{PNG: buf.Bytes(), Scene: session.Scene(), Stats: stats, Ticks: ticks}, nil
}

// waitThumbnails blocks until pending loads resolve or ctx ends
func (s *Service) waitThumbnails(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		s.thumbs.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

type readOnlyPreferences struct {
	ports.PreferenceStore
}

func (readOnlyPreferences) Save(context.Context, ports.Preferences) error { return nil }
