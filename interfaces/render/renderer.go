package render

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"braingraph/application/views"
	"braingraph/domain/config"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/interaction"
	"braingraph/domain/layout"
	"braingraph/pkg/observability"
)

// PhaseSource reports the focus pulse phase in [0,1)
type PhaseSource interface {
	Phase() float64
}

// Viewport is the per-surface input to a paint pass that does not live in
// the session: camera, hover, pulse phase and thumbnails
type Viewport struct {
	Camera *Camera
	Hover  *HoverTracker
	Pulse  PhaseSource
	Thumbs ThumbnailSource
	Theme  Theme
}

// Stats describes one paint pass
type Stats struct {
	LOD          layout.LOD
	Nodes        int
	Edges        int
	SkippedEdges int
	Failures     int
	Elapsed      time.Duration
}

// Renderer runs the paint pipeline
type Renderer struct {
	cfg     *config.DomainConfig
	logger  *zap.Logger
	metrics *observability.Collector
	clock   func() time.Time
	nodes   nodePainter
	edges   edgePainter
}

// NewRenderer creates a renderer. metrics may be nil.
func NewRenderer(cfg *config.DomainConfig, metrics *observability.Collector, logger *zap.Logger) *Renderer {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{cfg: cfg, logger: logger, metrics: metrics, clock: time.Now}
}

// Paint draws fr onto c. It never panics: a failing node or edge is logged,
// counted and skipped.
func (r *Renderer) Paint(c Canvas, fr views.Frame, vp Viewport) Stats {
	start := r.clock()
	camera := vp.Camera
	if camera == nil {
		w, h := c.Size()
		camera = NewCamera(w, h)
	}
	theme := vp.Theme
	if theme.Nodes == nil {
		theme = DarkTheme
	}

	c.Clear(theme.Background)
	zoom := camera.Zoom()
	lod := r.lod(zoom)
	stats := Stats{LOD: lod}

	if !fr.Scene.Ready() {
		r.paintMessage(c, fr.Scene.Message(), theme)
		stats.Elapsed = r.clock().Sub(start)
		r.observe(stats)
		return stats
	}

	f := &frame{
		theme:      theme,
		cfg:        r.cfg,
		lod:        lod,
		display:    fr.Display,
		state:      fr.State,
		camera:     camera,
		zoom:       zoom,
		depthAware: fr.Scene.DepthAware && fr.View == interaction.ViewExplore,
		pathView:   fr.View == interaction.ViewPath,
		thumbs:     vp.Thumbs,
	}
	if vp.Hover != nil {
		f.hovered, f.hasHover = vp.Hover.Current()
	}
	if vp.Pulse != nil {
		f.pulse = vp.Pulse.Phase()
	}

	nodes := fr.Scene.Graph.Nodes()
	screen := make(map[string]valueobjects.Point, len(nodes))
	for _, n := range nodes {
		p, _ := n.Position()
		screen[n.ID().String()] = camera.ToScreen(p)
	}

	for _, e := range fr.Scene.Graph.Edges() {
		from, okFrom := screen[e.Source.String()]
		to, okTo := screen[e.Target.String()]
		if !okFrom || !okTo {
			continue
		}
		if f.skipEdge(f.emphasis(e)) {
			stats.SkippedEdges++
			continue
		}
		if r.paintEdge(c, e, from, to, f) {
			stats.Edges++
		} else {
			stats.Failures++
		}
	}

	if fr.View == interaction.ViewMap {
		r.paintCentroids(c, fr.Scene, nodes, camera, theme)
	}

	// focus and selection last so they sit on top
	ordered := paintOrder(nodes, fr.State)
	for _, n := range ordered {
		if r.paintNode(c, n, screen[n.ID().String()], f) {
			stats.Nodes++
		} else {
			stats.Failures++
		}
	}

	if f.hasHover {
		if n, ok := fr.Scene.Graph.Node(f.hovered); ok {
			tip := BuildTooltip(n, fr.Scene, screen[n.ID().String()], r.clock(), r.cfg.TooltipTitleMaxRune)
			paintTooltip(c, tip, theme)
		}
	}

	stats.Elapsed = r.clock().Sub(start)
	r.observe(stats)
	return stats
}

func (r *Renderer) lod(zoom float64) layout.LOD {
	return layout.ComputeLOD(zoom, layout.Thresholds{High: r.cfg.LODHighZoom, Medium: r.cfg.LODMediumZoom})
}

func (r *Renderer) paintNode(c Canvas, n aggregates.AnnotatedNode, at valueobjects.Point, f *frame) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("node paint failed",
				zap.String("node_id", n.ID().String()),
				zap.String("panic", fmt.Sprint(rec)),
			)
			ok = false
		}
	}()
	r.nodes.paint(c, n, at, f)
	return true
}

func (r *Renderer) paintEdge(c Canvas, e entities.Edge, from, to valueobjects.Point, f *frame) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("edge paint failed",
				zap.String("edge", e.Key()),
				zap.String("panic", fmt.Sprint(rec)),
			)
			ok = false
		}
	}()
	r.edges.paint(c, e, from, to, f)
	return true
}

func (r *Renderer) paintCentroids(c Canvas, scene views.Scene, nodes []aggregates.AnnotatedNode, camera *Camera, theme Theme) {
	for _, centroid := range aggregates.Centroids(nodes) {
		at := camera.ToScreen(centroid.Position)
		c.FillText(scene.CommunityLabel(centroid.CommunityID), at, withAlpha(theme.Muted, 0.8), AlignCenter)
	}
}

func (r *Renderer) paintMessage(c Canvas, msg string, theme Theme) {
	if msg == "" {
		return
	}
	w, h := c.Size()
	c.FillText(msg, valueobjects.Point{X: float64(w) / 2, Y: float64(h) / 2}, theme.Muted, AlignCenter)
}

func (r *Renderer) observe(s Stats) {
	if r.metrics == nil {
		return
	}
	r.metrics.ObserveFrame(s.Elapsed, s.Nodes, s.Edges)
}

// paintOrder moves the selected and focused nodes to the end
func paintOrder(nodes []aggregates.AnnotatedNode, st interaction.State) []aggregates.AnnotatedNode {
	out := make([]aggregates.AnnotatedNode, 0, len(nodes))
	var top []aggregates.AnnotatedNode
	for _, n := range nodes {
		if n.IsFocus || st.IsSelected(n.ID()) {
			top = append(top, n)
			continue
		}
		out = append(out, n)
	}
	return append(out, top...)
}
