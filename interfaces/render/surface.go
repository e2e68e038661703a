package render

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"braingraph/application/views"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/interaction"
)

const (
	hitSlop      = 3.0
	edgeHitSlop  = 4.0
	fitPadding   = 40.0
	wheelPerStep = 0.0015
)

// SurfaceDeps are the collaborators of a Surface
type SurfaceDeps struct {
	Session  *views.Session
	Renderer *Renderer
	Clock    *AnimationClock
	Thumbs   ThumbnailSource
	Width    int
	Height   int
	Logger   *zap.Logger
}

// Surface is one interactive graph canvas: a session plus the screen-side
// state that must not trigger layout (camera, hover) and the pulse clock.
// Input methods take screen coordinates.
type Surface struct {
	session  *views.Session
	renderer *Renderer
	clock    *AnimationClock
	thumbs   ThumbnailSource
	camera   *Camera
	hover    *HoverTracker
	logger   *zap.Logger

	closeOnce sync.Once
}

// NewSurface wraps a session. The clock, when given, should be the same
// Animator the session was built with.
func NewSurface(deps SurfaceDeps) *Surface {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = NewRenderer(nil, nil, logger)
	}
	return &Surface{
		session:  deps.Session,
		renderer: renderer,
		clock:    deps.Clock,
		thumbs:   deps.Thumbs,
		camera:   NewCamera(deps.Width, deps.Height),
		hover:    NewHoverTracker(),
		logger:   logger,
	}
}

// Session returns the wrapped session
func (s *Surface) Session() *views.Session { return s.session }

// Camera returns the surface camera
func (s *Surface) Camera() *Camera { return s.camera }

// Hover returns the hover tracker
func (s *Surface) Hover() *HoverTracker { return s.hover }

// Resize changes the viewport
func (s *Surface) Resize(width, height int) {
	s.camera.Resize(width, height)
}

// Tick advances the layout one step and applies a pending recenter. It
// reports whether the layout is still moving.
func (s *Surface) Tick() bool {
	active := s.session.Step()
	if id, ok := s.session.TakeRecenter(); ok {
		s.centerOn(id)
	}
	return active
}

// Paint draws the current frame
func (s *Surface) Paint(c Canvas) Stats {
	vp := Viewport{
		Camera: s.camera,
		Hover:  s.hover,
		Thumbs: s.thumbs,
		Theme:  ThemeByName(s.session.Theme()),
	}
	if s.clock != nil {
		vp.Pulse = s.clock
	}
	return s.renderer.Paint(c, s.session.Frame(), vp)
}

// PointerMove updates hover and reports whether the hovered node changed
func (s *Surface) PointerMove(p valueobjects.Point) bool {
	frame := s.session.Frame()
	if n, ok := s.nodeAt(frame, p); ok {
		return s.hover.Set(n.ID(), p)
	}
	return s.hover.Clear()
}

// PointerLeave clears hover
func (s *Surface) PointerLeave() bool {
	return s.hover.Clear()
}

// Click dispatches a primary click to the node, edge or background under p
func (s *Surface) Click(p valueobjects.Point) {
	frame := s.session.Frame()
	machine := s.session.Machine()
	if n, ok := s.nodeAt(frame, p); ok {
		machine.HandleNodeClick(n.Node)
		return
	}
	if e, ok := s.edgeAt(frame, p); ok {
		machine.HandleEdgeClick(e)
		return
	}
	machine.HandleBackgroundClick()
}

// ContextMenu opens the node menu at p, or closes any open menu
func (s *Surface) ContextMenu(p valueobjects.Point) bool {
	frame := s.session.Frame()
	machine := s.session.Machine()
	n, ok := s.nodeAt(frame, p)
	if !ok {
		machine.SetContextMenu(nil)
		return false
	}
	machine.SetContextMenu(&interaction.ContextMenu{X: p.X, Y: p.Y, NodeID: n.ID()})
	return true
}

// Key forwards a keyboard shortcut
func (s *Surface) Key(key string) bool {
	return s.session.Machine().HandleKey(key)
}

// Wheel zooms around the pointer. Positive delta zooms out.
func (s *Surface) Wheel(delta float64, at valueobjects.Point) {
	s.camera.ZoomAt(math.Exp(-delta*wheelPerStep), at)
}

// Drag pans by a screen delta
func (s *Surface) Drag(dx, dy float64) {
	s.camera.Pan(dx, dy)
}

// ZoomToFit frames every positioned node
func (s *Surface) ZoomToFit() bool {
	frame := s.session.Frame()
	if !frame.Scene.Ready() {
		return false
	}
	lo, hi, ok := bounds(frame.Scene.Graph.Nodes())
	if !ok {
		return false
	}
	s.camera.Fit(lo, hi, fitPadding)
	return true
}

// Tooltip returns the hover card for the hovered node
func (s *Surface) Tooltip() (Tooltip, bool) {
	id, ok := s.hover.Current()
	if !ok {
		return Tooltip{}, false
	}
	frame := s.session.Frame()
	if !frame.Scene.Ready() {
		return Tooltip{}, false
	}
	n, ok := frame.Scene.Graph.Node(id)
	if !ok {
		return Tooltip{}, false
	}
	p, _ := n.Position()
	return BuildTooltip(n, frame.Scene, s.camera.ToScreen(p), s.renderer.clock(), s.renderer.cfg.TooltipTitleMaxRune), true
}

// Close tears down the session and stops the pulse loop
func (s *Surface) Close() {
	s.closeOnce.Do(func() {
		s.session.Close()
		if s.clock != nil {
			s.clock.Stop()
		}
	})
}

func (s *Surface) centerOn(id valueobjects.NodeID) {
	frame := s.session.Frame()
	if frame.Scene.Graph == nil {
		return
	}
	n, ok := frame.Scene.Graph.Node(id)
	if !ok {
		return
	}
	p, _ := n.Position()
	s.camera.CenterOn(p)
	s.logger.Debug("recentered", zap.String("node_id", id.String()))
}

// nodeAt returns the topmost node whose disc contains the screen point p
func (s *Surface) nodeAt(frame views.Frame, p valueobjects.Point) (aggregates.AnnotatedNode, bool) {
	if !frame.Scene.Ready() {
		return aggregates.AnnotatedNode{}, false
	}
	zoom := s.camera.Zoom()
	lod := s.renderer.lod(zoom)
	nodes := paintOrder(frame.Scene.Graph.Nodes(), frame.State)
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		pos, _ := n.Position()
		at := s.camera.ToScreen(pos)
		r := math.Max(NodeRadius(n.Connections, s.renderer.cfg, lod, frame.Display)*zoom, 1) + hitSlop
		if at.DistanceTo(p) <= r {
			return n, true
		}
	}
	return aggregates.AnnotatedNode{}, false
}

// edgeAt returns the first straight edge passing within edgeHitSlop of p.
// Edges the current LOD does not paint are not hit.
func (s *Surface) edgeAt(fr views.Frame, p valueobjects.Point) (entities.Edge, bool) {
	if !fr.Scene.Ready() {
		return entities.Edge{}, false
	}
	vis := &frame{lod: s.renderer.lod(s.camera.Zoom()), state: fr.State}
	vis.hovered, vis.hasHover = s.hover.Current()
	g := fr.Scene.Graph
	for _, e := range g.Edges() {
		if vis.skipEdge(vis.emphasis(e)) {
			continue
		}
		a, okA := g.Node(e.Source)
		b, okB := g.Node(e.Target)
		if !okA || !okB {
			continue
		}
		pa, _ := a.Position()
		pb, _ := b.Position()
		if segmentDistance(p, s.camera.ToScreen(pa), s.camera.ToScreen(pb)) <= edgeHitSlop {
			return e, true
		}
	}
	return entities.Edge{}, false
}

func segmentDistance(p, a, b valueobjects.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.DistanceTo(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.DistanceTo(valueobjects.Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

func bounds(nodes []aggregates.AnnotatedNode) (lo, hi valueobjects.Point, ok bool) {
	for _, n := range nodes {
		p, has := n.Position()
		if !has {
			continue
		}
		if !ok {
			lo, hi, ok = p, p, true
			continue
		}
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return lo, hi, ok
}
