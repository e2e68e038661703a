package render

import (
	"context"
	"image"
	"image/color"

	"braingraph/application/ports"
	"braingraph/application/views"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/interaction"
	"braingraph/domain/layout"
)

type op struct {
	kind   string
	at     valueobjects.Point
	radius float64
	col    color.Color
	text   string
}

type recordingCanvas struct {
	w, h    int
	ops     []op
	panicAt *valueobjects.Point
}

func newRecordingCanvas() *recordingCanvas {
	return &recordingCanvas{w: 400, h: 400}
}

func (c *recordingCanvas) Size() (int, int) { return c.w, c.h }

func (c *recordingCanvas) Clear(col color.Color) {
	c.ops = append(c.ops, op{kind: "clear", col: col})
}

func (c *recordingCanvas) FillRect(min, max valueobjects.Point, col color.Color) {
	c.ops = append(c.ops, op{kind: "rect", at: min, col: col})
}
func (c *recordingCanvas) FillCircle(center valueobjects.Point, radius float64, col color.Color) {
	if c.panicAt != nil && *c.panicAt == center {
		panic("boom")
	}
	c.ops = append(c.ops, op{kind: "fill", at: center, radius: radius, col: col})
}
func (c *recordingCanvas) StrokeCircle(center valueobjects.Point, radius, width float64, col color.Color) {
	c.ops = append(c.ops, op{kind: "ring", at: center, radius: radius, col: col})
}
func (c *recordingCanvas) StrokeLine(from, to valueobjects.Point, width float64, col color.Color) {
	c.ops = append(c.ops, op{kind: "line", at: from, col: col})
}
func (c *recordingCanvas) StrokeQuad(from, ctrl, to valueobjects.Point, width float64, col color.Color) {
	c.ops = append(c.ops, op{kind: "quad", at: from, col: col})
}
func (c *recordingCanvas) DrawImage(img image.Image, center valueobjects.Point, radius, alpha float64) {
	c.ops = append(c.ops, op{kind: "image", at: center, radius: radius})
}
func (c *recordingCanvas) FillText(text string, at valueobjects.Point, col color.Color, align Align) {
	c.ops = append(c.ops, op{kind: "text", at: at, col: col, text: text})
}
func (c *recordingCanvas) TextWidth(text string) float64 { return float64(7 * len(text)) }

func (c *recordingCanvas) find(kind string, at valueobjects.Point) []op {
	var out []op
	for _, o := range c.ops {
		if o.kind == kind && o.at == at {
			out = append(out, o)
		}
	}
	return out
}

func (c *recordingCanvas) texts() []string {
	var out []string
	for _, o := range c.ops {
		if o.kind == "text" {
			out = append(out, o.text)
		}
	}
	return out
}

func (c *recordingCanvas) count(kind string) int {
	n := 0
	for _, o := range c.ops {
		if o.kind == kind {
			n++
		}
	}
	return n
}

type fixedPhase float64

func (p fixedPhase) Phase() float64 { return float64(p) }

type fakeThumbs map[string]image.Image

func (f fakeThumbs) Thumbnail(id valueobjects.NodeID) (image.Image, bool) {
	img, ok := f[id.String()]
	return img, ok
}

func nid(s string) valueobjects.NodeID {
	id, err := valueobjects.NewNodeIDFromString(s)
	if err != nil {
		panic(err)
	}
	return id
}

func scenarioGraph() *aggregates.Graph {
	return aggregates.NewGraph(
		[]entities.Node{
			entities.MustNode("note-1", "One"),
			entities.MustNode("note-2", "Two"),
			entities.MustNode("tag-5", "golang"),
		},
		[]entities.Edge{
			entities.MustEdge("note-1", "note-2", valueobjects.EdgeTypeWikilink, 0.9),
			entities.MustEdge("note-1", "tag-5", valueobjects.EdgeTypeTag, 0.5),
		},
	)
}

// scenarioFrame lays the scenario out as note-1 at the origin, note-2 to the
// right and tag-5 below
func scenarioFrame(view interaction.View) views.Frame {
	ag := aggregates.Annotate(scenarioGraph(), aggregates.AnnotateOptions{
		Focus:             nid("note-1"),
		MaxDepth:          3,
		HubMinConnections: 5,
	}).Positioned(map[string]valueobjects.Point{
		"note-1": {X: 0, Y: 0},
		"note-2": {X: 100, Y: 0},
		"tag-5":  {X: 0, Y: 100},
	})
	focus := nid("note-1")
	return views.Frame{
		View: view,
		Scene: views.Scene{
			View:       view,
			Status:     views.StatusReady,
			Graph:      ag,
			Focus:      focus,
			DepthAware: view == interaction.ViewExplore,
		},
		State:   interaction.State{FocusNodeID: &focus},
		Display: layout.Display{NodeScale: 1, EdgeOpacity: 0.6, ShowLabels: true},
	}
}

type staticSource struct {
	graph *aggregates.Graph
}

func (s staticSource) LocalNeighborhood(ctx context.Context, nodeID string, depth int, layers []string, minWeight float64) (*aggregates.Graph, error) {
	return s.graph, nil
}

func (s staticSource) Map(ctx context.Context, scope string) (*ports.MapData, error) {
	return &ports.MapData{Graph: s.graph}, nil
}

func (s staticSource) Path(ctx context.Context, from, to string, limit int) (*ports.PathData, error) {
	return &ports.PathData{}, nil
}

func (s staticSource) Search(ctx context.Context, query string, limit int) ([]entities.Node, error) {
	return nil, nil
}
