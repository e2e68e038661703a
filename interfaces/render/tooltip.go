package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"braingraph/application/views"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/valueobjects"
	"braingraph/pkg/utils"
)

// Metadata keys read by tooltips
const (
	metaUsageCount = "usageCount"
	metaWidth      = "width"
	metaHeight     = "height"
	metaUpdatedAt  = "updatedAt"
	metaCreatedAt  = "createdAt"
)

// Tooltip is the hover card for one node
type Tooltip struct {
	NodeID valueobjects.NodeID
	Title  string
	Lines  []string
	// Anchor is the screen position of the node center
	Anchor valueobjects.Point
}

// BuildTooltip assembles the hover card for n from its metadata
func BuildTooltip(n aggregates.AnnotatedNode, scene views.Scene, anchor valueobjects.Point, now time.Time, maxTitle int) Tooltip {
	t := Tooltip{NodeID: n.ID(), Title: truncate(n.Title(), maxTitle), Anchor: anchor}
	meta := n.Metadata()

	kind := "Node"
	if n.Type().IsKnown() {
		s := string(n.Type())
		kind = strings.ToUpper(s[:1]) + s[1:]
	}
	t.Lines = append(t.Lines, fmt.Sprintf("%s · %s", kind, pluralize(n.Connections, "connection")))

	if cid, ok := meta.CommunityID(); ok {
		t.Lines = append(t.Lines, "Community: "+scene.CommunityLabel(cid))
	}
	if n.Type() == valueobjects.NodeTypeTag {
		if usage, ok := meta.Int(metaUsageCount); ok {
			t.Lines = append(t.Lines, "Used in "+pluralize(usage, "note"))
		}
	}
	if n.Type() == valueobjects.NodeTypeImage {
		w, okW := meta.Int(metaWidth)
		h, okH := meta.Int(metaHeight)
		if okW && okH {
			t.Lines = append(t.Lines, fmt.Sprintf("%d × %d px", w, h))
		}
	}
	if ts, ok := meta.Time(metaUpdatedAt); ok {
		t.Lines = append(t.Lines, "Modified "+utils.RelativeTime(ts, now))
	} else if ts, ok := meta.Time(metaCreatedAt); ok {
		t.Lines = append(t.Lines, "Created "+utils.RelativeTime(ts, now))
	}
	if scene.DepthAware && n.Depth != nil {
		if *n.Depth == 0 {
			t.Lines = append(t.Lines, "Focus")
		} else {
			t.Lines = append(t.Lines, fmt.Sprintf("Depth %d", *n.Depth))
		}
	}
	return t
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}

const tooltipLineHeight = 14

// paintTooltip draws t beside its anchor, flipped to stay inside the viewport
func paintTooltip(c Canvas, t Tooltip, theme Theme) {
	width, height := c.Size()
	lines := append([]string{t.Title}, t.Lines...)
	boxW := 0.0
	for _, l := range lines {
		if w := c.TextWidth(l); w > boxW {
			boxW = w
		}
	}
	boxW += 12
	boxH := float64(len(lines)*tooltipLineHeight + 8)

	x := t.Anchor.X + 14
	y := t.Anchor.Y - boxH/2
	if x+boxW > float64(width) {
		x = t.Anchor.X - 14 - boxW
	}
	if y < 0 {
		y = 0
	}
	if y+boxH > float64(height) {
		y = float64(height) - boxH
	}

	c.FillRect(valueobjects.Point{X: x, Y: y}, valueobjects.Point{X: x + boxW, Y: y + boxH}, withAlpha(theme.Background, 0.92))
	for i, l := range lines {
		col := theme.Muted
		if i == 0 {
			col = theme.Label
		}
		c.FillText(l, valueobjects.Point{X: x + 6, Y: y + float64((i+1)*tooltipLineHeight)}, col, AlignLeft)
	}
}
