package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"braingraph/application/views"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/interaction"
)

func annotatedNode(t *testing.T, id, title string, meta map[string]interface{}, depth *int, connections int) aggregates.AnnotatedNode {
	t.Helper()
	n, err := entities.NewNode(entities.NodeProps{ID: id, Title: title, Metadata: meta})
	require.NoError(t, err)
	return aggregates.AnnotatedNode{Node: n, Depth: depth, Connections: connections}
}

func TestBuildTooltip(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	one := 1
	scene := views.Scene{
		View:        interaction.ViewExplore,
		DepthAware:  true,
		Communities: []entities.Community{{ID: "3", Label: "Go"}},
	}
	anchor := valueobjects.Point{X: 10, Y: 20}

	tests := []struct {
		name  string
		node  aggregates.AnnotatedNode
		title string
		lines []string
	}{
		{
			name: "tag with usage and community",
			node: annotatedNode(t, "tag-5", "golang", map[string]interface{}{
				"usageCount":  12,
				"communityId": "3",
				"updatedAt":   "2026-10-13T12:00:00Z",
			}, &one, 2),
			title: "golang",
			lines: []string{"Tag · 2 connections", "Community: Go", "Used in 12 notes", "Modified 3 days ago", "Depth 1"},
		},
		{
			name: "image dimensions",
			node: annotatedNode(t, "image-4", "Sunset", map[string]interface{}{
				"width":  1920,
				"height": 1080,
			}, nil, 1),
			title: "Sunset",
			lines: []string{"Image · 1 connection", "1920 × 1080 px"},
		},
		{
			name:  "unknown type",
			node:  annotatedNode(t, "widget-9", "", nil, nil, 0),
			title: "widget-9",
			lines: []string{"Node · 0 connections"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tip := BuildTooltip(tt.node, scene, anchor, now, 60)

			assert.Equal(t, tt.title, tip.Title)
			assert.Equal(t, tt.lines, tip.Lines)
			assert.Equal(t, anchor, tip.Anchor)
		})
	}
}

func TestPaintTooltip_StaysInsideViewport(t *testing.T) {
	c := newRecordingCanvas()
	tip := Tooltip{Title: "A rather long title", Lines: []string{"Note · 3 connections"}, Anchor: valueobjects.Point{X: 390, Y: 5}}

	paintTooltip(c, tip, DarkTheme)

	require.Equal(t, 1, c.count("rect"))
	for _, o := range c.ops {
		assert.GreaterOrEqual(t, o.at.X, 0.0)
		assert.Less(t, o.at.X, 390.0)
		assert.GreaterOrEqual(t, o.at.Y, 0.0)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "anything", truncate("anything", 0))
}
