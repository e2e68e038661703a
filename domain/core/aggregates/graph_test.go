package aggregates

import (
	"fmt"
	"testing"

	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(s string) valueobjects.NodeID { return valueobjects.ParseNodeID(s) }

func starGraph(leaves int) *Graph {
	nodes := []entities.Node{entities.MustNode("note-0", "center")}
	var edges []entities.Edge
	for i := 1; i <= leaves; i++ {
		leaf := fmt.Sprintf("note-%d", i)
		nodes = append(nodes, entities.MustNode(leaf, leaf))
		edges = append(edges, entities.MustEdge("note-0", leaf, valueobjects.EdgeTypeWikilink, 0.5))
	}
	return NewGraph(nodes, edges)
}

func pathGraph(length int) *Graph {
	nodes := []entities.Node{entities.MustNode("note-0", "n0")}
	var edges []entities.Edge
	for i := 1; i <= length; i++ {
		nodes = append(nodes, entities.MustNode(fmt.Sprintf("note-%d", i), ""))
		edges = append(edges, entities.MustEdge(fmt.Sprintf("note-%d", i-1), fmt.Sprintf("note-%d", i), valueobjects.EdgeTypeWikilink, 1))
	}
	return NewGraph(nodes, edges)
}

func TestNewGraph_DropsDuplicateNodeIDs(t *testing.T) {
	// Arrange
	nodes := []entities.Node{
		entities.MustNode("note-1", "first"),
		entities.MustNode("note-1", "second"),
		entities.MustNode("tag-2", "go"),
	}

	// Act
	g := NewGraph(nodes, nil)

	// Assert
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.Duplicates())
	n, ok := g.Node(id("note-1"))
	require.True(t, ok)
	assert.Equal(t, "first", n.Title())
}

func TestGraph_ConnectedEdgesDropsDangling(t *testing.T) {
	g := NewGraph(
		[]entities.Node{entities.MustNode("note-1", "a"), entities.MustNode("note-2", "b")},
		[]entities.Edge{
			entities.MustEdge("note-1", "note-2", valueobjects.EdgeTypeWikilink, 1),
			entities.MustEdge("note-1", "note-99", valueobjects.EdgeTypeWikilink, 1),
		},
	)

	assert.Equal(t, 2, g.EdgeCount())
	assert.Len(t, g.ConnectedEdges(), 1)
}

func TestGraph_IsImmutable(t *testing.T) {
	g := starGraph(2)

	nodes := g.Nodes()
	nodes[0] = entities.MustNode("tag-1", "mutated")
	edges := g.Edges()
	edges[0].Weight = 0

	n, _ := g.Node(id("note-0"))
	assert.Equal(t, "center", n.Title())
	assert.Equal(t, 0.5, g.Edges()[0].Weight)
}

func TestAnnotate_StarGraphDepths(t *testing.T) {
	// Arrange
	g := starGraph(6)

	// Act
	ag := Annotate(g, AnnotateOptions{Focus: id("note-0"), MaxDepth: 3, HubMinConnections: 5})

	// Assert
	for _, n := range ag.Nodes() {
		require.NotNil(t, n.Depth, n.ID().String())
		if n.ID().String() == "note-0" {
			assert.Equal(t, 0, *n.Depth)
			assert.True(t, n.IsFocus)
			assert.True(t, n.IsHub)
			assert.Equal(t, 6, n.Connections)
			continue
		}
		assert.Equal(t, 1, *n.Depth)
		assert.False(t, n.IsFocus)
		assert.Equal(t, 1, n.Connections)
	}
}

func TestAnnotate_PathGraphDepthIsHopCountCapped(t *testing.T) {
	g := pathGraph(6)

	ag := Annotate(g, AnnotateOptions{Focus: id("note-0"), MaxDepth: 3})

	for i := 0; i <= 6; i++ {
		n, ok := ag.Node(id(fmt.Sprintf("note-%d", i)))
		require.True(t, ok)
		want := i
		if want > 3 {
			want = 3
		}
		assert.Equal(t, want, *n.Depth, "node %d", i)
	}
}

func TestAnnotate_UsesUndirectedAdjacency(t *testing.T) {
	g := NewGraph(
		[]entities.Node{entities.MustNode("note-1", ""), entities.MustNode("note-2", "")},
		[]entities.Edge{entities.MustEdge("note-2", "note-1", valueobjects.EdgeTypeMentions, 1)},
	)

	ag := Annotate(g, AnnotateOptions{Focus: id("note-1"), MaxDepth: 3})

	n, _ := ag.Node(id("note-2"))
	assert.Equal(t, 1, *n.Depth)
}

func TestAnnotate_UnreachableNodesReportCap(t *testing.T) {
	g := NewGraph([]entities.Node{entities.MustNode("note-1", ""), entities.MustNode("note-2", "")}, nil)

	ag := Annotate(g, AnnotateOptions{Focus: id("note-1"), MaxDepth: 3})

	n, _ := ag.Node(id("note-2"))
	assert.Equal(t, 3, *n.Depth)
}

func TestAnnotate_WithoutFocusHasNoDepth(t *testing.T) {
	ag := Annotate(starGraph(2), AnnotateOptions{MaxDepth: 3})

	for _, n := range ag.Nodes() {
		assert.Nil(t, n.Depth)
		assert.False(t, n.IsFocus)
	}
}

func TestAnnotate_DoesNotMutateSnapshot(t *testing.T) {
	g := starGraph(3)

	ag := Annotate(g, AnnotateOptions{Focus: id("note-0"), MaxDepth: 3})
	_ = ag.Pin(id("note-0"), valueobjects.Origin)

	n, _ := g.Node(id("note-0"))
	assert.False(t, n.IsPinned())
}

func TestRestrict_RecomputesConnectionsAndDropsDangling(t *testing.T) {
	// Arrange
	g := NewGraph(
		[]entities.Node{
			entities.MustNode("note-1", ""),
			entities.MustNode("note-2", ""),
			entities.MustNode("tag-5", ""),
		},
		[]entities.Edge{
			entities.MustEdge("note-1", "note-2", valueobjects.EdgeTypeWikilink, 0.9),
			entities.MustEdge("note-1", "tag-5", valueobjects.EdgeTypeTag, 0.5),
		},
	)
	ag := Annotate(g, AnnotateOptions{Focus: id("note-1"), MaxDepth: 3})

	// Act
	visible := ag.Restrict(func(n AnnotatedNode) bool {
		return n.Type() != valueobjects.NodeTypeTag
	}, nil)

	// Assert
	assert.Equal(t, 2, visible.NodeCount())
	assert.Equal(t, 1, visible.EdgeCount())
	for _, e := range visible.Edges() {
		assert.True(t, visible.Has(e.Source))
		assert.True(t, visible.Has(e.Target))
	}
	focus, _ := visible.Node(id("note-1"))
	assert.Equal(t, 1, focus.Connections)
	full, _ := ag.Node(id("note-1"))
	assert.Equal(t, 2, full.Connections)
}

func TestRestrict_MultiEdgesCountSeparately(t *testing.T) {
	g := NewGraph(
		[]entities.Node{entities.MustNode("note-1", ""), entities.MustNode("note-2", "")},
		[]entities.Edge{
			entities.MustEdge("note-1", "note-2", valueobjects.EdgeTypeWikilink, 0.9),
			entities.MustEdge("note-1", "note-2", valueobjects.EdgeTypeSemantic, 0.3),
		},
	)

	ag := Annotate(g, AnnotateOptions{})
	strong := ag.Restrict(nil, func(e entities.Edge) bool { return e.Weight >= 0.5 })

	n, _ := ag.Node(id("note-1"))
	assert.Equal(t, 2, n.Connections)
	n, _ = strong.Node(id("note-1"))
	assert.Equal(t, 1, n.Connections)
}

func TestGraph_EdgeTypeCounts(t *testing.T) {
	g := NewGraph(
		[]entities.Node{entities.MustNode("note-1", ""), entities.MustNode("note-2", ""), entities.MustNode("tag-1", "")},
		[]entities.Edge{
			entities.MustEdge("note-1", "note-2", valueobjects.EdgeTypeWikilink, 1),
			entities.MustEdge("note-2", "note-1", valueobjects.EdgeTypeWikilink, 1),
			entities.MustEdge("note-1", "tag-1", valueobjects.EdgeTypeTag, 1),
		},
	)

	counts := g.EdgeTypeCounts(id("note-1"))

	assert.Equal(t, 2, counts[valueobjects.EdgeTypeWikilink])
	assert.Equal(t, 1, counts[valueobjects.EdgeTypeTag])
}
