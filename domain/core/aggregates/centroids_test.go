package aggregates

import (
	"testing"

	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func communityNode(t *testing.T, nodeID string, community interface{}, pos *valueobjects.Point) entities.Node {
	t.Helper()
	n, err := entities.NewNode(entities.NodeProps{
		ID:       nodeID,
		Metadata: map[string]interface{}{entities.MetaCommunityID: community},
		Position: pos,
	})
	require.NoError(t, err)
	return n
}

func TestCentroids(t *testing.T) {
	// Arrange
	g := NewGraph([]entities.Node{
		communityNode(t, "note-1", 1.0, &valueobjects.Point{X: 10, Y: 0}),
		communityNode(t, "note-2", "1", &valueobjects.Point{X: 20, Y: 10}),
		communityNode(t, "note-3", 1, &valueobjects.Point{}),
		communityNode(t, "note-4", 2, &valueobjects.Point{X: 5, Y: 5}),
		communityNode(t, "note-5", 2, nil),
	}, nil)

	// Act
	centroids := Centroids(Annotate(g, AnnotateOptions{}).Nodes())

	// Assert
	require.Len(t, centroids, 1)
	assert.Equal(t, "1", centroids[0].CommunityID)
	assert.Equal(t, 2, centroids[0].Members)
	assert.InDelta(t, 15.0, centroids[0].Position.X, 1e-9)
	assert.InDelta(t, 5.0, centroids[0].Position.Y, 1e-9)
}

func TestCentroids_NoPositionsYieldsNothing(t *testing.T) {
	g := NewGraph([]entities.Node{
		communityNode(t, "note-1", 1, nil),
		communityNode(t, "note-2", 1, nil),
	}, nil)

	assert.Empty(t, Centroids(Annotate(g, AnnotateOptions{}).Nodes()))
}
