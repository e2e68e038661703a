package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"braingraph/application/ports/mocks"
	"braingraph/application/queries"
	"braingraph/application/queries/bus"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/infrastructure/cache"
)

func newCachedBus(t *testing.T, backend *mocks.MockBackend) *bus.QueryBus {
	t.Helper()
	b := bus.NewQueryBus(bus.NewCachingMiddleware(cache.NewMemoryCache(0), time.Minute, nil))
	require.NoError(t, RegisterAll(b, backend, zap.NewNop()))
	return b
}

func TestLocalNeighborhoodHandler_SendsNormalizedRequest(t *testing.T) {
	// Arrange
	backend := mocks.NewMockBackend()
	backend.SetNeighborhood("note-1", aggregates.NewGraph(
		[]entities.Node{entities.MustNode("note-1", "Go"), entities.MustNode("note-2", "Channels")},
		[]entities.Edge{entities.MustEdge("note-1", "note-2", "wikilink", 1)},
	))
	b := newCachedBus(t, backend)
	ctx := context.Background()

	// Act
	padded, err := b.Ask(ctx, queries.LocalNeighborhoodQuery{NodeID: " note-1 ", Depth: 1})
	require.NoError(t, err)
	plain, err := b.Ask(ctx, queries.LocalNeighborhoodQuery{NodeID: "note-1", Depth: 1})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 2, padded.(*aggregates.Graph).NodeCount())
	assert.Same(t, padded, plain)
	assert.Equal(t, 1, backend.Calls("LocalNeighborhood"))
}

func TestSearchHandler_CaseDistinctQueriesAreNotShared(t *testing.T) {
	// Arrange
	backend := mocks.NewMockBackend()
	backend.SetSearchCorpus([]entities.Node{entities.MustNode("note-1", "Go Concurrency")})
	b := newCachedBus(t, backend)
	ctx := context.Background()

	// Act
	_, err := b.Ask(ctx, queries.SearchQuery{Query: "Go", Limit: 10})
	require.NoError(t, err)
	_, err = b.Ask(ctx, queries.SearchQuery{Query: " Go ", Limit: 10})
	require.NoError(t, err)
	_, err = b.Ask(ctx, queries.SearchQuery{Query: "go", Limit: 10})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 2, backend.Calls("Search"))
}
