package snapshot

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"braingraph/application/ports"
	"braingraph/application/ports/mocks"
	"braingraph/application/queries"
	"braingraph/application/queries/bus"
	"braingraph/application/queries/handlers"
	"braingraph/application/views"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
	"braingraph/domain/layout"
	"braingraph/infrastructure/cache"
	pkgerrors "braingraph/pkg/errors"
)

type staticPresets struct{ r *layout.Registry }

func (p staticPresets) Registry() *layout.Registry { return p.r }

func neighborhood() *aggregates.Graph {
	return aggregates.NewGraph(
		[]entities.Node{
			entities.MustNode("note-1", "Start"),
			entities.MustNode("note-2", "Second"),
			entities.MustNode("tag-5", "golang"),
		},
		[]entities.Edge{
			entities.MustEdge("note-1", "note-2", valueobjects.EdgeTypeWikilink, 0.9),
			entities.MustEdge("note-1", "tag-5", valueobjects.EdgeTypeTag, 0.5),
		},
	)
}

func newService(t *testing.T, backend ports.GraphBackend) *Service {
	t.Helper()
	logger := zap.NewNop()
	b := bus.NewQueryBus(
		bus.NewCachingMiddleware(cache.NewMemoryCache(0), time.Minute, nil),
		bus.NewDedupMiddleware(logger),
	)
	require.NoError(t, handlers.RegisterAll(b, backend, logger))
	return NewService(Deps{
		Bus:      b,
		Stale:    queries.DefaultStaleTimes(),
		Presets:  staticPresets{r: layout.NewRegistry()},
		Logger:   logger,
		MaxTicks: 50,
	})
}

func TestService_RenderExplore(t *testing.T) {
	// Arrange
	backend := mocks.NewMockBackend()
	backend.SetNeighborhood("note-1", neighborhood())
	svc := newService(t, backend)

	// Act
	res, err := svc.Render(context.Background(), Request{View: "explore", NodeID: "note-1", Width: 320, Height: 200})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, views.StatusReady, res.Scene.Status)
	assert.Equal(t, 3, res.Stats.Nodes)
	assert.Equal(t, 2, res.Stats.Edges)
	assert.Greater(t, res.Ticks, 0)

	img, err := png.Decode(bytes.NewReader(res.PNG))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestService_RenderPathWithoutRoute(t *testing.T) {
	backend := mocks.NewMockBackend()
	svc := newService(t, backend)

	res, err := svc.Render(context.Background(), Request{View: "path", From: "note-1", To: "note-9"})

	require.NoError(t, err)
	assert.Equal(t, views.StatusNoPath, res.Scene.Status)
	assert.Equal(t, 0, res.Stats.Nodes)
	assert.NotEmpty(t, res.PNG)
	assert.Equal(t, 1, backend.Calls("Path"))
}

func TestService_RenderEmptyMap(t *testing.T) {
	svc := newService(t, mocks.NewMockBackend())

	res, err := svc.Render(context.Background(), Request{View: "map", Width: 64, Height: 64})

	require.NoError(t, err)
	assert.Equal(t, views.StatusEmpty, res.Scene.Status)
}

func TestService_RenderRejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"unknown view", Request{View: "timeline"}},
		{"explore without node", Request{View: "explore"}},
		{"path without target", Request{View: "path", From: "note-1"}},
		{"depth too deep", Request{View: "explore", NodeID: "note-1", Depth: 4}},
		{"huge canvas", Request{View: "map", Width: 10000}},
		{"unknown theme", Request{View: "map", Theme: "neon"}},
	}
	svc := newService(t, mocks.NewMockBackend())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Render(context.Background(), tt.req)

			assert.True(t, pkgerrors.IsValidation(err), "got %v", err)
		})
	}
}

func TestService_RenderUnknownPreset(t *testing.T) {
	svc := newService(t, mocks.NewMockBackend())

	_, err := svc.Render(context.Background(), Request{View: "map", Preset: "galaxy"})

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestService_RenderBackendFailure(t *testing.T) {
	backend := mocks.NewMockBackend()
	backend.SetError("LocalNeighborhood", pkgerrors.NewNetworkError("backend down", errors.New("connection refused")))
	svc := newService(t, backend)

	_, err := svc.Render(context.Background(), Request{View: "explore", NodeID: "note-1"})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsRetryable(err))
}

func TestService_SearchHighlightsMatches(t *testing.T) {
	backend := mocks.NewMockBackend()
	backend.SetNeighborhood("note-1", neighborhood())
	backend.SetSearchCorpus([]entities.Node{entities.MustNode("note-2", "Second")})
	svc := newService(t, backend)

	session, err := svc.Session(context.Background(), Request{View: "explore", NodeID: "note-1"})
	require.NoError(t, err)
	defer session.Close()
	_, err = session.Refresh(context.Background())
	require.NoError(t, err)
	_, err = session.Search(context.Background(), "sec")
	require.NoError(t, err)

	assert.True(t, session.Machine().State().IsHighlighted(valueobjects.ParseNodeID("note-2")))
}
