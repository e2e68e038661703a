package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"braingraph/application/ports"
	"braingraph/application/views"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/domain/layout"
	"braingraph/interfaces/http/rest/handlers"
	"braingraph/interfaces/snapshot"
	pkgerrors "braingraph/pkg/errors"
	"braingraph/pkg/observability"
)

type mockRenderer struct{ mock.Mock }

func (m *mockRenderer) Render(ctx context.Context, req snapshot.Request) (*snapshot.Result, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*snapshot.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockReader struct {
	mock.Mock
	cancelled int
}

func (m *mockReader) Search(ctx context.Context, query string, limit int) ([]entities.Node, error) {
	args := m.Called(ctx, query, limit)
	if nodes := args.Get(0); nodes != nil {
		return nodes.([]entities.Node), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReader) Stats(ctx context.Context) (*ports.GraphStats, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.(*ports.GraphStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReader) Overview(ctx context.Context, scope string) (*ports.MapData, *ports.GraphStats, error) {
	args := m.Called(ctx, scope)
	var (
		data  *ports.MapData
		stats *ports.GraphStats
	)
	if d := args.Get(0); d != nil {
		data = d.(*ports.MapData)
	}
	if s := args.Get(1); s != nil {
		stats = s.(*ports.GraphStats)
	}
	return data, stats, args.Error(2)
}

func (m *mockReader) CancelAll() { m.cancelled++ }

type staticPresets struct{}

func (staticPresets) Registry() *layout.Registry { return layout.NewRegistry() }

type routerHarness struct {
	handler  http.Handler
	renderer *mockRenderer
	reader   *mockReader
	ready    error
}

func newRouterHarness(t *testing.T) *routerHarness {
	t.Helper()
	return newRouterHarnessWith(t, RouterConfig{EnableCORS: true, AllowedOrigins: []string{"*"}, EnableMetrics: true})
}

func newRouterHarnessWith(t *testing.T, cfg RouterConfig) *routerHarness {
	t.Helper()
	h := &routerHarness{renderer: new(mockRenderer), reader: new(mockReader)}
	rt := NewRouter(
		cfg,
		h.renderer,
		func() handlers.GraphReader { return h.reader },
		staticPresets{},
		func() error { return h.ready },
		observability.NewCollector("braingraph"),
		zap.NewNop(),
	)
	h.handler = rt.Setup()
	return h
}

func (h *routerHarness) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success)
	require.NoError(t, json.Unmarshal(env.Data, into))
}

func TestRouter_HealthAndReadiness(t *testing.T) {
	h := newRouterHarness(t)

	assert.Equal(t, http.StatusOK, h.get("/health").Code)
	assert.Equal(t, http.StatusOK, h.get("/ready").Code)

	h.ready = errors.New("circuit breaker open")
	rec := h.get("/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "circuit breaker open")
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.get("/health")

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_RenderView(t *testing.T) {
	// Arrange
	h := newRouterHarness(t)
	want := snapshot.Request{View: "explore", NodeID: "note-1", Depth: 3, Width: 640, Theme: "light"}
	h.renderer.On("Render", mock.Anything, want).Return(&snapshot.Result{
		PNG:   []byte("\x89PNG"),
		Scene: views.Scene{Status: views.StatusReady},
	}, nil)

	// Act
	rec := h.get("/api/v1/views/explore?node=note-1&depth=3&width=640&theme=light")

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ready", rec.Header().Get("X-Scene-Status"))
	assert.Equal(t, "\x89PNG", rec.Body.String())
	h.renderer.AssertExpectations(t)
}

func TestRouter_RenderViewErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{"bad integer", "/api/v1/views/map?width=wide", nil, http.StatusBadRequest},
		{"validation from renderer", "/api/v1/views/timeline", pkgerrors.NewValidationError("view must be one of: explore map media path"), http.StatusBadRequest},
		{"backend unavailable", "/api/v1/views/map", pkgerrors.NewUnavailableError("graph-backend", errors.New("open")), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newRouterHarness(t)
			if tt.err != nil {
				h.renderer.On("Render", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			rec := h.get(tt.path)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestRouter_RenderRateLimited(t *testing.T) {
	h := newRouterHarnessWith(t, RouterConfig{RenderRateLimit: 1})
	h.renderer.On("Render", mock.Anything, mock.Anything).Return(&snapshot.Result{
		PNG:   []byte("\x89PNG"),
		Scene: views.Scene{Status: views.StatusReady},
	}, nil).Once()

	first := h.get("/api/v1/views/map")
	second := h.get("/api/v1/views/map")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), `"retryable":true`)
	// JSON endpoints are not limited
	assert.Equal(t, http.StatusOK, h.get("/api/v1/presets").Code)
	h.renderer.AssertNumberOfCalls(t, "Render", 1)
}

func TestRouter_SearchPaginates(t *testing.T) {
	// Arrange
	h := newRouterHarness(t)
	nodes := []entities.Node{
		entities.MustNode("note-1", "Go basics"),
		entities.MustNode("note-2", "Go channels"),
		entities.MustNode("tag-3", "go"),
	}
	h.reader.On("Search", mock.Anything, "go", 5).Return(nodes, nil)

	// Act
	rec := h.get("/api/v1/search?q=go&page=2&page_size=2")

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []handlers.NodeResponse `json:"items"`
		Pagination struct {
			Page    int  `json:"page"`
			HasPrev bool `json:"has_prev"`
			HasNext bool `json:"has_next"`
		} `json:"pagination"`
	}
	decodeEnvelope(t, rec, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "tag-3", page.Items[0].ID)
	assert.Equal(t, "tag", page.Items[0].Type)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.True(t, page.Pagination.HasPrev)
	assert.False(t, page.Pagination.HasNext)
	assert.Equal(t, 1, h.reader.cancelled)
}

func TestRouter_SearchRequiresQuery(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.get("/api/v1/search?q=%20")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	h.reader.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_Overview(t *testing.T) {
	h := newRouterHarness(t)
	data := &ports.MapData{
		Graph:       aggregates.NewGraph([]entities.Node{entities.MustNode("note-1", "One")}, nil),
		Communities: []entities.Community{{ID: "c1", TopTerms: []string{"go"}, NodeCount: 1}},
	}
	h.reader.On("Overview", mock.Anything, "work").Return(data, &ports.GraphStats{TotalNodes: 1}, nil)

	rec := h.get("/api/v1/overview?scope=work")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handlers.OverviewResponse
	decodeEnvelope(t, rec, &resp)
	assert.Equal(t, 1, resp.MapNodes)
	require.Len(t, resp.Communities, 1)
	assert.Equal(t, "go", resp.Communities[0].Label)
	assert.Equal(t, 1, resp.Stats.TotalNodes)
}

func TestRouter_StatsNetworkError(t *testing.T) {
	h := newRouterHarness(t)
	h.reader.On("Stats", mock.Anything).Return(nil, pkgerrors.NewStatusError("stats", http.StatusInternalServerError))

	rec := h.get("/api/v1/stats")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"retryable":true`)
}

func TestRouter_Presets(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.get("/api/v1/presets")

	require.Equal(t, http.StatusOK, rec.Code)
	var presets []layout.Preset
	decodeEnvelope(t, rec, &presets)
	require.NotEmpty(t, presets)
	assert.Equal(t, layout.PresetTight, presets[0].Name)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	h := newRouterHarness(t)
	h.get("/health")

	rec := h.get("/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "braingraph_http_requests_total"))
}
