package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"braingraph/domain/core/valueobjects"
	"braingraph/pkg/common"
	pkgerrors "braingraph/pkg/errors"
	"braingraph/pkg/observability"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, r chi.Router, breaker BreakerConfig) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL + "/", Breaker: breaker}, srv.Client(), zap.NewNop(),
		observability.NewCollector("braingraph"), observability.NewTracer("braingraph-test"))
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsInvalidURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "not a url"}, nil, nil, nil, nil)

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestClient_LocalNeighborhood(t *testing.T) {
	// Arrange
	var seen http.Header
	var query map[string]string
	r := chi.NewRouter()
	r.Get(PathLocal, func(w http.ResponseWriter, req *http.Request) {
		seen = req.Header.Clone()
		q := req.URL.Query()
		query = map[string]string{
			"nodeId":    q.Get("nodeId"),
			"depth":     q.Get("depth"),
			"layers":    q.Get("layers"),
			"minWeight": q.Get("minWeight"),
		}
		writeJSON(w, map[string]interface{}{
			"nodes": []map[string]interface{}{
				{"id": "note-1", "title": "Start"},
				{"id": "note-2", "title": "Second"},
				{"id": "tag-5", "title": "golang", "metadata": map[string]interface{}{"usage_count": 4}},
			},
			"edges": []map[string]interface{}{
				{"source": "note-1", "target": "note-2", "type": "wikilink", "weight": 0.9},
				{"source": "note-1", "target": "tag-5", "type": "tag", "weight": 0.5, "evidence": "#golang"},
			},
		})
	})
	c := newTestClient(t, r, DefaultBreakerConfig())
	okBefore := testutil.ToFloat64(c.metrics.BackendRequests.WithLabelValues("local", "ok"))

	// Act
	g, err := c.LocalNeighborhood(context.Background(), "note-1", 2, []string{"notes", "tags"}, 0)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"nodeId": "note-1", "depth": "2", "layers": "notes,tags", "minWeight": "0"}, query)
	_, err = uuid.Parse(seen.Get(headerRequestID))
	assert.NoError(t, err)
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, "#golang", g.Edges()[1].Evidence)
	tag, ok := g.Node(valueobjects.ParseNodeID("tag-5"))
	require.True(t, ok)
	assert.Equal(t, valueobjects.NodeTypeTag, tag.Type())
	assert.Equal(t, okBefore+1, testutil.ToFloat64(c.metrics.BackendRequests.WithLabelValues("local", "ok")))
}

func TestClient_MapAcceptsLinksAndPositions(t *testing.T) {
	r := chi.NewRouter()
	r.Get(PathMap, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "research", req.URL.Query().Get("scope"))
		writeJSON(w, map[string]interface{}{
			"nodes": []map[string]interface{}{
				{"id": "note-1", "x": 10.0, "y": 20.0, "metadata": map[string]interface{}{"communityId": 7.0}},
				{"id": "note-2", "metadata": map[string]interface{}{"communityId": 7.0}},
			},
			"links":       []map[string]interface{}{{"source": "note-1", "target": "note-2", "type": "semantic", "weight": 0.4}},
			"positions":   map[string]interface{}{"note-2": map[string]float64{"x": -5, "y": 3}},
			"communities": []map[string]interface{}{{"id": 7, "label": "", "node_count": 2, "top_terms": []string{"graphs"}}},
		})
	})
	c := newTestClient(t, r, DefaultBreakerConfig())

	data, err := c.Map(context.Background(), "research")

	require.NoError(t, err)
	assert.Equal(t, 1, data.Graph.EdgeCount())
	n2, _ := data.Graph.Node(valueobjects.ParseNodeID("note-2"))
	pos, ok := n2.Position()
	require.True(t, ok)
	assert.Equal(t, valueobjects.Point{X: -5, Y: 3}, pos)
	community, ok := data.Community("7")
	require.True(t, ok)
	assert.Equal(t, "graphs", community.DisplayLabel())
}

func TestClient_Path(t *testing.T) {
	tests := []struct {
		name      string
		payload   map[string]interface{}
		wantIDs   []string
		wantTitle string
	}{
		{
			name: "node objects",
			payload: map[string]interface{}{
				"path":  []map[string]interface{}{{"id": "note-1", "title": "A"}, {"id": "note-3", "title": "C"}},
				"edges": []map[string]interface{}{{"source": "note-1", "target": "note-3", "type": "wikilink", "weight": 1}},
			},
			wantIDs:   []string{"note-1", "note-3"},
			wantTitle: "A",
		},
		{
			name: "bare ids resolved against nodes",
			payload: map[string]interface{}{
				"path":  []string{"note-1", "note-3"},
				"nodes": []map[string]interface{}{{"id": "note-1", "title": "Alpha"}},
				"links": []map[string]interface{}{{"source": "note-1", "target": "note-3", "type": "tag", "weight": 0.5}},
			},
			wantIDs:   []string{"note-1", "note-3"},
			wantTitle: "Alpha",
		},
		{
			name:    "no path",
			payload: map[string]interface{}{"path": []string{}, "edges": []interface{}{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Get(PathPath, func(w http.ResponseWriter, req *http.Request) {
				assert.Equal(t, "10", req.URL.Query().Get("limit"))
				writeJSON(w, tt.payload)
			})
			c := newTestClient(t, r, DefaultBreakerConfig())

			data, err := c.Path(context.Background(), "note-1", "note-3", 10)

			require.NoError(t, err)
			ids := make([]string, 0, len(data.Path))
			for _, n := range data.Path {
				ids = append(ids, n.ID().String())
			}
			if tt.wantIDs == nil {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantTitle, data.Path[0].Title())
			assert.Len(t, data.Edges, 1)
		})
	}
}

func TestClient_SearchAndStats(t *testing.T) {
	r := chi.NewRouter()
	r.Get(PathSearch, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "go", req.URL.Query().Get("q"))
		writeJSON(w, map[string]interface{}{"nodes": []map[string]interface{}{{"id": "tag-5", "title": "golang"}}})
	})
	r.Get(PathStats, func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, map[string]interface{}{"total_nodes": 12, "total_edges": 30, "node_counts": map[string]int{"note": 9}, "communities": 3})
	})
	c := newTestClient(t, r, DefaultBreakerConfig())

	nodes, err := c.Search(context.Background(), "go", 20)
	require.NoError(t, err)
	stats, err := c.Stats(context.Background())
	require.NoError(t, err)

	require.Len(t, nodes, 1)
	assert.Equal(t, "golang", nodes[0].Title())
	assert.Equal(t, 12, stats.TotalNodes)
	assert.Equal(t, 9, stats.NodeCounts["note"])
	assert.NotNil(t, stats.EdgeCounts)
}

func TestClient_ErrorMapping(t *testing.T) {
	r := chi.NewRouter()
	r.Get(PathStats, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	r.Get(PathSearch, func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})
	r.Get(PathLocal, func(w http.ResponseWriter, req *http.Request) {
		select {
		case <-req.Context().Done():
		case <-time.After(time.Second):
		}
	})
	c := newTestClient(t, r, DefaultBreakerConfig())

	_, err := c.Stats(context.Background())
	assert.True(t, pkgerrors.IsNetwork(err))
	assert.True(t, pkgerrors.IsRetryable(err))

	_, err = c.Search(context.Background(), "go", 5)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDecode))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err = c.LocalNeighborhood(ctx, "note-1", 2, nil, 0)
	assert.True(t, pkgerrors.IsCancelled(err))
}

func TestClient_BreakerTripsOnServerErrorsOnly(t *testing.T) {
	// Arrange
	r := chi.NewRouter()
	r.Get(PathStats, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	r.Get(PathSearch, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	cfg := DefaultBreakerConfig()
	cfg.MinRequests = 3
	cfg.FailureThreshold = 0.3
	c := newTestClient(t, r, cfg)

	// Act
	for i := 0; i < 5; i++ {
		_, _ = c.Search(context.Background(), "q", 1)
	}
	stateAfterClientErrors := c.BreakerState()
	for i := 0; i < 3; i++ {
		_, _ = c.Stats(context.Background())
	}
	_, err := c.Stats(context.Background())

	// Assert
	assert.Equal(t, gobreaker.StateClosed, stateAfterClientErrors)
	assert.Equal(t, gobreaker.StateOpen, c.BreakerState())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
	assert.True(t, pkgerrors.IsRetryable(err))
}

func TestClient_FetchThumbnail(t *testing.T) {
	// Arrange
	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	src.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	r := chi.NewRouter()
	r.Get(PathImages+"{id}", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "true", req.URL.Query().Get("thumbnail"))
		if chi.URLParam(req, "id") != "3" {
			_, _ = w.Write([]byte("garbage"))
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	})
	c := newTestClient(t, r, DefaultBreakerConfig())

	// Act
	img, err := c.FetchThumbnail(context.Background(), valueobjects.ParseNodeID("image-3"))
	_, badErr := c.FetchThumbnail(context.Background(), valueobjects.ParseNodeID("image-4"))
	_, prefixedErr := c.FetchThumbnail(context.Background(), valueobjects.ParseNodeID("image-image-3"))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	assert.True(t, pkgerrors.IsType(badErr, pkgerrors.ErrorTypeDecode))
	assert.True(t, pkgerrors.IsType(prefixedErr, pkgerrors.ErrorTypeDecode), "the type prefix must not reach the path")
}

func TestClient_ForwardsContextRequestID(t *testing.T) {
	var seen string
	r := chi.NewRouter()
	r.Get(PathStats, func(w http.ResponseWriter, req *http.Request) {
		seen = req.Header.Get("X-Request-ID")
		writeJSON(w, map[string]interface{}{"total_nodes": 1, "total_edges": 0})
	})
	c := newTestClient(t, r, DefaultBreakerConfig())

	_, err := c.Stats(common.WithRequestID(context.Background(), "req-42"))

	require.NoError(t, err)
	assert.Equal(t, "req-42", seen)
}
