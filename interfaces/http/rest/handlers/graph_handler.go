package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"braingraph/application/ports"
	"braingraph/domain/core/entities"
	"braingraph/domain/layout"
	"braingraph/pkg/common"
	pkgerrors "braingraph/pkg/errors"
)

// GraphReader is the data service slice the JSON endpoints read from
type GraphReader interface {
	Search(ctx context.Context, query string, limit int) ([]entities.Node, error)
	Stats(ctx context.Context) (*ports.GraphStats, error)
	Overview(ctx context.Context, scope string) (*ports.MapData, *ports.GraphStats, error)
	CancelAll()
}

// PresetSource supplies the current preset registry
type PresetSource interface {
	Registry() *layout.Registry
}

// NodeResponse is a search hit
type NodeResponse struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// CommunityResponse is one map cluster
type CommunityResponse struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	NodeCount int      `json:"node_count"`
	TopTerms  []string `json:"top_terms,omitempty"`
}

// OverviewResponse is the map summary plus graph-wide counts
type OverviewResponse struct {
	Scope       string              `json:"scope,omitempty"`
	MapNodes    int                 `json:"map_nodes"`
	MapEdges    int                 `json:"map_edges"`
	Communities []CommunityResponse `json:"communities"`
	Stats       *ports.GraphStats   `json:"stats"`
}

// GraphHandler serves the JSON endpoints of the preview surface
type GraphHandler struct {
	newReader func() GraphReader
	presets   PresetSource
	errors    *pkgerrors.ErrorHandler
	logger    *zap.Logger
}

// NewGraphHandler creates a new graph handler. newReader is called once per
// request so requests never supersede each other.
func NewGraphHandler(newReader func() GraphReader, presets PresetSource, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		newReader: newReader,
		presets:   presets,
		errors:    errors,
		logger:    logger,
	}
}

// Search handles GET /search?q=&page=&page_size=
func (h *GraphHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("q is required"))
		return
	}
	page := common.ExtractPaginationParams(r)

	reader := h.newReader()
	defer reader.CancelAll()
	nodes, err := reader.Search(r.Context(), q, page.Fetch())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	hits := make([]NodeResponse, 0, len(nodes))
	for _, n := range nodes {
		hits = append(hits, NodeResponse{ID: n.ID().String(), Type: string(n.Type()), Title: n.Title()})
	}
	h.logger.Debug("search served",
		zap.String("query", q),
		zap.Int("hits", len(hits)),
		zap.Duration("elapsed", common.GetElapsedTime(r.Context())),
	)
	common.RespondJSON(w, r, http.StatusOK, common.Paginate(hits, page))
}

// Stats handles GET /stats
func (h *GraphHandler) Stats(w http.ResponseWriter, r *http.Request) {
	reader := h.newReader()
	defer reader.CancelAll()
	stats, err := reader.Stats(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, r, http.StatusOK, stats)
}

// Overview handles GET /overview?scope=, fetching the map and the counts
// concurrently
func (h *GraphHandler) Overview(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")

	reader := h.newReader()
	defer reader.CancelAll()
	data, stats, err := reader.Overview(r.Context(), scope)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	resp := OverviewResponse{
		Scope:       scope,
		Communities: make([]CommunityResponse, 0, len(data.Communities)),
		Stats:       stats,
	}
	if data.Graph != nil {
		resp.MapNodes = data.Graph.NodeCount()
		resp.MapEdges = data.Graph.EdgeCount()
	}
	for _, c := range data.Communities {
		resp.Communities = append(resp.Communities, CommunityResponse{
			ID:        c.ID,
			Label:     c.DisplayLabel(),
			NodeCount: c.NodeCount,
			TopTerms:  c.TopTerms,
		})
	}
	common.RespondJSON(w, r, http.StatusOK, resp)
}

// Presets handles GET /presets
func (h *GraphHandler) Presets(w http.ResponseWriter, r *http.Request) {
	registry := h.presets.Registry()
	names := registry.Names()
	out := make([]layout.Preset, 0, len(names))
	for _, name := range names {
		p, err := registry.Get(string(name))
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	common.RespondJSON(w, r, http.StatusOK, out)
}
