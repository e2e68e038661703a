package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"braingraph/interfaces/snapshot"
	"braingraph/pkg/common"
	pkgerrors "braingraph/pkg/errors"
)

// Renderer renders view snapshots
type Renderer interface {
	Render(ctx context.Context, req snapshot.Request) (*snapshot.Result, error)
}

// ViewHandler serves PNG snapshots of the graph views
type ViewHandler struct {
	renderer Renderer
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewViewHandler creates a new view handler
func NewViewHandler(renderer Renderer, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *ViewHandler {
	return &ViewHandler{
		renderer: renderer,
		errors:   errors,
		logger:   logger,
	}
}

// Render handles GET /views/{view}
func (h *ViewHandler) Render(w http.ResponseWriter, r *http.Request) {
	req, err := parseSnapshotRequest(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.renderer.Render(r.Context(), req)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("view rendered",
		zap.String("view", req.View),
		zap.String("status", string(result.Scene.Status)),
		zap.Int("nodes", result.Stats.Nodes),
		zap.Int("edges", result.Stats.Edges),
		zap.Int("ticks", result.Ticks),
		zap.Duration("elapsed", common.GetElapsedTime(r.Context())),
	)
	w.Header().Set("X-Scene-Status", string(result.Scene.Status))
	w.Header().Set("X-Scene-Nodes", strconv.Itoa(result.Stats.Nodes))
	w.Header().Set("X-Scene-Edges", strconv.Itoa(result.Stats.Edges))
	common.RespondPNG(w, result.PNG)
}

func parseSnapshotRequest(r *http.Request) (snapshot.Request, error) {
	q := r.URL.Query()
	req := snapshot.Request{
		View:           chi.URLParam(r, "view"),
		NodeID:         q.Get("node"),
		From:           q.Get("from"),
		To:             q.Get("to"),
		Scope:          q.Get("scope"),
		Preset:         q.Get("preset"),
		Theme:          q.Get("theme"),
		Search:         q.Get("q"),
		WaitThumbnails: q.Get("wait_thumbnails") == "true",
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"depth", &req.Depth},
		{"width", &req.Width},
		{"height", &req.Height},
	}
	for _, p := range ints {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return req, pkgerrors.NewValidationError(fmt.Sprintf("%s must be an integer", p.key))
		}
		*p.dst = v
	}
	return req, nil
}
