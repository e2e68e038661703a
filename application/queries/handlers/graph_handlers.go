package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"braingraph/application/ports"
	"braingraph/application/queries"
	"braingraph/application/queries/bus"
	pkgerrors "braingraph/pkg/errors"
)

// LocalNeighborhoodHandler handles neighborhood queries
type LocalNeighborhoodHandler struct {
	backend ports.GraphBackend
	logger  *zap.Logger
}

// NewLocalNeighborhoodHandler creates a new neighborhood handler
func NewLocalNeighborhoodHandler(backend ports.GraphBackend, logger *zap.Logger) *LocalNeighborhoodHandler {
	return &LocalNeighborhoodHandler{backend: backend, logger: logger}
}

// Handle executes the neighborhood query
func (h *LocalNeighborhoodHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.LocalNeighborhoodQuery)
	if !ok {
		return nil, unexpected(query)
	}
	q = q.Normalize()

	g, err := h.backend.LocalNeighborhood(ctx, q.NodeID, q.Depth, q.Layers, q.MinWeight)
	if err != nil {
		logFailure(h.logger, "local neighborhood", err, zap.String("node_id", q.NodeID), zap.Int("depth", q.Depth))
		return nil, err
	}

	if g.Duplicates() > 0 {
		h.logger.Warn("backend returned duplicate node ids",
			zap.String("node_id", q.NodeID),
			zap.Int("duplicates", g.Duplicates()),
		)
	}
	return g, nil
}

// MapHandler handles clustered overview queries
type MapHandler struct {
	backend ports.GraphBackend
	logger  *zap.Logger
}

// NewMapHandler creates a new map handler
func NewMapHandler(backend ports.GraphBackend, logger *zap.Logger) *MapHandler {
	return &MapHandler{backend: backend, logger: logger}
}

// Handle executes the map query
func (h *MapHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.MapQuery)
	if !ok {
		return nil, unexpected(query)
	}
	q = q.Normalize()

	data, err := h.backend.Map(ctx, q.Scope)
	if err != nil {
		logFailure(h.logger, "map", err, zap.String("scope", q.Scope))
		return nil, err
	}
	return data, nil
}

// PathHandler handles path queries
type PathHandler struct {
	backend ports.GraphBackend
	logger  *zap.Logger
}

// NewPathHandler creates a new path handler
func NewPathHandler(backend ports.GraphBackend, logger *zap.Logger) *PathHandler {
	return &PathHandler{backend: backend, logger: logger}
}

// Handle executes the path query
func (h *PathHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.PathQuery)
	if !ok {
		return nil, unexpected(query)
	}
	q = q.Normalize()

	data, err := h.backend.Path(ctx, q.From, q.To, q.Limit)
	if err != nil {
		logFailure(h.logger, "path", err, zap.String("from", q.From), zap.String("to", q.To))
		return nil, err
	}
	return data, nil
}

// SearchHandler handles search queries
type SearchHandler struct {
	backend ports.GraphBackend
	logger  *zap.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(backend ports.GraphBackend, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{backend: backend, logger: logger}
}

// Handle executes the search query
func (h *SearchHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.SearchQuery)
	if !ok {
		return nil, unexpected(query)
	}
	q = q.Normalize()

	nodes, err := h.backend.Search(ctx, q.Query, q.Limit)
	if err != nil {
		logFailure(h.logger, "search", err, zap.String("query", q.Query))
		return nil, err
	}
	return nodes, nil
}

// StatsHandler handles stats queries
type StatsHandler struct {
	backend ports.GraphBackend
	logger  *zap.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(backend ports.GraphBackend, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{backend: backend, logger: logger}
}

// Handle executes the stats query
func (h *StatsHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	if _, ok := query.(queries.StatsQuery); !ok {
		return nil, unexpected(query)
	}

	stats, err := h.backend.Stats(ctx)
	if err != nil {
		logFailure(h.logger, "stats", err)
		return nil, err
	}
	return stats, nil
}

// RegisterAll wires every graph query handler into b
func RegisterAll(b *bus.QueryBus, backend ports.GraphBackend, logger *zap.Logger) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.LocalNeighborhoodQuery{}, NewLocalNeighborhoodHandler(backend, logger)},
		{queries.MapQuery{}, NewMapHandler(backend, logger)},
		{queries.PathQuery{}, NewPathHandler(backend, logger)},
		{queries.SearchQuery{}, NewSearchHandler(backend, logger)},
		{queries.StatsQuery{}, NewStatsHandler(backend, logger)},
	}
	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func unexpected(query bus.Query) error {
	return pkgerrors.NewInternalError(fmt.Sprintf("unexpected query type %T", query))
}

func logFailure(logger *zap.Logger, op string, err error, fields ...zap.Field) {
	if pkgerrors.IsCancelled(err) {
		return
	}
	logger.Warn(op+" query failed", append(fields, zap.Error(err))...)
}
