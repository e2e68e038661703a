package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"braingraph/application/ports"
	"braingraph/application/queries"
	"braingraph/application/queries/bus"
	"braingraph/domain/config"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	pkgerrors "braingraph/pkg/errors"
	"braingraph/pkg/observability"
)

// Slot is a logical request lane. A new request in a slot cancels the one
// still running there.
type Slot string

const (
	SlotExplore Slot = "explore"
	SlotMap     Slot = "map"
	SlotPath    Slot = "path"
	SlotSearch  Slot = "search"
	SlotStats   Slot = "stats"
)

// GraphDataService fetches graph data through the query bus, superseding
// stale requests per slot and debouncing search input.
type GraphDataService struct {
	bus     *bus.QueryBus
	cfg     *config.DomainConfig
	stale   queries.StaleTimes
	metrics *observability.Collector
	logger  *zap.Logger

	mu    sync.Mutex
	slots map[Slot]*slotToken
}

type slotToken struct {
	cancel context.CancelFunc
}

// NewGraphDataService creates a new graph data service
func NewGraphDataService(
	queryBus *bus.QueryBus,
	cfg *config.DomainConfig,
	stale queries.StaleTimes,
	metrics *observability.Collector,
	logger *zap.Logger,
) *GraphDataService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &GraphDataService{
		bus:     queryBus,
		cfg:     cfg,
		stale:   stale,
		metrics: metrics,
		logger:  logger,
		slots:   make(map[Slot]*slotToken),
	}
}

// LocalNeighborhood fetches the neighborhood of nodeID in the explore slot
func (s *GraphDataService) LocalNeighborhood(ctx context.Context, nodeID string, depth int, layers []string, minWeight float64) (*aggregates.Graph, error) {
	q := queries.LocalNeighborhoodQuery{
		NodeID:    nodeID,
		Depth:     depth,
		Layers:    layers,
		MinWeight: minWeight,
		Stale:     s.stale.Local,
	}
	res, err := s.run(ctx, SlotExplore, q, 0)
	if err != nil {
		return nil, err
	}
	return res.(*aggregates.Graph), nil
}

// Map fetches the clustered overview in the map slot
func (s *GraphDataService) Map(ctx context.Context, scope string) (*ports.MapData, error) {
	res, err := s.run(ctx, SlotMap, queries.MapQuery{Scope: scope, Stale: s.stale.Map}, 0)
	if err != nil {
		return nil, err
	}
	return res.(*ports.MapData), nil
}

// Path fetches the path between two nodes in the path slot
func (s *GraphDataService) Path(ctx context.Context, from, to string, limit int) (*ports.PathData, error) {
	if limit <= 0 {
		limit = s.cfg.PathLimit
	}
	res, err := s.run(ctx, SlotPath, queries.PathQuery{From: from, To: to, Limit: limit, Stale: s.stale.Path}, 0)
	if err != nil {
		return nil, err
	}
	return res.(*ports.PathData), nil
}

// Search runs a debounced search. Queries shorter than the minimum length
// return no results immediately and still cancel any pending search.
func (s *GraphDataService) Search(ctx context.Context, query string, limit int) ([]entities.Node, error) {
	trimmed := strings.TrimSpace(query)
	if len([]rune(trimmed)) < s.cfg.SearchMinLength {
		s.cancelSlot(SlotSearch)
		return []entities.Node{}, nil
	}
	if limit <= 0 {
		limit = s.cfg.SearchLimit
	}
	res, err := s.run(ctx, SlotSearch, queries.SearchQuery{Query: trimmed, Limit: limit, Stale: s.stale.Search}, s.cfg.SearchDebounce)
	if err != nil {
		return nil, err
	}
	return res.([]entities.Node), nil
}

// Stats fetches graph-wide counts in the stats slot
func (s *GraphDataService) Stats(ctx context.Context) (*ports.GraphStats, error) {
	res, err := s.run(ctx, SlotStats, queries.StatsQuery{Stale: s.stale.Stats}, 0)
	if err != nil {
		return nil, err
	}
	return res.(*ports.GraphStats), nil
}

// Overview fetches the map and stats concurrently
func (s *GraphDataService) Overview(ctx context.Context, scope string) (*ports.MapData, *ports.GraphStats, error) {
	var (
		data  *ports.MapData
		stats *ports.GraphStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data, err = s.Map(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.Stats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return data, stats, nil
}

// CancelAll cancels every in-flight request. Used on view teardown.
func (s *GraphDataService) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for slot, tok := range s.slots {
		tok.cancel()
		delete(s.slots, slot)
	}
}

func (s *GraphDataService) cancelSlot(slot Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok, ok := s.slots[slot]; ok {
		tok.cancel()
		delete(s.slots, slot)
		s.recordCancel(slot)
	}
}

func (s *GraphDataService) run(ctx context.Context, slot Slot, q bus.Query, debounce time.Duration) (interface{}, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	rctx, cancel := context.WithCancel(ctx)
	tok := &slotToken{cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.slots[slot]; ok {
		prev.cancel()
		s.recordCancel(slot)
	}
	s.slots[slot] = tok
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.slots[slot] == tok {
			delete(s.slots, slot)
		}
		s.mu.Unlock()
		cancel()
	}()

	if debounce > 0 {
		timer := time.NewTimer(debounce)
		select {
		case <-timer.C:
		case <-rctx.Done():
			timer.Stop()
			return nil, pkgerrors.NewCancelledError(string(slot))
		}
	}

	res, err := s.bus.Ask(rctx, q)
	if rctx.Err() != nil && (err != nil || s.superseded(slot, tok)) {
		// A result that lands after its request was superseded is dropped.
		return nil, pkgerrors.NewCancelledError(string(slot))
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *GraphDataService) superseded(slot Slot, tok *slotToken) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[slot] != tok
}

func (s *GraphDataService) recordCancel(slot Slot) {
	if s.metrics != nil {
		s.metrics.QueryCancelled.WithLabelValues(string(slot)).Inc()
	}
}
