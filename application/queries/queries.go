package queries

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	pkgerrors "braingraph/pkg/errors"
	"braingraph/pkg/utils"
)

// Default staleness windows per query shape
const (
	LocalStaleTime  = 30 * time.Second
	MapStaleTime    = 2 * time.Minute
	PathStaleTime   = time.Minute
	SearchStaleTime = 30 * time.Second
	StatsStaleTime  = 5 * time.Minute
)

// StaleTimes lets configuration override the defaults
type StaleTimes struct {
	Local  time.Duration
	Map    time.Duration
	Path   time.Duration
	Search time.Duration
	Stats  time.Duration
}

// DefaultStaleTimes returns the built-in windows
func DefaultStaleTimes() StaleTimes {
	return StaleTimes{
		Local:  LocalStaleTime,
		Map:    MapStaleTime,
		Path:   PathStaleTime,
		Search: SearchStaleTime,
		Stats:  StatsStaleTime,
	}
}

func validate(q interface{}) error {
	if err := utils.ValidateStruct(q); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}

// NormalizeLayers sorts, lowercases and deduplicates layer names so permutations
// of the same set share a cache entry
func NormalizeLayers(layers []string) []string {
	seen := make(map[string]struct{}, len(layers))
	out := make([]string, 0, len(layers))
	for _, l := range layers {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

// LocalNeighborhoodQuery fetches the subgraph around one node
type LocalNeighborhoodQuery struct {
	NodeID    string   `json:"node_id" validate:"required"`
	Depth     int      `json:"depth" validate:"gte=1,lte=3"`
	Layers    []string `json:"layers" validate:"dive,oneof=notes tags images entities documents"`
	MinWeight float64  `json:"min_weight" validate:"gte=0,lte=1"`

	Stale time.Duration `json:"-"`
}

// Normalize returns the query as sent to the backend. CacheKey is derived
// from the same form, so equal keys always mean equal requests.
func (q LocalNeighborhoodQuery) Normalize() LocalNeighborhoodQuery {
	q.NodeID = strings.TrimSpace(q.NodeID)
	q.Layers = NormalizeLayers(q.Layers)
	return q
}

// Validate validates the query
func (q LocalNeighborhoodQuery) Validate() error {
	return validate(q.Normalize())
}

// CacheKey identifies the result of this query
func (q LocalNeighborhoodQuery) CacheKey() string {
	q = q.Normalize()
	return fmt.Sprintf("local:%s:%d:%s:%s",
		q.NodeID, q.Depth, strings.Join(q.Layers, ","), formatWeight(q.MinWeight))
}

// StaleTime is how long a cached result stays fresh
func (q LocalNeighborhoodQuery) StaleTime() time.Duration {
	if q.Stale > 0 {
		return q.Stale
	}
	return LocalStaleTime
}

// Name labels the query in metrics and traces
func (q LocalNeighborhoodQuery) Name() string { return "local" }

// MapQuery fetches the clustered overview
type MapQuery struct {
	Scope string `json:"scope" validate:"omitempty,max=64"`

	Stale time.Duration `json:"-"`
}

// Normalize returns the query as sent to the backend
func (q MapQuery) Normalize() MapQuery {
	q.Scope = strings.TrimSpace(q.Scope)
	return q
}

// Validate validates the query
func (q MapQuery) Validate() error { return validate(q.Normalize()) }

// CacheKey identifies the result of this query
func (q MapQuery) CacheKey() string {
	scope := q.Normalize().Scope
	if scope == "" {
		scope = "all"
	}
	return "map:" + scope
}

// StaleTime is how long a cached result stays fresh
func (q MapQuery) StaleTime() time.Duration {
	if q.Stale > 0 {
		return q.Stale
	}
	return MapStaleTime
}

// Name labels the query in metrics and traces
func (q MapQuery) Name() string { return "map" }

// PathQuery fetches the path between two nodes
type PathQuery struct {
	From  string `json:"from" validate:"required"`
	To    string `json:"to" validate:"required"`
	Limit int    `json:"limit" validate:"gte=1,lte=50"`

	Stale time.Duration `json:"-"`
}

// Normalize returns the query as sent to the backend
func (q PathQuery) Normalize() PathQuery {
	q.From = strings.TrimSpace(q.From)
	q.To = strings.TrimSpace(q.To)
	return q
}

// Validate validates the query
func (q PathQuery) Validate() error { return validate(q.Normalize()) }

// CacheKey identifies the result of this query
func (q PathQuery) CacheKey() string {
	q = q.Normalize()
	return fmt.Sprintf("path:%s:%s:%d", q.From, q.To, q.Limit)
}

// StaleTime is how long a cached result stays fresh
func (q PathQuery) StaleTime() time.Duration {
	if q.Stale > 0 {
		return q.Stale
	}
	return PathStaleTime
}

// Name labels the query in metrics and traces
func (q PathQuery) Name() string { return "path" }

// SearchQuery runs a free-text node search
type SearchQuery struct {
	Query string `json:"q" validate:"required,min=2,max=200"`
	Limit int    `json:"limit" validate:"gte=1,lte=100"`

	Stale time.Duration `json:"-"`
}

// Normalize returns the query as sent to the backend. Case is kept: the
// backend decides whether matching is case-sensitive.
func (q SearchQuery) Normalize() SearchQuery {
	q.Query = strings.TrimSpace(q.Query)
	return q
}

// Validate validates the query
func (q SearchQuery) Validate() error { return validate(q.Normalize()) }

// CacheKey identifies the result of this query
func (q SearchQuery) CacheKey() string {
	return fmt.Sprintf("search:%s:%d", q.Normalize().Query, q.Limit)
}

// StaleTime is how long a cached result stays fresh
func (q SearchQuery) StaleTime() time.Duration {
	if q.Stale > 0 {
		return q.Stale
	}
	return SearchStaleTime
}

// Name labels the query in metrics and traces
func (q SearchQuery) Name() string { return "search" }

// StatsQuery fetches graph-wide counts
type StatsQuery struct {
	Stale time.Duration `json:"-"`
}

// Validate validates the query
func (q StatsQuery) Validate() error { return nil }

// CacheKey identifies the result of this query
func (q StatsQuery) CacheKey() string { return "stats" }

// StaleTime is how long a cached result stays fresh
func (q StatsQuery) StaleTime() time.Duration {
	if q.Stale > 0 {
		return q.Stale
	}
	return StatsStaleTime
}

// Name labels the query in metrics and traces
func (q StatsQuery) Name() string { return "stats" }
