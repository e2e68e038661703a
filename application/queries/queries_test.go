package queries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	pkgerrors "braingraph/pkg/errors"
)

func TestLocalNeighborhoodQuery_CacheKeyIgnoresLayerOrder(t *testing.T) {
	a := LocalNeighborhoodQuery{NodeID: "note-1", Depth: 2, Layers: []string{"tags", "notes"}}
	b := LocalNeighborhoodQuery{NodeID: "note-1", Depth: 2, Layers: []string{"Notes", "tags", "notes"}}

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.Equal(t, "local:note-1:2:notes,tags:0", a.CacheKey())
}

func TestLocalNeighborhoodQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   LocalNeighborhoodQuery
		wantErr bool
	}{
		{"valid", LocalNeighborhoodQuery{NodeID: "note-1", Depth: 2, Layers: []string{"notes"}}, false},
		{"missing node", LocalNeighborhoodQuery{Depth: 2}, true},
		{"depth zero", LocalNeighborhoodQuery{NodeID: "note-1", Depth: 0}, true},
		{"depth above cap", LocalNeighborhoodQuery{NodeID: "note-1", Depth: 4}, true},
		{"unknown layer", LocalNeighborhoodQuery{NodeID: "note-1", Depth: 1, Layers: []string{"widgets"}}, true},
		{"mixed case layer", LocalNeighborhoodQuery{NodeID: "note-1", Depth: 1, Layers: []string{"NOTES"}}, false},
		{"weight above one", LocalNeighborhoodQuery{NodeID: "note-1", Depth: 1, MinWeight: 1.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				assert.True(t, pkgerrors.IsValidation(err), "expected validation error, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSearchQuery_KeyAndValidation(t *testing.T) {
	assert.Equal(t, SearchQuery{Query: " Go ", Limit: 20}.CacheKey(), SearchQuery{Query: "Go", Limit: 20}.CacheKey())
	assert.NotEqual(t, SearchQuery{Query: "Go", Limit: 20}.CacheKey(), SearchQuery{Query: "go", Limit: 20}.CacheKey())
	assert.Error(t, SearchQuery{Query: " a ", Limit: 20}.Validate())
	assert.NoError(t, SearchQuery{Query: "ab", Limit: 20}.Validate())
}

func TestCacheKey_MatchesNormalizedRequest(t *testing.T) {
	local := LocalNeighborhoodQuery{NodeID: " note-1 ", Depth: 2, Layers: []string{"Tags", "notes"}}
	assert.Equal(t, "note-1", local.Normalize().NodeID)
	assert.Equal(t, []string{"notes", "tags"}, local.Normalize().Layers)
	assert.Equal(t, local.Normalize().CacheKey(), local.CacheKey())
	assert.Equal(t, "local:note-1:2:notes,tags:0", local.CacheKey())

	path := PathQuery{From: " note-1", To: "note-2 ", Limit: 5}
	assert.Equal(t, PathQuery{From: "note-1", To: "note-2", Limit: 5}, path.Normalize())
	assert.Equal(t, path.Normalize().CacheKey(), path.CacheKey())

	search := SearchQuery{Query: "  Channels ", Limit: 10}
	assert.Equal(t, "Channels", search.Normalize().Query)
	assert.Equal(t, "search:Channels:10", search.CacheKey())
}

func TestMapQuery_DefaultScope(t *testing.T) {
	assert.Equal(t, "map:all", MapQuery{}.CacheKey())
	assert.Equal(t, "map:work", MapQuery{Scope: " work "}.CacheKey())
}

func TestStaleTime_OverrideAndDefault(t *testing.T) {
	assert.Equal(t, MapStaleTime, MapQuery{}.StaleTime())
	assert.Equal(t, time.Second, MapQuery{Stale: time.Second}.StaleTime())
	assert.Equal(t, StatsStaleTime, StatsQuery{}.StaleTime())
	assert.Equal(t, PathStaleTime, PathQuery{}.StaleTime())
}

func TestNormalizeLayers(t *testing.T) {
	assert.Equal(t, []string{"images", "notes"}, NormalizeLayers([]string{" notes", "", "IMAGES", "notes"}))
	assert.Empty(t, NormalizeLayers(nil))
}
