package common

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPaginationParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  PaginationParams
	}{
		{"defaults", "", PaginationParams{Page: 1, PageSize: 20}},
		{"explicit", "?page=3&page_size=5", PaginationParams{Page: 3, PageSize: 5}},
		{"capped page size", "?page_size=500", PaginationParams{Page: 1, PageSize: maxPageSize}},
		{"garbage ignored", "?page=-1&page_size=abc", PaginationParams{Page: 1, PageSize: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/search"+tt.query, nil)
			assert.Equal(t, tt.want, ExtractPaginationParams(r))
		})
	}
}

func TestPaginate(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	page := Paginate(all, PaginationParams{Page: 2, PageSize: 2})

	assert.Equal(t, []int{3, 4}, page.Items)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)

	past := Paginate(all, PaginationParams{Page: 9, PageSize: 2})
	assert.Empty(t, past.Items)
	assert.False(t, past.Pagination.HasNext)
}

func TestPaginationParams_Fetch(t *testing.T) {
	assert.Equal(t, 7, PaginationParams{Page: 3, PageSize: 2}.Fetch())
}
