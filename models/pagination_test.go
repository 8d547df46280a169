package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageMeta(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		pageSize int
		pages    int
	}{
		{"empty", 0, 10, 0},
		{"exact", 20, 10, 2},
		{"remainder", 21, 10, 3},
		{"single", 1, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewPageMeta(1, tt.pageSize, tt.total)
			assert.Equal(t, tt.pages, meta.Pages)
			assert.Equal(t, tt.total, meta.Total)
		})
	}
}

func TestPageMetaOffset(t *testing.T) {
	assert.Equal(t, int64(0), NewPageMeta(1, 10, 50).Offset())
	assert.Equal(t, int64(20), NewPageMeta(3, 10, 50).Offset())
}

func TestParseSort(t *testing.T) {
	spec, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSort, spec)

	spec, err = ParseSort("-updatedAt")
	require.NoError(t, err)
	assert.Equal(t, SortSpec{Field: "updatedAt", Desc: true}, spec)

	spec, err = ParseSort("isRead")
	require.NoError(t, err)
	assert.Equal(t, SortSpec{Field: "isRead"}, spec)

	_, err = ParseSort("ownerId")
	assert.Error(t, err)
}

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{Current: 0, PageSize: 0}.Normalize(DefaultPageSize, MaxPageSize)
	assert.Equal(t, 1, q.Current)
	assert.Equal(t, DefaultPageSize, q.PageSize)
	assert.Equal(t, DefaultSort, q.Sort)

	q = ListQuery{Current: 4, PageSize: 1000}.Normalize(DefaultPageSize, MaxPageSize)
	assert.Equal(t, 4, q.Current)
	assert.Equal(t, MaxPageSize, q.PageSize)
}
