package models

import (
	"fmt"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageMeta describes one page of an owner-scoped listing. Current is
// 1-indexed.
type PageMeta struct {
	Current  int   `json:"current"`
	PageSize int   `json:"pageSize"`
	Pages    int   `json:"pages"`
	Total    int64 `json:"total"`
}

func NewPageMeta(current, pageSize int, total int64) PageMeta {
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return PageMeta{Current: current, PageSize: pageSize, Pages: pages, Total: total}
}

// Page is the list response envelope.
type Page[T any] struct {
	Meta   PageMeta `json:"meta"`
	Result []T      `json:"result"`
}

// Offset returns the number of records preceding the current page.
func (m PageMeta) Offset() int64 {
	return int64(m.Current-1) * int64(m.PageSize)
}

// SortSpec is a validated sort key.
type SortSpec struct {
	Field string
	Desc  bool
}

var sortableFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"isRead":    true,
	"status":    true,
}

// DefaultSort lists newest first.
var DefaultSort = SortSpec{Field: "createdAt", Desc: true}

// ParseSort accepts "field" (ascending) or "-field" (descending). An empty
// string yields DefaultSort.
func ParseSort(raw string) (SortSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSort, nil
	}
	spec := SortSpec{Field: raw}
	if strings.HasPrefix(raw, "-") {
		spec = SortSpec{Field: raw[1:], Desc: true}
	} else if strings.HasPrefix(raw, "+") {
		spec.Field = raw[1:]
	}
	if !sortableFields[spec.Field] {
		return SortSpec{}, fmt.Errorf("unsupported sort key %q", spec.Field)
	}
	return spec, nil
}

// ListQuery selects one page of an owner's notifications.
type ListQuery struct {
	Current  int
	PageSize int
	Sort     SortSpec
}

// Normalize clamps the page into range and fills defaults.
func (q ListQuery) Normalize(defaultSize, maxSize int) ListQuery {
	if q.Current < 1 {
		q.Current = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultSize
	}
	if maxSize > 0 && q.PageSize > maxSize {
		q.PageSize = maxSize
	}
	if q.Sort.Field == "" {
		q.Sort = DefaultSort
	}
	return q
}
