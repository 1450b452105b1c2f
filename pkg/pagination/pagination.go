// Package pagination computes page windows for list endpoints.
package pagination

import (
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// Pagination describes one page of a result set of Total rows. The zero value
// is not valid; use New.
type Pagination struct {
	page     int
	pageSize int
	total    int
}

// New returns the window for the given page. Page and pageSize start at 1 and
// total can't be negative. A page past the last one is allowed; it is simply
// empty.
func New(page, pageSize, total int) (Pagination, error) {
	if page < 1 {
		return Pagination{}, errors.Errorf("page must be at least 1, got %d", page)
	}
	if pageSize < 1 {
		return Pagination{}, errors.Errorf("page size must be at least 1, got %d", pageSize)
	}
	if total < 0 {
		return Pagination{}, errors.Errorf("total can't be negative, got %d", total)
	}
	return Pagination{page: page, pageSize: pageSize, total: total}, nil
}

func (p Pagination) Page() int     { return p.page }
func (p Pagination) PageSize() int { return p.pageSize }
func (p Pagination) Total() int    { return p.total }

func (p Pagination) Offset() int {
	return (p.page - 1) * p.pageSize
}

func (p Pagination) PageCount() int {
	return (p.total + p.pageSize - 1) / p.pageSize
}

func (p Pagination) HasPrevious() bool {
	return p.page > 1
}

func (p Pagination) HasNext() bool {
	return p.page < p.PageCount()
}

func (p Pagination) IsPaginated() bool {
	return p.HasPrevious() || p.HasNext()
}

type payload struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	Total       int  `json:"total"`
	Offset      int  `json:"offset"`
	PageCount   int  `json:"page_count"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
	IsPaginated bool `json:"is_paginated"`
}

func (p Pagination) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(payload{
		Page:        p.page,
		PageSize:    p.pageSize,
		Total:       p.total,
		Offset:      p.Offset(),
		PageCount:   p.PageCount(),
		HasPrevious: p.HasPrevious(),
		HasNext:     p.HasNext(),
		IsPaginated: p.IsPaginated(),
	})
	return b, errors.WithStack(err)
}

// PageSize resolves a requested page size against the configured default and
// maximum. Zero or negative requests get the default.
func PageSize(requested, def, max int) int {
	switch {
	case requested <= 0:
		return def
	case requested > max:
		return max
	}
	return requested
}
