// Package pagination reads page/per_page query parameters and builds paged
// list responses.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params is a validated page request. Offset is derived from Page and PerPage.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

func newParams(page, perPage int) Params {
	return Params{Page: page, PerPage: perPage, Offset: (page - 1) * perPage}
}

// DefaultParams is the first page of DefaultPerPage entries.
func DefaultParams() Params { return newParams(1, DefaultPerPage) }

// FromRequest reads page and per_page. A value that is missing, not a
// number or out of range is replaced by its default independently.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	return newParams(
		intParam(q.Get("page"), 1, 1, int(^uint(0)>>1)/MaxPerPage),
		intParam(q.Get("per_page"), DefaultPerPage, 1, MaxPerPage),
	)
}

func intParam(raw string, def, lo, hi int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return def
	}
	return v
}

// Result is one page of T plus the totals a client needs to navigate.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewResult builds a page. A nil data slice is encoded as [].
func NewResult[T any](data []T, totalCount int, p Params) Result[T] {
	if data == nil {
		data = []T{}
	}
	pages := (totalCount + p.PerPage - 1) / p.PerPage
	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: pages,
		HasNext:    p.Page < pages,
		HasPrev:    p.Page > 1,
	}
}
