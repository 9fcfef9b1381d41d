// Package paging normalizes page requests and carries paged results.
package paging

import (
	"math"
	"net/http"
	"strconv"

	errs "github.com/tendant/simple-todo/pkg/errors"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Request is a 1-based page request.
type Request struct {
	Page     int
	PageSize int
}

// Page is one page of results plus the total number of matches.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
}

// Normalize validates req and caps PageSize at maxSize.
func Normalize(req Request, maxSize int) (Request, error) {
	details := map[string]interface{}{}
	if req.Page < 1 {
		details["page"] = "must be at least 1"
	}
	if req.PageSize < 1 {
		details["pageSize"] = "must be at least 1"
	}
	if len(details) > 0 {
		return Request{}, errs.ValidationFailed(details)
	}

	if maxSize > 0 && req.PageSize > maxSize {
		req.PageSize = maxSize
	}
	return req, nil
}

// FromQuery reads page and pageSize from the query string. Missing values
// fall back to page 1 and defaultSize; range checks are left to Normalize.
func FromQuery(r *http.Request, defaultSize int) (Request, error) {
	req := Request{Page: DefaultPage, PageSize: defaultSize}
	if req.PageSize < 1 {
		req.PageSize = DefaultPageSize
	}

	q := r.URL.Query()
	details := map[string]interface{}{}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			details["page"] = "must be an integer"
		}
		req.Page = n
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			details["pageSize"] = "must be an integer"
		}
		req.PageSize = n
	}
	if len(details) > 0 {
		return Request{}, errs.ValidationFailed(details)
	}
	return req, nil
}

// Offset is the number of rows skipped before this page. It saturates at
// math.MaxInt-PageSize for pages too far out to count.
func (r Request) Offset() int {
	if r.Page <= 1 || r.PageSize <= 0 {
		return 0
	}
	limit := math.MaxInt - r.PageSize
	if r.Page-1 > limit/r.PageSize {
		return limit
	}
	return (r.Page - 1) * r.PageSize
}

// Window returns the [start, end) bounds of this page within total rows.
func (r Request) Window(total int) (int, int) {
	start := r.Offset()
	if start > total {
		start = total
	}
	end := start + r.PageSize
	if end > total {
		end = total
	}
	return start, end
}

// New builds a Page, substituting an empty slice for nil.
func New[T any](items []T, total int, req Request) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, TotalCount: total, Page: req.Page, PageSize: req.PageSize}
}

// Map converts the items of a page.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Items))
	for i, item := range p.Items {
		out[i] = fn(item)
	}
	return Page[U]{Items: out, TotalCount: p.TotalCount, Page: p.Page, PageSize: p.PageSize}
}
