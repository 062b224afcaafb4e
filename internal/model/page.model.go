package model

import "math"

// PageRequest addresses a 1-based page of a listing.
type PageRequest struct {
	Page int
	Size int
}

// Skip is the number of items before the requested page.
func (p PageRequest) Skip() int64 {
	if p.Page < 1 || p.Size < 1 {
		return 0
	}
	if int64(p.Page-1) > math.MaxInt64/int64(p.Size) {
		return math.MaxInt64
	}
	return int64(p.Page-1) * int64(p.Size)
}

// Page is one page of a listing together with totals over the whole listing.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// NewPage builds a Page, never returning nil Items.
func NewPage[T any](items []T, req PageRequest, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page[T]{
		Items:      items,
		Page:       req.Page,
		Size:       req.Size,
		TotalItems: total,
		TotalPages: pages,
	}
}

// MapPage converts the items of p with fn.
func MapPage[T, R any](p *Page[T], fn func(T) R) *Page[R] {
	items := make([]R, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, fn(it))
	}
	return &Page[R]{
		Items:      items,
		Page:       p.Page,
		Size:       p.Size,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}
