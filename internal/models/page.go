package models

import "encoding/json"

// Page is a window over an ordered result set. Every listing operation
// returns one. Page and PageSize are 1-based and validated by the caller.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	TotalCount int
}

// NewPage wraps items into a page. A nil slice becomes an empty one so the
// JSON form is always an array.
func NewPage[T any](items []T, page, pageSize, totalCount int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}
}

// HasNextPage reports whether more items exist after this window.
func (p Page[T]) HasNextPage() bool {
	return p.Page*p.PageSize < p.TotalCount
}

// HasPreviousPage reports whether this is not the first window.
func (p Page[T]) HasPreviousPage() bool {
	return p.Page > 1
}

func (p Page[T]) MarshalJSON() ([]byte, error) {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(struct {
		Items           []T  `json:"items"`
		Page            int  `json:"page"`
		PageSize        int  `json:"pageSize"`
		TotalCount      int  `json:"totalCount"`
		HasNextPage     bool `json:"hasNextPage"`
		HasPreviousPage bool `json:"hasPreviousPage"`
	}{
		Items:           items,
		Page:            p.Page,
		PageSize:        p.PageSize,
		TotalCount:      p.TotalCount,
		HasNextPage:     p.HasNextPage(),
		HasPreviousPage: p.HasPreviousPage(),
	})
}

// Offset returns the number of items skipped before the given page.
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// PageQuery is the requested window of a listing. The pagesize tag is an
// alias the validating service registers from config.MaxPageSize.
type PageQuery struct {
	Page     int `form:"page,default=1" validate:"min=1"`
	PageSize int `form:"pageSize,default=10" validate:"pagesize"`
}
