package models

// ShowAll is the per-page value that disables pagination
const ShowAll = -1

// Page is one page of results, or every result when All is set.
// Callers use Pages/HasNext/HasPrev the same way for both shapes.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	All     bool `json:"all"`
}

// NewPage builds a paginated result
func NewPage[T any](items []T, page, perPage, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: page, PerPage: perPage, Total: total}
}

// AllItems builds an unpaginated result
func AllItems[T any](items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: 1, PerPage: ShowAll, Total: len(items), All: true}
}

// Pages returns the number of pages. An unpaginated result has one page.
func (p Page[T]) Pages() int {
	if p.All || p.PerPage <= 0 {
		return 1
	}
	if p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

func (p Page[T]) HasNext() bool {
	return !p.All && p.Page < p.Pages()
}

func (p Page[T]) HasPrev() bool {
	return !p.All && p.Page > 1
}

// Offset is the index of the page's first item
func (p Page[T]) Offset() int {
	if p.All || p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}
