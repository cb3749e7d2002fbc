package core

import (
	"math"

	"github.com/pkg/errors"
)

const (
	DefaultPerPage    = 20
	DefaultMaxShowAll = 200
)

var ErrInvalidPage = errors.New("invalid page")

// Paginator splits list results in fixed-size pages (1-based).
type Paginator struct {
	PerPage    int
	MaxShowAll int
}

func NewPaginator(perPage, maxShowAll int) Paginator {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if maxShowAll < perPage {
		maxShowAll = DefaultMaxShowAll
	}
	return Paginator{PerPage: perPage, MaxShowAll: maxShowAll}
}

// ValidPage reports whether page is a page number whose offset fits in an int.
func (p Paginator) ValidPage(page int) bool {
	return page >= 1 && page <= math.MaxInt/p.PerPage
}

// Window returns the limit & offset of the requested page.
// showAll asks for every row, up to MaxShowAll, on a single page.
func (p Paginator) Window(page int, showAll bool) (limit, offset int) {
	if showAll {
		return p.MaxShowAll, 0
	}
	if page < 1 {
		page = 1
	}
	if last := math.MaxInt / p.PerPage; page > last {
		page = last
	}
	return p.PerPage, (page - 1) * p.PerPage
}

// Page is a single page of results.
type Page[T any] struct {
	Count       int  `json:"count"`
	Number      int  `json:"page"`
	NumPages    int  `json:"num_pages"`
	PerPage     int  `json:"per_page"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
	Results     []T  `json:"results"`
}

// NewPage builds page `number` out of its `results` and the `count` of all matching rows.
// A page past the last one is invalid, except the first page of an empty list.
func NewPage[T any](p Paginator, number int, showAll bool, count int, results []T) (Page[T], error) {
	if number < 1 {
		number = 1
	}
	if results == nil {
		results = []T{}
	}
	perPage := p.PerPage
	if showAll {
		if count > p.MaxShowAll {
			return Page[T]{}, NewValidationError(ErrInvalidPage, FieldError{Field: "all", Error: "too many results to show all"})
		}
		perPage, number = count, 1
		if perPage == 0 {
			perPage = p.PerPage
		}
	}
	numPages := 1
	if count > 0 {
		numPages = (count + perPage - 1) / perPage
	}
	if number > numPages {
		return Page[T]{}, NewValidationError(ErrInvalidPage, FieldError{Field: "page", Error: "that page contains no results"})
	}
	return Page[T]{
		Count:       count,
		Number:      number,
		NumPages:    numPages,
		PerPage:     perPage,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
		Results:     results,
	}, nil
}

// Paginate slices an in-memory list into the requested window.
func Paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
