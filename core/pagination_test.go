package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaginator(t *testing.T) {
	assert.Equal(t, Paginator{PerPage: DefaultPerPage, MaxShowAll: DefaultMaxShowAll}, NewPaginator(0, 0))
	assert.Equal(t, Paginator{PerPage: 10, MaxShowAll: 50}, NewPaginator(10, 50))
	assert.Equal(t, Paginator{PerPage: 10, MaxShowAll: DefaultMaxShowAll}, NewPaginator(10, 5))
}

func TestPaginator_Window(t *testing.T) {
	p := NewPaginator(10, 50)

	tests := []struct {
		name       string
		page       int
		showAll    bool
		wantLimit  int
		wantOffset int
	}{
		{name: "first page", page: 1, wantLimit: 10, wantOffset: 0},
		{name: "third page", page: 3, wantLimit: 10, wantOffset: 20},
		{name: "page zero", page: 0, wantLimit: 10, wantOffset: 0},
		{name: "show all", page: 3, showAll: true, wantLimit: 50, wantOffset: 0},
		{name: "huge page", page: math.MaxInt, wantLimit: 10, wantOffset: (math.MaxInt/10 - 1) * 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := p.Window(tt.page, tt.showAll)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestNewPage(t *testing.T) {
	p := NewPaginator(10, 30)

	tests := []struct {
		name        string
		number      int
		showAll     bool
		count       int
		wantErr     string
		wantPages   int
		wantPerPage int
		wantNext    bool
		wantPrev    bool
	}{
		{name: "empty list", number: 1, count: 0, wantPages: 1, wantPerPage: 10},
		{name: "first of three", number: 1, count: 25, wantPages: 3, wantPerPage: 10, wantNext: true},
		{name: "middle", number: 2, count: 25, wantPages: 3, wantPerPage: 10, wantNext: true, wantPrev: true},
		{name: "last", number: 3, count: 25, wantPages: 3, wantPerPage: 10, wantPrev: true},
		{name: "past the last", number: 4, count: 25, wantErr: "page"},
		{name: "second page of empty list", number: 2, count: 0, wantErr: "page"},
		{name: "show all", number: 3, showAll: true, count: 25, wantPages: 1, wantPerPage: 25},
		{name: "show all of empty list", showAll: true, count: 0, wantPages: 1, wantPerPage: 10},
		{name: "show too many", showAll: true, count: 31, wantErr: "all"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := NewPage[int](p, tt.number, tt.showAll, tt.count, nil)
			if tt.wantErr != "" {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.ErrorIs(t, verr.Err, ErrInvalidPage)
				assert.Equal(t, tt.wantErr, verr.Fields[0].Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.count, page.Count)
			assert.Equal(t, tt.wantPages, page.NumPages)
			assert.Equal(t, tt.wantPerPage, page.PerPage)
			assert.Equal(t, tt.wantNext, page.HasNext)
			assert.Equal(t, tt.wantPrev, page.HasPrevious)
			assert.NotNil(t, page.Results)
		})
	}
}

func TestPaginator_ValidPage(t *testing.T) {
	p := NewPaginator(20, 200)

	tests := []struct {
		name string
		page int
		want bool
	}{
		{name: "zero", page: 0, want: false},
		{name: "negative", page: -1, want: false},
		{name: "first", page: 1, want: true},
		{name: "last addressable", page: math.MaxInt / 20, want: true},
		{name: "offset overflows", page: 500000000000000000, want: false},
		{name: "max int", page: math.MaxInt, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ValidPage(tt.page))
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Paginate(items, 2, 0))
	assert.Equal(t, []int{5}, Paginate(items, 2, 4))
	assert.Equal(t, []int{3, 4, 5}, Paginate(items, 0, 2))
	assert.Equal(t, []int{}, Paginate(items, 2, 5))
	assert.Equal(t, []int{1, 2}, Paginate(items, 2, -40), "negative offsets start at the first item")
}
