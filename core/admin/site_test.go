package admin

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rastreio/core"
)

type widget struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Secret string    `json:"secret"`
	Due    core.Date `json:"due"`
}

func widgetAdmin(widgets []widget) ModelAdmin {
	return ModelAdmin{
		Name:        "widgets",
		ListDisplay: []string{"name", "due"},
		ListFilter:  []string{"due"},
		ListPerPage: 2,
		List: func(_ context.Context, params Params, opts core.QueryOptions) ([]interface{}, int, error) {
			var matched []widget
			for _, w := range widgets {
				if params.Dates["due"].Contains(w.Due) && core.MatchesTerms(core.SearchTerms(params.Search), w.Name) {
					matched = append(matched, w)
				}
			}
			return objects(core.Paginate(matched, opts.Limit, opts.Offset)), len(matched), nil
		},
		Form: func(context.Context, string, int) (interface{}, interface{}, error) { return nil, nil, nil },
		Save: func(context.Context, string, func(interface{}) error) (interface{}, error) { return nil, nil },
	}
}

func TestSite_Register(t *testing.T) {
	site := NewSite()
	require.NoError(t, site.Register(widgetAdmin(nil)))
	assert.ErrorIs(t, site.Register(widgetAdmin(nil)), ErrAlreadyRegistered)
	assert.Error(t, site.Register(ModelAdmin{Name: "gadgets"}))

	ma, err := site.Model("widgets")
	require.NoError(t, err)
	assert.Equal(t, 2, ma.ListPerPage)
	assert.Equal(t, core.DefaultMaxShowAll, ma.ListMaxShowAll)

	_, err = site.Model("gadgets")
	assert.True(t, core.IsNotFound(err))
	assert.Len(t, site.Models(), 1)
}

func TestModelAdmin_ChangeList(t *testing.T) {
	ma := widgetAdmin([]widget{
		{ID: "1", Name: "Bolt", Secret: "x", Due: core.MustDate("2030-01-05")},
		{ID: "2", Name: "Nut", Secret: "x", Due: core.MustDate("2030-02-05")},
		{ID: "3", Name: "Bolt cutter", Secret: "x", Due: core.MustDate("2030-03-05")},
	})
	site := NewSite()
	require.NoError(t, site.Register(ma))
	ma = *must(site.Model("widgets"))

	tests := []struct {
		name      string
		query     string
		wantErr   string
		wantNames []interface{}
		wantCount int
	}{
		{name: "first page", query: "", wantNames: []interface{}{"Bolt", "Nut"}, wantCount: 3},
		{name: "second page", query: "p=2", wantNames: []interface{}{"Bolt cutter"}, wantCount: 3},
		{name: "show all", query: "all=1", wantNames: []interface{}{"Bolt", "Nut", "Bolt cutter"}, wantCount: 3},
		{name: "search", query: "q=bolt", wantNames: []interface{}{"Bolt", "Bolt cutter"}, wantCount: 2},
		{name: "dates", query: "due__gte=2030-02-01&due__lt=2030-03-01", wantNames: []interface{}{"Nut"}, wantCount: 1},
		{name: "bad page", query: "p=first", wantErr: "p"},
		{name: "page out of range", query: "p=3", wantErr: "page"},
		{name: "huge page", query: "p=500000000000000000", wantErr: "p"},
		{name: "bad all", query: "all=maybe", wantErr: "all"},
		{name: "bad date", query: "due__gte=soon", wantErr: "due__gte"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			cl, err := ma.ChangeList(context.Background(), values)
			if tt.wantErr != "" {
				var verr *core.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantErr, verr.Fields[0].Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, cl.Count)
			names := make([]interface{}, 0, len(cl.Results))
			for _, row := range cl.Results {
				names = append(names, row["name"])
				assert.NotContains(t, row, "secret")
				assert.Contains(t, row, "id")
			}
			assert.Equal(t, tt.wantNames, names)
			require.Len(t, cl.Filters, 1)
			assert.Equal(t, "due", cl.Filters[0].Field)
		})
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
