package admin

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
)

// changelist query params
const (
	SearchParam  = "q"
	PageParam    = "p"
	ShowAllParam = "all"
)

// Params are the changelist query params understood by a ModelAdmin.
type Params struct {
	Search  string
	Page    int
	ShowAll bool
	// Dates holds the selected range of each ListFilter field.
	Dates map[string]core.DateRange
}

// ParseParams reads `q`, `p`, `all` and the `<field>__gte` / `<field>__lt` date filters.
func (ma ModelAdmin) ParseParams(values url.Values) (Params, error) {
	params := Params{
		Search: core.CleanString(values.Get(SearchParam)),
		Page:   1,
		Dates:  make(map[string]core.DateRange, len(ma.ListFilter)),
	}
	if p := values.Get(PageParam); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil || !ma.Paginator().ValidPage(page) {
			return Params{}, core.NewValidationError(core.ErrInvalidPage, core.FieldError{Field: PageParam, Error: "enter a valid page number"})
		}
		params.Page = page
	}
	if all := values.Get(ShowAllParam); all != "" {
		showAll, err := strconv.ParseBool(all)
		if err != nil {
			return Params{}, core.NewValidationError(nil, core.FieldError{Field: ShowAllParam, Error: "enter a valid boolean"})
		}
		params.ShowAll = showAll
	}
	for _, field := range ma.ListFilter {
		dr, err := core.ParseDateRange(values, field)
		if err != nil {
			return Params{}, err
		}
		params.Dates[field] = dr
	}
	return params, nil
}

type (
	// Row is one changelist line: the object id and its list_display columns.
	Row map[string]interface{}

	DateFilter struct {
		Field   string                  `json:"field"`
		Choices []core.DateFilterChoice `json:"choices"`
	}

	ChangeList struct {
		Model   string       `json:"model"`
		Columns []string     `json:"columns"`
		Search  string       `json:"q"`
		Filters []DateFilter `json:"filters"`
		core.Page[Row]
	}
)

// ChangeList lists one page of objects, reduced to their list_display columns.
func (ma ModelAdmin) ChangeList(ctx context.Context, values url.Values) (ChangeList, error) {
	params, err := ma.ParseParams(values)
	if err != nil {
		return ChangeList{}, err
	}

	paginator := ma.Paginator()
	limit, offset := paginator.Window(params.Page, params.ShowAll)
	objs, count, err := ma.List(ctx, params, core.QueryOptions{Ordering: ma.Ordering, Limit: limit, Offset: offset})
	if err != nil {
		return ChangeList{}, err
	}

	rows := make([]Row, 0, len(objs))
	for _, obj := range objs {
		row, err := ma.Row(obj)
		if err != nil {
			return ChangeList{}, err
		}
		rows = append(rows, row)
	}
	page, err := core.NewPage(paginator, params.Page, params.ShowAll, count, rows)
	if err != nil {
		return ChangeList{}, err
	}

	today := core.Today()
	filters := make([]DateFilter, 0, len(ma.ListFilter))
	for _, field := range ma.ListFilter {
		filters = append(filters, DateFilter{Field: field, Choices: core.DateFilterChoices(field, today, params.Dates[field])})
	}

	return ChangeList{
		Model:   ma.Name,
		Columns: ma.ListDisplay,
		Search:  params.Search,
		Filters: filters,
		Page:    page,
	}, nil
}

// Row extracts the id and the list_display columns of obj, named after its JSON fields.
func (ma ModelAdmin) Row(obj interface{}) (Row, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling row")
	}
	var fields map[string]interface{}
	if err = json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrap(err, "unmarshalling row")
	}
	row := make(Row, len(ma.ListDisplay)+1)
	row["id"] = fields["id"]
	for _, col := range ma.ListDisplay {
		row[col] = fields[col]
	}
	return row, nil
}
