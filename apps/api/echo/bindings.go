package echoapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/rastreio/core"
)

const (
	orderingParam = "ordering"
	pageParam     = "page"
)

var apiPaginator = core.NewPaginator(core.DefaultPerPage, core.DefaultMaxShowAll)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// pageNumber reads the 1-based `page` query param.
func pageNumber(ctx echo.Context) (int, error) {
	val := ctx.QueryParam(pageParam)
	if val == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(val)
	if err != nil || !apiPaginator.ValidPage(page) {
		return 0, core.NewValidationError(core.ErrInvalidPage, core.FieldError{Field: pageParam, Error: "invalid page number"})
	}
	return page, nil
}

// queryOptions binds the ordering & page of a list request.
func queryOptions(ctx echo.Context) (core.QueryOptions, int, error) {
	page, err := pageNumber(ctx)
	if err != nil {
		return core.QueryOptions{}, 0, err
	}
	var ord Ordering
	ord.Bind(ctx)
	limit, offset := apiPaginator.Window(page, false)
	return core.QueryOptions{Ordering: ord.Orderings, Limit: limit, Offset: offset}, page, nil
}

// listPage runs a paged query and responds with the page envelope.
func listPage[T any](ctx echo.Context, query func(opts core.QueryOptions) ([]T, int, error)) error {
	opts, page, err := queryOptions(ctx)
	if err != nil {
		return err
	}
	items, count, err := query(opts)
	if err != nil {
		return err
	}
	p, err := core.NewPage(apiPaginator, page, false, count, items)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

// bindDateRange reads the `<field>__gte` & `<field>__lt` query params.
func bindDateRange(ctx echo.Context, field string) (core.DateRange, error) {
	return core.ParseDateRange(ctx.QueryParams(), field)
}
