package admin

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
)

var (
	ErrModelNotFound     = core.NewNotFoundError("admin model")
	ErrAlreadyRegistered = errors.New("model already registered")
)

type (
	// Lister returns the objects of a changelist page, and the number of all matching objects.
	Lister func(ctx context.Context, params Params, opts core.QueryOptions) ([]interface{}, int, error)

	// FormGetter returns an object (nil when adding one) and its form, with `extra` blank rows per inline.
	FormGetter func(ctx context.Context, id string, extra int) (obj interface{}, form interface{}, err error)

	// FormSaver decodes a form with bind, then saves it. An empty id adds a new object.
	FormSaver func(ctx context.Context, id string, bind func(form interface{}) error) (interface{}, error)

	Inline struct {
		Name  string `json:"name"`
		Model string `json:"model"`
		Extra int    `json:"extra"`
	}

	// ModelAdmin describes how a model is listed and edited.
	ModelAdmin struct {
		Name              string   `json:"name"`
		VerboseName       string   `json:"verbose_name"`
		VerboseNamePlural string   `json:"verbose_name_plural"`
		ListDisplay       []string `json:"list_display"`
		SearchFields      []string `json:"search_fields"`
		// ListFilter names the date fields the list can be filtered on.
		ListFilter       []string          `json:"list_filter"`
		ListPerPage      int               `json:"list_per_page"`
		ListMaxShowAll   int               `json:"list_max_show_all"`
		Ordering         []core.DBOrdering `json:"-"`
		Inlines          []Inline          `json:"inlines"`
		FilterHorizontal []string          `json:"filter_horizontal"`

		List Lister     `json:"-"`
		Form FormGetter `json:"-"`
		Save FormSaver  `json:"-"`
	}

	Site struct {
		models map[string]*ModelAdmin
	}
)

func NewSite() *Site {
	return &Site{models: make(map[string]*ModelAdmin)}
}

// Register adds a model to the site, filling in the paging defaults.
func (s *Site) Register(ma ModelAdmin) error {
	if _, ok := s.models[ma.Name]; ok {
		return errors.Wrap(ErrAlreadyRegistered, ma.Name)
	}
	if ma.List == nil || ma.Form == nil || ma.Save == nil {
		return errors.Errorf("%s: list, form & save are required", ma.Name)
	}
	if ma.ListPerPage <= 0 {
		ma.ListPerPage = core.DefaultPerPage
	}
	if ma.ListMaxShowAll <= 0 {
		ma.ListMaxShowAll = core.DefaultMaxShowAll
	}
	s.models[ma.Name] = &ma
	return nil
}

func (s *Site) Model(name string) (*ModelAdmin, error) {
	ma, ok := s.models[name]
	if !ok {
		return nil, ErrModelNotFound
	}
	return ma, nil
}

// Models returns the registered models, by name.
func (s *Site) Models() []ModelAdmin {
	models := make([]ModelAdmin, 0, len(s.models))
	for _, ma := range s.models {
		models = append(models, *ma)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models
}

func (ma ModelAdmin) Paginator() core.Paginator {
	return core.NewPaginator(ma.ListPerPage, ma.ListMaxShowAll)
}

func (ma ModelAdmin) extra() int {
	if len(ma.Inlines) == 0 {
		return 0
	}
	return ma.Inlines[0].Extra
}

// ChangeForm returns the form data of an object; an empty id gives the add form.
func (ma ModelAdmin) ChangeForm(ctx context.Context, id string) (ChangeForm, error) {
	obj, form, err := ma.Form(ctx, id, ma.extra())
	if err != nil {
		return ChangeForm{}, err
	}
	return ChangeForm{Model: ma.Name, Object: obj, Form: form, Inlines: ma.Inlines}, nil
}

type ChangeForm struct {
	Model   string      `json:"model"`
	Object  interface{} `json:"object"`
	Form    interface{} `json:"form"`
	Inlines []Inline    `json:"inlines"`
}
