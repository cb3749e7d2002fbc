package admin

import (
	"context"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/metamodel"
	"github.com/trezcool/rastreio/core/requirement"
)

// NewDefaultSite registers the meta-model, managerial level and sprint admins.
func NewDefaultSite(conf core.AdminConfig, mmSvc *metamodel.Service, reqSvc *requirement.Service) (*Site, error) {
	site := NewSite()
	for _, ma := range []ModelAdmin{
		metaModelAdmin(conf, mmSvc),
		managerialAdmin(conf, mmSvc),
		sprintAdmin(conf, reqSvc),
	} {
		if err := site.Register(ma); err != nil {
			return nil, err
		}
	}
	return site, nil
}

func metaModelAdmin(conf core.AdminConfig, svc *metamodel.Service) ModelAdmin {
	return ModelAdmin{
		Name:              "metamodels",
		VerboseName:       "meta-model",
		VerboseNamePlural: "meta-models",
		ListDisplay:       []string{"description"},
		SearchFields:      []string{"description"},
		ListPerPage:       conf.ListPerPage,
		ListMaxShowAll:    conf.ListMaxShowAll,
		Ordering:          []core.DBOrdering{{Field: "id", Ascending: true}},
		Inlines: []Inline{
			{Name: "environmentals", Model: "environmental", Extra: 1},
			{Name: "organizationals", Model: "organizational", Extra: 1},
			{Name: "managerials", Model: "managerial", Extra: 1},
			{Name: "developments", Model: "development", Extra: 1},
			{Name: "use_cases", Model: "use case", Extra: 1},
			{Name: "user_stories", Model: "user story", Extra: 1},
		},
		FilterHorizontal: []string{"intermediate_model_ids"},

		List: func(ctx context.Context, params Params, opts core.QueryOptions) ([]interface{}, int, error) {
			mms, count, err := svc.QueryMetaModels(ctx, &metamodel.MetaModelFilter{Search: params.Search}, opts)
			return objects(mms), count, err
		},
		Form: func(ctx context.Context, id string, extra int) (interface{}, interface{}, error) {
			mm, form, err := svc.MetaModelChangeForm(ctx, id, extra)
			if err != nil || id == "" {
				return nil, form, err
			}
			return mm, form, nil
		},
		Save: func(ctx context.Context, id string, bind func(interface{}) error) (interface{}, error) {
			var form metamodel.MetaModelForm
			if err := bind(&form); err != nil {
				return nil, err
			}
			return svc.SaveMetaModelForm(ctx, id, form)
		},
	}
}

func managerialAdmin(conf core.AdminConfig, svc *metamodel.Service) ModelAdmin {
	return ModelAdmin{
		Name:              "managerials",
		VerboseName:       "managerial level",
		VerboseNamePlural: "managerial levels",
		ListDisplay:       []string{"resource", "deadline"},
		ListFilter:        []string{"deadline"},
		ListPerPage:       conf.ListPerPage,
		ListMaxShowAll:    conf.ListMaxShowAll,
		Ordering:          metamodel.DefaultManagerialOrdering,
		Inlines:           []Inline{{Name: "tasks", Model: "task", Extra: 1}},

		List: func(ctx context.Context, params Params, opts core.QueryOptions) ([]interface{}, int, error) {
			mgrs, count, err := svc.QueryManagerials(ctx, &metamodel.ManagerialFilter{Deadline: params.Dates["deadline"]}, opts)
			return objects(mgrs), count, err
		},
		Form: func(ctx context.Context, id string, extra int) (interface{}, interface{}, error) {
			mgr, form, err := svc.ManagerialChangeForm(ctx, id, extra)
			if err != nil || id == "" {
				return nil, form, err
			}
			return mgr, form, nil
		},
		Save: func(ctx context.Context, id string, bind func(interface{}) error) (interface{}, error) {
			var form metamodel.ManagerialForm
			if err := bind(&form); err != nil {
				return nil, err
			}
			return svc.SaveManagerialForm(ctx, id, form)
		},
	}
}

func sprintAdmin(conf core.AdminConfig, svc *requirement.Service) ModelAdmin {
	return ModelAdmin{
		Name:              "sprints",
		VerboseName:       "sprint",
		VerboseNamePlural: "sprints",
		ListDisplay:       []string{"name", "start", "end"},
		SearchFields:      []string{"name"},
		ListFilter:        []string{"start", "end"},
		ListPerPage:       conf.ListPerPage,
		ListMaxShowAll:    conf.ListMaxShowAll,
		Ordering:          []core.DBOrdering{{Field: "id", Ascending: true}},

		List: func(ctx context.Context, params Params, opts core.QueryOptions) ([]interface{}, int, error) {
			filter := &requirement.SprintFilter{
				Search: params.Search,
				Start:  params.Dates["start"],
				End:    params.Dates["end"],
			}
			sprints, count, err := svc.QuerySprints(ctx, filter, opts)
			return objects(sprints), count, err
		},
		Form: func(ctx context.Context, id string, _ int) (interface{}, interface{}, error) {
			if id == "" {
				return nil, requirement.SprintData{}, nil
			}
			sprint, err := svc.GetSprint(ctx, id)
			if err != nil {
				return nil, nil, err
			}
			return sprint, requirement.SprintData{Name: sprint.Name, Start: sprint.Start, End: sprint.End}, nil
		},
		Save: func(ctx context.Context, id string, bind func(interface{}) error) (interface{}, error) {
			var data requirement.SprintData
			if err := bind(&data); err != nil {
				return nil, err
			}
			if id == "" {
				return svc.CreateSprint(ctx, data)
			}
			return svc.UpdateSprint(ctx, id, data)
		},
	}
}

func objects[T any](items []T) []interface{} {
	objs := make([]interface{}, 0, len(items))
	for _, item := range items {
		objs = append(objs, item)
	}
	return objs
}
