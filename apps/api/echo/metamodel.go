package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/metamodel"
)

type metaModelApi struct {
	svc *metamodel.Service
}

// resource serves the detail endpoints of a model edited as a whole.
type resource[D any, T any] struct {
	name   string
	create func(ctx context.Context, data D) (T, error)
	get    func(ctx context.Context, id string) (T, error)
	update func(ctx context.Context, id string, data D) (T, error)
	delete func(ctx context.Context, id string) error
}

func (r resource[D, T]) register(g *echo.Group) {
	g.POST("", r.createHandler)
	g.GET("/:id", r.retrieveHandler)
	g.PUT("/:id", r.updateHandler)
	g.DELETE("/:id", r.destroyHandler)
}

func (r resource[D, T]) createHandler(ctx echo.Context) error {
	var data D
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrapf(err, "binding %s data", r.name)
	}
	obj, err := r.create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrapf(err, "creating %s", r.name)
	}
	return ctx.JSON(http.StatusCreated, obj)
}

func (r resource[D, T]) retrieveHandler(ctx echo.Context) error {
	obj, err := r.get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrapf(err, "getting %s", r.name)
	}
	return ctx.JSON(http.StatusOK, obj)
}

func (r resource[D, T]) updateHandler(ctx echo.Context) error {
	var data D
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrapf(err, "binding %s data", r.name)
	}
	obj, err := r.update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrapf(err, "updating %s", r.name)
	}
	return ctx.JSON(http.StatusOK, obj)
}

func (r resource[D, T]) destroyHandler(ctx echo.Context) error {
	if err := r.delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrapf(err, "deleting %s", r.name)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// children lists the records of a parent named by the `:id` param.
func children[T any](query func(ctx context.Context, parentID string) ([]T, error)) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		items, err := query(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return err
		}
		if items == nil {
			items = []T{}
		}
		return ctx.JSON(http.StatusOK, items)
	}
}

func registerMetaModelAPI(g *echo.Group, svc *metamodel.Service) {
	api := metaModelApi{svc: svc}

	mg := g.Group("/metamodels")
	mg.GET("", api.query)
	resource[metamodel.MetaModelData, metamodel.MetaModel]{
		name:   "meta-model",
		create: svc.CreateMetaModel,
		get:    svc.GetMetaModel,
		update: svc.UpdateMetaModel,
		delete: svc.DeleteMetaModel,
	}.register(mg)
	mg.GET("/:id/history", api.history)
	mg.GET("/:id/history/:record/diff", api.historyDiff)
	mg.GET("/:id/environmentals", children(svc.QueryEnvironmentals))
	mg.GET("/:id/organizationals", children(svc.QueryOrganizationals))
	mg.GET("/:id/developments", children(svc.QueryDevelopments))

	resource[metamodel.EnvironmentalData, metamodel.Environmental]{
		name:   "environmental",
		create: svc.CreateEnvironmental,
		get:    svc.GetEnvironmental,
		update: svc.UpdateEnvironmental,
		delete: svc.DeleteEnvironmental,
	}.register(g.Group("/environmentals"))

	resource[metamodel.OrganizationalData, metamodel.Organizational]{
		name:   "organizational",
		create: svc.CreateOrganizational,
		get:    svc.GetOrganizational,
		update: svc.UpdateOrganizational,
		delete: svc.DeleteOrganizational,
	}.register(g.Group("/organizationals"))

	resource[metamodel.DevelopmentData, metamodel.Development]{
		name:   "development",
		create: svc.CreateDevelopment,
		get:    svc.GetDevelopment,
		update: svc.UpdateDevelopment,
		delete: svc.DeleteDevelopment,
	}.register(g.Group("/developments"))

	manag := g.Group("/managerials")
	manag.GET("", api.queryManagerials)
	resource[metamodel.ManagerialData, metamodel.Managerial]{
		name:   "managerial",
		create: svc.CreateManagerial,
		get:    svc.GetManagerial,
		update: svc.UpdateManagerial,
		delete: svc.DeleteManagerial,
	}.register(manag)
	manag.GET("/:id/tasks", children(svc.QueryTasks))

	resource[metamodel.TaskData, metamodel.Task]{
		name:   "task",
		create: svc.CreateTask,
		get:    svc.GetTask,
		update: svc.UpdateTask,
		delete: svc.DeleteTask,
	}.register(g.Group("/tasks"))

	ig := g.Group("/intermediate-models")
	ig.GET("", api.queryIntermediateModels)
	resource[metamodel.IntermediateModelData, metamodel.IntermediateModel]{
		name:   "intermediate model",
		create: svc.CreateIntermediateModel,
		get:    svc.GetIntermediateModel,
		update: svc.UpdateIntermediateModel,
		delete: svc.DeleteIntermediateModel,
	}.register(ig)
}

// Handlers

func (api *metaModelApi) query(ctx echo.Context) error {
	filter := new(metamodel.MetaModelFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to MetaModelFilter")
	}
	return listPage(ctx, func(opts core.QueryOptions) ([]metamodel.MetaModel, int, error) {
		return api.svc.QueryMetaModels(ctx.Request().Context(), filter, opts)
	})
}

func (api *metaModelApi) history(ctx echo.Context) error {
	recs, err := api.svc.MetaModelHistory(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying meta-model history")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *metaModelApi) historyDiff(ctx echo.Context) error {
	delta, err := api.svc.MetaModelHistoryDiff(ctx.Request().Context(), ctx.Param("id"), ctx.Param("record"), ctx.QueryParam("against"))
	if err != nil {
		return errors.Wrap(err, "diffing meta-model history")
	}
	return ctx.JSON(http.StatusOK, delta)
}

func (api *metaModelApi) queryManagerials(ctx echo.Context) error {
	filter := &metamodel.ManagerialFilter{
		Search:      ctx.QueryParam("q"),
		MetaModelID: ctx.QueryParam("meta_model"),
	}
	var err error
	if filter.Deadline, err = bindDateRange(ctx, "deadline"); err != nil {
		return err
	}
	return listPage(ctx, func(opts core.QueryOptions) ([]metamodel.Managerial, int, error) {
		return api.svc.QueryManagerials(ctx.Request().Context(), filter, opts)
	})
}

func (api *metaModelApi) queryIntermediateModels(ctx echo.Context) error {
	filter := new(metamodel.IntermediateModelFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to IntermediateModelFilter")
	}
	return listPage(ctx, func(opts core.QueryOptions) ([]metamodel.IntermediateModel, int, error) {
		return api.svc.QueryIntermediateModels(ctx.Request().Context(), filter, opts)
	})
}
