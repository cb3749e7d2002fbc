package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core/admin"
)

type adminApi struct {
	site *admin.Site
}

func registerAdminAPI(g *echo.Group, site *admin.Site) {
	api := adminApi{site: site}

	ag := g.Group("/admin")
	ag.GET("", api.index)

	mg := ag.Group("/:model", api.modelMiddleware)
	mg.GET("", api.changeList)
	mg.GET("/add", api.addForm)
	mg.POST("/add", api.add)
	mg.GET("/:id/change", api.changeForm)
	mg.POST("/:id/change", api.change)
}

func (api *adminApi) index(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.site.Models())
}

func (api *adminApi) changeList(ctx echo.Context) error {
	ma := contextModel(ctx)
	cl, err := ma.ChangeList(ctx.Request().Context(), ctx.QueryParams())
	if err != nil {
		return errors.Wrapf(err, "listing %s", ma.Name)
	}
	return ctx.JSON(http.StatusOK, cl)
}

func (api *adminApi) addForm(ctx echo.Context) error {
	ma := contextModel(ctx)
	form, err := ma.ChangeForm(ctx.Request().Context(), "")
	if err != nil {
		return errors.Wrapf(err, "loading %s add form", ma.Name)
	}
	return ctx.JSON(http.StatusOK, form)
}

func (api *adminApi) changeForm(ctx echo.Context) error {
	ma := contextModel(ctx)
	form, err := ma.ChangeForm(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrapf(err, "loading %s change form", ma.Name)
	}
	return ctx.JSON(http.StatusOK, form)
}

func (api *adminApi) add(ctx echo.Context) error {
	obj, err := api.save(ctx, "")
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, obj)
}

func (api *adminApi) change(ctx echo.Context) error {
	obj, err := api.save(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, obj)
}

func (api *adminApi) save(ctx echo.Context, id string) (interface{}, error) {
	ma := contextModel(ctx)
	binder := new(echo.DefaultBinder)
	obj, err := ma.Save(ctx.Request().Context(), id, func(form interface{}) error {
		return binder.BindBody(ctx, form)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "saving %s", ma.Name)
	}
	return obj, nil
}

// modelMiddleware loads the `:model` admin into the context.
func (api *adminApi) modelMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ma, err := api.site.Model(ctx.Param("model"))
		if err != nil {
			return errHttpNotFound
		}
		ctx.Set("model", ma)
		return next(ctx)
	}
}

func contextModel(ctx echo.Context) *admin.ModelAdmin {
	ma, _ := ctx.Get("model").(*admin.ModelAdmin)
	return ma
}
