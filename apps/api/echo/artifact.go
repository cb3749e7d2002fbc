package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/requirement"
)

// artifactApi serves the use cases, sprints and user stories refining requirements.
type artifactApi struct {
	svc *requirement.Service
}

func registerArtifactAPI(g *echo.Group, svc *requirement.Service) {
	api := artifactApi{svc: svc}

	ug := g.Group("/use-cases")
	ug.POST("", api.createUseCase)
	ug.GET("", api.queryUseCases)
	ug.GET("/:id", api.retrieveUseCase)
	ug.PUT("/:id", api.updateUseCase)
	ug.DELETE("/:id", api.destroyUseCase)

	sg := g.Group("/sprints")
	sg.POST("", api.createSprint)
	sg.GET("", api.querySprints)
	sg.GET("/:id", api.retrieveSprint)
	sg.PUT("/:id", api.updateSprint)
	sg.DELETE("/:id", api.destroySprint)

	stg := g.Group("/user-stories")
	stg.POST("", api.createUserStory)
	stg.GET("", api.queryUserStories)
	stg.GET("/:id", api.retrieveUserStory)
	stg.PUT("/:id", api.updateUserStory)
	stg.DELETE("/:id", api.destroyUserStory)
}

// Use cases

func (api *artifactApi) createUseCase(ctx echo.Context) error {
	var data requirement.UseCaseData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UseCaseData")
	}
	uc, err := api.svc.CreateUseCase(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating use case")
	}
	return ctx.JSON(http.StatusCreated, uc)
}

func (api *artifactApi) queryUseCases(ctx echo.Context) error {
	filter := new(requirement.UseCaseFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to UseCaseFilter")
	}
	return listPage(ctx, func(opts core.QueryOptions) ([]requirement.UseCase, int, error) {
		return api.svc.QueryUseCases(ctx.Request().Context(), filter, opts)
	})
}

func (api *artifactApi) retrieveUseCase(ctx echo.Context) error {
	uc, err := api.svc.GetUseCase(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting use case")
	}
	return ctx.JSON(http.StatusOK, uc)
}

func (api *artifactApi) updateUseCase(ctx echo.Context) error {
	var data requirement.UseCaseData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UseCaseData")
	}
	uc, err := api.svc.UpdateUseCase(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating use case")
	}
	return ctx.JSON(http.StatusOK, uc)
}

func (api *artifactApi) destroyUseCase(ctx echo.Context) error {
	if err := api.svc.DeleteUseCase(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting use case")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Sprints

func (api *artifactApi) createSprint(ctx echo.Context) error {
	var data requirement.SprintData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SprintData")
	}
	sprint, err := api.svc.CreateSprint(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating sprint")
	}
	return ctx.JSON(http.StatusCreated, sprint)
}

func (api *artifactApi) querySprints(ctx echo.Context) error {
	filter := &requirement.SprintFilter{Search: ctx.QueryParam("q")}
	var err error
	if filter.Start, err = bindDateRange(ctx, "start"); err != nil {
		return err
	}
	if filter.End, err = bindDateRange(ctx, "end"); err != nil {
		return err
	}
	return listPage(ctx, func(opts core.QueryOptions) ([]requirement.Sprint, int, error) {
		return api.svc.QuerySprints(ctx.Request().Context(), filter, opts)
	})
}

func (api *artifactApi) retrieveSprint(ctx echo.Context) error {
	sprint, err := api.svc.GetSprint(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting sprint")
	}
	return ctx.JSON(http.StatusOK, sprint)
}

func (api *artifactApi) updateSprint(ctx echo.Context) error {
	var data requirement.SprintData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SprintData")
	}
	sprint, err := api.svc.UpdateSprint(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating sprint")
	}
	return ctx.JSON(http.StatusOK, sprint)
}

func (api *artifactApi) destroySprint(ctx echo.Context) error {
	if err := api.svc.DeleteSprint(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting sprint")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// User stories

func (api *artifactApi) createUserStory(ctx echo.Context) error {
	var data requirement.UserStoryData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UserStoryData")
	}
	story, err := api.svc.CreateUserStory(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user story")
	}
	return ctx.JSON(http.StatusCreated, story)
}

func (api *artifactApi) queryUserStories(ctx echo.Context) error {
	filter := new(requirement.UserStoryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to UserStoryFilter")
	}
	return listPage(ctx, func(opts core.QueryOptions) ([]requirement.UserStory, int, error) {
		return api.svc.QueryUserStories(ctx.Request().Context(), filter, opts)
	})
}

func (api *artifactApi) retrieveUserStory(ctx echo.Context) error {
	story, err := api.svc.GetUserStory(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting user story")
	}
	return ctx.JSON(http.StatusOK, story)
}

func (api *artifactApi) updateUserStory(ctx echo.Context) error {
	var data requirement.UserStoryData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UserStoryData")
	}
	story, err := api.svc.UpdateUserStory(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating user story")
	}
	return ctx.JSON(http.StatusOK, story)
}

func (api *artifactApi) destroyUserStory(ctx echo.Context) error {
	if err := api.svc.DeleteUserStory(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting user story")
	}
	return ctx.NoContent(http.StatusNoContent)
}
