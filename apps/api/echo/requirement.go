package echoapi

import (
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/metamodel"
	"github.com/trezcool/rastreio/core/requirement"
)

type requirementApi struct {
	svc *requirement.Service
}

func registerRequirementAPI(g *echo.Group, svc *requirement.Service) {
	api := requirementApi{svc: svc}

	rg := g.Group("/requirements")
	rg.POST("", api.create)
	rg.GET("", api.query)

	dg := rg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/advance", api.advance)
	dg.GET("/history", api.history)
	dg.GET("/history/:record/diff", api.historyDiff)

	dg.GET("/comments", api.queryComments)
	dg.POST("/comments", api.createComment)
	dg.DELETE("/comments/:comment", api.destroyComment)

	dg.GET("/documents", api.queryDocuments)
	dg.POST("/documents", api.uploadDocument)
	dg.GET("/documents/:document", api.retrieveDocument)
	dg.PUT("/documents/:document", api.updateDocument)
	dg.DELETE("/documents/:document", api.destroyDocument)
	dg.GET("/documents/:document/file", api.downloadDocument)
}

// choices lists the values accepted by the choice fields.
func choices(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string][]core.Choice{
		"category":     requirement.Categories,
		"type":         requirement.Types,
		"priority":     requirement.Priorities,
		"status":       requirement.Statuses,
		"story_status": requirement.StoryStatuses,
		"task_status":  metamodel.TaskStatuses,
	})
}

// Handlers

func (api *requirementApi) create(ctx echo.Context) error {
	var data requirement.RequirementData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RequirementData")
	}
	req, err := api.svc.CreateRequirement(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating requirement")
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *requirementApi) query(ctx echo.Context) error {
	filter := new(requirement.RequirementFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to RequirementFilter")
	}
	return listPage(ctx, func(opts core.QueryOptions) ([]requirement.Requirement, int, error) {
		return api.svc.QueryRequirements(ctx.Request().Context(), filter, opts)
	})
}

func (api *requirementApi) retrieve(ctx echo.Context) error {
	req, err := api.svc.GetRequirement(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting requirement")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *requirementApi) update(ctx echo.Context) error {
	var data requirement.RequirementData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RequirementData")
	}
	req, err := api.svc.UpdateRequirement(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating requirement")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *requirementApi) advance(ctx echo.Context) error {
	req, err := api.svc.AdvanceRequirement(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "advancing requirement")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *requirementApi) destroy(ctx echo.Context) error {
	if err := api.svc.DeleteRequirement(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting requirement")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *requirementApi) history(ctx echo.Context) error {
	recs, err := api.svc.RequirementHistory(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying requirement history")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *requirementApi) historyDiff(ctx echo.Context) error {
	delta, err := api.svc.RequirementHistoryDiff(ctx.Request().Context(), ctx.Param("id"), ctx.Param("record"), ctx.QueryParam("against"))
	if err != nil {
		return errors.Wrap(err, "diffing requirement history")
	}
	return ctx.JSON(http.StatusOK, delta)
}

func (api *requirementApi) queryComments(ctx echo.Context) error {
	comments, err := api.svc.QueryComments(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying comments")
	}
	return ctx.JSON(http.StatusOK, comments)
}

func (api *requirementApi) createComment(ctx echo.Context) error {
	var data requirement.CommentData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CommentData")
	}
	comment, err := api.svc.CreateComment(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating comment")
	}
	return ctx.JSON(http.StatusCreated, comment)
}

func (api *requirementApi) destroyComment(ctx echo.Context) error {
	if err := api.svc.DeleteComment(ctx.Request().Context(), ctx.Param("id"), ctx.Param("comment")); err != nil {
		return errors.Wrap(err, "deleting comment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *requirementApi) queryDocuments(ctx echo.Context) error {
	docs, err := api.svc.QueryDocuments(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying documents")
	}
	return ctx.JSON(http.StatusOK, docs)
}

// uploadDocument expects a multipart form with a `file` and its `description`.
func (api *requirementApi) uploadDocument(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "file", Error: "file is a required field"})
	}
	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	data := requirement.DocumentData{Filename: fh.Filename, Description: ctx.FormValue("description")}
	doc, err := api.svc.UploadDocument(ctx.Request().Context(), ctx.Param("id"), data, src)
	if err != nil {
		return errors.Wrap(err, "uploading document")
	}
	return ctx.JSON(http.StatusCreated, doc)
}

func (api *requirementApi) retrieveDocument(ctx echo.Context) error {
	doc, err := api.svc.GetDocument(ctx.Request().Context(), ctx.Param("id"), ctx.Param("document"))
	if err != nil {
		return errors.Wrap(err, "getting document")
	}
	return ctx.JSON(http.StatusOK, doc)
}

type documentDescription struct {
	Description string `json:"description"`
}

func (api *requirementApi) updateDocument(ctx echo.Context) error {
	var data documentDescription
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to documentDescription")
	}
	doc, err := api.svc.UpdateDocumentDescription(ctx.Request().Context(), ctx.Param("id"), ctx.Param("document"), data.Description)
	if err != nil {
		return errors.Wrap(err, "updating document")
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *requirementApi) downloadDocument(ctx echo.Context) error {
	doc, content, err := api.svc.OpenDocument(ctx.Request().Context(), ctx.Param("id"), ctx.Param("document"))
	if err != nil {
		return errors.Wrap(err, "opening document")
	}
	defer content.Close()

	name := path.Base(doc.File)
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+strconv.Quote(name))
	return ctx.Stream(http.StatusOK, contentType, content)
}

func (api *requirementApi) destroyDocument(ctx echo.Context) error {
	if err := api.svc.DeleteDocument(ctx.Request().Context(), ctx.Param("id"), ctx.Param("document")); err != nil {
		return errors.Wrap(err, "deleting document")
	}
	return ctx.NoContent(http.StatusNoContent)
}
