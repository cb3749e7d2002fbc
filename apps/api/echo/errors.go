package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

// fieldErrorMap renders field errors as {field: message}; nested rows keep their path (eg. `tasks[0].status`).
func fieldErrorMap(flds []core.FieldError) map[string]string {
	m := make(map[string]string, len(flds))
	for _, fe := range flds {
		m[fe.Field] = fe.Error
	}
	return m
}

// errorResponse maps err to its status code and body; ok is false for unexpected (server) errors.
func errorResponse(err error) (code int, message interface{}, ok bool) {
	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if herr, isHTTP := origErr.Internal.(*echo.HTTPError); isHTTP {
			origErr = herr
		}
		return origErr.Code, origErr.Message, true
	case validator.ValidationErrors:
		return http.StatusBadRequest, fieldErrorMap(core.FieldErrors(origErr)), true
	case *core.ValidationError:
		if len(origErr.Fields) > 0 {
			return http.StatusBadRequest, fieldErrorMap(origErr.Fields), true
		}
		return http.StatusBadRequest, origErr.Error(), true
	case *core.NotFoundError:
		return http.StatusNotFound, origErr.Error(), true
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, message, ok := errorResponse(err)
		if !ok {
			msg := message.(string)
			logger.Error(msg, errors.Wrap(err, msg), map[string]interface{}{
				"method": ctx.Request().Method,
				"path":   ctx.Path(),
			})
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, isStr := message.(string); isStr {
			message = echo.Map{"error": m}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
