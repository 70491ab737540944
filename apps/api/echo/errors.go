package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/profile"
)

var errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "Bu bo'limga ruxsatingiz yo'q")

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}
		var relogin bool

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.UnauthorizedError, *core.RemoteError, *core.NetworkError:
			code = core.StatusOf(origErr)
			message = origErr.Error()
			relogin = core.IsAuthError(origErr)
		default:
			if core.IsAuthError(err) || errors.Cause(err) == core.ErrUnsupported {
				code = core.StatusOf(err)
				message = errors.Cause(err).Error()
				relogin = core.IsAuthError(err)
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			person := contextPerson(ctx)
			logger.Error(msg, errors.Wrap(err, msg), person)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
			body := echo.Map{"error": m}
			if relogin {
				body["relogin"] = true
			}
			if ctx.Echo().Debug && code == http.StatusInternalServerError {
				body["debug"] = err.Error()
			}
			message = body
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// contextPerson identifies the signed-in staff member for the logs, as far as the token tells.
func contextPerson(ctx echo.Context) core.Person {
	sess := getContextSession(ctx)
	if sess.Token == "" {
		return core.Person{}
	}
	return profile.FromSession(sess, sessionOverlay(ctx)).Person()
}
