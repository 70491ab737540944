package echoapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/profile"
	"github.com/trezcool/markaz/core/session"
)

var errImageMissing = errors.New("Rasm tanlanmagan")

type profileApi struct {
	svc      *profile.Service
	sessions session.Store
}

func registerProfileAPI(g *echo.Group, svc *profile.Service, sessions session.Store) {
	api := profileApi{svc: svc, sessions: sessions}

	g.GET("", api.retrieve)
	g.PUT("", api.update)
	g.POST("/password", api.changePassword)
	g.POST("/image", api.changeImage)
}

func (api *profileApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.Get(ctx.Request().Context(), getContextSession(ctx), sessionOverlay(ctx))
	if err != nil {
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *profileApi) update(ctx echo.Context) error {
	var data profile.EditProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to profile.EditProfile")
	}

	o, err := api.svc.Edit(ctx.Request().Context(), data, sessionOverlay(ctx))
	if err != nil {
		return errors.Wrap(err, "editing profile")
	}
	return api.respond(ctx, o)
}

func (api *profileApi) changePassword(ctx echo.Context) error {
	var data profile.EditPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to profile.EditPassword")
	}
	if err := api.svc.EditPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "editing password")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *profileApi) changeImage(ctx echo.Context) error {
	fh, err := ctx.FormFile("image")
	if err != nil {
		return core.NewValidationError(errImageMissing, core.FieldError{Field: "image", Error: errImageMissing.Error()})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	// one byte over the limit is enough for the size check
	data, err := io.ReadAll(io.LimitReader(f, profile.MaxImageSize+1))
	if err != nil {
		return errors.Wrap(err, "reading upload")
	}

	o, err := api.svc.EditImage(ctx.Request().Context(), fh.Filename, data, sessionOverlay(ctx))
	if err != nil {
		return errors.Wrap(err, "editing profile image")
	}
	return api.respond(ctx, o)
}

// respond keeps the overlay in the session and answers with the profile it yields.
func (api *profileApi) respond(ctx echo.Context, o session.Overlay) error {
	api.sessions.SetOverlay(ctx.Response(), ctx.Request(), o)
	return ctx.JSON(http.StatusOK, profile.FromSession(getContextSession(ctx), o))
}
