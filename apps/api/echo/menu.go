package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core/authz"
	"github.com/trezcool/markaz/core/profile"
)

type (
	sidebar struct {
		Main  []authz.Section `json:"main"`
		Other []authz.Section `json:"other"`
	}

	dashboardResponse struct {
		Sidebar   sidebar         `json:"sidebar"`
		Shortcuts []authz.Section `json:"shortcuts"`
		Profile   profile.Profile `json:"profile"`
	}
)

type menuApi struct {
	profiles *profile.Service
}

func registerMenuAPI(app *echo.Echo, profiles *profile.Service) {
	api := menuApi{profiles: profiles}

	app.GET(authz.HomePath, api.home)
	app.GET(authz.DashboardPath, api.dashboard)
}

// shortcuts are the visible sections a card links to: everything but the dashboard itself and logout.
func shortcuts(role string) []authz.Section {
	out := make([]authz.Section, 0, len(authz.Sections))
	for _, s := range authz.VisibleSections(role, authz.Sections) {
		if s.Href == authz.DashboardPath || s.Href == authz.LogoutPath {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (api *menuApi) home(ctx echo.Context) error {
	sess := getContextSession(ctx)
	return ctx.JSON(http.StatusOK, echo.Map{"shortcuts": shortcuts(sess.Role)})
}

func (api *menuApi) dashboard(ctx echo.Context) error {
	sess := getContextSession(ctx)
	p, err := api.profiles.Get(ctx.Request().Context(), sess, sessionOverlay(ctx))
	if err != nil {
		return errors.Wrap(err, "getting profile")
	}

	res := dashboardResponse{
		Sidebar:   sidebar{Main: []authz.Section{}, Other: []authz.Section{}},
		Shortcuts: shortcuts(sess.Role),
		Profile:   p,
	}
	for _, s := range authz.VisibleSections(sess.Role, authz.Sections) {
		if s.Group == authz.GroupMain {
			res.Sidebar.Main = append(res.Sidebar.Main, s)
		} else {
			res.Sidebar.Other = append(res.Sidebar.Other, s)
		}
	}
	return ctx.JSON(http.StatusOK, res)
}
