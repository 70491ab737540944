package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/markaz/core/query"
)

type (
	cacheRow struct {
		query.Entry
		Error string `json:"error,omitempty"`
	}

	settingsResponse struct {
		Role   string     `json:"role"`
		Caches []cacheRow `json:"caches"`
	}
)

func registerSettingsAPI(g *echo.Group) {
	g.GET("", settings)
}

// settings shows the session's cache, key by key.
func settings(ctx echo.Context) error {
	res := settingsResponse{Role: getContextSession(ctx).Role, Caches: []cacheRow{}}
	if qc := query.FromContext(ctx.Request().Context()); qc != nil {
		for _, e := range qc.Snapshot() {
			row := cacheRow{Entry: e}
			if e.Err != nil {
				row.Error = e.Err.Error()
			}
			res.Caches = append(res.Caches, row)
		}
	}
	return ctx.JSON(http.StatusOK, res)
}
