package echoapi

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
	swgui "github.com/swaggest/swgui/v5cdn"
)

const (
	docsPath    = "/docs"
	openAPIPath = docsPath + "/openapi.yaml"
)

//go:embed openapi.yaml
var openAPI []byte

// registerDocs serves the API description and a Swagger UI reading it.
func registerDocs(app *echo.Echo, title string) {
	ui := echo.WrapHandler(swgui.New(title, openAPIPath, docsPath+"/"))

	app.GET(openAPIPath, func(ctx echo.Context) error {
		return ctx.Blob(http.StatusOK, "application/yaml", openAPI)
	})
	app.GET(docsPath, ui)
	app.GET(docsPath+"/*", ui)
}
