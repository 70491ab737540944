package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core/group"
	"github.com/trezcool/markaz/core/staff"
)

type groupApi struct {
	svc      *group.Service
	teachers *staff.Service
}

func registerGroupAPI(g *echo.Group, svc *group.Service, teachers *staff.Service) {
	api := groupApi{svc: svc, teachers: teachers}

	g.GET("", api.query)
	g.GET("/teachers", api.teacherOptions)
	g.POST("", api.create)
	g.PUT("/:id/end", api.end)
}

func (api *groupApi) query(ctx echo.Context) error {
	var filter group.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to group.QueryFilter")
	}
	filter.Clean()

	rctx := ctx.Request().Context()
	groups, errMsg, err := loadList(rctx, group.CacheKey, api.svc.QueryAll)
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}

	res := newListResponse(rctx, group.CacheKey, group.Filter(groups, filter), filter.Search, filter.Status, errMsg,
		group.MutationName("create"),
		group.MutationName("end"),
	)
	return ctx.JSON(http.StatusOK, res)
}

// teacherOptions lists the active teachers a group can be given.
func (api *groupApi) teacherOptions(ctx echo.Context) error {
	teachers, err := api.teachers.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teacher options")
	}
	return ctx.JSON(http.StatusOK, staff.Filter(teachers, staff.QueryFilter{Status: staff.StatusActive}))
}

func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to group.NewGroup")
	}
	g, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *groupApi) end(ctx echo.Context) error {
	var data group.EndGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to group.EndGroup")
	}
	bindID(ctx, &data.ID)

	if err := api.svc.End(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "ending group")
	}
	return ctx.NoContent(http.StatusNoContent)
}
