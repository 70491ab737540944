package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/course"
	"github.com/trezcool/markaz/core/staff"
)

var staffOps = []string{"create", "update", "leave", "return", "remove"}

type staffApi struct {
	svc     *staff.Service
	courses *course.Service
}

// registerStaffAPI mounts the screen of one staff kind. Managers cannot be created here
// and teachers are neither edited nor sent on leave.
func registerStaffAPI(g *echo.Group, svc *staff.Service, courses *course.Service) {
	api := staffApi{svc: svc, courses: courses}

	g.GET("", api.query)
	g.DELETE("/:id", api.destroy)
	g.POST("/:id/return", api.giveBack)

	switch svc.Kind() {
	case staff.Admin:
		g.POST("", api.create)
		g.PUT("/:id", api.update)
		g.POST("/:id/leave", api.leave)
	case staff.Manager:
		g.PUT("/:id", api.update)
		g.POST("/:id/leave", api.leave)
	case staff.Teacher:
		g.POST("", api.create)
		g.GET("/courses", api.courseOptions)
	}
}

func (api *staffApi) mutations() []string {
	names := make([]string, len(staffOps))
	for i, op := range staffOps {
		names[i] = api.svc.MutationName(op)
	}
	return names
}

func (api *staffApi) query(ctx echo.Context) error {
	var filter staff.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to staff.QueryFilter")
	}
	filter.Clean()

	rctx := ctx.Request().Context()
	key := api.svc.Kind().Key()
	members, errMsg, err := loadList(rctx, key, api.svc.QueryAll)
	if err != nil {
		return errors.Wrapf(err, "querying %s", key)
	}

	status := filter.Status
	if status == "" {
		status = staff.AllStatuses
	}
	rows := staff.Filter(members, filter)
	var ord Ordering
	ord.Bind(ctx)
	if err := orderRows(rows, ord, staffSortKeys); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newListResponse(rctx, key, rows, filter.Search, status, errMsg, api.mutations()...))
}

func (api *staffApi) create(ctx echo.Context) error {
	var data staff.NewMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to staff.NewMember")
	}
	m, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating staff member")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *staffApi) update(ctx echo.Context) error {
	var data staff.UpdateMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to staff.UpdateMember")
	}
	bindID(ctx, &data.ID)

	m, err := api.svc.Update(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating staff member")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *staffApi) leave(ctx echo.Context) error {
	var data core.Leave
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to core.Leave")
	}
	bindID(ctx, &data.ID)

	if err := api.svc.Leave(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "sending staff member on leave")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *staffApi) giveBack(ctx echo.Context) error {
	if err := api.svc.Return(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "returning staff member")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *staffApi) destroy(ctx echo.Context) error {
	if err := api.svc.Remove(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing staff member")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *staffApi) courseOptions(ctx echo.Context) error {
	courses, err := api.courses.Options(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying course options")
	}
	return ctx.JSON(http.StatusOK, courses)
}
