package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/group"
	"github.com/trezcool/markaz/core/student"
)

type studentApi struct {
	svc    *student.Service
	groups *group.Service
}

func registerStudentAPI(g *echo.Group, svc *student.Service, groups *group.Service) {
	api := studentApi{svc: svc, groups: groups}

	g.GET("", api.query)
	g.GET("/groups", api.groupOptions)
	g.POST("", api.create)
	g.POST("/:id/leave", api.leave)
	g.POST("/:id/return", api.giveBack)
	g.DELETE("/:id", api.destroy)
}

func (api *studentApi) query(ctx echo.Context) error {
	var filter student.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to student.QueryFilter")
	}
	filter.Clean()

	rctx := ctx.Request().Context()
	students, errMsg, err := loadList(rctx, student.CacheKey, api.svc.QueryAll)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}

	status := filter.Status
	if status == "" {
		status = student.AllStatuses
	}
	rows := student.Filter(students, filter)
	var ord Ordering
	ord.Bind(ctx)
	if err := orderRows(rows, ord, studentSortKeys); err != nil {
		return err
	}
	res := newListResponse(rctx, student.CacheKey, rows, filter.Search, status, errMsg,
		student.MutationName("create"),
		student.MutationName("leave"),
		student.MutationName("return"),
		student.MutationName("remove"),
	)
	return ctx.JSON(http.StatusOK, res)
}

func (api *studentApi) groupOptions(ctx echo.Context) error {
	groups, err := api.groups.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying group options")
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to student.NewStudent")
	}
	st, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *studentApi) leave(ctx echo.Context) error {
	var data core.Leave
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to core.Leave")
	}
	bindID(ctx, &data.ID)

	if err := api.svc.Leave(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "sending student on leave")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) giveBack(ctx echo.Context) error {
	if err := api.svc.Return(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "returning student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Remove(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing student")
	}
	return ctx.NoContent(http.StatusNoContent)
}
