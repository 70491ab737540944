package echoapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/course"
)

type courseApi struct {
	svc *course.Service
}

func registerCourseAPI(g *echo.Group, svc *course.Service) {
	api := courseApi{svc: svc}

	g.GET("", api.query)
	g.POST("", api.create)
	g.POST("/categories", api.createCategory)
	g.PUT("/:id", api.edit)
	g.PUT("/:id/freeze", api.freeze)
	g.PUT("/:id/unfreeze", api.unfreeze)
	g.DELETE("/:id", api.destroy)
}

func (api *courseApi) mutations() []string {
	return []string{
		course.MutationName("create"),
		course.MutationName("category"),
		course.MutationName("edit"),
		course.MutationName("freeze"),
		course.MutationName("unfreeze"),
		course.MutationName("remove"),
	}
}

func (api *courseApi) query(ctx echo.Context) error {
	filter := course.QueryFilter{Search: core.CleanString(ctx.QueryParam("search"))}
	status := ""
	if raw := core.CleanString(ctx.QueryParam("is_freeze")); raw != "" {
		frozen, err := strconv.ParseBool(raw)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "is_freeze", Error: "true yoki false bo'lishi kerak"})
		}
		filter.IsFreeze = &frozen
		status = strconv.FormatBool(frozen)
	}

	rctx := ctx.Request().Context()
	key := course.Key(filter.IsFreeze)
	courses, errMsg, err := loadList(rctx, key, func(ctx context.Context) ([]course.Course, error) {
		return api.svc.QueryAll(ctx, filter.IsFreeze)
	})
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}

	res := newListResponse(rctx, key, course.Filter(courses, filter), filter.Search, status, errMsg, api.mutations()...)
	return ctx.JSON(http.StatusOK, res)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to course.NewCourse")
	}
	if err := api.svc.Create(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *courseApi) createCategory(ctx echo.Context) error {
	var data course.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to course.NewCategory")
	}
	if err := api.svc.CreateCategory(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "creating course category")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *courseApi) edit(ctx echo.Context) error {
	var data course.EditCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to course.EditCourse")
	}
	bindID(ctx, &data.CourseID)

	if err := api.svc.Edit(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "editing course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) freeze(ctx echo.Context) error {
	if err := api.svc.Freeze(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "freezing course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) unfreeze(ctx echo.Context) error {
	if err := api.svc.Unfreeze(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "unfreezing course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if err := api.svc.Remove(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing course")
	}
	return ctx.NoContent(http.StatusNoContent)
}
