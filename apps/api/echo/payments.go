package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core/group"
	"github.com/trezcool/markaz/core/payment"
	"github.com/trezcool/markaz/core/query"
	"github.com/trezcool/markaz/core/student"
)

type paymentApi struct {
	svc      *payment.Service
	students *student.Service
	groups   *group.Service
}

// paymentForm is what the payment screen needs to fill its selects.
type paymentForm struct {
	Students []student.Student `json:"students"`
	Groups   []group.Group     `json:"groups"`
	Methods  []string          `json:"methods"`
	Pending  bool              `json:"pending"`
}

func registerPaymentAPI(g *echo.Group, svc *payment.Service, students *student.Service, groups *group.Service) {
	api := paymentApi{svc: svc, students: students, groups: groups}

	g.GET("", api.form)
	g.POST("", api.create)
}

func (api *paymentApi) form(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	students, err := api.students.QueryAll(rctx)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	groups, err := api.groups.QueryAll(rctx)
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}

	form := paymentForm{
		Students: student.Filter(students, student.QueryFilter{Status: student.StatusActive}),
		Groups:   groups,
		Methods:  payment.Methods,
	}
	if form.Groups == nil {
		form.Groups = []group.Group{}
	}
	if qc := query.FromContext(rctx); qc != nil {
		form.Pending = qc.Pending(payment.MutationName)
	}
	return ctx.JSON(http.StatusOK, form)
}

func (api *paymentApi) create(ctx echo.Context) error {
	var data payment.Payment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to payment.Payment")
	}
	if err := api.svc.Create(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "creating payment")
	}
	return ctx.NoContent(http.StatusCreated)
}
