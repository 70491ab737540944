package payment

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markaz/core"
)

const (
	MethodCash  = "naqd"
	MethodClick = "click"
	MethodPayme = "payme"
	MethodBank  = "bank"

	MonthLayout = "2006-01"
)

var Methods = []string{MethodCash, MethodClick, MethodPayme, MethodBank}

// Payment records money received from a student for a group.
type Payment struct {
	StudentID string  `json:"student_id" validate:"required,objectid"`
	GroupID   string  `json:"group_id" validate:"required,objectid"`
	Price     float64 `json:"payment_price" validate:"gt=0"`
	Method    string  `json:"method" validate:"required,oneof=naqd click payme bank"`
	Month     string  `json:"month" validate:"required,datetime=2006-01"`
	PaidAt    string  `json:"paidAt" validate:"required,isodate"`
}

func (p *Payment) Clean() {
	p.StudentID = core.CleanString(p.StudentID)
	p.GroupID = core.CleanString(p.GroupID)
	p.Method = core.CleanString(p.Method, true /* lower */)
	p.Month = core.CleanString(p.Month)
	p.PaidAt = core.CleanString(p.PaidAt)
	if p.Method == "" {
		p.Method = MethodCash
	}
}

func (p Payment) Validate(validate *validator.Validate) error {
	return validate.Struct(p)
}
