package backend

import (
	"context"
	"net/http"

	"github.com/trezcool/markaz/core/payment"
)

// Payments implements payment.Repository.
type Payments struct {
	c *Client
}

func NewPayments(c *Client) *Payments {
	return &Payments{c: c}
}

func (p *Payments) Create(ctx context.Context, pay payment.Payment) error {
	return p.c.exec(ctx, call{
		method:   http.MethodPost,
		path:     "/api/payment/payment-student",
		body:     pay,
		fallback: "To'lov qo'shishda xatolik",
	})
}
