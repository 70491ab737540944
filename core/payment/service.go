package payment

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markaz/core/query"
)

// MutationName is reported by query.Client.Pending while a payment is being sent.
const MutationName = "payments.create"

// payments change what students owe and group balances
var affects = []string{"students", "groups"}

type (
	// Repository is write-only: the backend lists no payments.
	Repository interface {
		Create(ctx context.Context, p Payment) error
	}

	Service struct {
		r        Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{r: repo, validate: validate}
}

func (s *Service) Create(ctx context.Context, p Payment) error {
	p.Clean()
	if err := p.Validate(s.validate); err != nil {
		return err
	}

	m := query.Mutation{Name: MutationName, Affects: affects}
	_, err := query.Exec(ctx, query.FromContext(ctx), m, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.r.Create(ctx, p)
	})
	return err
}
