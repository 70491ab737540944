package group

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markaz/core/query"
)

type (
	Repository interface {
		List(ctx context.Context) ([]Group, error)
		Create(ctx context.Context, ng NewGroup) (Group, error)
		End(ctx context.Context, eg EndGroup) error
	}

	Service struct {
		r        Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{r: repo, validate: validate}
}

// MutationName names a group write ("groups.end").
func MutationName(op string) string {
	return CacheKey + "." + op
}

func mutation(op string) query.Mutation {
	return query.Mutation{Name: MutationName(op), Affects: affects}
}

func (s *Service) QueryAll(ctx context.Context) ([]Group, error) {
	return query.Query(ctx, query.FromContext(ctx), CacheKey, s.r.List)
}

func (s *Service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	ng.Clean()
	if err := ng.Validate(s.validate); err != nil {
		return Group{}, err
	}

	return query.Exec(ctx, query.FromContext(ctx), mutation("create"), func(ctx context.Context) (Group, error) {
		return s.r.Create(ctx, ng)
	})
}

// End closes a group on eg.Date.
func (s *Service) End(ctx context.Context, eg EndGroup) error {
	eg.Clean()
	if err := eg.Validate(s.validate); err != nil {
		return err
	}

	_, err := query.Exec(ctx, query.FromContext(ctx), mutation("end"), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.r.End(ctx, eg)
	})
	return err
}
