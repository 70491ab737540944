package course

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/query"
)

type (
	Repository interface {
		// List returns every course, or only the frozen (or active) ones when frozen is set.
		List(ctx context.Context, frozen *bool) ([]Course, error)
		// Options returns the courses offered in the teacher and group forms.
		Options(ctx context.Context) ([]Course, error)
		Create(ctx context.Context, nc NewCourse) error
		CreateCategory(ctx context.Context, nc NewCategory) error
		Edit(ctx context.Context, ec EditCourse) error
		Freeze(ctx context.Context, ref Ref) error
		Unfreeze(ctx context.Context, ref Ref) error
		Remove(ctx context.Context, ref Ref) error
	}

	Service struct {
		r        Repository
		validate *validator.Validate
	}
)

// every course write reaches all course lists, options included
var affects = []string{CacheKey}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{r: repo, validate: validate}
}

// MutationName names a course write ("courses.freeze").
func MutationName(op string) string {
	return CacheKey + "." + op
}

func (s *Service) QueryAll(ctx context.Context, frozen *bool) ([]Course, error) {
	return query.Query(ctx, query.FromContext(ctx), Key(frozen), func(ctx context.Context) ([]Course, error) {
		return s.r.List(ctx, frozen)
	})
}

func (s *Service) Options(ctx context.Context) ([]Course, error) {
	return query.Query(ctx, query.FromContext(ctx), OptionsKey, s.r.Options)
}

func (s *Service) Create(ctx context.Context, nc NewCourse) error {
	nc.Clean()
	if err := nc.Validate(s.validate); err != nil {
		return err
	}
	return s.exec(ctx, "create", func(ctx context.Context) error { return s.r.Create(ctx, nc) })
}

func (s *Service) CreateCategory(ctx context.Context, nc NewCategory) error {
	nc.Clean()
	if err := nc.Validate(s.validate); err != nil {
		return err
	}
	return s.exec(ctx, "category", func(ctx context.Context) error { return s.r.CreateCategory(ctx, nc) })
}

func (s *Service) Edit(ctx context.Context, ec EditCourse) error {
	ec.Clean()
	if err := ec.Validate(s.validate); err != nil {
		return err
	}
	return s.exec(ctx, "edit", func(ctx context.Context) error { return s.r.Edit(ctx, ec) })
}

func (s *Service) Freeze(ctx context.Context, id string) error {
	ref, err := s.ref(id)
	if err != nil {
		return err
	}
	return s.exec(ctx, "freeze", func(ctx context.Context) error { return s.r.Freeze(ctx, ref) })
}

func (s *Service) Unfreeze(ctx context.Context, id string) error {
	ref, err := s.ref(id)
	if err != nil {
		return err
	}
	return s.exec(ctx, "unfreeze", func(ctx context.Context) error { return s.r.Unfreeze(ctx, ref) })
}

func (s *Service) Remove(ctx context.Context, id string) error {
	ref, err := s.ref(id)
	if err != nil {
		return err
	}
	return s.exec(ctx, "remove", func(ctx context.Context) error { return s.r.Remove(ctx, ref) })
}

func (s *Service) ref(id string) (Ref, error) {
	ref := Ref{CourseID: core.CleanString(id)}
	return ref, s.validate.Struct(ref)
}

func (s *Service) exec(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	m := query.Mutation{Name: MutationName(op), Affects: affects}
	_, err := query.Exec(ctx, query.FromContext(ctx), m, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
