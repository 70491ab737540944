package student

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/query"
)

var errAlreadyActive = errors.New("Bu student allaqachon faol holatda!")

type (
	Repository interface {
		List(ctx context.Context) ([]Student, error)
		Create(ctx context.Context, ns NewStudent) (Student, error)
		Leave(ctx context.Context, l core.Leave) error
		Return(ctx context.Context, id string) error
		Remove(ctx context.Context, id string) error
	}

	Service struct {
		r        Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{r: repo, validate: validate}
}

// MutationName names a student write ("students.leave").
func MutationName(op string) string {
	return CacheKey + "." + op
}

func mutation(op string) query.Mutation {
	return query.Mutation{Name: MutationName(op), Affects: affects}
}

func (s *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return query.Query(ctx, query.FromContext(ctx), CacheKey, s.r.List)
}

func (s *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	ns.Clean()
	if err := ns.Validate(s.validate); err != nil {
		return Student{}, err
	}

	return query.Exec(ctx, query.FromContext(ctx), mutation("create"), func(ctx context.Context) (Student, error) {
		return s.r.Create(ctx, ns)
	})
}

func (s *Service) Leave(ctx context.Context, l core.Leave) error {
	l.Clean()
	if err := l.Validate(s.validate); err != nil {
		return err
	}
	if st, ok := s.cachedStatus(ctx, l.ID); ok && st != StatusActive {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "Faqat faol student ta'tilga chiqishi mumkin"})
	}

	return s.exec(ctx, "leave", func(ctx context.Context) error {
		return s.r.Leave(ctx, l)
	})
}

func (s *Service) Return(ctx context.Context, id string) error {
	id = core.CleanString(id)
	if st, ok := s.cachedStatus(ctx, id); ok && st == StatusActive {
		return core.NewValidationError(errAlreadyActive, core.FieldError{Field: "status", Error: errAlreadyActive.Error()})
	}

	return s.exec(ctx, "return", func(ctx context.Context) error {
		return s.r.Return(ctx, id)
	})
}

func (s *Service) Remove(ctx context.Context, id string) error {
	id = core.CleanString(id)
	return s.exec(ctx, "remove", func(ctx context.Context) error {
		return s.r.Remove(ctx, id)
	})
}

func (s *Service) exec(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	_, err := query.Exec(ctx, query.FromContext(ctx), mutation(op), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// cachedStatus is the student's current status, if this session has loaded the list.
// An invalidated list is fetched again first.
func (s *Service) cachedStatus(ctx context.Context, id string) (string, bool) {
	qc := query.FromContext(ctx)
	if qc == nil || id == "" {
		return "", false
	}
	if _, ok := qc.Peek(CacheKey); !ok {
		return "", false
	}
	students, err := s.QueryAll(ctx)
	if err != nil {
		return "", false
	}
	for _, st := range students {
		if st.Key() == id {
			return st.Status, true
		}
	}
	return "", false
}
