package staff

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/query"
)

type (
	// Repository is the backend resource of one staff kind.
	// Operations the backend has no endpoint for return core.ErrUnsupported.
	Repository interface {
		List(ctx context.Context) ([]Member, error)
		Create(ctx context.Context, nm NewMember) (Member, error)
		Update(ctx context.Context, um UpdateMember) (Member, error)
		Leave(ctx context.Context, l core.Leave) error
		Return(ctx context.Context, id string) error
		Remove(ctx context.Context, id string) error
	}

	Service struct {
		kind     Kind
		r        Repository
		validate *validator.Validate
		now      func() time.Time
	}
)

func NewService(kind Kind, repo Repository, validate *validator.Validate) *Service {
	return &Service{kind: kind, r: repo, validate: validate, now: time.Now}
}

func (s *Service) Kind() Kind {
	return s.kind
}

// MutationName names a write of this kind ("admins.create"), as reported by query.Client.Pending.
func (s *Service) MutationName(op string) string {
	return s.kind.Key() + "." + op
}

func (s *Service) mutation(op string) query.Mutation {
	return query.Mutation{Name: s.MutationName(op), Affects: s.kind.Affects()}
}

func (s *Service) QueryAll(ctx context.Context) ([]Member, error) {
	return query.Query(ctx, query.FromContext(ctx), s.kind.Key(), s.r.List)
}

// Create stamps today's work date and sends the new member.
func (s *Service) Create(ctx context.Context, nm NewMember) (Member, error) {
	nm.Clean()
	nm.Kind = s.kind
	if nm.Role == "" && s.kind != Teacher {
		nm.Role = string(s.kind)
	}
	if nm.Status == "" {
		nm.Status = StatusActive
	}
	nm.WorkDate = s.now().Format(core.DateLayout)
	nm.IsDeleted = false
	if err := nm.Validate(s.validate); err != nil {
		return Member{}, err
	}

	return query.Exec(ctx, query.FromContext(ctx), s.mutation("create"), func(ctx context.Context) (Member, error) {
		return s.r.Create(ctx, nm)
	})
}

func (s *Service) Update(ctx context.Context, um UpdateMember) (Member, error) {
	um.Clean()
	if err := um.Validate(s.validate); err != nil {
		return Member{}, err
	}
	if um.Status != "" {
		if err := s.checkTransition(ctx, um.ID, um.Status, true); err != nil {
			return Member{}, err
		}
	}

	return query.Exec(ctx, query.FromContext(ctx), s.mutation("update"), func(ctx context.Context) (Member, error) {
		return s.r.Update(ctx, um)
	})
}

// Leave sends an active member on vacation.
func (s *Service) Leave(ctx context.Context, l core.Leave) error {
	l.Clean()
	if err := l.Validate(s.validate); err != nil {
		return err
	}
	if err := s.checkTransition(ctx, l.ID, StatusOnLeave, false); err != nil {
		return err
	}

	return s.exec(ctx, "leave", func(ctx context.Context) error {
		return s.r.Leave(ctx, l)
	})
}

// Return brings a member back from vacation (or rehires a fired one).
func (s *Service) Return(ctx context.Context, id string) error {
	id = core.CleanString(id)
	if err := s.checkTransition(ctx, id, StatusActive, false); err != nil {
		return err
	}

	return s.exec(ctx, "return", func(ctx context.Context) error {
		return s.r.Return(ctx, id)
	})
}

// Remove fires (teachers) or deletes (admins, managers) a member.
func (s *Service) Remove(ctx context.Context, id string) error {
	id = core.CleanString(id)
	if err := s.checkTransition(ctx, id, StatusFired, false); err != nil {
		return err
	}

	return s.exec(ctx, "remove", func(ctx context.Context) error {
		return s.r.Remove(ctx, id)
	})
}

func (s *Service) exec(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	_, err := query.Exec(ctx, query.FromContext(ctx), s.mutation(op), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// checkTransition rejects a status change the current list already shows as illegal.
// Members the cache does not know are left to the backend. keep allows staying in the same status (edits).
func (s *Service) checkTransition(ctx context.Context, id, to string, keep bool) error {
	if id == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "_id", Error: "ID majburiy"})
	}
	for _, m := range s.knownMembers(ctx) {
		if m.Key() != id {
			continue
		}
		if m.Status == to && keep {
			return nil
		}
		if !CanTransition(m.Status, to) {
			return core.NewValidationError(nil, core.FieldError{
				Field: "status",
				Error: fmt.Sprintf("%q holatidan %q holatiga o'tkazib bo'lmaydi", m.Status, to),
			})
		}
		return nil
	}
	return nil
}

// knownMembers is the list as the cache knows it, re-read when an earlier write invalidated it.
// Nil when this session never loaded the list or the re-read fails.
func (s *Service) knownMembers(ctx context.Context) []Member {
	qc := query.FromContext(ctx)
	if qc == nil {
		return nil
	}
	if _, ok := qc.Peek(s.kind.Key()); !ok {
		return nil
	}
	members, err := s.QueryAll(ctx)
	if err != nil {
		return nil
	}
	return members
}
