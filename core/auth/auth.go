// Package auth signs staff in against the backend and turns the answer into a session.
package auth

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/session"
)

// FailedText is shown when the backend rejects a sign-in without saying why.
const FailedText = "Email yoki parol noto'g'ri"

type (
	Credentials struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	// Reply is the backend's answer to a sign-in, as decoded JSON.
	Reply struct {
		Status int
		Body   map[string]interface{}
	}

	// Result is relayed to the browser: the backend status and body, plus the
	// session to set when the sign-in succeeded.
	Result struct {
		Status  int
		Body    map[string]interface{}
		Session session.Session
	}

	Repository interface {
		SignIn(ctx context.Context, c Credentials) (Reply, error)
	}

	Service struct {
		r        Repository
		validate *validator.Validate
	}
)

func (c *Credentials) Clean() {
	c.Email = core.CleanString(c.Email, true /* lower */)
}

func (c Credentials) Validate(validate *validator.Validate) error {
	return validate.Struct(c)
}

// OK reports whether the sign-in produced a session.
func (res Result) OK() bool {
	return res.Session.Valid()
}

// Message is the body's message, if any.
func (res Result) Message() string {
	msg, _ := res.Body["message"].(string)
	return msg
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{r: repo, validate: validate}
}

// SignIn forwards the credentials. A rejected sign-in is not an error: the Result
// carries the backend status and a body whose message is always set.
// Errors are left for bad input and an unreachable backend.
func (s *Service) SignIn(ctx context.Context, c Credentials) (Result, error) {
	c.Clean()
	if err := c.Validate(s.validate); err != nil {
		return Result{}, err
	}

	reply, err := s.r.SignIn(ctx, c)
	if err != nil {
		return Result{}, err
	}
	res := Result{Status: reply.Status, Body: reply.Body}
	if res.Body == nil {
		res.Body = make(map[string]interface{})
	}

	if reply.Status >= 200 && reply.Status < 300 {
		if token, role := tokenOf(res.Body); token != "" {
			if role == "" {
				role = session.DefaultRole
			}
			res.Session = session.Session{Token: token, Role: role}
			return res, nil
		}
		// 2xx without a token is still a failed sign-in
		res.Status = http.StatusUnauthorized
	}
	if res.Message() == "" {
		res.Body["message"] = FailedText
	}
	return res, nil
}

// tokenOf finds the token and role in `{data: {token, role}}` or `{token, role}`.
func tokenOf(body map[string]interface{}) (string, string) {
	if data, ok := body["data"].(map[string]interface{}); ok {
		if token, _ := data["token"].(string); token != "" {
			role, _ := data["role"].(string)
			return token, role
		}
	}
	token, _ := body["token"].(string)
	role, _ := body["role"].(string)
	return token, role
}
