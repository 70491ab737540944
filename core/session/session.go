package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
)

const (
	TokenCookie = "token"
	RoleCookie  = "role"
	DefaultRole = "user"

	// persistent store keys
	tokenKey   = "token"
	roleKey    = "user_role"
	profileKey = "updatedProfile"
	imageKey   = "profileImage"
)

var errEmptyToken = errors.New("token is required")

type (
	// Session is the signed-in state: a bearer token and a role, always set together.
	Session struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}

	// Overlay holds local profile edits shown over the token claims.
	Overlay struct {
		FirstName string `json:"first_name,omitempty"`
		LastName  string `json:"last_name,omitempty"`
		Email     string `json:"email,omitempty"`
		Image     string `json:"-"`
	}

	// Store keeps the Session in the `token`/`role` cookies and mirrors it into a signed persistent store.
	Store interface {
		Get(r *http.Request) Session
		Set(w http.ResponseWriter, r *http.Request, s Session) error
		Clear(w http.ResponseWriter, r *http.Request)
		Overlay(r *http.Request) Overlay
		SetOverlay(w http.ResponseWriter, r *http.Request, o Overlay)
	}
)

// Valid reports whether both halves of the session are present.
func (s Session) Valid() bool {
	return s.Token != "" && s.Role != ""
}

func (o Overlay) IsZero() bool {
	return o == Overlay{}
}

type cookieStore struct {
	persist sessions.Store
	name    string
	maxAge  int
	logger  core.Logger
}

var _ Store = (*cookieStore)(nil)

// NewCookieStore returns the Store backed by plain cookies and a gorilla signed cookie session.
// Without a configured secret, a random one is made: persistent copies then die with the process.
func NewCookieStore(conf *core.Config, logger core.Logger) Store {
	maxAge := int(conf.Session.MaxAge / time.Second)
	secret := []byte(conf.Session.SecretKey)
	if len(secret) == 0 {
		logger.Warn("session secret key is not set; using a random one")
		secret = securecookie.GenerateRandomKey(32)
	}
	persist := sessions.NewCookieStore(secret)
	persist.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return newStore(persist, conf.Session.StoreName, maxAge, logger)
}

func newStore(persist sessions.Store, name string, maxAge int, logger core.Logger) *cookieStore {
	return &cookieStore{
		persist: persist,
		name:    name,
		maxAge:  maxAge,
		logger:  logger,
	}
}

func (st *cookieStore) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
	}
}

// Get reads the cookies first, then falls back to the persistent store.
// A source only counts when it carries both token and role.
func (st *cookieStore) Get(r *http.Request) Session {
	var s Session
	if c, err := r.Cookie(TokenCookie); err == nil {
		s.Token = c.Value
	}
	if c, err := r.Cookie(RoleCookie); err == nil {
		s.Role = c.Value
	}
	if s.Valid() {
		return s
	}

	ps, err := st.persist.Get(r, st.name)
	if err != nil {
		return Session{}
	}
	token, _ := ps.Values[tokenKey].(string)
	role, _ := ps.Values[roleKey].(string)
	s = Session{Token: token, Role: role}
	if s.Valid() {
		return s
	}
	return Session{}
}

// Set writes both cookies and the persistent copy.
// Failing to save the persistent copy is logged and otherwise ignored.
func (st *cookieStore) Set(w http.ResponseWriter, r *http.Request, s Session) error {
	s.Token = core.CleanString(s.Token)
	if s.Token == "" {
		return core.NewValidationError(errEmptyToken, core.FieldError{Field: TokenCookie, Error: errEmptyToken.Error()})
	}
	s.Role = core.CleanString(s.Role)
	if s.Role == "" {
		s.Role = DefaultRole
	}

	http.SetCookie(w, st.cookie(TokenCookie, s.Token, st.maxAge))
	http.SetCookie(w, st.cookie(RoleCookie, s.Role, st.maxAge))

	ps, err := st.persist.Get(r, st.name)
	if ps == nil {
		st.logger.Warn("session store unavailable", err)
		return nil
	}
	ps.Values[tokenKey] = s.Token
	ps.Values[roleKey] = s.Role
	if err = ps.Save(r, w); err != nil {
		st.logger.Warn("saving session store", errors.Wrap(err, "saving session"))
	}
	return nil
}

// Clear expires both cookies and drops the persistent copy, profile overlay included.
func (st *cookieStore) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, st.cookie(TokenCookie, "", -1))
	http.SetCookie(w, st.cookie(RoleCookie, "", -1))

	ps, err := st.persist.Get(r, st.name)
	if ps == nil {
		st.logger.Warn("session store unavailable", err)
		return
	}
	for k := range ps.Values {
		delete(ps.Values, k)
	}
	ps.Options.MaxAge = -1
	if err = ps.Save(r, w); err != nil {
		st.logger.Warn("clearing session store", errors.Wrap(err, "clearing session"))
	}
}

func (st *cookieStore) Overlay(r *http.Request) Overlay {
	var o Overlay
	ps, err := st.persist.Get(r, st.name)
	if err != nil || ps == nil {
		return o
	}
	if raw, ok := ps.Values[profileKey].(string); ok && raw != "" {
		if err = json.Unmarshal([]byte(raw), &o); err != nil {
			st.logger.Warn("decoding profile overlay", errors.Wrap(err, "decoding overlay"))
		}
	}
	o.Image, _ = ps.Values[imageKey].(string)
	return o
}

// SetOverlay merges the non-empty fields of o into the stored overlay.
func (st *cookieStore) SetOverlay(w http.ResponseWriter, r *http.Request, o Overlay) {
	curr := st.Overlay(r)
	if o.FirstName != "" {
		curr.FirstName = o.FirstName
	}
	if o.LastName != "" {
		curr.LastName = o.LastName
	}
	if o.Email != "" {
		curr.Email = o.Email
	}
	if o.Image != "" {
		curr.Image = o.Image
	}

	ps, err := st.persist.Get(r, st.name)
	if ps == nil {
		st.logger.Warn("session store unavailable", err)
		return
	}
	raw, err := json.Marshal(curr)
	if err != nil {
		st.logger.Warn("encoding profile overlay", errors.Wrap(err, "encoding overlay"))
		return
	}
	ps.Values[profileKey] = string(raw)
	ps.Values[imageKey] = curr.Image
	if err = ps.Save(r, w); err != nil {
		st.logger.Warn("saving profile overlay", errors.Wrap(err, "saving overlay"))
	}
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the Session carried by ctx, if any.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s.Token != ""
}
