package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markaz/core"
	logsvc "github.com/trezcool/markaz/services/logger"
)

const storeName = "markaz_test"

func newTestStore() *cookieStore {
	persist := sessions.NewCookieStore([]byte("test-secret-key-test-secret-key!"))
	persist.Options = &sessions.Options{Path: "/", MaxAge: 86400, HttpOnly: true, SameSite: http.SameSiteLaxMode}
	return newStore(persist, storeName, 86400, logsvc.NewConsoleLoggerMock())
}

// replay builds a new request carrying the cookies set on rec, optionally filtered by name.
// Like a browser, the last Set-Cookie for a name wins.
func replay(rec *httptest.ResponseRecorder, keep ...string) *http.Request {
	latest := make(map[string]*http.Cookie)
	var order []string
	for _, c := range rec.Result().Cookies() {
		if _, seen := latest[c.Name]; !seen {
			order = append(order, c.Name)
		}
		latest[c.Name] = c
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, name := range order {
		c := latest[name]
		if c.MaxAge < 0 || (len(keep) > 0 && !contains(keep, name)) {
			continue
		}
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return req
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestStore_Set(t *testing.T) {
	st := newTestStore()

	t.Run("writes both cookies", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := st.Set(rec, httptest.NewRequest(http.MethodPost, "/api/auth/sign-in", nil), Session{Token: "tkn", Role: "admin"})
		require.NoError(t, err)

		for _, name := range []string{TokenCookie, RoleCookie} {
			c := findCookie(rec, name)
			require.NotNil(t, c, name)
			assert.Equal(t, "/", c.Path)
			assert.Equal(t, 86400, c.MaxAge)
			assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
			assert.False(t, c.HttpOnly)
		}
		assert.Equal(t, Session{Token: "tkn", Role: "admin"}, st.Get(replay(rec)))
	})

	t.Run("empty role defaults to user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, st.Set(rec, httptest.NewRequest(http.MethodPost, "/", nil), Session{Token: "tkn"}))
		assert.Equal(t, DefaultRole, st.Get(replay(rec)).Role)
	})

	t.Run("empty token is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := st.Set(rec, httptest.NewRequest(http.MethodPost, "/", nil), Session{Token: "  ", Role: "admin"})
		var vErr *core.ValidationError
		assert.True(t, errors.As(err, &vErr))
		assert.Empty(t, rec.Result().Cookies())
	})
}

func TestStore_Get(t *testing.T) {
	st := newTestStore()
	rec := httptest.NewRecorder()
	require.NoError(t, st.Set(rec, httptest.NewRequest(http.MethodPost, "/", nil), Session{Token: "tkn", Role: "manager"}))

	tests := []struct {
		name string
		req  *http.Request
		want Session
	}{
		{name: "cookies", req: replay(rec, TokenCookie, RoleCookie), want: Session{Token: "tkn", Role: "manager"}},
		{name: "persistent fallback", req: replay(rec, storeName), want: Session{Token: "tkn", Role: "manager"}},
		{name: "half cookie falls back", req: replay(rec, TokenCookie, storeName), want: Session{Token: "tkn", Role: "manager"}},
		{name: "half cookie only", req: replay(rec, TokenCookie), want: Session{}},
		{name: "nothing", req: httptest.NewRequest(http.MethodGet, "/", nil), want: Session{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, st.Get(tt.req))
		})
	}
}

func TestStore_Clear(t *testing.T) {
	st := newTestStore()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	require.NoError(t, st.Set(rec, req, Session{Token: "tkn", Role: "admin"}))
	st.SetOverlay(rec, req, Overlay{FirstName: "Ali", Image: "https://img/x.jpg"})

	req = replay(rec)
	clearRec := httptest.NewRecorder()
	st.Clear(clearRec, req)

	for _, name := range []string{TokenCookie, RoleCookie, storeName} {
		c := findCookie(clearRec, name)
		require.NotNil(t, c, name)
		assert.True(t, c.MaxAge < 0, name)
	}
	// a browser would drop every expired cookie
	assert.Equal(t, Session{}, st.Get(httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.True(t, st.Overlay(httptest.NewRequest(http.MethodGet, "/", nil)).IsZero())
}

func TestStore_Overlay(t *testing.T) {
	st := newTestStore()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	st.SetOverlay(rec, req, Overlay{FirstName: "Ali", LastName: "Vali"})
	st.SetOverlay(rec, req, Overlay{Image: "https://img/ali.jpg"})

	got := st.Overlay(replay(rec))
	assert.Equal(t, Overlay{FirstName: "Ali", LastName: "Vali", Image: "https://img/ali.jpg"}, got)
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := NewContext(context.Background(), Session{Token: "tkn", Role: "admin"})
	s, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tkn", s.Token)

	_, ok = FromContext(NewContext(context.Background(), Session{}))
	assert.False(t, ok)
}

func TestNewCookieStore_randomSecret(t *testing.T) {
	conf := &core.Config{Session: core.SessionConfig{StoreName: storeName, MaxAge: 86400 * time.Second}}
	lgr := logsvc.NewConsoleLoggerMock()
	st := NewCookieStore(conf, lgr)
	require.Len(t, lgr.Entries(), 1)
	assert.Equal(t, "WARN", lgr.Entries()[0].Level)

	rec := httptest.NewRecorder()
	require.NoError(t, st.Set(rec, httptest.NewRequest(http.MethodPost, "/", nil), Session{Token: "tkn", Role: "admin"}))
	assert.Equal(t, Session{Token: "tkn", Role: "admin"}, st.Get(replay(rec, storeName)))

	// another process cannot read the persistent copy
	other := NewCookieStore(conf, logsvc.NewConsoleLoggerMock())
	assert.Equal(t, Session{}, other.Get(replay(rec, storeName)))
}
