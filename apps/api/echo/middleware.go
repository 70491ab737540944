package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/authz"
	"github.com/trezcool/markaz/core/query"
	"github.com/trezcool/markaz/core/session"
)

const (
	contextSessionKey = "session"
	contextStoreKey   = "sessionStore"
)

// sessionMiddleware reads the session and, when signed in, puts it and the session's
// query cache on the request context where the services pick them up.
func sessionMiddleware(store session.Store, caches *query.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()
			sess := store.Get(req)
			ctx.Set(contextSessionKey, sess)
			ctx.Set(contextStoreKey, store)

			if sess.Token != "" {
				rctx := session.NewContext(req.Context(), sess)
				rctx = query.NewContext(rctx, caches.Client(sess.Token))
				ctx.SetRequest(req.WithContext(rctx))
			}
			return next(ctx)
		}
	}
}

// guardMiddleware applies the route guard. Page loads (GET, HEAD) are redirected the way
// the guard says; other methods get the matching error instead.
func guardMiddleware(guard *authz.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess := getContextSession(ctx)
			path := ctx.Request().URL.Path

			d := guard.Check(sess, path)
			if d.Allow {
				return next(ctx)
			}
			switch ctx.Request().Method {
			case http.MethodGet, http.MethodHead:
				return ctx.Redirect(http.StatusFound, d.Redirect)
			}
			if sess.Token == "" {
				return core.ErrUnauthenticated
			}
			return errHttpForbidden
		}
	}
}

func getContextSession(ctx echo.Context) session.Session {
	sess, _ := ctx.Get(contextSessionKey).(session.Session)
	return sess
}

func sessionOverlay(ctx echo.Context) session.Overlay {
	store, ok := ctx.Get(contextStoreKey).(session.Store)
	if !ok {
		return session.Overlay{}
	}
	return store.Overlay(ctx.Request())
}
