package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/trezcool/markaz/core/auth"
	"github.com/trezcool/markaz/core/authz"
	"github.com/trezcool/markaz/core/query"
	"github.com/trezcool/markaz/core/session"
)

const SignInPath = "/api/auth/sign-in"

var errTooManyAttempts = echo.NewHTTPError(http.StatusTooManyRequests, "Juda ko'p urinish. Birozdan so'ng qayta urinib ko'ring.")

type authApi struct {
	svc      *auth.Service
	sessions session.Store
	caches   *query.Registry
	guard    *authz.Guard
}

func registerAuthAPI(app *echo.Echo, deps ServerDeps) {
	api := authApi{
		svc:      deps.AuthSvc,
		sessions: deps.Sessions,
		caches:   deps.Caches,
		guard:    deps.Guard,
	}

	limiter := middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(deps.Conf.Server.SignInRate),
			Burst:     deps.Conf.Server.SignInBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		DenyHandler: func(ctx echo.Context, identifier string, err error) error {
			return errTooManyAttempts
		},
	})

	app.POST(SignInPath, api.signIn, limiter)
	app.GET(authz.LoginPath, api.loginPage)
	app.GET(authz.LogoutPath, api.logout)
	app.POST(authz.LogoutPath, api.logout)
}

// signIn relays the credentials to the backend and its answer back, setting the session
// when the answer carries a token.
func (api *authApi) signIn(ctx echo.Context) error {
	var data auth.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to auth.Credentials")
	}

	res, err := api.svc.SignIn(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "signing in")
	}
	if res.OK() {
		if err := api.sessions.Set(ctx.Response(), ctx.Request(), res.Session); err != nil {
			return errors.Wrap(err, "setting session")
		}
		ctx.Response().Header().Set(echo.HeaderLocation, api.guard.Landing(res.Session.Role))
	}
	return ctx.JSON(res.Status, res.Body)
}

func (api *authApi) loginPage(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"title": "Kirish", "action": SignInPath})
}

// logout forgets the session everywhere: cookies, persistent copy, profile overlay and cache.
func (api *authApi) logout(ctx echo.Context) error {
	sess := getContextSession(ctx)
	api.sessions.Clear(ctx.Response(), ctx.Request())
	if sess.Token != "" {
		api.caches.Remove(sess.Token)
	}
	return ctx.Redirect(http.StatusFound, authz.LoginPath)
}
