package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/auth"
	"github.com/trezcool/markaz/core/authz"
	"github.com/trezcool/markaz/core/course"
	"github.com/trezcool/markaz/core/group"
	"github.com/trezcool/markaz/core/payment"
	"github.com/trezcool/markaz/core/profile"
	"github.com/trezcool/markaz/core/query"
	"github.com/trezcool/markaz/core/session"
	"github.com/trezcool/markaz/core/staff"
	"github.com/trezcool/markaz/core/student"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Translator ut.Translator

		Sessions session.Store
		Caches   *query.Registry
		Guard    *authz.Guard

		AuthSvc    *auth.Service
		ProfileSvc *profile.Service
		AdminSvc   *staff.Service
		ManagerSvc *staff.Service
		TeacherSvc *staff.Service
		StudentSvc *student.Service
		GroupSvc   *group.Service
		CourseSvc  *course.Service
		PaymentSvc *payment.Service
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(ctx context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.Use(sessionMiddleware(s.deps.Sessions, s.deps.Caches))
	s.app.Use(guardMiddleware(s.deps.Guard))

	s.app.GET("/healthz", healthz)
	registerDocs(s.app, conf.AppName)

	registerAuthAPI(s.app, s.deps)
	registerMenuAPI(s.app, s.deps.ProfileSvc)

	dash := s.app.Group(authz.DashboardPath)
	registerStaffAPI(dash.Group("/admin"), s.deps.AdminSvc, nil)
	registerStaffAPI(dash.Group("/manager"), s.deps.ManagerSvc, nil)
	registerStaffAPI(dash.Group("/ustozlar"), s.deps.TeacherSvc, s.deps.CourseSvc)
	registerStudentAPI(dash.Group("/studentlar"), s.deps.StudentSvc, s.deps.GroupSvc)
	registerGroupAPI(dash.Group("/guruhlar"), s.deps.GroupSvc, s.deps.TeacherSvc)
	registerCourseAPI(dash.Group("/kurslar"), s.deps.CourseSvc)
	registerPaymentAPI(dash.Group("/payment"), s.deps.PaymentSvc, s.deps.StudentSvc, s.deps.GroupSvc)
	registerProfileAPI(dash.Group("/profile"), s.deps.ProfileSvc, s.deps.Sessions)
	registerSettingsAPI(dash.Group("/sozlamalar"))
}

// Start listens until the server is shut down. Failures land on Errors.
func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func healthz(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
