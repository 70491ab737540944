package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/markaz/apps/api/echo"
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
	"github.com/trezcool/markaz/services/backend"
	logsvc "github.com/trezcool/markaz/services/logger"
	"github.com/trezcool/markaz/services/telemetry"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	var telemetryOpts telemetry.Options
	if conf.Telemetry.Stdout {
		telemetryOpts = telemetry.Options{Out: os.Stdout, MetricInterval: conf.Telemetry.MetricInterval}
	}
	shutdownTelemetry, err := telemetry.Setup(context.Background(), telemetryOpts)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up telemetry: %v", err), err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Error("Failed to flush telemetry", err)
		}
	}()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	staff.InitValidators(validate, translator)

	// backend resources
	client := backend.NewClientFromConfig(conf)
	authRepo := backend.NewAuth(client)

	// session cache
	caches := query.NewRegistry(query.WithStaleTime(conf.Cache.StaleTime))
	stopJanitor, err := caches.StartJanitor(conf.Cache.SweepSchedule, conf.Cache.GCTime, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("starting cache janitor: %v", err), err)
	}
	defer stopJanitor()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q, backend %s", conf.Build, client.BaseURL()))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("backend").Set(client.BaseURL())
	expvar.Publish("sessionCaches", expvar.Func(func() interface{} { return caches.Len() }))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Translator: translator,
			Sessions:   session.NewCookieStore(conf, logger),
			Caches:     caches,
			Guard:      authz.NewGuard(authz.Sections),
			AuthSvc:    auth.NewService(authRepo, validate),
			ProfileSvc: profile.NewService(authRepo, validate),
			AdminSvc:   staff.NewService(staff.Admin, backend.NewStaff(client, staff.Admin), validate),
			ManagerSvc: staff.NewService(staff.Manager, backend.NewStaff(client, staff.Manager), validate),
			TeacherSvc: staff.NewService(staff.Teacher, backend.NewStaff(client, staff.Teacher), validate),
			StudentSvc: student.NewService(backend.NewStudents(client), validate),
			GroupSvc:   group.NewService(backend.NewGroups(client), validate),
			CourseSvc:  course.NewService(backend.NewCourses(client), validate),
			PaymentSvc: payment.NewService(backend.NewPayments(client), validate),
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
