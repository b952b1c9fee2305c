package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/mkadlec/libris/apps/server/echo"
	"github.com/mkadlec/libris/core"
	"github.com/mkadlec/libris/core/library"
	"github.com/mkadlec/libris/core/notify"
	emailsvc "github.com/mkadlec/libris/services/email"
	logsvc "github.com/mkadlec/libris/services/logger"
	"github.com/mkadlec/libris/services/scheduler"
	"github.com/mkadlec/libris/storage/database"
	sqlxrepos "github.com/mkadlec/libris/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "SERVER : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf)
	}

	store := sqlxrepos.NewStore(db)
	events := library.NewEvents()

	loanSvc := library.NewLoanService(store, events)
	reservationSvc := library.NewReservationService(store, events)
	reviewSvc := library.NewReviewService(store, events)
	requestSvc := library.NewRequestService(store, events)

	notifySvc := notify.NewService(store, mailSvc, logger, conf)
	notifySvc.Register(events)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.InitValidators()
	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Scheduler

	sched := scheduler.NewScheduler(logger)
	mustRegister(logger, sched, scheduler.NewJob("overdue-loans", conf.Notify.OverdueSchedule, notifySvc.CheckOverdueLoans))
	mustRegister(logger, sched, scheduler.NewJob("upcoming-due-loans", conf.Notify.UpcomingDueSchedule, notifySvc.CheckUpcomingDueLoans))
	if err = sched.Start(); err != nil {
		logger.Fatal(fmt.Sprintf("starting scheduler: %v", err), err)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			LoanSvc:        loanSvc,
			ReservationSvc: reservationSvc,
			ReviewSvc:      reviewSvc,
			RequestSvc:     requestSvc,
			Scheduler:      sched,
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

		if err = sched.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop scheduler: %v", err), err)
		}

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func mustRegister(logger core.Logger, sched *scheduler.Scheduler, j scheduler.Job) {
	if err := sched.RegisterJob(j); err != nil {
		logger.Fatal(fmt.Sprintf("registering job: %v", err), err)
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
