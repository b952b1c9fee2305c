package tests

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	echoapi "github.com/mkadlec/libris/apps/server/echo"
	"github.com/mkadlec/libris/core"
	"github.com/mkadlec/libris/core/library"
	"github.com/mkadlec/libris/core/notify"
	emailsvc "github.com/mkadlec/libris/services/email"
	logsvc "github.com/mkadlec/libris/services/logger"
	"github.com/mkadlec/libris/services/scheduler"
	inmemdb "github.com/mkadlec/libris/storage/database/inmem"
)

type fixture struct {
	server echoapi.Server
	db     *inmemdb.DB
	store  *inmemdb.Store
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conf := &core.Config{
		AppName:  "Libris",
		TestMode: true,
		Notify:   core.NotifyConfig{PageSize: 100, UpcomingDueDays: 3},
	}
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)

	core.InitValidators()
	core.ParseEmailTemplates(conf, logger)
	emailsvc.ResetSentMessages()

	db := inmemdb.NewDB()
	store := inmemdb.NewStore(db)
	events := library.NewEvents()

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	notifySvc := notify.NewService(store, mailSvc, logger, conf)
	notifySvc.Register(events)

	sched := scheduler.NewScheduler(logger)
	if err := sched.RegisterJob(scheduler.NewJob("overdue-loans", "0 9 * * 1", notifySvc.CheckOverdueLoans)); err != nil {
		t.Fatalf("RegisterJob() failed: %v", err)
	}
	if err := sched.RegisterJob(scheduler.NewJob("upcoming-due-loans", "0 9 * * *", notifySvc.CheckUpcomingDueLoans)); err != nil {
		t.Fatalf("RegisterJob() failed: %v", err)
	}

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			LoanSvc:        library.NewLoanService(store, events),
			ReservationSvc: library.NewReservationService(store, events),
			ReviewSvc:      library.NewReviewService(store, events),
			RequestSvc:     library.NewRequestService(store, events),
			Scheduler:      sched,
			DisableReqLogs: true,
		},
	)
	return &fixture{server: server, db: db, store: store}
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func (fx *fixture) do(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	fx.server.ServeHTTP(rec, req)
	return rec
}
