package notify

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/mkadlec/libris/core"
	"github.com/mkadlec/libris/core/library"
)

const readyJob = "reservation ready"

type reservationReadyData struct {
	BookTitle string
}

// HandleReservationUpdated sends the pickup notice when a reservation
// becomes ready. The notified flag is set only after a successful
// dispatch, so a failed send is retried by the next update event; a
// failure to persist the flag is logged but the already-sent notice is
// not rolled back.
func (svc *Service) HandleReservationUpdated(ctx context.Context, _, res library.Reservation) {
	if !res.Active || !res.Ready || res.Notified {
		return
	}

	if err := svc.store.ExpandReservation(ctx, &res); err != nil {
		svc.logger.Error(fmt.Sprintf("%s: expanding reservation %s: %v", readyJob, res.ID, err), err)
		return
	}
	if res.Member == nil || res.Book == nil {
		svc.logger.Info(fmt.Sprintf("%s: skipping reservation %s: missing member or book", readyJob, res.ID))
		return
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: res.Member.Email}},
		Subject:      "Tvoje rezervace je připravená",
		TemplateName: "reservation_ready",
		TemplateData: reservationReadyData{BookTitle: res.Book.Title},
	}
	if err := svc.mail.SendMessage(ctx, msg); err != nil {
		svc.logger.Error(fmt.Sprintf("%s: sending notice for reservation %s: %v", readyJob, res.ID, err), err)
		return
	}

	svc.logger.Info(fmt.Sprintf("%s: notice sent to %s <%s> for %q",
		readyJob, res.Member.Name, res.Member.Email, res.Book.Title))

	if err := svc.store.SetReservationNotified(ctx, res.ID, true); err != nil {
		svc.logger.Error(fmt.Sprintf("%s: marking reservation %s notified: %v", readyJob, res.ID, err), err)
	}
}
