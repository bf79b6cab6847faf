// Package service contains the business logic for the Moonwave API.
// Services validate inputs, enforce ownership, orchestrate repo calls and
// announce every successful write on the change feed.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/repo"
)

// Repos groups the repositories the services share.
type Repos struct {
	Trips         repo.TripRepo
	Days          repo.DayRepo
	Plans         repo.PlanRepo
	Collaborators repo.CollaboratorRepo
}

// Publisher receives change events after successful writes.
// realtime.Hub and realtime.RedisBroker satisfy it.
type Publisher interface {
	Publish(ctx context.Context, ev domain.ChangeEvent) error
}

// notifier stamps and publishes change events. A failed publish is logged and
// otherwise ignored: the write already happened.
type notifier struct {
	events Publisher
	logger *slog.Logger
	now    func() time.Time
}

func newNotifier(events Publisher, logger *slog.Logger) notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return notifier{events: events, logger: logger, now: time.Now}
}

func (n notifier) publish(ctx context.Context, evs ...domain.ChangeEvent) {
	if n.events == nil {
		return
	}
	for _, ev := range evs {
		ev.At = n.now().UTC()
		if err := n.events.Publish(ctx, ev); err != nil {
			n.logger.WarnContext(ctx, "change event not published",
				"table", ev.Table,
				"kind", ev.Kind,
				"record_id", ev.RecordID,
				"error", err,
			)
		}
	}
}

// requireActor rejects anonymous writes.
func requireActor(actor uuid.UUID) error {
	if actor == uuid.Nil {
		return domain.ErrUnauthenticated
	}
	return nil
}

// requireOwner rejects writes by anyone but the trip owner.
func requireOwner(actor, owner uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor != owner {
		return domain.ErrAccessDenied
	}
	return nil
}
