// Package handler implements the HTTP and WebSocket handlers for the Moonwave API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, day.go, ...) but share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/olahol/melody"

	"github.com/moonwavetravel/backend/internal/aggregate"
	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/errmsg"
)

// TripServicer defines the trip operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Tree(ctx context.Context, id uuid.UUID) (domain.TripWithDays, error)
	ListTrees(ctx context.Context, viewer uuid.UUID) ([]domain.TripWithDays, error)
	ListPublic(ctx context.Context, p domain.PageRequest) ([]domain.Trip, int64, error)
	Create(ctx context.Context, owner uuid.UUID, in domain.TripInput) (domain.Trip, error)
	Update(ctx context.Context, actor, id uuid.UUID, in domain.TripInput) (domain.Trip, error)
	Delete(ctx context.Context, actor, id uuid.UUID) error
	SetCover(ctx context.Context, actor, id uuid.UUID, data []byte) (domain.Trip, error)
	RemoveCover(ctx context.Context, actor, id uuid.UUID) (domain.Trip, error)
}

// DayServicer defines the day operations the handlers depend on.
type DayServicer interface {
	Detail(ctx context.Context, id uuid.UUID) (domain.DayDetail, error)
	Update(ctx context.Context, actor, id uuid.UUID, in domain.DayInput) (domain.Day, error)
}

// PlanServicer defines the plan operations the handlers depend on.
type PlanServicer interface {
	Create(ctx context.Context, actor, dayID uuid.UUID, in domain.PlanInput) (domain.Plan, error)
	Update(ctx context.Context, actor, id uuid.UUID, in domain.PlanInput) (domain.Plan, error)
	Delete(ctx context.Context, actor, id uuid.UUID) error
	Reorder(ctx context.Context, actor, dayID uuid.UUID, ids []uuid.UUID) error
}

// CollaboratorServicer defines the collaborator operations the handlers depend on.
type CollaboratorServicer interface {
	List(ctx context.Context, viewer, tripID uuid.UUID) ([]domain.Collaborator, error)
	Invite(ctx context.Context, actor, tripID uuid.UUID, in domain.CollaboratorInput) (domain.Collaborator, error)
	Accept(ctx context.Context, userID uuid.UUID, email string, id uuid.UUID) (domain.Collaborator, error)
	Remove(ctx context.Context, actor, id uuid.UUID) error
}

// Deps lists everything a Server needs. Events may be nil, in which case
// WebSocket views still load but never refresh on their own.
type Deps struct {
	Trips          TripServicer
	Days           DayServicer
	Plans          PlanServicer
	Collaborators  CollaboratorServicer
	Events         aggregate.Subscriber
	Translator     *errmsg.Translator
	Logger         *slog.Logger
	AllowedOrigins []string // browser origins allowed to open WebSockets
	Checks         map[string]HealthCheck
}

// Server holds the dependencies of every handler.
type Server struct {
	trips         TripServicer
	days          DayServicer
	plans         PlanServicer
	collaborators CollaboratorServicer
	events        aggregate.Subscriber
	translator    *errmsg.Translator
	reporter      *errmsg.Reporter
	logger        *slog.Logger
	origins       []string
	checks        map[string]HealthCheck
	ws            *melody.Melody
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Translator == nil {
		d.Translator = errmsg.NewTranslator(errmsg.DefaultLocale)
	}
	s := &Server{
		trips:         d.Trips,
		days:          d.Days,
		plans:         d.Plans,
		collaborators: d.Collaborators,
		events:        d.Events,
		translator:    d.Translator,
		reporter:      errmsg.NewReporter(d.Logger.With("component", "errmsg"), d.Translator),
		logger:        d.Logger,
		origins:       d.AllowedOrigins,
		checks:        d.Checks,
	}
	s.ws = s.newMelody()
	return s
}

// Close disconnects every WebSocket session and closes its live view.
func (s *Server) Close() error {
	return s.ws.Close()
}
