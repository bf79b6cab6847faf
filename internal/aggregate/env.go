// Package aggregate keeps live, sorted in-memory trees of trips, days and plans.
//
// A view (TripList, TripDetail, DayDetail) loads its tree in one joined read,
// subscribes to the change feed for every table that contributes to the tree,
// and refetches the whole tree on any event. Mutations go through the same
// refetch path on success, so the tree and anything derived from it always
// come from one canonical read.
package aggregate

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/moonwavetravel/backend/internal/auth"
	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/errmsg"
	"github.com/moonwavetravel/backend/internal/realtime"
)

// IdentityProvider answers who the current identity is.
type IdentityProvider interface {
	Current() (auth.Identity, bool)
}

// Fixed is an IdentityProvider that always returns the same identity.
// The zero value is anonymous.
type Fixed auth.Identity

// Current implements IdentityProvider.
func (f Fixed) Current() (auth.Identity, bool) {
	if f.UserID == uuid.Nil {
		return auth.Identity{}, false
	}
	return auth.Identity(f), true
}

// FromContext returns an IdentityProvider holding the identity stored in ctx, if any.
func FromContext(ctx context.Context) IdentityProvider {
	id, _ := auth.FromContext(ctx)
	return Fixed(id)
}

// Subscriber opens change-feed subscriptions. realtime.Hub and
// realtime.RedisBroker satisfy it.
type Subscriber interface {
	Subscribe(f realtime.Filter) (*realtime.Subscription, error)
}

// TripSource reads trip trees.
type TripSource interface {
	Tree(ctx context.Context, id uuid.UUID) (domain.TripWithDays, error)
	ListTrees(ctx context.Context, viewer uuid.UUID) ([]domain.TripWithDays, error)
}

// DaySource reads day trees.
type DaySource interface {
	Detail(ctx context.Context, id uuid.UUID) (domain.DayDetail, error)
}

// TripWriter performs trip writes on behalf of actor.
type TripWriter interface {
	Create(ctx context.Context, owner uuid.UUID, in domain.TripInput) (domain.Trip, error)
	Update(ctx context.Context, actor, id uuid.UUID, in domain.TripInput) (domain.Trip, error)
	Delete(ctx context.Context, actor, id uuid.UUID) error
}

// PlanWriter performs plan writes on behalf of actor.
type PlanWriter interface {
	Create(ctx context.Context, actor, dayID uuid.UUID, in domain.PlanInput) (domain.Plan, error)
	Update(ctx context.Context, actor, id uuid.UUID, in domain.PlanInput) (domain.Plan, error)
	Delete(ctx context.Context, actor, id uuid.UUID) error
	Reorder(ctx context.Context, actor, dayID uuid.UUID, ids []uuid.UUID) error
}

// Env carries the collaborators every view needs. It is passed explicitly to
// each view; there is no package-level state.
type Env struct {
	Identity   IdentityProvider
	Events     Subscriber // nil disables live updates
	Translator *errmsg.Translator
	Locale     language.Tag // zero value means the translator's default
	Reporter   *errmsg.Reporter
	Logger     *slog.Logger
}

func (e Env) identity() (auth.Identity, bool) {
	if e.Identity == nil {
		return auth.Identity{}, false
	}
	return e.Identity.Current()
}

// viewer is the current user id, or uuid.Nil when anonymous.
func (e Env) viewer() uuid.UUID {
	id, _ := e.identity()
	return id.UserID
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e Env) translate(raw errmsg.Raw, ctx errmsg.Context) string {
	if e.Translator == nil {
		return errmsg.Translate(raw, ctx)
	}
	tag := e.Locale
	if tag == language.Und {
		tag = e.Translator.Default()
	}
	return e.Translator.Translate(tag, raw, ctx)
}
