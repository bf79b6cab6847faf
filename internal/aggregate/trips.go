package aggregate

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/errmsg"
	"github.com/moonwavetravel/backend/internal/realtime"
)

// TripList is the live list of trips visible to the current identity
// (owned or public), newest first, each with its full tree.
type TripList struct {
	*live[[]domain.TripWithDays]
	trips  TripSource
	writer TripWriter

	// shown holds the ids of the trips in the last fetched list. It is read
	// from the hub's publish path, so it is swapped atomically instead of
	// under the live lock.
	shown atomic.Pointer[map[uuid.UUID]struct{}]
}

// NewTripList creates an idle TripList. Call Load to start it.
func NewTripList(env Env, trips TripSource, writer TripWriter) *TripList {
	v := &TripList{trips: trips, writer: writer}
	v.live = newLive(env, "TripList", v.fetch, func(owner uuid.UUID) []realtime.Filter {
		concerns := v.concerns(owner)
		return []realtime.Filter{
			realtime.AllOf(domain.TableTrips).And(concerns),
			realtime.AllOf(domain.TableDays).And(concerns),
			realtime.AllOf(domain.TablePlans).And(concerns),
			realtime.AllOf(domain.TableCollaborators).And(concerns),
		}
	})
	return v
}

// concerns reports whether ev can change what viewer sees: a row of their
// own, a row under a trip already listed, or a trip that is public after the
// change (a newly published trip of another owner).
func (v *TripList) concerns(viewer uuid.UUID) func(domain.ChangeEvent) bool {
	return func(ev domain.ChangeEvent) bool {
		if ev.OwnerID == viewer {
			return true
		}
		trip := ev.TripID
		if ev.Table == domain.TableTrips {
			trip = ev.RecordID
			if ev.Public {
				return true
			}
		}
		if shown := v.shown.Load(); shown != nil {
			_, ok := (*shown)[trip]
			return ok
		}
		return false
	}
}

// Start loads the list for the current identity. Anonymous callers get an
// idle view with no data.
func (v *TripList) Start(ctx context.Context) error {
	return v.Load(ctx, v.env.viewer())
}

func (v *TripList) fetch(ctx context.Context, viewer uuid.UUID) ([]domain.TripWithDays, error) {
	trees, err := v.trips.ListTrees(ctx, viewer)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TripWithDays, 0, len(trees))
	for _, t := range trees {
		if !t.Trip.VisibleTo(viewer) {
			continue
		}
		out = append(out, t.Normalize())
	}
	shown := make(map[uuid.UUID]struct{}, len(out))
	for _, t := range out {
		shown[t.Trip.ID] = struct{}{}
	}
	v.shown.Store(&shown)
	return out, nil
}

// CreateTrip creates a trip for the current identity.
func (v *TripList) CreateTrip(ctx context.Context, in domain.TripInput) (*domain.Trip, error) {
	return mutate(ctx, v.live, "TripList.CreateTrip", errmsg.ContextCreate,
		func(ctx context.Context, actor uuid.UUID) (domain.Trip, error) {
			return v.writer.Create(ctx, actor, in)
		})
}

// UpdateTrip updates one of the current identity's trips.
func (v *TripList) UpdateTrip(ctx context.Context, id uuid.UUID, in domain.TripInput) (*domain.Trip, error) {
	return mutate(ctx, v.live, "TripList.UpdateTrip", errmsg.ContextUpdate,
		func(ctx context.Context, actor uuid.UUID) (domain.Trip, error) {
			return v.writer.Update(ctx, actor, id, in)
		})
}

// DeleteTrip deletes one of the current identity's trips with its days and plans.
func (v *TripList) DeleteTrip(ctx context.Context, id uuid.UUID) (bool, error) {
	return mutateOK(ctx, v.live, "TripList.DeleteTrip", errmsg.ContextDelete,
		func(ctx context.Context, actor uuid.UUID) error {
			return v.writer.Delete(ctx, actor, id)
		})
}

// TripDetail is the live tree of one trip: its days in day order, each with
// its plans in display order, plus the trip's collaborators.
type TripDetail struct {
	*live[domain.TripWithDays]
	trips  TripSource
	writer TripWriter
	plans  PlanWriter
}

// NewTripDetail creates an idle TripDetail. Call Load with a trip id.
func NewTripDetail(env Env, trips TripSource, writer TripWriter, plans PlanWriter) *TripDetail {
	v := &TripDetail{trips: trips, writer: writer, plans: plans}
	v.live = newLive(env, "TripDetail", v.fetch, func(id uuid.UUID) []realtime.Filter {
		return []realtime.Filter{
			realtime.ByID(domain.TableTrips, id),
			realtime.ByTrip(domain.TableDays, id),
			realtime.ByTrip(domain.TablePlans, id),
			realtime.ByTrip(domain.TableCollaborators, id),
		}
	})
	return v
}

func (v *TripDetail) fetch(ctx context.Context, id uuid.UUID) (domain.TripWithDays, error) {
	tree, err := v.trips.Tree(ctx, id)
	if err != nil {
		return domain.TripWithDays{}, err
	}
	if !tree.Trip.VisibleTo(v.env.viewer()) {
		return domain.TripWithDays{}, fmt.Errorf("trip %s: %w", id, domain.ErrAccessDenied)
	}
	return tree.Normalize(), nil
}

// UpdateTrip updates the loaded trip.
func (v *TripDetail) UpdateTrip(ctx context.Context, in domain.TripInput) (*domain.Trip, error) {
	id := v.Snapshot().Key
	return mutate(ctx, v.live, "TripDetail.UpdateTrip", errmsg.ContextUpdate,
		func(ctx context.Context, actor uuid.UUID) (domain.Trip, error) {
			return v.writer.Update(ctx, actor, id, in)
		})
}

// DeleteTrip deletes the loaded trip. The following refetch leaves the view
// in the errored state with a not-found message.
func (v *TripDetail) DeleteTrip(ctx context.Context) (bool, error) {
	id := v.Snapshot().Key
	return mutateOK(ctx, v.live, "TripDetail.DeleteTrip", errmsg.ContextDelete,
		func(ctx context.Context, actor uuid.UUID) error {
			return v.writer.Delete(ctx, actor, id)
		})
}

// CreatePlan appends a plan to one of the trip's days.
func (v *TripDetail) CreatePlan(ctx context.Context, dayID uuid.UUID, in domain.PlanInput) (*domain.Plan, error) {
	return mutate(ctx, v.live, "TripDetail.CreatePlan", errmsg.ContextCreate,
		func(ctx context.Context, actor uuid.UUID) (domain.Plan, error) {
			return v.plans.Create(ctx, actor, dayID, in)
		})
}

// UpdatePlan updates a plan of the trip.
func (v *TripDetail) UpdatePlan(ctx context.Context, planID uuid.UUID, in domain.PlanInput) (*domain.Plan, error) {
	return mutate(ctx, v.live, "TripDetail.UpdatePlan", errmsg.ContextUpdate,
		func(ctx context.Context, actor uuid.UUID) (domain.Plan, error) {
			return v.plans.Update(ctx, actor, planID, in)
		})
}

// DeletePlan deletes a plan of the trip.
func (v *TripDetail) DeletePlan(ctx context.Context, planID uuid.UUID) (bool, error) {
	return mutateOK(ctx, v.live, "TripDetail.DeletePlan", errmsg.ContextDelete,
		func(ctx context.Context, actor uuid.UUID) error {
			return v.plans.Delete(ctx, actor, planID)
		})
}
