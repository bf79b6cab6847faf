package aggregate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/errmsg"
	"github.com/moonwavetravel/backend/internal/realtime"
)

// DayDetail is the live tree of one day: the day, its plans in display order,
// and the parent trip used for the access check.
type DayDetail struct {
	*live[domain.DayDetail]
	days  DaySource
	plans PlanWriter
}

// NewDayDetail creates an idle DayDetail. Call Load with a day id.
func NewDayDetail(env Env, days DaySource, plans PlanWriter) *DayDetail {
	v := &DayDetail{days: days, plans: plans}
	v.live = newLive(env, "DayDetail", v.fetch, func(id uuid.UUID) []realtime.Filter {
		return []realtime.Filter{
			realtime.ByID(domain.TableDays, id),
			realtime.ByDay(domain.TablePlans, id),
		}
	})
	return v
}

func (v *DayDetail) fetch(ctx context.Context, id uuid.UUID) (domain.DayDetail, error) {
	detail, err := v.days.Detail(ctx, id)
	if err != nil {
		return domain.DayDetail{}, err
	}
	if !detail.Trip.VisibleTo(v.env.viewer()) {
		return domain.DayDetail{}, fmt.Errorf("day %s: %w", id, domain.ErrAccessDenied)
	}
	return detail.Normalize(), nil
}

// CreatePlan appends a plan to the loaded day.
func (v *DayDetail) CreatePlan(ctx context.Context, in domain.PlanInput) (*domain.Plan, error) {
	dayID := v.Snapshot().Key
	return mutate(ctx, v.live, "DayDetail.CreatePlan", errmsg.ContextCreate,
		func(ctx context.Context, actor uuid.UUID) (domain.Plan, error) {
			return v.plans.Create(ctx, actor, dayID, in)
		})
}

// UpdatePlan updates a plan of the loaded day.
func (v *DayDetail) UpdatePlan(ctx context.Context, planID uuid.UUID, in domain.PlanInput) (*domain.Plan, error) {
	return mutate(ctx, v.live, "DayDetail.UpdatePlan", errmsg.ContextUpdate,
		func(ctx context.Context, actor uuid.UUID) (domain.Plan, error) {
			return v.plans.Update(ctx, actor, planID, in)
		})
}

// DeletePlan deletes a plan of the loaded day.
func (v *DayDetail) DeletePlan(ctx context.Context, planID uuid.UUID) (bool, error) {
	return mutateOK(ctx, v.live, "DayDetail.DeletePlan", errmsg.ContextDelete,
		func(ctx context.Context, actor uuid.UUID) error {
			return v.plans.Delete(ctx, actor, planID)
		})
}

// ReorderPlans sets the display order of the loaded day's plans.
func (v *DayDetail) ReorderPlans(ctx context.Context, ids []uuid.UUID) (bool, error) {
	dayID := v.Snapshot().Key
	return mutateOK(ctx, v.live, "DayDetail.ReorderPlans", errmsg.ContextUpdate,
		func(ctx context.Context, actor uuid.UUID) error {
			return v.plans.Reorder(ctx, actor, dayID, ids)
		})
}
