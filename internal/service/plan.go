package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/repo"
	"github.com/moonwavetravel/backend/internal/validation"
)

// PlanService implements business logic for Plan operations.
// Every write is checked against the owner of the plan's trip.
type PlanService struct {
	repos    Repos
	validate *validation.Validator
	notifier notifier
}

// NewPlanService constructs a PlanService.
func NewPlanService(repos Repos, v *validation.Validator, events Publisher, logger *slog.Logger) *PlanService {
	return &PlanService{repos: repos, validate: v, notifier: newNotifier(events, logger)}
}

// Create appends a plan to a day of a trip owned by actor.
func (s *PlanService) Create(ctx context.Context, actor, dayID uuid.UUID, in domain.PlanInput) (domain.Plan, error) {
	if err := requireActor(actor); err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Create: %w", err)
	}
	if err := s.validate.Validate(in); err != nil {
		return domain.Plan{}, err
	}

	tripID, owner, err := s.repos.Days.Owner(ctx, dayID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Create: %w", err)
	}
	if err := requireOwner(actor, owner); err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Create: %w", err)
	}

	plan, err := s.repos.Plans.Create(ctx, in.Apply(domain.Plan{DayID: dayID}))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Create: %w", err)
	}

	s.notifier.publish(ctx, planEvent(domain.ChangeInsert, plan, tripID, owner))
	return plan, nil
}

// Update overwrites the editable fields of a plan on a trip owned by actor.
func (s *PlanService) Update(ctx context.Context, actor, id uuid.UUID, in domain.PlanInput) (domain.Plan, error) {
	if err := requireActor(actor); err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Update: %w", err)
	}
	if err := s.validate.Validate(in); err != nil {
		return domain.Plan{}, err
	}

	loc, err := s.locate(ctx, actor, id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Update: %w", err)
	}

	plan, err := s.repos.Plans.Update(ctx, in.Apply(loc.Plan))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Update: %w", err)
	}

	s.notifier.publish(ctx, planEvent(domain.ChangeUpdate, plan, loc.TripID, loc.OwnerID))
	return plan, nil
}

// Delete removes a plan from a trip owned by actor.
func (s *PlanService) Delete(ctx context.Context, actor, id uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return fmt.Errorf("service.PlanService.Delete: %w", err)
	}
	loc, err := s.locate(ctx, actor, id)
	if err != nil {
		return fmt.Errorf("service.PlanService.Delete: %w", err)
	}
	if err := s.repos.Plans.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.PlanService.Delete: %w", err)
	}

	s.notifier.publish(ctx, planEvent(domain.ChangeDelete, loc.Plan, loc.TripID, loc.OwnerID))
	return nil
}

// Reorder sets the display order of a day's plans to the order of ids.
// ids must be non-empty and free of duplicates.
func (s *PlanService) Reorder(ctx context.Context, actor, dayID uuid.UUID, ids []uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return fmt.Errorf("service.PlanService.Reorder: %w", err)
	}
	if len(ids) == 0 {
		return domain.NewValidationError("plan_ids", "is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return domain.NewValidationError("plan_ids", "must not contain duplicates")
		}
		seen[id] = struct{}{}
	}

	tripID, owner, err := s.repos.Days.Owner(ctx, dayID)
	if err != nil {
		return fmt.Errorf("service.PlanService.Reorder: %w", err)
	}
	if err := requireOwner(actor, owner); err != nil {
		return fmt.Errorf("service.PlanService.Reorder: %w", err)
	}
	if err := s.repos.Plans.Reorder(ctx, dayID, ids); err != nil {
		return fmt.Errorf("service.PlanService.Reorder: %w", err)
	}

	s.notifier.publish(ctx, domain.ChangeEvent{
		Table:   domain.TablePlans,
		Kind:    domain.ChangeUpdate,
		TripID:  tripID,
		DayID:   dayID,
		OwnerID: owner,
	})
	return nil
}

func (s *PlanService) locate(ctx context.Context, actor, id uuid.UUID) (repo.PlanLocation, error) {
	loc, err := s.repos.Plans.Locate(ctx, id)
	if err != nil {
		return repo.PlanLocation{}, err
	}
	if err := requireOwner(actor, loc.OwnerID); err != nil {
		return repo.PlanLocation{}, err
	}
	return loc, nil
}

func planEvent(kind domain.ChangeKind, plan domain.Plan, tripID, owner uuid.UUID) domain.ChangeEvent {
	return domain.ChangeEvent{
		Table:    domain.TablePlans,
		Kind:     kind,
		RecordID: plan.ID,
		TripID:   tripID,
		DayID:    plan.DayID,
		OwnerID:  owner,
	}
}
