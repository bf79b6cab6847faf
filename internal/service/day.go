package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/validation"
)

// DayService implements business logic for Day operations.
// Days are created and removed with their trip; callers only edit title and theme.
type DayService struct {
	repos    Repos
	validate *validation.Validator
	notifier notifier
}

// NewDayService constructs a DayService.
func NewDayService(repos Repos, v *validation.Validator, events Publisher, logger *slog.Logger) *DayService {
	return &DayService{repos: repos, validate: v, notifier: newNotifier(events, logger)}
}

// Detail loads a day with its plans and parent trip.
func (s *DayService) Detail(ctx context.Context, id uuid.UUID) (domain.DayDetail, error) {
	detail, err := s.repos.Days.Detail(ctx, id)
	if err != nil {
		return domain.DayDetail{}, fmt.Errorf("service.DayService.Detail: %w", err)
	}
	return detail, nil
}

// Update changes the title and theme of a day on a trip owned by actor.
func (s *DayService) Update(ctx context.Context, actor, id uuid.UUID, in domain.DayInput) (domain.Day, error) {
	if err := requireActor(actor); err != nil {
		return domain.Day{}, fmt.Errorf("service.DayService.Update: %w", err)
	}
	if err := s.validate.Validate(in); err != nil {
		return domain.Day{}, err
	}

	tripID, owner, err := s.repos.Days.Owner(ctx, id)
	if err != nil {
		return domain.Day{}, fmt.Errorf("service.DayService.Update: %w", err)
	}
	if err := requireOwner(actor, owner); err != nil {
		return domain.Day{}, fmt.Errorf("service.DayService.Update: %w", err)
	}

	day, err := s.repos.Days.GetByID(ctx, id)
	if err != nil {
		return domain.Day{}, fmt.Errorf("service.DayService.Update: %w", err)
	}
	day.Title = in.Title
	day.Theme = in.Theme

	updated, err := s.repos.Days.Update(ctx, day)
	if err != nil {
		return domain.Day{}, fmt.Errorf("service.DayService.Update: %w", err)
	}

	s.notifier.publish(ctx, domain.ChangeEvent{
		Table:    domain.TableDays,
		Kind:     domain.ChangeUpdate,
		RecordID: updated.ID,
		TripID:   tripID,
		DayID:    updated.ID,
		OwnerID:  owner,
	})
	return updated, nil
}
