package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/storage"
	"github.com/moonwavetravel/backend/internal/validation"
)

// TripService implements business logic for Trip operations, including the
// day rows that follow a trip's date range and the cascade on delete.
type TripService struct {
	repos    Repos
	store    storage.Store
	validate *validation.Validator
	notifier notifier
	logger   *slog.Logger
}

// NewTripService constructs a TripService. store may be nil when cover uploads
// are not configured; events may be nil to disable the change feed.
func NewTripService(repos Repos, store storage.Store, v *validation.Validator, events Publisher, logger *slog.Logger) *TripService {
	n := newNotifier(events, logger)
	return &TripService{
		repos:    repos,
		store:    store,
		validate: v,
		notifier: n,
		logger:   n.logger.With("component", "trip_service"),
	}
}

// Tree loads a trip with its days, plans and collaborators.
func (s *TripService) Tree(ctx context.Context, id uuid.UUID) (domain.TripWithDays, error) {
	tree, err := s.repos.Trips.Tree(ctx, id)
	if err != nil {
		return domain.TripWithDays{}, fmt.Errorf("service.TripService.Tree: %w", err)
	}
	return tree, nil
}

// ListTrees loads every trip visible to viewer with its full tree.
func (s *TripService) ListTrees(ctx context.Context, viewer uuid.UUID) ([]domain.TripWithDays, error) {
	trees, err := s.repos.Trips.ListTrees(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListTrees: %w", err)
	}
	if trees == nil {
		return []domain.TripWithDays{}, nil
	}
	return trees, nil
}

// ListPublic returns one page of public trips and the total count.
func (s *TripService) ListPublic(ctx context.Context, p domain.PageRequest) ([]domain.Trip, int64, error) {
	trips, total, err := s.repos.Trips.ListPublic(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPublic: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Create validates and persists a new trip owned by owner, then generates one
// day per calendar date. A failure to create the days is logged and does not
// fail the call: the trip exists and the days are re-synced on the next update.
func (s *TripService) Create(ctx context.Context, owner uuid.UUID, in domain.TripInput) (domain.Trip, error) {
	if err := requireActor(owner); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	if err := s.validate.Validate(in); err != nil {
		return domain.Trip{}, err
	}

	trip, err := s.repos.Trips.Create(ctx, in.Apply(domain.Trip{OwnerID: owner}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	events := []domain.ChangeEvent{tripEvent(domain.ChangeInsert, trip)}
	if s.syncDays(ctx, trip) {
		events = append(events, domain.ChangeEvent{
			Table: domain.TableDays, Kind: domain.ChangeInsert, TripID: trip.ID, OwnerID: trip.OwnerID,
		})
	}
	s.notifier.publish(ctx, events...)
	return trip, nil
}

// Update validates and applies changes to a trip owned by actor.
// Days are re-synced when the date range changes.
func (s *TripService) Update(ctx context.Context, actor, id uuid.UUID, in domain.TripInput) (domain.Trip, error) {
	if err := requireActor(actor); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	if err := s.validate.Validate(in); err != nil {
		return domain.Trip{}, err
	}

	current, err := s.owned(ctx, actor, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	updated, err := s.repos.Trips.Update(ctx, in.Apply(current))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	events := []domain.ChangeEvent{tripEvent(domain.ChangeUpdate, updated)}
	if !updated.StartDate.Equal(current.StartDate) || !updated.EndDate.Equal(current.EndDate) {
		if s.syncDays(ctx, updated) {
			events = append(events, domain.ChangeEvent{
				Table: domain.TableDays, Kind: domain.ChangeUpdate, TripID: updated.ID, OwnerID: updated.OwnerID,
			})
		}
	}
	s.notifier.publish(ctx, events...)
	return updated, nil
}

// cascadeStep is one child-table cleanup performed before a trip row is removed.
type cascadeStep struct {
	name string
	run  func(ctx context.Context, tripID uuid.UUID) (int64, error)
}

// Delete removes a trip owned by actor. Children are deleted first, in the
// order plans, days, collaborators. A failing child step is logged as a warning
// and the cascade continues; the call reports success as long as the trip row
// itself is deleted. The cover image is removed last, also best effort.
func (s *TripService) Delete(ctx context.Context, actor, id uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	trip, err := s.owned(ctx, actor, id)
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}

	steps := []cascadeStep{
		{name: "plans", run: s.repos.Plans.DeleteByTrip},
		{name: "days", run: s.repos.Days.DeleteByTrip},
		{name: "collaborators", run: s.repos.Collaborators.DeleteByTrip},
	}
	for _, step := range steps {
		n, err := step.run(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "trip delete: cascade step failed",
				"trip_id", id,
				"step", step.name,
				"error", err,
			)
			continue
		}
		s.logger.DebugContext(ctx, "trip delete: cascade step done", "trip_id", id, "step", step.name, "rows", n)
	}

	if err := s.repos.Trips.Delete(ctx, id, actor); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}

	if trip.CoverImagePath != "" && s.store != nil {
		if err := s.store.Delete(ctx, trip.CoverImagePath); err != nil {
			s.logger.WarnContext(ctx, "trip delete: cover not removed",
				"trip_id", id,
				"path", trip.CoverImagePath,
				"error", err,
			)
		}
	}

	s.notifier.publish(ctx, tripEvent(domain.ChangeDelete, trip))
	return nil
}

// SetCover stores data as the trip's cover image, replacing any previous one.
func (s *TripService) SetCover(ctx context.Context, actor, id uuid.UUID, data []byte) (domain.Trip, error) {
	if s.store == nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.SetCover: %w: storage", domain.ErrConfig)
	}
	if err := requireActor(actor); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.SetCover: %w", err)
	}
	if len(data) == 0 {
		return domain.Trip{}, domain.NewValidationError("cover", "is required")
	}
	current, err := s.owned(ctx, actor, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.SetCover: %w", err)
	}

	obj, err := s.store.Put(ctx, "trips/"+id.String(), data)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return domain.Trip{}, domain.NewValidationError("cover", "must be a JPEG, PNG, WebP or GIF image")
		}
		return domain.Trip{}, fmt.Errorf("service.TripService.SetCover: %w", err)
	}

	updated, err := s.repos.Trips.UpdateCover(ctx, id, actor, obj.URL, obj.Path)
	if err != nil {
		if delErr := s.store.Delete(ctx, obj.Path); delErr != nil {
			s.logger.WarnContext(ctx, "orphaned cover object", "path", obj.Path, "error", delErr)
		}
		return domain.Trip{}, fmt.Errorf("service.TripService.SetCover: %w", err)
	}
	s.dropCover(ctx, current.CoverImagePath)

	s.notifier.publish(ctx, tripEvent(domain.ChangeUpdate, updated))
	return updated, nil
}

// RemoveCover clears the trip's cover image.
func (s *TripService) RemoveCover(ctx context.Context, actor, id uuid.UUID) (domain.Trip, error) {
	if err := requireActor(actor); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.RemoveCover: %w", err)
	}
	current, err := s.owned(ctx, actor, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.RemoveCover: %w", err)
	}
	updated, err := s.repos.Trips.UpdateCover(ctx, id, actor, "", "")
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.RemoveCover: %w", err)
	}
	s.dropCover(ctx, current.CoverImagePath)

	s.notifier.publish(ctx, tripEvent(domain.ChangeUpdate, updated))
	return updated, nil
}

// owned fetches a trip and checks that actor owns it.
func (s *TripService) owned(ctx context.Context, actor, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.repos.Trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}
	if err := requireOwner(actor, trip.OwnerID); err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

// syncDays aligns the trip's day rows with its date range and reports success.
func (s *TripService) syncDays(ctx context.Context, trip domain.Trip) bool {
	days, err := s.repos.Days.SyncRange(ctx, trip.ID, trip.StartDate, trip.DayCount())
	if err != nil {
		s.logger.WarnContext(ctx, "trip days not synced", "trip_id", trip.ID, "error", err)
		return false
	}
	s.logger.DebugContext(ctx, "trip days synced", "trip_id", trip.ID, "days", len(days))
	return true
}

func (s *TripService) dropCover(ctx context.Context, path string) {
	if path == "" || s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, path); err != nil {
		s.logger.WarnContext(ctx, "previous cover not removed", "path", path, "error", err)
	}
}

func tripEvent(kind domain.ChangeKind, trip domain.Trip) domain.ChangeEvent {
	return domain.ChangeEvent{
		Table:    domain.TableTrips,
		Kind:     kind,
		RecordID: trip.ID,
		TripID:   trip.ID,
		OwnerID:  trip.OwnerID,
		Public:   trip.IsPublic,
	}
}
