package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/validation"
)

// CollaboratorService manages trip invitations.
// Sending the invitation e-mail is left to an external mailer.
type CollaboratorService struct {
	repos    Repos
	validate *validation.Validator
	notifier notifier
	logger   *slog.Logger
}

// NewCollaboratorService constructs a CollaboratorService.
func NewCollaboratorService(repos Repos, v *validation.Validator, events Publisher, logger *slog.Logger) *CollaboratorService {
	n := newNotifier(events, logger)
	return &CollaboratorService{
		repos:    repos,
		validate: v,
		notifier: n,
		logger:   n.logger.With("component", "collaborator_service"),
	}
}

// List returns the collaborators of a trip visible to viewer.
func (s *CollaboratorService) List(ctx context.Context, viewer, tripID uuid.UUID) ([]domain.Collaborator, error) {
	trip, err := s.repos.Trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.CollaboratorService.List: %w", err)
	}
	if !trip.VisibleTo(viewer) {
		return nil, fmt.Errorf("service.CollaboratorService.List: %w", domain.ErrAccessDenied)
	}
	list, err := s.repos.Collaborators.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.CollaboratorService.List: %w", err)
	}
	if list == nil {
		return []domain.Collaborator{}, nil
	}
	return list, nil
}

// Invite records a pending invitation for an e-mail address on a trip owned by actor.
// Returns domain.ErrConflict when that address is already invited.
func (s *CollaboratorService) Invite(ctx context.Context, actor, tripID uuid.UUID, in domain.CollaboratorInput) (domain.Collaborator, error) {
	if err := requireActor(actor); err != nil {
		return domain.Collaborator{}, fmt.Errorf("service.CollaboratorService.Invite: %w", err)
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Validate(in); err != nil {
		return domain.Collaborator{}, err
	}

	trip, err := s.repos.Trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Collaborator{}, fmt.Errorf("service.CollaboratorService.Invite: %w", err)
	}
	if err := requireOwner(actor, trip.OwnerID); err != nil {
		return domain.Collaborator{}, fmt.Errorf("service.CollaboratorService.Invite: %w", err)
	}

	c, err := s.repos.Collaborators.Create(ctx, domain.Collaborator{
		TripID:    tripID,
		Email:     in.Email,
		Role:      in.Role,
		Status:    domain.CollaboratorPending,
		InvitedBy: actor,
	})
	if err != nil {
		return domain.Collaborator{}, fmt.Errorf("service.CollaboratorService.Invite: %w", err)
	}

	s.notifier.publish(ctx, collaboratorEvent(domain.ChangeInsert, c, trip.OwnerID))
	return c, nil
}

// Accept marks an invitation addressed to email as accepted by userID and
// adds userID to the trip's collaborator set. Accepting twice is a no-op.
func (s *CollaboratorService) Accept(ctx context.Context, userID uuid.UUID, email string, id uuid.UUID) (domain.Collaborator, error) {
	if err := requireActor(userID); err != nil {
		return domain.Collaborator{}, fmt.Errorf("service.CollaboratorService.Accept: %w", err)
	}
	c, err := s.repos.Collaborators.GetByID(ctx, id)
	if err != nil {
		return domain.Collaborator{}, fmt.Errorf("service.CollaboratorService.Accept: %w", err)
	}
	if !strings.EqualFold(c.Email, strings.TrimSpace(email)) {
		return domain.Collaborator{}, fmt.Errorf("service.CollaboratorService.Accept: %w", domain.ErrAccessDenied)
	}
	if c.Status == domain.CollaboratorAccepted && c.UserID != nil && *c.UserID == userID {
		return c, nil
	}

	accepted, err := s.repos.Collaborators.Accept(ctx, id, userID)
	if err != nil {
		return domain.Collaborator{}, fmt.Errorf("service.CollaboratorService.Accept: %w", err)
	}

	trip, err := s.repos.Trips.GetByID(ctx, accepted.TripID)
	if err != nil {
		return domain.Collaborator{}, fmt.Errorf("service.CollaboratorService.Accept: %w", err)
	}

	events := []domain.ChangeEvent{collaboratorEvent(domain.ChangeUpdate, accepted, trip.OwnerID)}
	if err := s.repos.Trips.AddCollaborator(ctx, accepted.TripID, userID); err != nil {
		s.logger.WarnContext(ctx, "collaborator not recorded on trip",
			"trip_id", accepted.TripID,
			"user_id", userID,
			"error", err,
		)
	} else {
		events = append(events, tripEvent(domain.ChangeUpdate, trip))
	}

	s.notifier.publish(ctx, events...)
	return accepted, nil
}

// Remove deletes a collaborator. The trip owner may remove anyone; a
// collaborator may remove themselves.
func (s *CollaboratorService) Remove(ctx context.Context, actor, id uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return fmt.Errorf("service.CollaboratorService.Remove: %w", err)
	}
	c, err := s.repos.Collaborators.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.CollaboratorService.Remove: %w", err)
	}
	trip, err := s.repos.Trips.GetByID(ctx, c.TripID)
	if err != nil {
		return fmt.Errorf("service.CollaboratorService.Remove: %w", err)
	}
	self := c.UserID != nil && *c.UserID == actor
	if actor != trip.OwnerID && !self {
		return fmt.Errorf("service.CollaboratorService.Remove: %w", domain.ErrAccessDenied)
	}

	if err := s.repos.Collaborators.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.CollaboratorService.Remove: %w", err)
	}

	events := []domain.ChangeEvent{collaboratorEvent(domain.ChangeDelete, c, trip.OwnerID)}
	if c.UserID != nil {
		if err := s.repos.Trips.RemoveCollaborator(ctx, c.TripID, *c.UserID); err != nil {
			s.logger.WarnContext(ctx, "collaborator not removed from trip",
				"trip_id", c.TripID,
				"user_id", *c.UserID,
				"error", err,
			)
		} else {
			events = append(events, tripEvent(domain.ChangeUpdate, trip))
		}
	}

	s.notifier.publish(ctx, events...)
	return nil
}

func collaboratorEvent(kind domain.ChangeKind, c domain.Collaborator, owner uuid.UUID) domain.ChangeEvent {
	return domain.ChangeEvent{
		Table:    domain.TableCollaborators,
		Kind:     kind,
		RecordID: c.ID,
		TripID:   c.TripID,
		OwnerID:  owner,
	}
}
