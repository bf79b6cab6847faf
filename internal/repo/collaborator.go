package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/moonwavetravel/backend/internal/domain"
)

// CollaboratorRepo defines the persistence operations for trip collaborators.
type CollaboratorRepo interface {
	// Create stores a pending invitation. Returns domain.ErrConflict if the
	// e-mail is already invited to the trip.
	Create(ctx context.Context, c domain.Collaborator) (domain.Collaborator, error)

	// GetByID retrieves a single collaborator.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Collaborator, error)

	// ListByTrip returns the collaborators of a trip in invitation order.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Collaborator, error)

	// Accept marks a pending invitation accepted by userID.
	Accept(ctx context.Context, id, userID uuid.UUID) (domain.Collaborator, error)

	// Delete removes a collaborator.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByTrip removes every collaborator of a trip.
	DeleteByTrip(ctx context.Context, tripID uuid.UUID) (int64, error)
}

type pgCollaboratorRepo struct {
	db db
}

// NewCollaboratorRepo constructs a CollaboratorRepo backed by the provided db connection.
func NewCollaboratorRepo(db db) CollaboratorRepo {
	return &pgCollaboratorRepo{db: db}
}

const collaboratorColumns = `id, trip_id, email, role, status, invited_by, user_id, created_at, updated_at`

func (r *pgCollaboratorRepo) Create(ctx context.Context, c domain.Collaborator) (domain.Collaborator, error) {
	q := `
		INSERT INTO collaborators (trip_id, email, role, invited_by)
		VALUES (@trip_id, lower(@email), @role, @invited_by)
		RETURNING ` + collaboratorColumns

	args := pgx.NamedArgs{
		"trip_id":    c.TripID,
		"email":      c.Email,
		"role":       string(c.Role),
		"invited_by": c.InvitedBy,
	}
	result, err := scanCollaborator(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if uniqueViolation(err) {
			return domain.Collaborator{}, fmt.Errorf("repo.CollaboratorRepo.Create: %w", domain.ErrConflict)
		}
		return domain.Collaborator{}, fmt.Errorf("repo.CollaboratorRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgCollaboratorRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Collaborator, error) {
	q := `SELECT ` + collaboratorColumns + ` FROM collaborators WHERE id = @id`

	result, err := scanCollaborator(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Collaborator{}, fmt.Errorf("repo.CollaboratorRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgCollaboratorRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Collaborator, error) {
	q := `SELECT ` + collaboratorColumns + ` FROM collaborators WHERE trip_id = @trip_id ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.CollaboratorRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	out := []domain.Collaborator{}
	for rows.Next() {
		c, err := scanCollaborator(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CollaboratorRepo.ListByTrip: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CollaboratorRepo.ListByTrip: rows: %w", err)
	}
	return out, nil
}

func (r *pgCollaboratorRepo) Accept(ctx context.Context, id, userID uuid.UUID) (domain.Collaborator, error) {
	q := `
		UPDATE collaborators
		SET status = 'accepted', user_id = @user_id, updated_at = now()
		WHERE id = @id
		RETURNING ` + collaboratorColumns

	result, err := scanCollaborator(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID}))
	if err != nil {
		return domain.Collaborator{}, fmt.Errorf("repo.CollaboratorRepo.Accept: %w", err)
	}
	return result, nil
}

func (r *pgCollaboratorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM collaborators WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.CollaboratorRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CollaboratorRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgCollaboratorRepo) DeleteByTrip(ctx context.Context, tripID uuid.UUID) (int64, error) {
	const q = `DELETE FROM collaborators WHERE trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return 0, fmt.Errorf("repo.CollaboratorRepo.DeleteByTrip: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanCollaborator(s scanner) (domain.Collaborator, error) {
	var (
		c                      domain.Collaborator
		id, tripID, by, userID pgtype.UUID
		role, status           string
	)
	if err := s.Scan(&id, &tripID, &c.Email, &role, &status, &by, &userID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Collaborator{}, notFound(err)
	}
	c.ID = toUUID(id)
	c.TripID = toUUID(tripID)
	c.InvitedBy = toUUID(by)
	c.UserID = toUUIDPtr(userID)
	c.Role = domain.CollaboratorRole(role)
	c.Status = domain.CollaboratorStatus(status)
	return c, nil
}
