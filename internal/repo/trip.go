package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/moonwavetravel/backend/internal/domain"
)

// TripRepo defines the persistence operations for Trips.
// Writes are scoped by both id and owner id: a trip owned by someone else
// behaves exactly like a missing one.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip row. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// Update overwrites the editable fields of a trip owned by trip.OwnerID.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// UpdateCover sets the cover image URL and storage path. Empty values clear it.
	UpdateCover(ctx context.Context, id, owner uuid.UUID, url, path string) (domain.Trip, error)

	// Delete removes a trip owned by owner.
	Delete(ctx context.Context, id, owner uuid.UUID) error

	// AddCollaborator records userID in the trip's collaborator_ids set.
	AddCollaborator(ctx context.Context, tripID, userID uuid.UUID) error

	// RemoveCollaborator drops userID from the trip's collaborator_ids set.
	RemoveCollaborator(ctx context.Context, tripID, userID uuid.UUID) error

	// Tree loads the trip with its days, their plans, and its collaborators
	// in a single query.
	Tree(ctx context.Context, id uuid.UUID) (domain.TripWithDays, error)

	// ListTrees loads every trip visible to viewer (owned or public), newest first,
	// each with its full tree, in a single query.
	ListTrees(ctx context.Context, viewer uuid.UUID) ([]domain.TripWithDays, error)

	// ListPublic returns one page of public trips and the total number of public trips.
	ListPublic(ctx context.Context, p domain.PageRequest) ([]domain.Trip, int64, error)
}

type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, owner_id, title, destination, start_date, end_date, description,
	cover_image_url, cover_image_path, is_public, status, collaborator_ids, created_at, updated_at`

// tripTreeSelect builds the nested JSON document for a trip row aliased t.
const tripTreeSelect = `
	SELECT to_jsonb(t) || jsonb_build_object(
		'days', COALESCE((
			SELECT jsonb_agg(to_jsonb(d) || jsonb_build_object(
				'plans', COALESCE((
					SELECT jsonb_agg(to_jsonb(p) ORDER BY p.order_index, p.planned_time NULLS LAST)
					FROM plans p
					WHERE p.day_id = d.id
				), '[]'::jsonb)
			) ORDER BY d.day_number)
			FROM days d
			WHERE d.trip_id = t.id
		), '[]'::jsonb),
		'collaborators', COALESCE((
			SELECT jsonb_agg(to_jsonb(c) ORDER BY c.created_at)
			FROM collaborators c
			WHERE c.trip_id = t.id
		), '[]'::jsonb)
	)
	FROM trips t`

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	q := `
		INSERT INTO trips (owner_id, title, destination, start_date, end_date, description, is_public, status)
		VALUES (@owner_id, @title, @destination, @start_date, @end_date, @description, @is_public, @status)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"owner_id":    trip.OwnerID,
		"title":       trip.Title,
		"destination": trip.Destination,
		"start_date":  trip.StartDate,
		"end_date":    trip.EndDate,
		"description": trip.Description,
		"is_public":   trip.IsPublic,
		"status":      string(trip.Status),
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	q := `
		UPDATE trips
		SET title       = @title,
		    destination = @destination,
		    start_date  = @start_date,
		    end_date    = @end_date,
		    description = @description,
		    is_public   = @is_public,
		    status      = @status,
		    updated_at  = now()
		WHERE id = @id AND owner_id = @owner_id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":          trip.ID,
		"owner_id":    trip.OwnerID,
		"title":       trip.Title,
		"destination": trip.Destination,
		"start_date":  trip.StartDate,
		"end_date":    trip.EndDate,
		"description": trip.Description,
		"is_public":   trip.IsPublic,
		"status":      string(trip.Status),
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) UpdateCover(ctx context.Context, id, owner uuid.UUID, url, path string) (domain.Trip, error) {
	q := `
		UPDATE trips
		SET cover_image_url = @url, cover_image_path = @path, updated_at = now()
		WHERE id = @id AND owner_id = @owner_id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{"id": id, "owner_id": owner, "url": url, "path": path}
	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateCover: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) Delete(ctx context.Context, id, owner uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id AND owner_id = @owner_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "owner_id": owner})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTripRepo) AddCollaborator(ctx context.Context, tripID, userID uuid.UUID) error {
	const q = `
		UPDATE trips
		SET collaborator_ids = array_append(collaborator_ids, @user_id::uuid), updated_at = now()
		WHERE id = @id AND NOT (@user_id::uuid = ANY (collaborator_ids))`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": tripID, "user_id": userID}); err != nil {
		return fmt.Errorf("repo.TripRepo.AddCollaborator: %w", err)
	}
	return nil
}

func (r *pgTripRepo) RemoveCollaborator(ctx context.Context, tripID, userID uuid.UUID) error {
	const q = `
		UPDATE trips
		SET collaborator_ids = array_remove(collaborator_ids, @user_id::uuid), updated_at = now()
		WHERE id = @id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": tripID, "user_id": userID}); err != nil {
		return fmt.Errorf("repo.TripRepo.RemoveCollaborator: %w", err)
	}
	return nil
}

func (r *pgTripRepo) Tree(ctx context.Context, id uuid.UUID) (domain.TripWithDays, error) {
	q := tripTreeSelect + ` WHERE t.id = @id`

	var row tripRow
	if err := decodeJSON(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}), &row); err != nil {
		return domain.TripWithDays{}, fmt.Errorf("repo.TripRepo.Tree: %w", err)
	}
	return row.tree(), nil
}

func (r *pgTripRepo) ListTrees(ctx context.Context, viewer uuid.UUID) ([]domain.TripWithDays, error) {
	q := tripTreeSelect + `
		WHERE t.owner_id = @viewer OR t.is_public
		ORDER BY t.created_at DESC, t.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"viewer": viewer})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListTrees: %w", err)
	}
	defer rows.Close()

	trees := []domain.TripWithDays{}
	for rows.Next() {
		var row tripRow
		if err := decodeJSON(rows, &row); err != nil {
			return nil, fmt.Errorf("repo.TripRepo.ListTrees: scan: %w", err)
		}
		trees = append(trees, row.tree())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListTrees: rows: %w", err)
	}
	return trees, nil
}

func (r *pgTripRepo) ListPublic(ctx context.Context, p domain.PageRequest) ([]domain.Trip, int64, error) {
	q := `
		SELECT ` + tripColumns + `, COUNT(*) OVER () AS total
		FROM trips
		WHERE is_public
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPublic: %w", err)
	}
	defer rows.Close()

	var (
		trips = []domain.Trip{}
		total int64
	)
	for rows.Next() {
		t, err := scanTripWith(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListPublic: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPublic: rows: %w", err)
	}
	return trips, total, nil
}

// scanTrip maps a row selected with tripColumns into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	return scanTripWith(s)
}

// scanTripWith scans tripColumns followed by any extra destinations.
func scanTripWith(s scanner, extra ...any) (domain.Trip, error) {
	var (
		t             domain.Trip
		id, owner     pgtype.UUID
		start, end    pgtype.Date
		status        string
		collaborators []pgtype.UUID
	)

	dest := []any{&id, &owner, &t.Title, &t.Destination, &start, &end, &t.Description,
		&t.CoverImageURL, &t.CoverImagePath, &t.IsPublic, &status, &collaborators, &t.CreatedAt, &t.UpdatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return domain.Trip{}, notFound(err)
	}

	t.ID = toUUID(id)
	t.OwnerID = toUUID(owner)
	t.StartDate = start.Time
	t.EndDate = end.Time
	t.Status = domain.TripStatus(status)
	t.CollaboratorIDs = toUUIDs(collaborators)
	return t, nil
}
