package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/moonwavetravel/backend/internal/domain"
)

// DayRepo defines the persistence operations for Days.
type DayRepo interface {
	// SyncRange makes the trip have exactly count days numbered 1..count,
	// dated consecutively from start. Existing days keep their id, title and
	// theme; days beyond count are removed together with their plans.
	SyncRange(ctx context.Context, tripID uuid.UUID, start time.Time, count int) ([]domain.Day, error)

	// GetByID retrieves a single day. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Day, error)

	// Update overwrites the title and theme of a day.
	Update(ctx context.Context, day domain.Day) (domain.Day, error)

	// Detail loads the day, its plans and its parent trip in a single query.
	Detail(ctx context.Context, id uuid.UUID) (domain.DayDetail, error)

	// Owner resolves the trip id and trip owner of a day.
	Owner(ctx context.Context, id uuid.UUID) (tripID, ownerID uuid.UUID, err error)

	// DeleteByTrip removes every day of a trip and returns how many were removed.
	DeleteByTrip(ctx context.Context, tripID uuid.UUID) (int64, error)
}

type pgDayRepo struct {
	db db
}

// NewDayRepo constructs a DayRepo backed by the provided db connection.
func NewDayRepo(db db) DayRepo {
	return &pgDayRepo{db: db}
}

const dayColumns = `id, trip_id, day_number, date, title, theme, created_at, updated_at`

func (r *pgDayRepo) SyncRange(ctx context.Context, tripID uuid.UUID, start time.Time, count int) ([]domain.Day, error) {
	const prune = `DELETE FROM days WHERE trip_id = @trip_id AND day_number > @count`
	if _, err := r.db.Exec(ctx, prune, pgx.NamedArgs{"trip_id": tripID, "count": count}); err != nil {
		return nil, fmt.Errorf("repo.DayRepo.SyncRange: prune: %w", err)
	}

	q := `
		INSERT INTO days (trip_id, day_number, date)
		SELECT @trip_id::uuid, n, @start::date + (n - 1)
		FROM generate_series(1, @count::int) AS n
		ON CONFLICT (trip_id, day_number)
		DO UPDATE SET date = EXCLUDED.date, updated_at = now()
		RETURNING ` + dayColumns

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID, "start": start, "count": count})
	if err != nil {
		return nil, fmt.Errorf("repo.DayRepo.SyncRange: %w", err)
	}
	defer rows.Close()

	days := []domain.Day{}
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.DayRepo.SyncRange: scan: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DayRepo.SyncRange: rows: %w", err)
	}
	return days, nil
}

func (r *pgDayRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Day, error) {
	q := `SELECT ` + dayColumns + ` FROM days WHERE id = @id`

	d, err := scanDay(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Day{}, fmt.Errorf("repo.DayRepo.GetByID: %w", err)
	}
	return d, nil
}

func (r *pgDayRepo) Update(ctx context.Context, day domain.Day) (domain.Day, error) {
	q := `
		UPDATE days
		SET title = @title, theme = @theme, updated_at = now()
		WHERE id = @id
		RETURNING ` + dayColumns

	args := pgx.NamedArgs{"id": day.ID, "title": day.Title, "theme": day.Theme}
	d, err := scanDay(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Day{}, fmt.Errorf("repo.DayRepo.Update: %w", err)
	}
	return d, nil
}

func (r *pgDayRepo) Detail(ctx context.Context, id uuid.UUID) (domain.DayDetail, error) {
	const q = `
		SELECT to_jsonb(d) || jsonb_build_object(
			'plans', COALESCE((
				SELECT jsonb_agg(to_jsonb(p) ORDER BY p.order_index, p.planned_time NULLS LAST)
				FROM plans p
				WHERE p.day_id = d.id
			), '[]'::jsonb),
			'trip', to_jsonb(t)
		)
		FROM days d
		JOIN trips t ON t.id = d.trip_id
		WHERE d.id = @id`

	var row dayDetailRow
	if err := decodeJSON(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}), &row); err != nil {
		return domain.DayDetail{}, fmt.Errorf("repo.DayRepo.Detail: %w", err)
	}
	detail := domain.DayDetail{DayWithPlans: row.withPlans(), Trip: row.Trip.trip()}
	return detail.Normalize(), nil
}

func (r *pgDayRepo) Owner(ctx context.Context, id uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	const q = `
		SELECT t.id, t.owner_id
		FROM days d
		JOIN trips t ON t.id = d.trip_id
		WHERE d.id = @id`

	var tripID, ownerID pgtype.UUID
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&tripID, &ownerID); err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("repo.DayRepo.Owner: %w", notFound(err))
	}
	return toUUID(tripID), toUUID(ownerID), nil
}

func (r *pgDayRepo) DeleteByTrip(ctx context.Context, tripID uuid.UUID) (int64, error) {
	const q = `DELETE FROM days WHERE trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return 0, fmt.Errorf("repo.DayRepo.DeleteByTrip: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanDay(s scanner) (domain.Day, error) {
	var (
		d          domain.Day
		id, tripID pgtype.UUID
		date       pgtype.Date
	)
	if err := s.Scan(&id, &tripID, &d.DayNumber, &date, &d.Title, &d.Theme, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return domain.Day{}, notFound(err)
	}
	d.ID = toUUID(id)
	d.TripID = toUUID(tripID)
	d.Date = date.Time
	return d, nil
}
