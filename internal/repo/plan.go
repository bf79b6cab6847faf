package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/moonwavetravel/backend/internal/domain"
)

// PlanLocation is a plan together with the trip it belongs to and that trip's owner.
type PlanLocation struct {
	Plan    domain.Plan
	TripID  uuid.UUID
	OwnerID uuid.UUID
}

// PlanRepo defines the persistence operations for Plans.
type PlanRepo interface {
	// Create inserts a plan at the end of its day (order_index = max + 1).
	Create(ctx context.Context, plan domain.Plan) (domain.Plan, error)

	// Locate retrieves a plan with its trip and trip owner.
	Locate(ctx context.Context, id uuid.UUID) (PlanLocation, error)

	// Update overwrites the editable fields of a plan.
	Update(ctx context.Context, plan domain.Plan) (domain.Plan, error)

	// Delete removes a plan by id.
	Delete(ctx context.Context, id uuid.UUID) error

	// Reorder assigns order_index 0..n-1 to the given plans of a day, in slice order.
	// Returns domain.ErrNotFound if any id is not a plan of that day.
	Reorder(ctx context.Context, dayID uuid.UUID, ids []uuid.UUID) error

	// DeleteByTrip removes every plan of every day of a trip.
	DeleteByTrip(ctx context.Context, tripID uuid.UUID) (int64, error)
}

type pgPlanRepo struct {
	db db
}

// NewPlanRepo constructs a PlanRepo backed by the provided db connection.
func NewPlanRepo(db db) PlanRepo {
	return &pgPlanRepo{db: db}
}

const planColumns = `id, day_id, place_name, place_address, plan_type, planned_time, duration_minutes,
	budget, notes, latitude, longitude, order_index, created_at, updated_at`

func planArgs(plan domain.Plan) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":               plan.ID,
		"day_id":           plan.DayID,
		"place_name":       plan.PlaceName,
		"place_address":    plan.PlaceAddress,
		"plan_type":        string(plan.PlanType),
		"planned_time":     clockArg(plan.PlannedTime),
		"duration_minutes": plan.DurationMinutes,
		"budget":           plan.Budget,
		"notes":            plan.Notes,
		"latitude":         plan.Latitude,
		"longitude":        plan.Longitude,
	}
}

func (r *pgPlanRepo) Create(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	q := `
		INSERT INTO plans (day_id, place_name, place_address, plan_type, planned_time, duration_minutes,
		                   budget, notes, latitude, longitude, order_index)
		VALUES (@day_id, @place_name, @place_address, @plan_type, @planned_time, @duration_minutes,
		        @budget, @notes, @latitude, @longitude,
		        (SELECT COALESCE(MAX(order_index) + 1, 0) FROM plans WHERE day_id = @day_id))
		RETURNING ` + planColumns

	result, err := scanPlan(r.db.QueryRow(ctx, q, planArgs(plan)))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgPlanRepo) Locate(ctx context.Context, id uuid.UUID) (PlanLocation, error) {
	const q = `
		SELECT p.id, p.day_id, p.place_name, p.place_address, p.plan_type, p.planned_time, p.duration_minutes,
		       p.budget, p.notes, p.latitude, p.longitude, p.order_index, p.created_at, p.updated_at,
		       t.id, t.owner_id
		FROM plans p
		JOIN days d ON d.id = p.day_id
		JOIN trips t ON t.id = d.trip_id
		WHERE p.id = @id`

	var tripID, ownerID pgtype.UUID
	plan, err := scanPlanWith(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}), &tripID, &ownerID)
	if err != nil {
		return PlanLocation{}, fmt.Errorf("repo.PlanRepo.Locate: %w", err)
	}
	return PlanLocation{Plan: plan, TripID: toUUID(tripID), OwnerID: toUUID(ownerID)}, nil
}

func (r *pgPlanRepo) Update(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	q := `
		UPDATE plans
		SET place_name       = @place_name,
		    place_address    = @place_address,
		    plan_type        = @plan_type,
		    planned_time     = @planned_time,
		    duration_minutes = @duration_minutes,
		    budget           = @budget,
		    notes            = @notes,
		    latitude         = @latitude,
		    longitude        = @longitude,
		    updated_at       = now()
		WHERE id = @id
		RETURNING ` + planColumns

	result, err := scanPlan(r.db.QueryRow(ctx, q, planArgs(plan)))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgPlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM plans WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.PlanRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlanRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgPlanRepo) Reorder(ctx context.Context, dayID uuid.UUID, ids []uuid.UUID) error {
	const q = `
		UPDATE plans p
		SET order_index = o.ord - 1, updated_at = now()
		FROM unnest(@ids::uuid[]) WITH ORDINALITY AS o(id, ord)
		WHERE p.id = o.id AND p.day_id = @day_id`

	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"day_id": dayID, "ids": strs})
	if err != nil {
		return fmt.Errorf("repo.PlanRepo.Reorder: %w", err)
	}
	if tag.RowsAffected() != int64(len(ids)) {
		return fmt.Errorf("repo.PlanRepo.Reorder: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgPlanRepo) DeleteByTrip(ctx context.Context, tripID uuid.UUID) (int64, error) {
	const q = `
		DELETE FROM plans p
		USING days d
		WHERE p.day_id = d.id AND d.trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return 0, fmt.Errorf("repo.PlanRepo.DeleteByTrip: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanPlan(s scanner) (domain.Plan, error) {
	return scanPlanWith(s)
}

func scanPlanWith(s scanner, extra ...any) (domain.Plan, error) {
	var (
		p         domain.Plan
		id, dayID pgtype.UUID
		planType  string
		planned   pgtype.Time
	)
	dest := []any{&id, &dayID, &p.PlaceName, &p.PlaceAddress, &planType, &planned, &p.DurationMinutes,
		&p.Budget, &p.Notes, &p.Latitude, &p.Longitude, &p.OrderIndex, &p.CreatedAt, &p.UpdatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return domain.Plan{}, notFound(err)
	}
	p.ID = toUUID(id)
	p.DayID = toUUID(dayID)
	p.PlanType = domain.PlanType(planType)
	p.PlannedTime = fromClock(planned)
	return p, nil
}
