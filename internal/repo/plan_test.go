package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/repo"
)

// seedDay creates a trip with one day and returns the trip and day.
func seedDay(t *testing.T, tx pgx.Tx) (domain.Trip, domain.Day) {
	t.Helper()
	ctx := context.Background()
	trip, err := repo.NewTripRepo(tx).Create(ctx, tripFixture(uuid.New()))
	require.NoError(t, err)
	ds, err := repo.NewDayRepo(tx).SyncRange(ctx, trip.ID, trip.StartDate, 1)
	require.NoError(t, err)
	return trip, ds[0]
}

func TestPlanRepo_CreateAppendsOrder(t *testing.T) {
	tx := newTx(t)
	_, day := seedDay(t, tx)
	r := repo.NewPlanRepo(tx)
	ctx := context.Background()

	a, err := r.Create(ctx, domain.Plan{DayID: day.ID, PlaceName: "A", PlanType: domain.PlanOthers})
	require.NoError(t, err)
	b, err := r.Create(ctx, domain.Plan{DayID: day.ID, PlaceName: "B", PlanType: domain.PlanOthers})
	require.NoError(t, err)

	assert.Equal(t, 0, a.OrderIndex)
	assert.Equal(t, 1, b.OrderIndex)
	assert.Nil(t, a.PlannedTime)
	assert.Nil(t, a.Budget)
}

func TestPlanRepo_LocateUpdateDelete(t *testing.T) {
	tx := newTx(t)
	trip, day := seedDay(t, tx)
	r := repo.NewPlanRepo(tx)
	ctx := context.Background()

	p, err := r.Create(ctx, domain.Plan{DayID: day.ID, PlaceName: "Market", PlanType: domain.PlanShopping})
	require.NoError(t, err)

	loc, err := r.Locate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, loc.TripID)
	assert.Equal(t, trip.OwnerID, loc.OwnerID)

	at := domain.NewClockTime(14, 0)
	minutes := 45
	p.PlannedTime = &at
	p.DurationMinutes = &minutes
	p.PlaceName = "Night market"
	updated, err := r.Update(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Night market", updated.PlaceName)
	require.NotNil(t, updated.PlannedTime)
	assert.Equal(t, at, *updated.PlannedTime)
	assert.Equal(t, 45, *updated.DurationMinutes)

	require.NoError(t, r.Delete(ctx, p.ID))
	assert.ErrorIs(t, r.Delete(ctx, p.ID), domain.ErrNotFound)
}

func TestPlanRepo_Reorder(t *testing.T) {
	tx := newTx(t)
	_, day := seedDay(t, tx)
	r := repo.NewPlanRepo(tx)
	ctx := context.Background()

	a, err := r.Create(ctx, domain.Plan{DayID: day.ID, PlaceName: "A", PlanType: domain.PlanOthers})
	require.NoError(t, err)
	b, err := r.Create(ctx, domain.Plan{DayID: day.ID, PlaceName: "B", PlanType: domain.PlanOthers})
	require.NoError(t, err)

	require.NoError(t, r.Reorder(ctx, day.ID, []uuid.UUID{b.ID, a.ID}))

	la, err := r.Locate(ctx, a.ID)
	require.NoError(t, err)
	lb, err := r.Locate(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, la.Plan.OrderIndex)
	assert.Equal(t, 0, lb.Plan.OrderIndex)

	err = r.Reorder(ctx, day.ID, []uuid.UUID{a.ID, uuid.New()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlanRepo_DeleteByTrip(t *testing.T) {
	tx := newTx(t)
	trip, day := seedDay(t, tx)
	r := repo.NewPlanRepo(tx)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := r.Create(ctx, domain.Plan{DayID: day.ID, PlaceName: name, PlanType: domain.PlanOthers})
		require.NoError(t, err)
	}

	n, err := r.DeleteByTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
