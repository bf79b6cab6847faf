package domain_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonwavetravel/backend/internal/domain"
)

func clock(h, m int) *domain.ClockTime {
	c := domain.NewClockTime(h, m)
	return &c
}

func planAt(order int, t *domain.ClockTime) domain.Plan {
	return domain.Plan{ID: uuid.New(), OrderIndex: order, PlannedTime: t, PlaceName: "p"}
}

func ids(plans []domain.Plan) []uuid.UUID {
	out := make([]uuid.UUID, len(plans))
	for i, p := range plans {
		out[i] = p.ID
	}
	return out
}

func TestSortPlans_OrderIndexThenTimeUntimedLast(t *testing.T) {
	lunch := planAt(1, clock(12, 0))
	breakfast := planAt(1, clock(8, 30))
	walk := planAt(1, nil)
	first := planAt(0, nil)

	plans := []domain.Plan{walk, lunch, first, breakfast}
	domain.SortPlans(plans)

	assert.Equal(t, []uuid.UUID{first.ID, breakfast.ID, lunch.ID, walk.ID}, ids(plans))
}

func TestSortPlans_IndependentOfInputOrder(t *testing.T) {
	var plans []domain.Plan
	for i := range 12 {
		var c *domain.ClockTime
		if i%3 != 0 {
			c = clock(8+i%4, 15)
		}
		plans = append(plans, planAt(i%2, c))
	}

	want := append([]domain.Plan(nil), plans...)
	domain.SortPlans(want)

	for range 20 {
		shuffled := append([]domain.Plan(nil), plans...)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		domain.SortPlans(shuffled)
		require.Equal(t, ids(want), ids(shuffled))
	}
}

func TestSplitByTime(t *testing.T) {
	late := planAt(0, clock(18, 0))
	early := planAt(5, clock(7, 45))
	noteA := planAt(2, nil)
	noteB := planAt(1, nil)

	input := []domain.Plan{late, noteA, early, noteB}
	timed, untimed := domain.SplitByTime(input)

	assert.Equal(t, []uuid.UUID{early.ID, late.ID}, ids(timed))
	assert.Equal(t, []uuid.UUID{noteB.ID, noteA.ID}, ids(untimed))
	// input untouched
	assert.Equal(t, late.ID, input[0].ID)
}

func TestSplitByTime_Empty(t *testing.T) {
	timed, untimed := domain.SplitByTime(nil)
	assert.NotNil(t, timed)
	assert.NotNil(t, untimed)
	assert.Empty(t, timed)
	assert.Empty(t, untimed)
}

func TestTripWithDays_Normalize(t *testing.T) {
	d2 := domain.DayWithPlans{Day: domain.Day{ID: uuid.New(), DayNumber: 2}}
	d1 := domain.DayWithPlans{Day: domain.Day{ID: uuid.New(), DayNumber: 1}, Plans: []domain.Plan{planAt(3, nil), planAt(1, nil)}}

	tree := domain.TripWithDays{Days: []domain.DayWithPlans{d2, d1}}.Normalize()

	require.Len(t, tree.Days, 2)
	assert.Equal(t, 1, tree.Days[0].DayNumber)
	assert.Equal(t, 1, tree.Days[0].Plans[0].OrderIndex)
	assert.NotNil(t, tree.Days[1].Plans)
	assert.NotNil(t, tree.Collaborators)
	assert.NotNil(t, tree.CollaboratorIDs)
	assert.Len(t, tree.Plans(), 2)
}

func TestTrip_VisibleTo(t *testing.T) {
	owner := uuid.New()
	private := domain.Trip{OwnerID: owner}
	public := domain.Trip{OwnerID: owner, IsPublic: true}

	assert.True(t, private.VisibleTo(owner))
	assert.False(t, private.VisibleTo(uuid.New()))
	assert.False(t, private.VisibleTo(uuid.Nil))
	assert.True(t, public.VisibleTo(uuid.Nil))
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, domain.DaysBetween(start, start))
	assert.Equal(t, 3, domain.DaysBetween(start, start.AddDate(0, 0, 2)))
	assert.Equal(t, 0, domain.DaysBetween(start, start.AddDate(0, 0, -1)))
}

func TestClockTime_Text(t *testing.T) {
	var c domain.ClockTime
	require.NoError(t, c.UnmarshalText([]byte("09:05:00")))
	assert.Equal(t, "09:05", c.String())

	require.Error(t, c.UnmarshalText([]byte("25:99")))
}

func TestValidationError_IsErrValidation(t *testing.T) {
	err := domain.NewValidationError("title", "is required")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "validation failed: title is required", err.Error())
}
