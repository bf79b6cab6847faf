package validation_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/validation"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected *domain.ValidationError, got %v", err)
	return verr.Fields
}

func validTrip() domain.TripInput {
	start := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	return domain.TripInput{Title: "Busan", Destination: "Busan", StartDate: start, EndDate: start.AddDate(0, 0, 1)}
}

func TestValidate_TripOK(t *testing.T) {
	assert.NoError(t, validation.New().Validate(validTrip()))
}

func TestValidate_TripRequiredFields(t *testing.T) {
	err := validation.New().Validate(domain.TripInput{})

	f := fields(t, err)
	assert.Equal(t, "is required", f["title"])
	assert.Equal(t, "is required", f["destination"])
	assert.Equal(t, "is required", f["start_date"])
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidate_TripEndBeforeStart(t *testing.T) {
	in := validTrip()
	in.EndDate = in.StartDate.AddDate(0, 0, -1)

	f := fields(t, validation.New().Validate(in))
	assert.Equal(t, "must not be before start_date", f["end_date"])
}

func TestValidate_TripTitleTooLong(t *testing.T) {
	in := validTrip()
	in.Title = strings.Repeat("a", 101)

	f := fields(t, validation.New().Validate(in))
	assert.Equal(t, "must not exceed 100 characters", f["title"])
}

func TestValidate_PlanRanges(t *testing.T) {
	lat, minutes, budget := 91.0, -5, -1.0
	in := domain.PlanInput{
		PlaceName:       "Tower",
		PlanType:        "spa",
		Latitude:        &lat,
		DurationMinutes: &minutes,
		Budget:          &budget,
	}

	f := fields(t, validation.New().Validate(in))
	assert.Contains(t, f["plan_type"], "must be one of")
	assert.Equal(t, "must be less than or equal to 90", f["latitude"])
	assert.Equal(t, "must be greater than or equal to 0", f["duration_minutes"])
	assert.Equal(t, "must be greater than or equal to 0", f["budget"])
}

func TestValidate_PlanOptionalNil(t *testing.T) {
	in := domain.PlanInput{PlaceName: "Tower", PlanType: domain.PlanSightseeing}
	assert.NoError(t, validation.New().Validate(in))
}

func TestValidate_CollaboratorEmail(t *testing.T) {
	f := fields(t, validation.New().Validate(domain.CollaboratorInput{Email: "nope", Role: domain.RoleViewer}))
	assert.Equal(t, "must be a valid email address", f["email"])
}
