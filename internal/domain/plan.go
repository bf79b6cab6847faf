package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PlanType categorises a plan entry.
type PlanType string

const (
	PlanSightseeing    PlanType = "sightseeing"
	PlanRestaurant     PlanType = "restaurant"
	PlanAccommodation  PlanType = "accommodation"
	PlanTransportation PlanType = "transportation"
	PlanShopping       PlanType = "shopping"
	PlanEntertainment  PlanType = "entertainment"
	PlanMeeting        PlanType = "meeting"
	PlanOthers         PlanType = "others"
)

// PlanTypes lists every plan type in display order.
var PlanTypes = []PlanType{
	PlanSightseeing, PlanRestaurant, PlanAccommodation, PlanTransportation,
	PlanShopping, PlanEntertainment, PlanMeeting, PlanOthers,
}

// Valid reports whether p is one of the known plan types.
func (p PlanType) Valid() bool {
	for _, v := range PlanTypes {
		if p == v {
			return true
		}
	}
	return false
}

// ClockTime is a wall-clock time of day in whole minutes since midnight.
// Its text form is "HH:MM".
type ClockTime int

// NewClockTime builds a ClockTime from hours and minutes.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime accepts "HH:MM" or "HH:MM:SS" (seconds are dropped).
func ParseClockTime(s string) (ClockTime, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewClockTime(t.Hour(), t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// MarshalText implements encoding.TextMarshaler.
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ClockTime) UnmarshalText(b []byte) error {
	v, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Plan is a single scheduled item within a day.
// PlannedTime, DurationMinutes, Budget and the coordinates are optional.
type Plan struct {
	ID              uuid.UUID  `json:"id"`
	DayID           uuid.UUID  `json:"day_id"`
	PlaceName       string     `json:"place_name"`
	PlaceAddress    string     `json:"place_address,omitempty"`
	PlanType        PlanType   `json:"plan_type"`
	PlannedTime     *ClockTime `json:"planned_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Budget          *float64   `json:"budget,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
	OrderIndex      int        `json:"order_index"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// PlanInput carries the editable fields of a plan.
type PlanInput struct {
	PlaceName       string     `json:"place_name" validate:"required,max=100"`
	PlaceAddress    string     `json:"place_address" validate:"max=200"`
	PlanType        PlanType   `json:"plan_type" validate:"required,oneof=sightseeing restaurant accommodation transportation shopping entertainment meeting others"`
	PlannedTime     *ClockTime `json:"planned_time"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,gte=0,lte=1440"`
	Budget          *float64   `json:"budget" validate:"omitempty,gte=0"`
	Notes           string     `json:"notes" validate:"max=500"`
	Latitude        *float64   `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude       *float64   `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// Apply copies the input onto plan.
func (in PlanInput) Apply(plan Plan) Plan {
	plan.PlaceName = in.PlaceName
	plan.PlaceAddress = in.PlaceAddress
	plan.PlanType = in.PlanType
	plan.PlannedTime = in.PlannedTime
	plan.DurationMinutes = in.DurationMinutes
	plan.Budget = in.Budget
	plan.Notes = in.Notes
	plan.Latitude = in.Latitude
	plan.Longitude = in.Longitude
	return plan
}
