package domain

import (
	"time"

	"github.com/google/uuid"
)

// Day is one calendar day of a trip. DayNumber starts at 1 and is unique per trip.
type Day struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	DayNumber int       `json:"day_number"`
	Date      time.Time `json:"date"`
	Title     string    `json:"title,omitempty"`
	Theme     string    `json:"theme,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DayInput carries the editable fields of a day.
type DayInput struct {
	Title string `json:"title" validate:"max=100"`
	Theme string `json:"theme" validate:"max=100"`
}
