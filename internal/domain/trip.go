// Package domain contains the core data types for the Moonwave travel planner.
// This package has no dependencies beyond uuid and is imported by every other
// internal package (repo, service, aggregate, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripPlanning  TripStatus = "planning"
	TripOngoing   TripStatus = "ongoing"
	TripCompleted TripStatus = "completed"
	TripCancelled TripStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s TripStatus) Valid() bool {
	switch s {
	case TripPlanning, TripOngoing, TripCompleted, TripCancelled:
		return true
	}
	return false
}

// Trip is the top-level travel plan. Days belong to a trip and plans belong to a day.
// StartDate and EndDate are calendar dates (time component is always midnight UTC).
type Trip struct {
	ID              uuid.UUID   `json:"id"`
	OwnerID         uuid.UUID   `json:"owner_id"`
	Title           string      `json:"title"`
	Destination     string      `json:"destination"`
	StartDate       time.Time   `json:"start_date"`
	EndDate         time.Time   `json:"end_date"`
	Description     string      `json:"description,omitempty"`
	CoverImageURL   string      `json:"cover_image_url,omitempty"`
	CoverImagePath  string      `json:"-"` // storage key of the uploaded cover, empty when none
	IsPublic        bool        `json:"is_public"`
	Status          TripStatus  `json:"status"`
	CollaboratorIDs []uuid.UUID `json:"collaborator_ids"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// VisibleTo reports whether viewer may read the trip: public trips are readable
// by anyone, private trips only by their owner. A nil viewer is anonymous.
func (t Trip) VisibleTo(viewer uuid.UUID) bool {
	return t.IsPublic || (viewer != uuid.Nil && viewer == t.OwnerID)
}

// DayCount returns the number of calendar days the trip spans, inclusive.
// It returns 0 when the end date precedes the start date.
func (t Trip) DayCount() int {
	return DaysBetween(t.StartDate, t.EndDate)
}

// TripInput carries the caller-editable fields of a trip for create and update.
type TripInput struct {
	Title       string     `json:"title" validate:"required,max=100"`
	Destination string     `json:"destination" validate:"required,max=100"`
	StartDate   time.Time  `json:"start_date" validate:"required"`
	EndDate     time.Time  `json:"end_date" validate:"required"`
	Description string     `json:"description" validate:"max=1000"`
	IsPublic    bool       `json:"is_public"`
	Status      TripStatus `json:"status" validate:"omitempty,oneof=planning ongoing completed cancelled"`
}

// Apply copies the input onto trip, defaulting an empty status to planning.
func (in TripInput) Apply(trip Trip) Trip {
	trip.Title = in.Title
	trip.Destination = in.Destination
	trip.StartDate = in.StartDate
	trip.EndDate = in.EndDate
	trip.Description = in.Description
	trip.IsPublic = in.IsPublic
	trip.Status = in.Status
	if trip.Status == "" {
		trip.Status = TripPlanning
	}
	return trip
}

// DaysBetween counts calendar days from start to end inclusive, or 0 if end is before start.
func DaysBetween(start, end time.Time) int {
	s := truncateDate(start)
	e := truncateDate(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
