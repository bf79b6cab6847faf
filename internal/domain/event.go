package domain

import (
	"time"

	"github.com/google/uuid"
)

// Table names a data source that emits change events.
type Table string

const (
	TableTrips         Table = "trips"
	TableDays          Table = "days"
	TablePlans         Table = "plans"
	TableCollaborators Table = "collaborators"
)

// ChangeKind is the kind of row change.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeEvent notifies subscribers that a row changed. The payload carries only
// identifiers: subscribers treat it as an invalidation signal and refetch.
// TripID, DayID and OwnerID are filled in where the row has such a parent.
// Public is set on trip events when the trip is public after the change, so
// views listing public trips can pick up newly published ones.
type ChangeEvent struct {
	Table    Table      `json:"table"`
	Kind     ChangeKind `json:"kind"`
	RecordID uuid.UUID  `json:"record_id"`
	TripID   uuid.UUID  `json:"trip_id,omitempty"`
	DayID    uuid.UUID  `json:"day_id,omitempty"`
	OwnerID  uuid.UUID  `json:"owner_id,omitempty"`
	Public   bool       `json:"public,omitempty"`
	At       time.Time  `json:"at"`
}
