// Package realtime distributes row change events to subscribers.
// A subscriber registers a Filter on one table and receives every matching
// event on a buffered channel until it closes its Subscription.
package realtime

import (
	"github.com/google/uuid"

	"github.com/moonwavetravel/backend/internal/domain"
)

// Column is the event field a Filter compares against.
type Column string

const (
	ColumnAny   Column = ""
	ColumnID    Column = "id"
	ColumnTrip  Column = "trip_id"
	ColumnDay   Column = "day_id"
	ColumnOwner Column = "owner_id"
)

// Filter selects events from one table, optionally narrowed by an equality
// check on one column and by a Where predicate.
//
// Where runs inside Publish while the hub holds its lock, so it must not
// block or call back into the hub.
type Filter struct {
	Table  domain.Table
	Column Column
	Value  uuid.UUID
	Where  func(domain.ChangeEvent) bool
}

// AllOf matches every event of table.
func AllOf(table domain.Table) Filter { return Filter{Table: table} }

// ByID matches events for a single row.
func ByID(table domain.Table, id uuid.UUID) Filter {
	return Filter{Table: table, Column: ColumnID, Value: id}
}

// ByTrip matches events whose row belongs to trip.
func ByTrip(table domain.Table, trip uuid.UUID) Filter {
	return Filter{Table: table, Column: ColumnTrip, Value: trip}
}

// ByDay matches events whose row belongs to day.
func ByDay(table domain.Table, day uuid.UUID) Filter {
	return Filter{Table: table, Column: ColumnDay, Value: day}
}

// ByOwner matches events whose trip is owned by owner.
func ByOwner(table domain.Table, owner uuid.UUID) Filter {
	return Filter{Table: table, Column: ColumnOwner, Value: owner}
}

// And returns f narrowed by pred.
func (f Filter) And(pred func(domain.ChangeEvent) bool) Filter {
	if prev := f.Where; prev != nil {
		f.Where = func(ev domain.ChangeEvent) bool { return prev(ev) && pred(ev) }
		return f
	}
	f.Where = pred
	return f
}

// Match reports whether ev passes the filter.
func (f Filter) Match(ev domain.ChangeEvent) bool {
	if ev.Table != f.Table {
		return false
	}
	if f.Where != nil && !f.Where(ev) {
		return false
	}
	switch f.Column {
	case ColumnAny:
		return true
	case ColumnID:
		return ev.RecordID == f.Value
	case ColumnTrip:
		if ev.Table == domain.TableTrips {
			return ev.RecordID == f.Value
		}
		return ev.TripID == f.Value
	case ColumnDay:
		if ev.Table == domain.TableDays {
			return ev.RecordID == f.Value
		}
		return ev.DayID == f.Value
	case ColumnOwner:
		return ev.OwnerID == f.Value
	}
	return false
}

func (f Filter) String() string {
	s := string(f.Table)
	if f.Column != ColumnAny {
		s += ":" + string(f.Column) + "=eq." + f.Value.String()
	}
	if f.Where != nil {
		s += "+where"
	}
	return s
}
