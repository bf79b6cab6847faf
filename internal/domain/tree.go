package domain

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/google/uuid"
)

// DayWithPlans is a day together with its plans in display order.
type DayWithPlans struct {
	Day
	Plans []Plan `json:"plans"`
}

// TripWithDays is the full read model of a trip: the trip row, its days with
// their plans, and its collaborators. It is always fetched in one round trip.
type TripWithDays struct {
	Trip
	Days          []DayWithPlans `json:"days"`
	Collaborators []Collaborator `json:"collaborators"`
}

// DayDetail is a day with its plans plus the parent trip, which carries the
// ownership and visibility needed for the access check.
type DayDetail struct {
	DayWithPlans
	Trip Trip `json:"trip"`
}

// Plans returns every plan of the trip in day order.
func (t TripWithDays) Plans() []Plan {
	var out []Plan
	for _, d := range t.Days {
		out = append(out, d.Plans...)
	}
	return out
}

// Normalize sorts days by day number and the plans of each day by ComparePlans.
// Empty child lists become non-nil so they serialise as [].
func (t TripWithDays) Normalize() TripWithDays {
	if t.Days == nil {
		t.Days = []DayWithPlans{}
	}
	if t.Collaborators == nil {
		t.Collaborators = []Collaborator{}
	}
	if t.CollaboratorIDs == nil {
		t.CollaboratorIDs = []uuid.UUID{}
	}
	SortDays(t.Days)
	for i := range t.Days {
		t.Days[i] = t.Days[i].Normalize()
	}
	return t
}

// Normalize sorts the plans of the day.
func (d DayWithPlans) Normalize() DayWithPlans {
	if d.Plans == nil {
		d.Plans = []Plan{}
	}
	SortPlans(d.Plans)
	return d
}

// Normalize sorts the plans of the day detail.
func (d DayDetail) Normalize() DayDetail {
	d.DayWithPlans = d.DayWithPlans.Normalize()
	return d
}

// SortDays orders days by day number ascending.
func SortDays(days []DayWithPlans) {
	slices.SortStableFunc(days, func(a, b DayWithPlans) int {
		if c := cmp.Compare(a.DayNumber, b.DayNumber); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
}

// SortPlans orders plans by order index, then by planned time with untimed
// plans last, then by creation time and id so the result never depends on the
// input order.
func SortPlans(plans []Plan) {
	slices.SortStableFunc(plans, ComparePlans)
}

// ComparePlans is the display ordering used by SortPlans.
func ComparePlans(a, b Plan) int {
	if c := cmp.Compare(a.OrderIndex, b.OrderIndex); c != 0 {
		return c
	}
	if c := compareClock(a.PlannedTime, b.PlannedTime); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

// SplitByTime partitions plans into those with a planned time, ordered by
// time, and those without, ordered by order index. The input is not modified.
func SplitByTime(plans []Plan) (timed, untimed []Plan) {
	timed = []Plan{}
	untimed = []Plan{}
	for _, p := range plans {
		if p.PlannedTime != nil {
			timed = append(timed, p)
		} else {
			untimed = append(untimed, p)
		}
	}
	slices.SortStableFunc(timed, func(a, b Plan) int {
		if c := compareClock(a.PlannedTime, b.PlannedTime); c != 0 {
			return c
		}
		if c := cmp.Compare(a.OrderIndex, b.OrderIndex); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	slices.SortStableFunc(untimed, func(a, b Plan) int {
		if c := cmp.Compare(a.OrderIndex, b.OrderIndex); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	return timed, untimed
}

// compareClock orders nil after any set time.
func compareClock(a, b *ClockTime) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}
