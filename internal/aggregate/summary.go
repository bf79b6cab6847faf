package aggregate

import (
	"github.com/moonwavetravel/backend/internal/metrics"
)

// Summaries are folded from the current snapshot on every call and never
// stored, so they cannot drift from the tree.

// Summaries returns one summary per trip in the list, in list order.
func (v *TripList) Summaries() []metrics.TripSummary {
	s := v.Snapshot()
	if s.Data == nil {
		return nil
	}
	out := make([]metrics.TripSummary, len(*s.Data))
	for i, tree := range *s.Data {
		out[i] = metrics.SummarizeTrip(tree)
	}
	return out
}

// Summary returns the loaded trip's summary, or false if nothing is loaded.
func (v *TripDetail) Summary() (metrics.TripSummary, bool) {
	s := v.Snapshot()
	if s.Data == nil {
		return metrics.TripSummary{}, false
	}
	return metrics.SummarizeTrip(*s.Data), true
}

// Stats returns the plan statistics of the loaded day, or false if nothing is loaded.
func (v *DayDetail) Stats() (metrics.PlanStats, bool) {
	s := v.Snapshot()
	if s.Data == nil {
		return metrics.PlanStats{}, false
	}
	return metrics.ComputePlanStats(s.Data.Plans), true
}
