// Package metrics derives read-only figures from a trip tree: plan counts,
// budget and duration totals, and the human-readable trip length label.
// Everything here is a pure function of its input and is recomputed whenever
// the tree changes; nothing is stored.
package metrics

import (
	"fmt"
	"math"
	"time"

	"github.com/moonwavetravel/backend/internal/domain"
)

// PlanStats aggregates a list of plans.
type PlanStats struct {
	Total                int                     `json:"total"`
	WithTime             int                     `json:"with_time"`
	ByType               map[domain.PlanType]int `json:"by_type"`
	TotalBudget          float64                 `json:"total_budget"`
	TotalDurationMinutes int                     `json:"total_duration_minutes"`
}

// ComputePlanStats folds plans into PlanStats. Missing budgets and durations count as zero.
func ComputePlanStats(plans []domain.Plan) PlanStats {
	s := PlanStats{ByType: make(map[domain.PlanType]int)}
	for _, p := range plans {
		s.Total++
		s.ByType[p.PlanType]++
		if p.PlannedTime != nil {
			s.WithTime++
		}
		if p.Budget != nil {
			s.TotalBudget += *p.Budget
		}
		if p.DurationMinutes != nil {
			s.TotalDurationMinutes += *p.DurationMinutes
		}
	}
	return s
}

// DurationLabel describes the length of a trip.
// A single-day trip is "day trip"; otherwise "<n> nights, <n+1> days".
// It returns "" when end is before start.
func DurationLabel(start, end time.Time) string {
	days := int(math.Ceil(end.Sub(start).Hours()/24)) + 1
	switch {
	case days < 1:
		return ""
	case days == 1:
		return "day trip"
	}
	return fmt.Sprintf("%d nights, %d days", days-1, days)
}

// DaySummary is the per-day breakdown of a trip summary.
type DaySummary struct {
	DayNumber int       `json:"day_number"`
	Plans     PlanStats `json:"plans"`
}

// TripSummary is everything derived from a trip tree for display.
type TripSummary struct {
	DurationLabel string       `json:"duration_label"`
	DayCount      int          `json:"day_count"`
	SharedWith    int          `json:"shared_with"`
	Plans         PlanStats    `json:"plans"`
	Days          []DaySummary `json:"days"`
}

// SummarizeTrip computes the summary of a trip tree.
// SharedWith counts collaborators who accepted their invitation.
func SummarizeTrip(tree domain.TripWithDays) TripSummary {
	sum := TripSummary{
		DurationLabel: DurationLabel(tree.StartDate, tree.EndDate),
		DayCount:      len(tree.Days),
		Plans:         ComputePlanStats(tree.Plans()),
		Days:          make([]DaySummary, 0, len(tree.Days)),
	}
	for _, c := range tree.Collaborators {
		if c.Status == domain.CollaboratorAccepted {
			sum.SharedWith++
		}
	}
	for _, d := range tree.Days {
		sum.Days = append(sum.Days, DaySummary{DayNumber: d.DayNumber, Plans: ComputePlanStats(d.Plans)})
	}
	return sum
}
