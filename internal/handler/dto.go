package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/metrics"
)

// tripRequest is the body of POST /trips and PUT /trips/{tripId}.
// Dates are calendar dates in YYYY-MM-DD form.
type tripRequest struct {
	Title       string             `json:"title"`
	Destination string             `json:"destination"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	Description string             `json:"description"`
	IsPublic    bool               `json:"is_public"`
	Status      domain.TripStatus  `json:"status"`
}

func (b tripRequest) input() domain.TripInput {
	return domain.TripInput{
		Title:       b.Title,
		Destination: b.Destination,
		StartDate:   b.StartDate.Time,
		EndDate:     b.EndDate.Time,
		Description: b.Description,
		IsPublic:    b.IsPublic,
		Status:      b.Status,
	}
}

type tripResponse struct {
	ID              uuid.UUID          `json:"id"`
	OwnerID         uuid.UUID          `json:"owner_id"`
	Title           string             `json:"title"`
	Destination     string             `json:"destination"`
	StartDate       openapi_types.Date `json:"start_date"`
	EndDate         openapi_types.Date `json:"end_date"`
	Description     string             `json:"description,omitempty"`
	CoverImageURL   string             `json:"cover_image_url,omitempty"`
	IsPublic        bool               `json:"is_public"`
	Status          domain.TripStatus  `json:"status"`
	CollaboratorIDs []uuid.UUID        `json:"collaborator_ids"`
	DurationLabel   string             `json:"duration_label"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func tripToResponse(t domain.Trip) tripResponse {
	ids := t.CollaboratorIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return tripResponse{
		ID:              t.ID,
		OwnerID:         t.OwnerID,
		Title:           t.Title,
		Destination:     t.Destination,
		StartDate:       openapi_types.Date{Time: t.StartDate},
		EndDate:         openapi_types.Date{Time: t.EndDate},
		Description:     t.Description,
		CoverImageURL:   t.CoverImageURL,
		IsPublic:        t.IsPublic,
		Status:          t.Status,
		CollaboratorIDs: ids,
		DurationLabel:   metrics.DurationLabel(t.StartDate, t.EndDate),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

type dayResponse struct {
	ID        uuid.UUID          `json:"id"`
	TripID    uuid.UUID          `json:"trip_id"`
	DayNumber int                `json:"day_number"`
	Date      openapi_types.Date `json:"date"`
	Title     string             `json:"title,omitempty"`
	Theme     string             `json:"theme,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func dayToResponse(d domain.Day) dayResponse {
	return dayResponse{
		ID:        d.ID,
		TripID:    d.TripID,
		DayNumber: d.DayNumber,
		Date:      openapi_types.Date{Time: d.Date},
		Title:     d.Title,
		Theme:     d.Theme,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type dayWithPlansResponse struct {
	dayResponse
	Plans []domain.Plan `json:"plans"`
}

// treeResponse is a trip with its days, plans, collaborators and the
// figures derived from them.
type treeResponse struct {
	tripResponse
	Days          []dayWithPlansResponse `json:"days"`
	Collaborators []domain.Collaborator  `json:"collaborators"`
	Summary       metrics.TripSummary    `json:"summary"`
}

// treeToResponse expects a normalized tree, as every aggregate view holds.
func treeToResponse(t domain.TripWithDays) treeResponse {
	resp := treeResponse{
		tripResponse:  tripToResponse(t.Trip),
		Days:          make([]dayWithPlansResponse, len(t.Days)),
		Collaborators: t.Collaborators,
		Summary:       metrics.SummarizeTrip(t),
	}
	for i, d := range t.Days {
		resp.Days[i] = dayWithPlansResponse{dayResponse: dayToResponse(d.Day), Plans: d.Plans}
	}
	return resp
}

// scheduleResponse splits a day's plans into the timeline (plans with a
// planned time, in time order) and the unscheduled list.
type scheduleResponse struct {
	Timed   []domain.Plan `json:"timed"`
	Untimed []domain.Plan `json:"untimed"`
}

type dayDetailResponse struct {
	dayWithPlansResponse
	Trip     tripResponse      `json:"trip"`
	Stats    metrics.PlanStats `json:"stats"`
	Schedule scheduleResponse  `json:"schedule"`
}

func dayDetailToResponse(d domain.DayDetail) dayDetailResponse {
	timed, untimed := domain.SplitByTime(d.Plans)
	return dayDetailResponse{
		dayWithPlansResponse: dayWithPlansResponse{dayResponse: dayToResponse(d.Day), Plans: d.Plans},
		Trip:                 tripToResponse(d.Trip),
		Stats:                metrics.ComputePlanStats(d.Plans),
		Schedule:             scheduleResponse{Timed: timed, Untimed: untimed},
	}
}

type pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
}

func paginationOf(p domain.PageRequest, total int64) pagination {
	return pagination{
		Page:    p.Page,
		Limit:   p.Limit,
		Total:   total,
		Pages:   p.TotalPages(total),
		HasNext: p.HasNext(total),
	}
}

type tripPageResponse struct {
	Data       []tripResponse `json:"data"`
	Pagination pagination     `json:"pagination"`
}

type reorderRequest struct {
	PlanIDs []uuid.UUID `json:"plan_ids"`
}
