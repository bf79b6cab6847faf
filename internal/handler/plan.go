package handler

import (
	"net/http"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/errmsg"
)

// CreatePlan handles POST /days/{dayId}/plans. The plan is appended after
// the day's existing plans.
func (s *Server) CreatePlan(w http.ResponseWriter, r *http.Request) {
	dayID, err := pathID(r, "dayId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextCreate, "CreatePlan")
		return
	}
	var in domain.PlanInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err, errmsg.ContextCreate, "CreatePlan")
		return
	}

	plan, err := s.plans.Create(r.Context(), actor(r), dayID, in)
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextCreate, "CreatePlan")
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// ReorderPlans handles PUT /days/{dayId}/plans/order. The body lists the
// day's plan ids in their new order.
func (s *Server) ReorderPlans(w http.ResponseWriter, r *http.Request) {
	dayID, err := pathID(r, "dayId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "ReorderPlans")
		return
	}
	var body reorderRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "ReorderPlans")
		return
	}

	if err := s.plans.Reorder(r.Context(), actor(r), dayID, body.PlanIDs); err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "ReorderPlans")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePlan handles PUT /plans/{planId}.
func (s *Server) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "planId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "UpdatePlan")
		return
	}
	var in domain.PlanInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "UpdatePlan")
		return
	}

	plan, err := s.plans.Update(r.Context(), actor(r), id, in)
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "UpdatePlan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// DeletePlan handles DELETE /plans/{planId}.
func (s *Server) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "planId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextDelete, "DeletePlan")
		return
	}
	if err := s.plans.Delete(r.Context(), actor(r), id); err != nil {
		s.writeError(w, r, err, errmsg.ContextDelete, "DeletePlan")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
