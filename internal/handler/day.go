package handler

import (
	"net/http"

	"github.com/moonwavetravel/backend/internal/aggregate"
	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/errmsg"
)

// GetDay handles GET /days/{dayId}. The day is visible when its trip is.
func (s *Server) GetDay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "dayId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextFetch, "GetDay")
		return
	}

	view := aggregate.NewDayDetail(s.oneShotEnv(r), s.days, s.plans)
	defer view.Close()

	if err := view.Load(r.Context(), id); err != nil {
		s.writeError(w, r, err, errmsg.ContextFetch, "GetDay")
		return
	}
	data := view.Snapshot().Data
	if data == nil {
		s.writeError(w, r, domain.ErrNotFound, errmsg.ContextFetch, "GetDay")
		return
	}
	writeJSON(w, http.StatusOK, dayDetailToResponse(*data))
}

// UpdateDay handles PUT /days/{dayId}.
func (s *Server) UpdateDay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "dayId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "UpdateDay")
		return
	}
	var in domain.DayInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "UpdateDay")
		return
	}

	day, err := s.days.Update(r.Context(), actor(r), id, in)
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "UpdateDay")
		return
	}
	writeJSON(w, http.StatusOK, dayToResponse(day))
}
