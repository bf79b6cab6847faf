package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/moonwavetravel/backend/internal/aggregate"
	"github.com/moonwavetravel/backend/internal/auth"
	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/errmsg"
)

// actor is the authenticated user id, or uuid.Nil for anonymous requests.
// Services reject uuid.Nil on writes.
func actor(r *http.Request) uuid.UUID {
	id, _ := auth.FromContext(r.Context())
	return id.UserID
}

// oneShotEnv is the view environment for a single request: no change feed,
// messages in the request's language, and no error reporting since the
// handler reports failures itself.
func (s *Server) oneShotEnv(r *http.Request) aggregate.Env {
	return aggregate.Env{
		Identity:   aggregate.FromContext(r.Context()),
		Translator: s.translator,
		Locale:     s.locale(r),
		Logger:     s.logger,
	}
}

// ListTrips handles GET /trips.
// Anonymous callers get an empty list.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	view := aggregate.NewTripList(s.oneShotEnv(r), s.trips, s.trips)
	defer view.Close()

	if err := view.Start(r.Context()); err != nil {
		s.writeError(w, r, err, errmsg.ContextFetch, "ListTrips")
		return
	}

	out := []treeResponse{}
	if data := view.Snapshot().Data; data != nil {
		for _, t := range *data {
			out = append(out, treeToResponse(t))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// ListPublicTrips handles GET /trips/public.
// ?page= and ?limit= select the page; see domain.NewPageRequest for defaults.
func (s *Server) ListPublicTrips(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPageRequest(queryInt(r, "page"), queryInt(r, "limit"))
	trips, total, err := s.trips.ListPublic(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextFetch, "ListPublicTrips")
		return
	}

	data := make([]tripResponse, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, tripPageResponse{
		Data:       data,
		Pagination: paginationOf(params, total),
	})
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body tripRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err, errmsg.ContextCreate, "CreateTrip")
		return
	}

	created, err := s.trips.Create(r.Context(), actor(r), body.input())
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextCreate, "CreateTrip")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "tripId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextFetch, "GetTrip")
		return
	}

	view := aggregate.NewTripDetail(s.oneShotEnv(r), s.trips, s.trips, s.plans)
	defer view.Close()

	if err := view.Load(r.Context(), id); err != nil {
		s.writeError(w, r, err, errmsg.ContextFetch, "GetTrip")
		return
	}
	data := view.Snapshot().Data
	if data == nil {
		s.writeError(w, r, domain.ErrNotFound, errmsg.ContextFetch, "GetTrip")
		return
	}
	writeJSON(w, http.StatusOK, treeToResponse(*data))
}

// UpdateTrip handles PUT /trips/{tripId}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "tripId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "UpdateTrip")
		return
	}
	var body tripRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "UpdateTrip")
		return
	}

	updated, err := s.trips.Update(r.Context(), actor(r), id, body.input())
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "UpdateTrip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{tripId}. Days, plans and collaborators
// go with it; a failed child cleanup is logged and does not fail the request.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "tripId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextDelete, "DeleteTrip")
		return
	}
	if err := s.trips.Delete(r.Context(), actor(r), id); err != nil {
		s.writeError(w, r, err, errmsg.ContextDelete, "DeleteTrip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutTripCover handles PUT /trips/{tripId}/cover. The request body is the
// raw image; its type is sniffed from the content, not the header.
func (s *Server) PutTripCover(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "tripId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "PutTripCover")
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "PutTripCover")
		return
	}

	trip, err := s.trips.SetCover(r.Context(), actor(r), id, data)
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "PutTripCover")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// DeleteTripCover handles DELETE /trips/{tripId}/cover.
func (s *Server) DeleteTripCover(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "tripId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "DeleteTripCover")
		return
	}
	trip, err := s.trips.RemoveCover(r.Context(), actor(r), id)
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "DeleteTripCover")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// queryInt returns the named query parameter as an int, or nil when it is
// absent or not a number.
func queryInt(r *http.Request, name string) *int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return nil
	}
	return &v
}
