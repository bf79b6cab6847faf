package handler

import (
	"net/http"

	"github.com/moonwavetravel/backend/internal/auth"
	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/errmsg"
)

// ListCollaborators handles GET /trips/{tripId}/collaborators.
func (s *Server) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "tripId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextFetch, "ListCollaborators")
		return
	}
	list, err := s.collaborators.List(r.Context(), actor(r), tripID)
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextFetch, "ListCollaborators")
		return
	}
	if list == nil {
		list = []domain.Collaborator{}
	}
	writeJSON(w, http.StatusOK, list)
}

// InviteCollaborator handles POST /trips/{tripId}/collaborators.
// Only the trip owner may invite.
func (s *Server) InviteCollaborator(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "tripId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextCreate, "InviteCollaborator")
		return
	}
	var in domain.CollaboratorInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err, errmsg.ContextCreate, "InviteCollaborator")
		return
	}

	c, err := s.collaborators.Invite(r.Context(), actor(r), tripID, in)
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextCreate, "InviteCollaborator")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// AcceptInvitation handles POST /collaborators/{collaboratorId}/accept.
// The caller's token e-mail must match the invitation.
func (s *Server) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "collaboratorId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "AcceptInvitation")
		return
	}
	ident, _ := auth.FromContext(r.Context())

	c, err := s.collaborators.Accept(r.Context(), ident.UserID, ident.Email, id)
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextUpdate, "AcceptInvitation")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// RemoveCollaborator handles DELETE /collaborators/{collaboratorId}.
// The trip owner may remove anyone; a collaborator may remove themselves.
func (s *Server) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "collaboratorId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextDelete, "RemoveCollaborator")
		return
	}
	if err := s.collaborators.Remove(r.Context(), actor(r), id); err != nil {
		s.writeError(w, r, err, errmsg.ContextDelete, "RemoveCollaborator")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
