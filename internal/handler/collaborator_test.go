package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonwavetravel/backend/internal/domain"
)

func TestListCollaborators_200_emptyIsArray(t *testing.T) {
	svc := &mockCollaboratorServicer{
		list: func(context.Context, uuid.UUID, uuid.UUID) ([]domain.Collaborator, error) { return nil, nil },
	}
	h := newHTTPHandler(t, deps{collaborators: svc})

	rec := serve(h, request(t, http.MethodGet, "/trips/"+uuid.NewString()+"/collaborators", nil, newUser()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestInviteCollaborator_201(t *testing.T) {
	me := newUser()
	tripID := uuid.New()
	svc := &mockCollaboratorServicer{
		invite: func(_ context.Context, actor, gotTrip uuid.UUID, in domain.CollaboratorInput) (domain.Collaborator, error) {
			assert.Equal(t, me.id, actor)
			assert.Equal(t, tripID, gotTrip)
			return domain.Collaborator{
				ID: uuid.New(), TripID: gotTrip, Email: in.Email, Role: in.Role,
				Status: domain.CollaboratorPending, InvitedBy: actor,
			}, nil
		},
	}
	h := newHTTPHandler(t, deps{collaborators: svc})

	rec := serve(h, request(t, http.MethodPost, "/trips/"+tripID.String()+"/collaborators",
		map[string]any{"email": "friend@example.com", "role": "editor"}, me))

	require.Equal(t, http.StatusCreated, rec.Code)
	var body domain.Collaborator
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "friend@example.com", body.Email)
	assert.Equal(t, domain.RoleEditor, body.Role)
	assert.Equal(t, domain.CollaboratorPending, body.Status)
}

func TestInviteCollaborator_409_duplicate(t *testing.T) {
	svc := &mockCollaboratorServicer{
		invite: func(context.Context, uuid.UUID, uuid.UUID, domain.CollaboratorInput) (domain.Collaborator, error) {
			return domain.Collaborator{}, fmt.Errorf("repo.CollaboratorRepo.Create: %w", domain.ErrConflict)
		},
	}
	h := newHTTPHandler(t, deps{collaborators: svc})

	rec := serve(h, request(t, http.MethodPost, "/trips/"+uuid.NewString()+"/collaborators",
		map[string]any{"email": "friend@example.com", "role": "viewer"}, newUser()))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAcceptInvitation_usesTokenEmail(t *testing.T) {
	me := newUser()
	id := uuid.New()
	svc := &mockCollaboratorServicer{
		accept: func(_ context.Context, userID uuid.UUID, email string, gotID uuid.UUID) (domain.Collaborator, error) {
			assert.Equal(t, me.id, userID)
			assert.Equal(t, me.email, email)
			assert.Equal(t, id, gotID)
			return domain.Collaborator{ID: gotID, Email: email, Status: domain.CollaboratorAccepted, UserID: &userID}, nil
		},
	}
	h := newHTTPHandler(t, deps{collaborators: svc})

	rec := serve(h, request(t, http.MethodPost, "/collaborators/"+id.String()+"/accept", nil, me))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"accepted"`)
}

func TestRemoveCollaborator_204(t *testing.T) {
	me := newUser()
	svc := &mockCollaboratorServicer{
		remove: func(_ context.Context, actor, _ uuid.UUID) error {
			assert.Equal(t, me.id, actor)
			return nil
		},
	}
	h := newHTTPHandler(t, deps{collaborators: svc})

	rec := serve(h, request(t, http.MethodDelete, "/collaborators/"+uuid.NewString(), nil, me))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
