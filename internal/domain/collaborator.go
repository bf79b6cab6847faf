package domain

import (
	"time"

	"github.com/google/uuid"
)

// CollaboratorRole is the permission level granted to an invited collaborator.
type CollaboratorRole string

const (
	RoleViewer CollaboratorRole = "viewer"
	RoleEditor CollaboratorRole = "editor"
)

// CollaboratorStatus tracks whether an invitation has been accepted.
type CollaboratorStatus string

const (
	CollaboratorPending  CollaboratorStatus = "pending"
	CollaboratorAccepted CollaboratorStatus = "accepted"
)

// Collaborator is a person invited to a trip by e-mail.
// UserID is set once the invitation is accepted.
type Collaborator struct {
	ID        uuid.UUID          `json:"id"`
	TripID    uuid.UUID          `json:"trip_id"`
	Email     string             `json:"email"`
	Role      CollaboratorRole   `json:"role"`
	Status    CollaboratorStatus `json:"status"`
	InvitedBy uuid.UUID          `json:"invited_by"`
	UserID    *uuid.UUID         `json:"user_id,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// CollaboratorInput is the payload of an invitation.
type CollaboratorInput struct {
	Email string           `json:"email" validate:"required,email,max=254"`
	Role  CollaboratorRole `json:"role" validate:"required,oneof=viewer editor"`
}
