package auth

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.UserID != uuid.Nil
}
