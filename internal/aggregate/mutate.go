package aggregate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/errmsg"
)

// mutate runs one remote write for the current identity and, on success,
// refetches the view. On failure the translated error is stored in the view,
// Data is left as it was, and nil is returned with the error.
//
// A refetch failure after a successful write does not fail the mutation; it
// is recorded in the view state like any other fetch error.
func mutate[T, R any](ctx context.Context, l *live[T], op string, errCtx errmsg.Context, write func(ctx context.Context, actor uuid.UUID) (R, error)) (*R, error) {
	id, ok := l.env.identity()
	if !ok {
		err := fmt.Errorf("aggregate.%s: %w", op, domain.ErrUnauthenticated)
		l.fail(ctx, err, errmsg.ContextAuth, op)
		return nil, err
	}

	res, err := write(ctx, id.UserID)
	if err != nil {
		l.fail(ctx, err, errCtx, op)
		return nil, fmt.Errorf("aggregate.%s: %w", op, err)
	}

	_ = l.Refetch(ctx)
	return &res, nil
}

// mutateOK adapts a write that returns only an error.
func mutateOK[T any](ctx context.Context, l *live[T], op string, errCtx errmsg.Context, write func(ctx context.Context, actor uuid.UUID) error) (bool, error) {
	_, err := mutate(ctx, l, op, errCtx, func(ctx context.Context, actor uuid.UUID) (struct{}, error) {
		return struct{}{}, write(ctx, actor)
	})
	return err == nil, err
}
