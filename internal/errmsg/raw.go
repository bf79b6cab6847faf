// Package errmsg turns raw failures from the database, the auth layer and the
// network into short messages fit for end users, classifies them, and reports
// them to the log. Raw error text never leaves this package in a response.
package errmsg

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/moonwavetravel/backend/internal/domain"
)

// Raw is the closed set of error shapes the translator understands.
// Every variant exposes the message text used for lookup.
type Raw interface {
	message() string
}

// BackendError is a failure reported by the data store.
type BackendError struct {
	Code    string
	Message string
	Detail  string
	Hint    string
}

// AuthError is a failure reported by the identity layer.
type AuthError struct {
	Status  int
	Message string
}

// NetworkError is a transport failure before any response was received.
type NetworkError struct {
	Op      string
	Message string
}

// Invalid is input rejected before any remote call.
type Invalid struct {
	Fields map[string]string
}

// Text is a bare message string.
type Text string

// Unknown wraps anything else.
type Unknown struct {
	Value any
}

func (e BackendError) message() string { return e.Message }
func (e AuthError) message() string    { return e.Message }
func (e NetworkError) message() string { return e.Message }
func (Invalid) message() string        { return "validation failed" }
func (t Text) message() string         { return string(t) }

func (u Unknown) message() string {
	switch v := u.Value.(type) {
	case nil:
		return ""
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	}
	return ""
}

// Message returns the text of raw used for lookup, or "" for nil.
func Message(raw Raw) string {
	if raw == nil {
		return ""
	}
	return raw.message()
}

// From maps a Go error onto a Raw variant. It returns nil for a nil error.
func From(err error) Raw {
	if err == nil {
		return nil
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return Invalid{Fields: verr.Fields}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return BackendError{Code: pgErr.Code, Message: pgErr.Message, Detail: pgErr.Detail, Hint: pgErr.Hint}
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return Invalid{}
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return BackendError{Code: "PGRST116", Message: "not found"}
	case errors.Is(err, domain.ErrAccessDenied):
		return BackendError{Code: "42501", Message: "access denied"}
	case errors.Is(err, domain.ErrConflict):
		return BackendError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	case errors.Is(err, domain.ErrUnauthenticated):
		return AuthError{Status: 401, Message: "Auth session missing!"}
	case errors.Is(err, jwt.ErrTokenExpired):
		return AuthError{Status: 401, Message: "JWT expired"}
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return AuthError{Status: 401, Message: "invalid JWT"}
	case errors.Is(err, domain.ErrConfig):
		return Text(err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return NetworkError{Message: "timeout"}
	case errors.Is(err, context.Canceled):
		return NetworkError{Message: "request canceled"}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return NetworkError{Op: opErr.Op, Message: opErr.Error()}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NetworkError{Message: "timeout"}
		}
		return NetworkError{Message: netErr.Error()}
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return NetworkError{Op: "connect", Message: "Failed to fetch"}
	}

	return Unknown{Value: err}
}

// FromValue accepts any value a caller may have caught: errors, strings,
// decoded JSON objects with a "message" key, or anything else.
func FromValue(v any) Raw {
	switch x := v.(type) {
	case nil:
		return Unknown{}
	case Raw:
		return x
	case error:
		return From(x)
	case string:
		return Text(x)
	case map[string]any:
		msg, _ := x["message"].(string)
		code, _ := x["code"].(string)
		if msg == "" && code == "" {
			return Unknown{Value: x}
		}
		return BackendError{Code: code, Message: msg}
	}
	return Unknown{Value: v}
}
