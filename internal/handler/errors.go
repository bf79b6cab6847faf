package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/errmsg"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail carries a stable code, the error category and a message
// translated for the request's Accept-Language. Raw backend text never appears.
type errorDetail struct {
	Code     string            `json:"code"`
	Category errmsg.Category   `json:"category"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// locale picks the response language from Accept-Language.
func (s *Server) locale(r *http.Request) language.Tag {
	return s.translator.Match(r.Header.Get("Accept-Language"))
}

// writeError renders err as an errorResponse. Server-side failures are
// reported through the errmsg reporter; client errors are logged at debug.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, errCtx errmsg.Context, operation string) {
	status := statusFor(err)

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		err = fmt.Errorf("%w: %w", domain.NewValidationError("body", fmt.Sprintf("must not exceed %d bytes", tooLarge.Limit)), err)
	}

	raw := errmsg.From(err)
	detail := errorDetail{
		Code:     string(errmsg.Resolve(raw, errCtx)),
		Category: errmsg.Classify(raw),
		Message:  s.translator.Translate(s.locale(r), raw, errCtx),
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		detail.Fields = verr.Fields
	}

	if status >= http.StatusInternalServerError {
		s.reporter.Report(r.Context(), raw, errCtx, operation)
	} else {
		s.logger.DebugContext(r.Context(), "request failed", "operation", operation, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: detail})
}

// statusFor maps domain sentinels onto HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenInvalidClaims),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrConfig):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// RejectToken writes the response for a request carrying an unusable token.
// It is passed to middleware.NewAuthenticator.
func (s *Server) RejectToken(w http.ResponseWriter, r *http.Request, err error) {
	if statusFor(err) != http.StatusUnauthorized {
		err = fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	s.writeError(w, r, err, errmsg.ContextAuth, "authenticate")
}

// RejectOversized writes the 413 response for a body over the configured
// limit. It is passed to middleware.NewMaxBodySizeHandler.
func (s *Server) RejectOversized(w http.ResponseWriter, r *http.Request, err error) {
	s.writeError(w, r, err, errmsg.ContextUpdate, "read body")
}

// RejectRateLimited writes the 429 response for a throttled write.
func (s *Server) RejectRateLimited(w http.ResponseWriter, r *http.Request) {
	raw := errmsg.Text("too many requests")
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: errorDetail{
		Code:     string(errmsg.Resolve(raw, errmsg.ContextConnection)),
		Category: errmsg.Classify(raw),
		Message:  s.translator.Translate(s.locale(r), raw, errmsg.ContextConnection),
	}})
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON request body into dst. Unknown fields are ignored.
// An empty or malformed body is reported as a validation error on "body".
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return domain.NewValidationError("body", "is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.NewValidationError("body", "must be a valid JSON object"), err)
	}
	return nil
}

// pathID parses a UUID path parameter. A malformed id cannot name any row,
// so it is reported as not found.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s %q: %w", name, raw, domain.ErrNotFound)
	}
	return id, nil
}
