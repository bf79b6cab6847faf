package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/moonwavetravel/backend/internal/auth"
)

// NewSlogLogger logs one structured line per request: method, path, status,
// bytes, duration, the chi request id and, when authenticated, the user id.
//
// Server errors log at ERROR and client errors at WARN. Health probes drop to
// DEBUG. A WebSocket session is logged once it ends, so its duration is the
// lifetime of the connection.
//
// Wire it after chimiddleware.RequestID and the authenticator.
func NewSlogLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			msg := "request"
			if isUpgrade(r) {
				msg = "websocket session"
			}
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			}
			if id, ok := auth.FromContext(r.Context()); ok {
				attrs = append(attrs, "user_id", id.UserID.String())
			}
			log.Log(r.Context(), requestLevel(r, ww.Status()), msg, attrs...)
		})
	}
}

func requestLevel(r *http.Request, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	case r.URL.Path == "/healthz":
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func isUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
