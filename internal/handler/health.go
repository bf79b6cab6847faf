package handler

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// HealthCheck probes one backing service. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

const healthCheckTimeout = 2 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// GetHealth handles GET /healthz.
// It runs every configured check and answers 200 {"status":"ok"} when all
// pass, or 503 {"status":"degraded"} naming the failing ones. Failure details
// are logged, never returned.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
	}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := s.checks[name](ctx)
		cancel()
		if err != nil {
			s.logger.WarnContext(r.Context(), "health check failed", "check", name, "error", err)
			resp.Status = "degraded"
			resp.Checks[name] = "unavailable"
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
