package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/moonwavetravel/backend/internal/middleware"
)

// RouterOptions configures the middleware stack and static content of NewRouter.
type RouterOptions struct {
	Logger       *slog.Logger
	CORSOrigins  []string
	JWTSecret    string
	MaxBodyBytes int64                   // 0 disables the limit
	Limiter      *middleware.RateLimiter // nil disables write throttling
	MediaDir     string                  // served under /media/ when set
	OpenAPI      []byte                  // served at /openapi.yaml when set
}

// NewRouter wires every route of the API onto a chi router.
//
// Middleware order: RequestID, RealIP, CORS, authentication, request logging,
// panic recovery, body limit, write throttling. Authentication runs before the
// request logger so log lines carry the user id.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = s.logger
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewCORSHandler(opts.CORSOrigins))
	r.Use(middleware.NewAuthenticator(opts.JWTSecret, s.RejectToken))
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	if opts.MaxBodyBytes > 0 {
		r.Use(middleware.NewMaxBodySizeHandler(opts.MaxBodyBytes, s.RejectOversized))
	}
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Mutations(s.RejectRateLimited))
	}

	r.Get("/healthz", s.GetHealth)
	if opts.OpenAPI != nil {
		r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(opts.OpenAPI)
		})
	}

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Get("/public", s.ListPublicTrips)
		r.Route("/{tripId}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Put("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)
			r.Put("/cover", s.PutTripCover)
			r.Delete("/cover", s.DeleteTripCover)
			r.Get("/collaborators", s.ListCollaborators)
			r.Post("/collaborators", s.InviteCollaborator)
		})
	})

	r.Post("/collaborators/{collaboratorId}/accept", s.AcceptInvitation)
	r.Delete("/collaborators/{collaboratorId}", s.RemoveCollaborator)

	r.Route("/days/{dayId}", func(r chi.Router) {
		r.Get("/", s.GetDay)
		r.Put("/", s.UpdateDay)
		r.Post("/plans", s.CreatePlan)
		r.Put("/plans/order", s.ReorderPlans)
	})

	r.Put("/plans/{planId}", s.UpdatePlan)
	r.Delete("/plans/{planId}", s.DeletePlan)

	r.Get("/ws/trips", s.WatchTrips)
	r.Get("/ws/trips/{tripId}", s.WatchTrip)
	r.Get("/ws/days/{dayId}", s.WatchDay)

	if opts.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(opts.MediaDir))))
	}

	return r
}
