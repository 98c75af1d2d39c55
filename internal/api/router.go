package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Yug-More/Parallel-AI/internal/api/middleware"
	"github.com/Yug-More/Parallel-AI/internal/handlers"
)

// Deps carries the wired dependencies for the router.
type Deps struct {
	Handler     *handlers.Handler
	Auth        *middleware.AuthMiddleware
	RateLimiter *middleware.RateLimiter
	Logger      zerolog.Logger
	CORSOrigins []string
}

// NewRouter creates and configures the HTTP router.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(64 * 1024)) // transcripts can run long
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(chimw.Recoverer)

	// Rate limiting
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware)
	}

	// CORS - cookie auth needs explicit origins and credentials
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h := deps.Handler
	auth := deps.Auth

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)

	// Authenticated routes (require session cookie)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/me", h.Me)
		r.Get("/online", h.Online)
		r.Get("/activity", h.GetActivity)
		r.Get("/memory", h.GetAgentMemory)

		r.Post("/chat", h.Chat)

		r.Post("/rooms", h.CreateRoom)
		r.Get("/rooms", h.ListRooms)
		r.Get("/rooms/{id}", h.GetRoom)
		r.Get("/rooms/{id}/messages", h.GetRoomMessages)
		r.Get("/rooms/{id}/transcript", h.GetRoomTranscript)
		r.Get("/rooms/{id}/events", h.StreamEvents)
		r.Post("/rooms/{id}/transcripts", h.IngestTranscript)

		r.Get("/notifications", h.ListNotifications)
		r.Post("/notifications/{id}/read", h.MarkNotificationRead)
	})

	return r
}
