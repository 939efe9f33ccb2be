package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/raterly/raterly-be/internal/api/handlers"
	"github.com/raterly/raterly-be/internal/auth"
	"github.com/raterly/raterly-be/internal/services"
	"github.com/raterly/raterly-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router. Routes fall into two
// kinds: public, and protected behind the bearer-token middleware.
func NewRouter(
	allowedOrigins []string,
	tokens *auth.Manager,
	hub *websocket.Hub,
	userService services.UserServiceProvider,
	reviewService services.ReviewServiceProvider,
	eventService services.EventServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, eventService, tokens, hub)
	reviewHandler := handlers.NewReviewHandler(reviewService, userService, eventService, hub)
	eventHandler := handlers.NewEventHandler(eventService)
	statusHandler := handlers.NewStatusHandler()
	wsHandler := handlers.NewWebSocketHandler(hub)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", statusHandler.Get)

		// Live event feed
		r.Get("/ws", wsHandler.Serve)
		r.Get("/ws/users/{username}", wsHandler.Serve)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
		})

		// Standalone review collection (pre-embedding design, still served)
		r.Post("/reviews", reviewHandler.CreateStandalone)
		r.Get("/reviews", reviewHandler.ListStandalone)

		// Per-user review histories
		r.Get("/reviews/{username}", reviewHandler.GetUserReviews)
		r.Post("/users/{username}/review", reviewHandler.SubmitUserReview)
		r.Get("/users/{username}/summary", userHandler.GetSummary)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(tokens.Middleware())
			r.Get("/users", userHandler.GetAll)
			r.Put("/users/{id}", userHandler.Update)
			r.Get("/events", eventHandler.GetRecent)
		})
	})

	// Public profile lookup kept at its historical path.
	r.Get("/user/{username}", userHandler.GetByUsername)

	return r
}
