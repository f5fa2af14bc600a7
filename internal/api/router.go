package api

import (
	"net/http"

	"claude-chat/internal/anthropic"
	"claude-chat/internal/api/handler"
	custommw "claude-chat/internal/api/middleware"
	"claude-chat/internal/assistant"
	"claude-chat/internal/config"
	"claude-chat/internal/domain"
	"claude-chat/internal/repository/redis"
	"claude-chat/internal/service"
	"claude-chat/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps carries everything the router wires together. The gateway and
// verifier are interfaces so tests can stub the external assistant and
// the provider API.
type Deps struct {
	Config        *config.Config
	Users         domain.UserRepository
	Conversations domain.ConversationRepository
	DB            handler.Pinger
	Sessions      *session.Store
	Gateway       assistant.Gateway
	Verifier      anthropic.Verifier
	Redis         *redis.Client
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommw.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services
	authService := service.NewAuthService(deps.Users, deps.Verifier, deps.Sessions)
	chatService := service.NewChatService(deps.Conversations, deps.Gateway)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	conversationHandler := handler.NewConversationHandler(chatService)
	chatHandler := handler.NewChatHandler(chatService)

	authMiddleware := custommw.NewAuthMiddleware(deps.Sessions)

	// Health
	r.Get("/health", handler.HealthCheck(deps.Sessions))
	r.Get("/ready", handler.ReadyCheck(deps.DB))

	r.Route("/api", func(r chi.Router) {
		// Auth
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Post("/logout", authHandler.Logout)
				r.Get("/verify", authHandler.Verify)
			})

			r.With(authMiddleware.Optional).Get("/me", authHandler.Me)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", conversationHandler.List)
				r.Post("/", conversationHandler.Create)

				r.Route("/{conversationID}", func(r chi.Router) {
					r.Get("/", conversationHandler.Get)
					r.Patch("/", conversationHandler.Update)
					r.Delete("/", conversationHandler.Delete)
				})
			})

			// Rate limiting applies to chat only, and only when Redis
			// is configured.
			r.Group(func(r chi.Router) {
				if deps.Redis != nil {
					limiter := redis.NewRateLimiter(
						deps.Redis,
						deps.Config.Security.RateLimit.RequestsPerMinute,
						deps.Config.Security.RateLimit.Burst,
					)
					r.Use(custommw.NewRateLimitMiddleware(limiter).Limit)
				}
				r.Post("/chat", chatHandler.Chat)
			})
		})
	})

	// Static chat client
	if deps.Config.Server.StaticDir != "" {
		fs := http.FileServer(http.Dir(deps.Config.Server.StaticDir))
		r.Handle("/*", fs)
	}

	return r
}
