package api

import (
	"net/http"

	"github.com/dom/videotube/internal/api/handlers"
	"github.com/dom/videotube/internal/api/middleware"
	"github.com/dom/videotube/internal/api/response"
	"github.com/dom/videotube/internal/config"
	"github.com/dom/videotube/internal/service"
	"github.com/dom/videotube/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigin))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, struct{}{}, "OK")
	})

	uploads := handlers.Uploads{Dir: cfg.UploadDir, MaxBytes: cfg.MaxUploadBytes}

	authHandler := handlers.NewAuthHandler(services.Auth, services.Account, uploads, service.KeysFromConfig(cfg), log)
	accountHandler := handlers.NewAccountHandler(services.Account, uploads, log)
	profileHandler := handlers.NewProfileHandler(services.Profile, log)
	subscriptionHandler := handlers.NewSubscriptionHandler(services.Subscription, log)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, services.Profile, cfg.CORSOrigin, log)

	requireAuth := middleware.Auth(services.Auth, log)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			// Public
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh-token", authHandler.RefreshAccessToken)

			r.With(middleware.OptionalAuth(services.Auth)).Get("/c/{username}", profileHandler.GetUserChannelProfile)

			// Protected
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", authHandler.Logout)
				r.Post("/change-password", accountHandler.ChangePassword)
				r.Get("/current-user", accountHandler.GetCurrentUser)
				r.Patch("/update-account", accountHandler.UpdateAccountDetails)
				r.Patch("/avatar", accountHandler.UpdateAvatar)
				r.Patch("/cover-image", accountHandler.UpdateCoverImage)
				r.Get("/history", profileHandler.GetWatchHistory)
			})
		})

		r.With(requireAuth).Post("/subscriptions/c/{channelId}", subscriptionHandler.Toggle)
		r.With(requireAuth).Post("/videos/{videoId}/watch", profileHandler.RecordWatch)

		// WebSocket endpoint
		r.Get("/ws/channels/{username}", wsHandler.WatchChannel)
	})

	return r
}
