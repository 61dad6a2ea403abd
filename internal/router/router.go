package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	httphandler "user-management-service/internal/handler/http"
	wshandler "user-management-service/internal/handler/ws"
	"user-management-service/pkg/middleware"
)

// SetupRoutes configures the HTTP routes for the user management service
func SetupRoutes(
	r chi.Router,
	userHandler *httphandler.UserHandler,
	notificationHandler *httphandler.NotificationHandler,
	wsHandler *wshandler.WSHandler,
	rdb *redis.Client,
) chi.Router {
	// ---- Global Middleware ----
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.RateLimiter(rdb, 100, time.Minute, 10*time.Minute, "global"))

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", userHandler.CreateUser)
		r.Get("/", userHandler.ListUsers)
		r.Get("/email/{email}", userHandler.GetUserByEmail)
		r.Get("/password-requests/pending", userHandler.PendingPasswordRequests)

		r.Get("/{id}", userHandler.GetUser)
		r.Put("/{id}", userHandler.UpdateUser)
		r.Delete("/{id}", userHandler.DeleteUser)

		r.Post("/{id}/change-password", userHandler.RequestPasswordChange)
		r.Put("/{id}/approve-password-change", userHandler.ResolvePasswordChange)
		r.Get("/{id}/password-request", userHandler.PendingPasswordRequest)
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Post("/", notificationHandler.CreateNotification)
		r.Get("/", notificationHandler.ListNotifications)
		r.Post("/broadcast", notificationHandler.Broadcast)

		r.Get("/user/{userId}", notificationHandler.ListByUser)
		r.Get("/user/{userId}/priority/{priority}", notificationHandler.ListByUserAndPriority)
		r.Get("/user/{userId}/emails", notificationHandler.EmailHistory)

		r.Get("/{id}", notificationHandler.GetNotification)
		r.Patch("/{id}/read", notificationHandler.MarkAsRead)
		r.Delete("/{id}", notificationHandler.DeleteNotification)

		// WebSocket endpoint
		r.Get("/ws", wsHandler.HandleNotifications)
	})

	return r
}
