package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/document"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/transport/middleware"
	"github.com/frahmantamala/leave-management/internal/transport/swagger"
	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, leaveHandler *leave.Handler, documentHandler *document.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Public: the filing form needs the vocabulary before login.
		if leaveHandler != nil {
			r.Get("/leave-types", leaveHandler.GetLeaveTypes)
		}

		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/register", authHandler.Register)
				sr.Post("/login", authHandler.Login)
				sr.Post("/logout", authHandler.Logout)
			})

			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				pr.Get("/auth/session", authHandler.Session)

				if userHandler != nil {
					pr.Get("/users/me", userHandler.GetCurrentUser)
					pr.Get("/users/subordinates", userHandler.GetSubordinates)
					pr.Put("/users/{id}/balances", userHandler.UpdateBalances)
				}

				if leaveHandler != nil {
					pr.Route("/leaves", func(lr chi.Router) {
						lr.Post("/", leaveHandler.CreateLeave)
						lr.Get("/", leaveHandler.GetUserLeaves)
						lr.Get("/status/{status}", leaveHandler.GetLeavesByStatus)
						lr.Get("/{id}", leaveHandler.GetLeave)
						lr.Put("/{id}", leaveHandler.EditLeave)
						lr.Patch("/{id}/action", leaveHandler.ApplyAction)
					})
				}

				if documentHandler != nil {
					pr.Post("/documents", documentHandler.Upload)
					pr.Get("/documents/{name}", documentHandler.Download)
				}
			})
		}
	})
}
