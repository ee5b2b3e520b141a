package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/thanhhle/salesops-management/internal/auth"
	"github.com/thanhhle/salesops-management/internal/export"
	"github.com/thanhhle/salesops-management/internal/plan"
	"github.com/thanhhle/salesops-management/internal/report"
	"github.com/thanhhle/salesops-management/internal/transport/middleware"
	"github.com/thanhhle/salesops-management/internal/transport/swagger"
	"github.com/thanhhle/salesops-management/internal/user"
)

// Handlers bundles everything the router wires up.
type Handlers struct {
	Auth   *auth.Handler
	User   *user.Handler
	Plan   *plan.Handler
	Report *report.Handler
	Export *export.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// Protected routes
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Post("/auth/password", h.Auth.ChangePassword)

			pr.Route("/plans", func(plr chi.Router) {
				plr.Post("/", h.Plan.SubmitPlan)
				plr.Get("/", h.Plan.ListPlans)
				plr.Get("/completed", h.Plan.ListCompletedPlans)
				plr.Get("/{id}", h.Plan.GetPlan)
				plr.Patch("/{id}/results", h.Plan.ReportResults)

				// Approval queue and lifecycle decisions are manager territory.
				plr.Group(func(mr chi.Router) {
					mr.Use(h.Auth.RequireRole(auth.RoleManager, auth.RoleAdmin))
					mr.Get("/pending", h.Plan.ListPendingPlans)
					mr.Patch("/{id}/approve", h.Plan.ApprovePlan)
					mr.Patch("/{id}/reject", h.Plan.RejectPlan)
					mr.Patch("/{id}/rating", h.Plan.RatePlan)
				})
			})

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/{id}", h.User.GetUser)

				ur.Group(func(mr chi.Router) {
					mr.Use(h.Auth.RequireRole(auth.RoleManager, auth.RoleAdmin))
					mr.Get("/", h.User.ListUsers)
					mr.Post("/", h.User.CreateUser)
					mr.Patch("/{id}", h.User.UpdateUser)
					mr.Delete("/{id}", h.User.DeleteUser)
				})
			})

			pr.Route("/reports", func(rr chi.Router) {
				rr.Get("/weekly-summary", h.Report.GetWeeklySummary)
				rr.Get("/status-distribution", h.Report.GetStatusDistribution)
				rr.Get("/trend", h.Report.GetProductTrend)

				rr.Group(func(mr chi.Router) {
					mr.Use(h.Auth.RequireRole(auth.RoleManager, auth.RoleAdmin))
					mr.Get("/ranking", h.Report.GetEmployeeRanking)
				})
			})

			pr.Route("/export", func(er chi.Router) {
				er.Get("/plans", h.Export.ExportPlans)
				er.Get("/template", h.Export.DownloadTemplate)
				er.Post("/plans", h.Export.ImportPlans)
			})
		})
	})
}
