package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ml-express/courier-backend-go/internal/config"
	"github.com/ml-express/courier-backend-go/internal/handler/http/middleware"
	"github.com/ml-express/courier-backend-go/internal/pkg/jwt"
)

func NewRouter(cfg *config.Config, jwtService jwt.Service, salaryHandler SalaryHandler, auditHandler AuditHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "courier-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// The finance surface is admin-only end to end.
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))
			r.Use(middleware.AdminOnly)

			r.Route("/salaries", func(r chi.Router) {
				r.Get("/", salaryHandler.ListRecords)
				r.Post("/generate", salaryHandler.GenerateSettlement)
				r.Get("/summary", salaryHandler.GetSummary)
				r.Get("/export", salaryHandler.ExportRecords)

				r.Route("/policy", func(r chi.Router) {
					r.Get("/", salaryHandler.GetPolicy)
					r.Put("/", salaryHandler.UpdatePolicy)
				})

				r.Post("/batch-approve", salaryHandler.BatchApprove)
				r.Post("/batch-pay", salaryHandler.BatchPay)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", salaryHandler.GetRecord)
					r.Patch("/", salaryHandler.ReviseDraft)
					r.Get("/details", salaryHandler.GetDetailLines)
					r.Post("/approve", salaryHandler.Approve)
					r.Post("/pay", salaryHandler.Pay)
					r.Post("/reject", salaryHandler.Reject)
				})
			})

			r.Get("/audit-logs", auditHandler.ListEntries)
		})
	})

	return r
}
