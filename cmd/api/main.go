package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/ml-express/courier-backend-go/internal/config"
	appHTTP "github.com/ml-express/courier-backend-go/internal/handler/http"
	"github.com/ml-express/courier-backend-go/internal/pkg/database"
	"github.com/ml-express/courier-backend-go/internal/pkg/jwt"
	"github.com/ml-express/courier-backend-go/internal/pkg/push"
	"github.com/ml-express/courier-backend-go/internal/repository/postgresql"
	auditService "github.com/ml-express/courier-backend-go/internal/service/audit"
	salaryService "github.com/ml-express/courier-backend-go/internal/service/salary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "courier-backend"),
		slog.String("env", cfg.App.Env),
	)

	db, err := database.NewPostgreSQLDB(context.Background(), cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	salaryRepo := postgresql.NewSalaryRepository(db)
	policyRepo := postgresql.NewPolicyRepository(db)
	ledgerRepo := postgresql.NewLedgerRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	pushClient := push.NewClient(cfg.Push)

	salarySvc := salaryService.NewSalaryService(db, salaryRepo, policyRepo, ledgerRepo, auditRepo, pushClient, cfg.Payroll, logger)
	auditSvc := auditService.NewAuditService(auditRepo)

	salaryHandler := appHTTP.NewSalaryHandler(salarySvc)
	auditHandler := appHTTP.NewAuditHandler(auditSvc)

	router := appHTTP.NewRouter(cfg, jwtService, salaryHandler, auditHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
