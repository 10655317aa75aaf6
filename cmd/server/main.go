package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"pigfarm-backend/internal/auth"
	"pigfarm-backend/internal/cache"
	"pigfarm-backend/internal/config"
	"pigfarm-backend/internal/database"
	"pigfarm-backend/internal/db"
	"pigfarm-backend/internal/handlers"
	"pigfarm-backend/internal/health"
	h "pigfarm-backend/internal/http"
	"pigfarm-backend/internal/middleware"
	"pigfarm-backend/internal/repositories"
	"pigfarm-backend/internal/services"
	"pigfarm-backend/migrations"
)

func main() {
	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()

	migrator := database.NewMigrator(pool, migrations.FS, ".")
	if err := migrator.RunMigrations(context.Background()); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Redis is optional; lookups fall back to the database when absent.
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache disabled: %v", err)
	}

	jwtManager := auth.NewJWTManager(cfg)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)
	corsMiddleware := middleware.NewCORS(cfg)

	// Repositories
	vaccineRepo := repositories.NewVaccineRepository(pool)
	penRepo := repositories.NewPenRepository(pool)
	batchVaccineRepo := repositories.NewBatchVaccineRepository(pool)
	templateRepo := repositories.NewVaccinationTemplateRepository(pool)
	scheduleRepo := repositories.NewVaccinationScheduleRepository(pool)

	// Services
	vaccinationService := services.NewVaccinationService(templateRepo, penRepo, scheduleRepo, vaccineRepo, batchVaccineRepo)
	templateService := services.NewTemplateService(templateRepo, vaccineRepo)
	reportService := services.NewReportService(vaccinationService)

	// Handlers
	vaccinationHandler := handlers.NewVaccinationHandler(vaccinationService)
	templateHandler := handlers.NewTemplateHandler(templateService)
	reportHandler := handlers.NewReportHandler(reportService)
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool))

	router := h.NewRouter(vaccinationHandler, templateHandler, reportHandler, healthHandler, authMiddleware)

	// Wrap with panic recovery and metrics middleware
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
