package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pigfarm-backend/internal/handlers"
	"pigfarm-backend/internal/middleware"
)

func NewRouter(
	vaccinationHandler *handlers.VaccinationHandler,
	templateHandler *handlers.TemplateHandler,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Health endpoints (NO AUTHENTICATION REQUIRED)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Protected API routes - Vaccination calendar and schedules
	vaccinationAPI := r.PathPrefix("/vaccination").Subrouter()
	vaccinationAPI.Use(authMiddleware.Authenticate)
	vaccinationAPI.HandleFunc("/calendar", vaccinationHandler.GetCalendar).Methods("GET")
	vaccinationAPI.HandleFunc("/calendar/export", reportHandler.ExportCalendarPDF).Methods("GET")
	vaccinationAPI.HandleFunc("/details", vaccinationHandler.GetDailyDetails).Methods("GET")
	vaccinationAPI.HandleFunc("/complete", vaccinationHandler.MarkCompleted).Methods("PATCH")
	vaccinationAPI.HandleFunc("/manual", vaccinationHandler.CreateSchedule).Methods("POST")
	vaccinationAPI.HandleFunc("/schedule/{id}", vaccinationHandler.UpdateSchedule).Methods("PATCH")
	vaccinationAPI.HandleFunc("/schedule/{id}", vaccinationHandler.DeleteSchedule).Methods("DELETE")
	vaccinationAPI.HandleFunc("/revert/{id}", vaccinationHandler.RevertSchedule).Methods("DELETE")
	vaccinationAPI.HandleFunc("/active-pens", vaccinationHandler.GetActivePens).Methods("GET")
	vaccinationAPI.HandleFunc("/vaccine-list", vaccinationHandler.GetVaccines).Methods("GET")

	// Protected API routes - Immunization program templates
	vaccinationAPI.HandleFunc("/templates", templateHandler.ListTemplates).Methods("GET")
	vaccinationAPI.HandleFunc("/templates", templateHandler.ReplaceTemplates).Methods("PUT")
	vaccinationAPI.HandleFunc("/templates/suggestions", templateHandler.GetSuggestions).Methods("GET")
	vaccinationAPI.HandleFunc("/templates/item", templateHandler.AddTemplate).Methods("POST")
	vaccinationAPI.HandleFunc("/templates/item/{id}", templateHandler.DeleteTemplate).Methods("DELETE")

	return r
}
