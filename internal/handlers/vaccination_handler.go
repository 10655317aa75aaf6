package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"pigfarm-backend/internal/cache"
	"pigfarm-backend/internal/models"
	"pigfarm-backend/internal/repositories"
	"pigfarm-backend/internal/services"
	"pigfarm-backend/internal/timeutil"
)

type VaccinationHandler struct {
	Service *services.VaccinationService
}

func NewVaccinationHandler(service *services.VaccinationService) *VaccinationHandler {
	return &VaccinationHandler{Service: service}
}

// GetCalendar serves the month view. Defaults to the current month when
// month/year query parameters are absent.
func (h *VaccinationHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	month, year := monthYearParams(r)

	calendar, err := h.Service.GetCalendar(r.Context(), month, year)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calendar)
}

// GetDailyDetails serves one day's schedules and forecasts, grouped.
func (h *VaccinationHandler) GetDailyDetails(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	day, err := timeutil.ParseDate(date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	groups, err := h.Service.GetDailyDetails(r.Context(), day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// MarkCompleted processes a mixed batch of real and forecast items.
func (h *VaccinationHandler) MarkCompleted(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []models.ActionItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.Service.MarkComplete(r.Context(), req.Items)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateSchedule creates pending schedules for the selected pens.
func (h *VaccinationHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req models.ManualScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.Service.CreateManual(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Creating by vaccine name may have added a vaccine.
	cache.InvalidateLookups(r.Context())
	writeJSON(w, http.StatusCreated, result)
}

// UpdateSchedule applies a partial edit to one schedule.
func (h *VaccinationHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.UpdateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateSchedule(r.Context(), id, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	cache.InvalidateLookups(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"message": "Schedule updated successfully"})
}

// DeleteSchedule removes one schedule with its details.
func (h *VaccinationHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.DeleteSchedule(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Schedule deleted successfully"})
}

// RevertSchedule undoes a completed schedule and, when warranted,
// retracts the batch ledger.
func (h *VaccinationHandler) RevertSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := h.Service.Revert(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetActivePens lists pens currently holding pigs, cached briefly since
// the dropdown is hit on every calendar interaction.
func (h *VaccinationHandler) GetActivePens(w http.ResponseWriter, r *http.Request) {
	if data, ok := cache.GetLookup(r.Context(), cache.ActivePensKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	pens, err := h.Service.GetActivePens(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := json.Marshal(pens)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cache.SetLookup(r.Context(), cache.ActivePensKey, data)
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// GetVaccines lists the vaccine reference library, cached like the pens.
func (h *VaccinationHandler) GetVaccines(w http.ResponseWriter, r *http.Request) {
	if data, ok := cache.GetLookup(r.Context(), cache.VaccineListKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	vaccines, err := h.Service.GetAllVaccines(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := json.Marshal(vaccines)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cache.SetLookup(r.Context(), cache.VaccineListKey, data)
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func monthYearParams(r *http.Request) (int, int) {
	now := timeutil.Now()
	month := now.Month()
	year := now.Year()

	if v := r.URL.Query().Get("month"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed, yearParam(r, year)
		}
	}
	return int(month), yearParam(r, year)
}

func yearParam(r *http.Request, fallback int) int {
	if v := r.URL.Query().Get("year"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repositories.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
