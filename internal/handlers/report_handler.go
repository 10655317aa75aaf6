package handlers

import (
	"fmt"
	"net/http"

	"pigfarm-backend/internal/services"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

// ExportCalendarPDF downloads one month's calendar as a PDF.
func (h *ReportHandler) ExportCalendarPDF(w http.ResponseWriter, r *http.Request) {
	month, year := monthYearParams(r)

	data, err := h.Service.GenerateMonthPDF(r.Context(), month, year)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("vaccination-calendar-%04d-%02d.pdf", year, month)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}
