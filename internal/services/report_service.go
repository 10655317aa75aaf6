package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/jung-kurt/gofpdf/v2"

	"pigfarm-backend/internal/timeutil"
)

// ReportService renders printable exports of the vaccination calendar.
type ReportService struct {
	Vaccination *VaccinationService
}

func NewReportService(vaccination *VaccinationService) *ReportService {
	return &ReportService{Vaccination: vaccination}
}

// GenerateMonthPDF renders one month's calendar as a printable table,
// one row per calendar marker, ordered by date.
func (s *ReportService) GenerateMonthPDF(ctx context.Context, month, year int) ([]byte, error) {
	calendar, err := s.Vaccination.GetCalendar(ctx, month, year)
	if err != nil {
		return nil, err
	}

	days := make([]string, 0, len(calendar))
	for day := range calendar {
		days = append(days, day)
	}
	sort.Strings(days)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(190, 12, "Pig Farm - Vaccination Calendar", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 8, fmt.Sprintf("Month: %02d/%d", month, year), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Table header
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(15, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(85, 7, "Vaccine", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Status", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Type", "1", 1, "C", true, 0, "")

	// Table rows
	pdf.SetFont("Arial", "", 10)
	row := 0
	for _, day := range days {
		for _, item := range calendar[day] {
			if row%2 == 0 {
				pdf.SetFillColor(255, 255, 255)
			} else {
				pdf.SetFillColor(245, 245, 245)
			}
			row++

			name := item.Name
			if len(name) > 45 {
				name = name[:42] + "..."
			}

			pdf.CellFormat(15, 6, fmt.Sprintf("%d", row), "1", 0, "C", true, 0, "")
			pdf.CellFormat(35, 6, day, "1", 0, "C", true, 0, "")
			pdf.CellFormat(85, 6, name, "1", 0, "L", true, 0, "")
			pdf.CellFormat(30, 6, item.Status, "1", 0, "C", true, 0, "")
			pdf.CellFormat(25, 6, item.Type, "1", 1, "C", true, 0, "")
		}
	}

	if row == 0 {
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(190, 10, "No vaccinations scheduled or forecast this month", "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
