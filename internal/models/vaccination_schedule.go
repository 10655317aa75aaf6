package models

import "time"

// Schedule statuses and calendar item kinds.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusForecast  = "forecast"

	TypeActual   = "actual"
	TypeForecast = "forecast"

	ColorPending   = "#3B82F6"
	ColorCompleted = "#10B981"
	ColorForecast  = "orange"
)

// VaccinationSchedule is a persisted vaccination event for one pen on one
// date, carrying one or more vaccine/stage detail rows.
type VaccinationSchedule struct {
	ID            string                      `json:"id"`
	PenID         string                      `json:"penId"`
	PenName       string                      `json:"penName"`
	ScheduledDate time.Time                   `json:"scheduledDate"`
	Status        string                      `json:"status"`
	Color         string                      `json:"color"`
	Details       []VaccinationScheduleDetail `json:"details"`
}

type VaccinationScheduleDetail struct {
	ID          string  `json:"id"`
	ScheduleID  string  `json:"scheduleId"`
	VaccineID   string  `json:"vaccineId"`
	VaccineName string  `json:"vaccineName"`
	Stage       int     `json:"stage"`
	Dosage      float64 `json:"dosage"`
}

// NewSchedule is the write shape for creating a schedule with one detail.
type NewSchedule struct {
	PenID         string
	ScheduledDate time.Time
	Status        string
	Color         string
	VaccineID     string
	Stage         int
	Dosage        float64
}

// ScheduleUpdate carries the optional fields of a partial schedule update.
// Nil fields are left untouched.
type ScheduleUpdate struct {
	ScheduledDate *time.Time
	Color         *string
	VaccineID     *string
	Stage         *int
}

// CompletedShot is one completed (pen, vaccine, stage) triple from the
// schedule history, used to suppress repeat forecasts.
type CompletedShot struct {
	PenID     string
	VaccineID string
	Stage     int
}

// CalendarItem is one marker in the month calendar view.
type CalendarItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Type   string `json:"type"`
	Color  string `json:"color"`
}

// DailyGroup is one (vaccine, stage, kind) group of the daily detail view.
type DailyGroup struct {
	VaccineName string      `json:"vaccineName"`
	Stage       int         `json:"stage"`
	TotalPens   int         `json:"totalPens"`
	Pens        []PenStatus `json:"pens"`
}

// PenStatus is a pen entry inside a daily group. Real entries reference a
// schedule; forecast entries reference the template and pen that produced
// them.
type PenStatus struct {
	ScheduleID   string `json:"scheduleId,omitempty"`
	TemplateID   string `json:"templateId,omitempty"`
	PenID        string `json:"penId,omitempty"`
	PenName      string `json:"penName"`
	Status       string `json:"status"`
	IsReal       bool   `json:"isReal"`
	IsOverdue    bool   `json:"isOverdue,omitempty"`
	OriginalDate string `json:"originalDate,omitempty"`
}

// ActionItem is one entry of a mark-as-vaccinated request. Real items name
// a schedule; forecast items name the template/pen pair that produced the
// forecast.
type ActionItem struct {
	IsReal     bool   `json:"isReal"`
	ScheduleID string `json:"scheduleId,omitempty"`
	TemplateID string `json:"templateId,omitempty"`
	PenID      string `json:"penId,omitempty"`
}

// ItemResult is the per-item outcome of a best-effort batch operation.
type ItemResult struct {
	ScheduleID string `json:"scheduleId,omitempty"`
	TemplateID string `json:"templateId,omitempty"`
	PenID      string `json:"penId,omitempty"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// MarkResult aggregates a mark-as-vaccinated call.
type MarkResult struct {
	Success bool         `json:"success"`
	Updated int          `json:"updated"`
	Created int          `json:"created"`
	Items   []ItemResult `json:"items"`
}

// RevertResult reports what a revert removed.
type RevertResult struct {
	ScheduleID      string   `json:"scheduleId"`
	BatchID         string   `json:"batchId,omitempty"`
	VaccineIDs      []string `json:"vaccineIds"`
	LedgerRetracted bool     `json:"ledgerRetracted"`
}

// ManualScheduleRequest creates one pending schedule per selected pen.
type ManualScheduleRequest struct {
	PenIDs        []string `json:"penIds"`
	ScheduledDate string   `json:"scheduledDate"`
	VaccineID     string   `json:"vaccineId,omitempty"`
	VaccineName   string   `json:"vaccineName,omitempty"`
	Stage         int      `json:"stage"`
	Color         string   `json:"color,omitempty"`
}

// ManualScheduleResult reports the per-pen outcome of a manual create.
type ManualScheduleResult struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Items   []ItemResult `json:"items,omitempty"`
}

// UpdateScheduleRequest is the partial-update shape for a schedule.
type UpdateScheduleRequest struct {
	ScheduledDate string `json:"scheduledDate,omitempty"`
	VaccineID     string `json:"vaccineId,omitempty"`
	VaccineName   string `json:"vaccineName,omitempty"`
	Stage         int    `json:"stage,omitempty"`
	Color         string `json:"color,omitempty"`
}
