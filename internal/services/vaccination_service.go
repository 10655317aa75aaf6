package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pigfarm-backend/internal/forecast"
	"pigfarm-backend/internal/metrics"
	"pigfarm-backend/internal/models"
	"pigfarm-backend/internal/timeutil"
)

// ErrInvalidInput flags request validation failures; handlers map it to
// a 400 response.
var ErrInvalidInput = errors.New("invalid input")

// TemplateStore is the template access the vaccination service needs.
type TemplateStore interface {
	List(ctx context.Context) ([]models.VaccinationTemplate, error)
	Get(ctx context.Context, id string) (*models.VaccinationTemplate, error)
}

// PenStore resolves active pens and their occupying batches.
type PenStore interface {
	ListActiveWithBatch(ctx context.Context) ([]models.ActivePen, error)
	BatchFor(ctx context.Context, penID string) (*models.PenBatch, error)
}

// ScheduleStore is the persisted schedule access.
type ScheduleStore interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.VaccinationSchedule, error)
	ListOnDay(ctx context.Context, day time.Time) ([]models.VaccinationSchedule, error)
	ListCompletedForActivePens(ctx context.Context) ([]models.CompletedShot, error)
	FindByPenVaccineStage(ctx context.Context, penID, vaccineID string, stage int) (*models.VaccinationSchedule, error)
	Get(ctx context.Context, id string) (*models.VaccinationSchedule, error)
	MarkCompleted(ctx context.Context, ids []string, at time.Time) (int64, error)
	Create(ctx context.Context, in *models.NewSchedule) (string, error)
	Update(ctx context.Context, id string, upd *models.ScheduleUpdate) error
	Delete(ctx context.Context, id string) error
	RevertCompleted(ctx context.Context, id string) (*models.RevertResult, error)
}

// VaccineStore is the vaccine reference library access.
type VaccineStore interface {
	List(ctx context.Context) ([]models.Vaccine, error)
	FindByName(ctx context.Context, name string) (*models.Vaccine, error)
	Create(ctx context.Context, name string) (*models.Vaccine, error)
}

// LedgerStore records which vaccines a batch has received.
type LedgerStore interface {
	MarkAdministered(ctx context.Context, batchID, vaccineID string) error
}

// VaccinationService merges persisted schedules with template-derived
// forecasts and reconciles forecasts into records when shots happen.
type VaccinationService struct {
	Templates TemplateStore
	Pens      PenStore
	Schedules ScheduleStore
	Vaccines  VaccineStore
	Ledger    LedgerStore

	// Now is swappable so date-relative behavior is testable.
	Now func() time.Time
}

func NewVaccinationService(
	templates TemplateStore,
	pens PenStore,
	schedules ScheduleStore,
	vaccines VaccineStore,
	ledger LedgerStore,
) *VaccinationService {
	return &VaccinationService{
		Templates: templates,
		Pens:      pens,
		Schedules: schedules,
		Vaccines:  vaccines,
		Ledger:    ledger,
		Now:       timeutil.Now,
	}
}

// GetCalendar returns the month view keyed by date: persisted schedules
// first, then forecast markers for vaccine names not already present on
// that day.
func (s *VaccinationService) GetCalendar(ctx context.Context, month, year int) (map[string][]models.CalendarItem, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}
	from, to := timeutil.MonthRange(month, year)

	schedules, err := s.Schedules.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	events, err := s.forecastWindow(ctx, from, to)
	if err != nil {
		return nil, err
	}

	calendar := make(map[string][]models.CalendarItem)
	// Actual markers dedup on (name, scheduleID): one schedule never
	// contributes the same vaccine twice, but two pens' schedules for the
	// same vaccine both show.
	seenPairs := make(map[string]bool)
	// Forecasts insert by name only: any marker of that vaccine on the
	// day, actual or forecast, suppresses them.
	seenNames := make(map[string]map[string]bool)

	markName := func(key, name string) {
		if seenNames[key] == nil {
			seenNames[key] = make(map[string]bool)
		}
		seenNames[key][name] = true
	}

	for _, sched := range schedules {
		key := timeutil.DateKey(sched.ScheduledDate)
		color := sched.Color
		if color == "" {
			color = colorForStatus(sched.Status)
		}
		for _, d := range sched.Details {
			pair := key + "|" + d.VaccineName + "|" + sched.ID
			if seenPairs[pair] {
				continue
			}
			seenPairs[pair] = true
			calendar[key] = append(calendar[key], models.CalendarItem{
				ID:     sched.ID,
				Name:   d.VaccineName,
				Status: sched.Status,
				Type:   models.TypeActual,
				Color:  color,
			})
			markName(key, d.VaccineName)
		}
	}

	for _, e := range events {
		key := timeutil.DateKey(e.Date)
		if seenNames[key][e.VaccineName] {
			continue
		}
		calendar[key] = append(calendar[key], models.CalendarItem{
			ID:     e.ID,
			Name:   e.VaccineName,
			Status: models.StatusForecast,
			Type:   models.TypeForecast,
			Color:  models.ColorForecast,
		})
		markName(key, e.VaccineName)
	}

	return calendar, nil
}

// GetDailyDetails returns one day's work grouped by (vaccine, stage,
// kind). Viewing today additionally carries forward overdue forecasts
// from the last 60 days.
func (s *VaccinationService) GetDailyDetails(ctx context.Context, day time.Time) ([]models.DailyGroup, error) {
	schedules, err := s.Schedules.ListOnDay(ctx, day)
	if err != nil {
		return nil, err
	}
	pens, rules, booked, err := s.forecastInputs(ctx)
	if err != nil {
		return nil, err
	}
	// A pen with an actual schedule for (vaccine, stage) on this day must
	// not also surface as a forecast for the same shot, pending included.
	for _, sched := range schedules {
		for _, d := range sched.Details {
			booked[forecast.BookedKey{PenID: sched.PenID, VaccineID: d.VaccineID, Stage: d.Stage}] = true
		}
	}
	events := forecast.ForDay(pens, rules, day, s.Now(), booked)
	metrics.ForecastEventsGenerated.Add(float64(len(events)))

	type groupKey struct {
		vaccineID string
		stage     int
		kind      string
	}
	var order []groupKey
	groups := make(map[groupKey]*models.DailyGroup)
	penSeen := make(map[groupKey]map[string]bool)

	add := func(key groupKey, name string, pen models.PenStatus) {
		g, ok := groups[key]
		if !ok {
			g = &models.DailyGroup{VaccineName: name, Stage: key.stage}
			groups[key] = g
			order = append(order, key)
			penSeen[key] = make(map[string]bool)
		}
		if penSeen[key][pen.PenName] {
			return
		}
		penSeen[key][pen.PenName] = true
		g.Pens = append(g.Pens, pen)
	}

	for _, sched := range schedules {
		for _, d := range sched.Details {
			add(groupKey{d.VaccineID, d.Stage, sched.Status}, d.VaccineName, models.PenStatus{
				ScheduleID: sched.ID,
				PenID:      sched.PenID,
				PenName:    sched.PenName,
				Status:     sched.Status,
				IsReal:     true,
			})
		}
	}
	for _, e := range events {
		add(groupKey{e.VaccineID, e.Stage, models.TypeForecast}, e.VaccineName, models.PenStatus{
			TemplateID:   e.TemplateID,
			PenID:        e.PenID,
			PenName:      e.PenName,
			Status:       models.StatusForecast,
			IsReal:       false,
			IsOverdue:    e.IsOverdue,
			OriginalDate: e.OriginalDate,
		})
	}

	result := make([]models.DailyGroup, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.TotalPens = len(g.Pens)
		result = append(result, *g)
	}
	return result, nil
}

// MarkComplete processes a mixed batch of real and forecast items,
// best-effort per item. Real items flip their schedule to completed;
// forecast items reuse a matching existing schedule when one exists,
// otherwise materialize a new completed record. Every completion upserts
// the pen's batch ledger.
func (s *VaccinationService) MarkComplete(ctx context.Context, items []models.ActionItem) (*models.MarkResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items to process", ErrInvalidInput)
	}

	now := s.Now()
	result := &models.MarkResult{Success: true}

	for _, item := range items {
		var itemRes models.ItemResult
		if item.IsReal {
			itemRes = s.completeReal(ctx, item.ScheduleID, now, result)
		} else {
			itemRes = s.completeForecast(ctx, item, now, result)
		}
		if !itemRes.OK {
			result.Success = false
		}
		result.Items = append(result.Items, itemRes)
	}

	metrics.SchedulesCompleted.Add(float64(result.Updated + result.Created))
	return result, nil
}

// completeReal flips an existing schedule to completed. The batch ledger
// is untouched: ledger entries originate from batch import or from
// forecast-origin completions only.
func (s *VaccinationService) completeReal(ctx context.Context, scheduleID string, now time.Time, result *models.MarkResult) models.ItemResult {
	res := models.ItemResult{ScheduleID: scheduleID}

	if _, err := s.Schedules.Get(ctx, scheduleID); err != nil {
		res.Error = "schedule not found"
		return res
	}
	if _, err := s.Schedules.MarkCompleted(ctx, []string{scheduleID}, now); err != nil {
		res.Error = err.Error()
		return res
	}
	result.Updated++
	res.OK = true
	return res
}

func (s *VaccinationService) completeForecast(ctx context.Context, item models.ActionItem, now time.Time, result *models.MarkResult) models.ItemResult {
	res := models.ItemResult{TemplateID: item.TemplateID, PenID: item.PenID}

	tmpl, err := s.Templates.Get(ctx, item.TemplateID)
	if err != nil {
		res.Error = "template not found"
		return res
	}

	// A stale pending record for the same shot gets completed instead of
	// duplicated.
	existing, err := s.Schedules.FindByPenVaccineStage(ctx, item.PenID, tmpl.VaccineID, tmpl.Stage)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if existing != nil {
		if _, err := s.Schedules.MarkCompleted(ctx, []string{existing.ID}, now); err != nil {
			res.Error = err.Error()
			return res
		}
		res.ScheduleID = existing.ID
		result.Updated++
	} else {
		id, err := s.Schedules.Create(ctx, &models.NewSchedule{
			PenID:         item.PenID,
			ScheduledDate: now,
			Status:        models.StatusCompleted,
			Color:         models.ColorCompleted,
			VaccineID:     tmpl.VaccineID,
			Stage:         tmpl.Stage,
			Dosage:        parseDosage(tmpl.Dosage),
		})
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.ScheduleID = id
		result.Created++
	}

	if err := s.upsertLedger(ctx, item.PenID, []string{tmpl.VaccineID}); err != nil {
		res.Error = err.Error()
		return res
	}
	res.OK = true
	return res
}

// upsertLedger records the vaccines on the pen's current batch. Pens
// without a resolvable batch complete without a ledger entry.
func (s *VaccinationService) upsertLedger(ctx context.Context, penID string, vaccineIDs []string) error {
	batch, err := s.Pens.BatchFor(ctx, penID)
	if err != nil {
		return err
	}
	if batch == nil {
		return nil
	}
	for _, vaccineID := range vaccineIDs {
		if err := s.Ledger.MarkAdministered(ctx, batch.ID, vaccineID); err != nil {
			return err
		}
	}
	return nil
}

// Revert undoes a completed schedule and retracts the batch ledger when
// no other completed record still covers the vaccine.
func (s *VaccinationService) Revert(ctx context.Context, scheduleID string) (*models.RevertResult, error) {
	result, err := s.Schedules.RevertCompleted(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	metrics.SchedulesReverted.Inc()
	return result, nil
}

// CreateManual creates one pending schedule per selected pen, resolving
// the vaccine by id or by name (creating the vaccine when unknown).
// Failures on one pen do not block the others.
func (s *VaccinationService) CreateManual(ctx context.Context, req *models.ManualScheduleRequest) (*models.ManualScheduleResult, error) {
	if len(req.PenIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one pen is required", ErrInvalidInput)
	}
	date, err := timeutil.ParseDate(req.ScheduledDate)
	if err != nil {
		return nil, fmt.Errorf("%w: scheduledDate must be YYYY-MM-DD", ErrInvalidInput)
	}

	vaccineID, err := s.resolveVaccine(ctx, req.VaccineID, req.VaccineName)
	if err != nil {
		return nil, err
	}

	stage := req.Stage
	if stage < 1 {
		stage = 1
	}
	color := req.Color
	if color == "" {
		color = models.ColorPending
	}

	result := &models.ManualScheduleResult{Success: true}
	for _, penID := range req.PenIDs {
		id, err := s.Schedules.Create(ctx, &models.NewSchedule{
			PenID:         penID,
			ScheduledDate: date,
			Status:        models.StatusPending,
			Color:         color,
			VaccineID:     vaccineID,
			Stage:         stage,
		})
		if err != nil {
			result.Success = false
			result.Items = append(result.Items, models.ItemResult{PenID: penID, Error: err.Error()})
			continue
		}
		result.Count++
		result.Items = append(result.Items, models.ItemResult{PenID: penID, ScheduleID: id, OK: true})
	}
	return result, nil
}

// UpdateSchedule applies a partial edit to a schedule.
func (s *VaccinationService) UpdateSchedule(ctx context.Context, id string, req *models.UpdateScheduleRequest) error {
	upd := &models.ScheduleUpdate{}

	if req.ScheduledDate != "" {
		date, err := timeutil.ParseDate(req.ScheduledDate)
		if err != nil {
			return fmt.Errorf("%w: scheduledDate must be YYYY-MM-DD", ErrInvalidInput)
		}
		upd.ScheduledDate = &date
	}
	if req.Color != "" {
		upd.Color = &req.Color
	}
	if req.VaccineID != "" || req.VaccineName != "" {
		vaccineID, err := s.resolveVaccine(ctx, req.VaccineID, req.VaccineName)
		if err != nil {
			return err
		}
		upd.VaccineID = &vaccineID
	}
	if req.Stage > 0 {
		upd.Stage = &req.Stage
	}

	return s.Schedules.Update(ctx, id, upd)
}

// DeleteSchedule removes a schedule and its details.
func (s *VaccinationService) DeleteSchedule(ctx context.Context, id string) error {
	return s.Schedules.Delete(ctx, id)
}

// GetActivePens lists pens currently holding pigs, with batch info.
func (s *VaccinationService) GetActivePens(ctx context.Context) ([]models.ActivePen, error) {
	return s.Pens.ListActiveWithBatch(ctx)
}

// GetAllVaccines lists the vaccine reference library.
func (s *VaccinationService) GetAllVaccines(ctx context.Context) ([]models.Vaccine, error) {
	return s.Vaccines.List(ctx)
}

func (s *VaccinationService) resolveVaccine(ctx context.Context, vaccineID, vaccineName string) (string, error) {
	if vaccineID != "" {
		return vaccineID, nil
	}
	name := strings.TrimSpace(vaccineName)
	if name == "" {
		return "", fmt.Errorf("%w: vaccineId or vaccineName is required", ErrInvalidInput)
	}
	vaccine, err := s.Vaccines.FindByName(ctx, name)
	if err != nil {
		return "", err
	}
	if vaccine == nil {
		vaccine, err = s.Vaccines.Create(ctx, name)
		if err != nil {
			return "", err
		}
	}
	return vaccine.ID, nil
}

func (s *VaccinationService) forecastWindow(ctx context.Context, from, to time.Time) ([]forecast.Event, error) {
	pens, rules, booked, err := s.forecastInputs(ctx)
	if err != nil {
		return nil, err
	}
	events := forecast.ForWindow(pens, rules, from, to, booked)
	metrics.ForecastEventsGenerated.Add(float64(len(events)))
	return events, nil
}

func (s *VaccinationService) forecastInputs(ctx context.Context) ([]forecast.Pen, []forecast.Rule, map[forecast.BookedKey]bool, error) {
	templates, err := s.Templates.List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	pens, err := s.Pens.ListActiveWithBatch(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	completed, err := s.Schedules.ListCompletedForActivePens(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	rules := make([]forecast.Rule, 0, len(templates))
	for _, t := range templates {
		rules = append(rules, forecast.Rule{
			TemplateID:  t.ID,
			VaccineID:   t.VaccineID,
			VaccineName: t.VaccineName,
			Stage:       t.Stage,
			DaysOld:     t.DaysOld,
		})
	}

	fpens := make([]forecast.Pen, 0, len(pens))
	for _, p := range pens {
		fp := forecast.Pen{ID: p.ID, Name: p.Name}
		if p.Batch != nil {
			fp.BatchID = p.Batch.ID
			fp.ArrivalDate = p.Batch.ArrivalDate
			fp.HasArrival = p.Batch.HasArrival
			fp.Administered = p.Batch.Administered
		}
		fpens = append(fpens, fp)
	}

	return fpens, rules, forecast.BookedSet(completed), nil
}

func colorForStatus(status string) string {
	if status == models.StatusCompleted {
		return models.ColorCompleted
	}
	return models.ColorPending
}

// parseDosage extracts the leading numeric part of a template dosage
// string like "2ml". Non-numeric dosages record as 0.
func parseDosage(dosage string) float64 {
	trimmed := strings.TrimSpace(dosage)
	end := 0
	for end < len(trimmed) && (trimmed[end] >= '0' && trimmed[end] <= '9' || trimmed[end] == '.') {
		end++
	}
	if end == 0 {
		return 0
	}
	value, err := strconv.ParseFloat(trimmed[:end], 64)
	if err != nil {
		return 0
	}
	return value
}
