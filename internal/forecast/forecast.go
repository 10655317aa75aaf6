// Package forecast derives projected vaccination events from the farm's
// template rules and each pen's batch arrival date. Events are computed,
// never stored; the same inputs always yield the same events.
package forecast

import (
	"fmt"
	"sort"
	"time"

	"pigfarm-backend/internal/models"
	"pigfarm-backend/internal/timeutil"
)

// overdueWindowDays is how far back an unfulfilled projection still
// surfaces on the today view.
const overdueWindowDays = 60

// Rule is one template line: give vaccine at stage when the batch is
// daysOld days past arrival.
type Rule struct {
	TemplateID  string
	VaccineID   string
	VaccineName string
	Stage       int
	DaysOld     int
}

// Pen is a pen eligible for forecasting. Administered holds the vaccine
// ids already recorded on the pen's batch ledger; nil when the pen has no
// batch or the batch has no ledger entries.
type Pen struct {
	ID           string
	Name         string
	BatchID      string
	ArrivalDate  time.Time
	HasArrival   bool
	Administered map[string]bool
}

// Event is one projected vaccination for one pen on one day.
type Event struct {
	ID          string
	TemplateID  string
	PenID       string
	PenName     string
	VaccineID   string
	VaccineName string
	Stage       int
	Date        time.Time
	IsOverdue   bool
	// OriginalDate is set on overdue events carried forward to today.
	OriginalDate string
}

// BookedKey identifies a (pen, vaccine, stage) shot already completed in
// the schedule history. Booked shots are never forecast again.
type BookedKey struct {
	PenID     string
	VaccineID string
	Stage     int
}

// BookedSet builds the suppression set from completed history rows.
func BookedSet(shots []models.CompletedShot) map[BookedKey]bool {
	set := make(map[BookedKey]bool, len(shots))
	for _, s := range shots {
		set[BookedKey{PenID: s.PenID, VaccineID: s.VaccineID, Stage: s.Stage}] = true
	}
	return set
}

// VirtualID is the stable identifier of a projected event. Identical
// inputs always produce the identical id, so repeated forecasts of the
// same (template, date) pair collapse client-side.
func VirtualID(templateID string, date time.Time) string {
	return fmt.Sprintf("virtual-%s-%s", templateID, date.Format(timeutil.DateLayout))
}

// ForWindow returns every projected event falling inside [start, end],
// skipping pens without an arrival date, vaccines already on the pen's
// batch ledger, and shots present in the booked set. Events are ordered
// by date, then pen name, then vaccine name and stage.
func ForWindow(pens []Pen, rules []Rule, start, end time.Time, booked map[BookedKey]bool) []Event {
	var events []Event
	for _, pen := range pens {
		if !pen.HasArrival {
			continue
		}
		for _, rule := range rules {
			if suppressed(pen, rule, booked) {
				continue
			}
			due := timeutil.StartOfDay(pen.ArrivalDate).AddDate(0, 0, rule.DaysOld)
			if due.Before(timeutil.StartOfDay(start)) || due.After(timeutil.EndOfDay(end)) {
				continue
			}
			events = append(events, newEvent(pen, rule, due, false, time.Time{}))
		}
	}
	sortEvents(events)
	return events
}

// ForDay returns the projected events for one day. When day is today,
// unfulfilled projections from the previous 60 days are carried forward
// as overdue entries dated today; viewing a past or future day never
// resurfaces them.
func ForDay(pens []Pen, rules []Rule, day, today time.Time, booked map[BookedKey]bool) []Event {
	dayStart := timeutil.StartOfDay(day)
	events := ForWindow(pens, rules, dayStart, dayStart, booked)

	if !timeutil.SameDay(day, today) {
		return events
	}

	for _, pen := range pens {
		if !pen.HasArrival {
			continue
		}
		for _, rule := range rules {
			if suppressed(pen, rule, booked) {
				continue
			}
			due := timeutil.StartOfDay(pen.ArrivalDate).AddDate(0, 0, rule.DaysOld)
			if !due.Before(dayStart) {
				continue
			}
			if dayStart.Sub(due) > overdueWindowDays*24*time.Hour {
				continue
			}
			events = append(events, newEvent(pen, rule, dayStart, true, due))
		}
	}
	sortEvents(events)
	return events
}

func suppressed(pen Pen, rule Rule, booked map[BookedKey]bool) bool {
	if pen.Administered[rule.VaccineID] {
		return true
	}
	return booked[BookedKey{PenID: pen.ID, VaccineID: rule.VaccineID, Stage: rule.Stage}]
}

func newEvent(pen Pen, rule Rule, date time.Time, overdue bool, original time.Time) Event {
	e := Event{
		ID:          VirtualID(rule.TemplateID, date),
		TemplateID:  rule.TemplateID,
		PenID:       pen.ID,
		PenName:     pen.Name,
		VaccineID:   rule.VaccineID,
		VaccineName: rule.VaccineName,
		Stage:       rule.Stage,
		Date:        date,
		IsOverdue:   overdue,
	}
	if overdue {
		e.OriginalDate = original.Format(timeutil.DateLayout)
	}
	return e
}

func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		if events[i].PenName != events[j].PenName {
			return events[i].PenName < events[j].PenName
		}
		if events[i].VaccineName != events[j].VaccineName {
			return events[i].VaccineName < events[j].VaccineName
		}
		return events[i].Stage < events[j].Stage
	})
}
