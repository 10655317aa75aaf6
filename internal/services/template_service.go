package services

import (
	"context"
	"fmt"
	"strings"

	"pigfarm-backend/internal/models"
)

// TemplateWriter is the full template store surface, including writes.
type TemplateWriter interface {
	TemplateStore
	Create(ctx context.Context, in *models.TemplateInput) (*models.VaccinationTemplate, error)
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, in []models.TemplateInput) error
}

// ReferenceVaccineStore adds the reference-program listing used by gap
// analysis.
type ReferenceVaccineStore interface {
	VaccineStore
	ListReference(ctx context.Context) ([]models.Vaccine, error)
}

// TemplateService manages the immunization program rules and compares
// them against the standard reference library.
type TemplateService struct {
	Templates TemplateWriter
	Vaccines  ReferenceVaccineStore
}

func NewTemplateService(templates TemplateWriter, vaccines ReferenceVaccineStore) *TemplateService {
	return &TemplateService{Templates: templates, Vaccines: vaccines}
}

// List returns the program ordered by days old, with display fields
// filled in.
func (s *TemplateService) List(ctx context.Context) ([]models.VaccinationTemplate, error) {
	templates, err := s.Templates.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		t := &templates[i]
		t.Ordinal = i + 1
		t.FullName = fmt.Sprintf("%s - Dose %d", t.VaccineName, t.Stage)
		t.DaysOldText = fmt.Sprintf("%d days old", t.DaysOld)
	}
	return templates, nil
}

// Add validates and inserts one template rule, resolving the vaccine by
// id or name.
func (s *TemplateService) Add(ctx context.Context, in *models.TemplateInput) (*models.VaccinationTemplate, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	vaccineID, err := s.resolveVaccine(ctx, in.VaccineID, in.VaccineName)
	if err != nil {
		return nil, err
	}
	resolved := *in
	resolved.VaccineID = vaccineID
	return s.Templates.Create(ctx, &resolved)
}

// Delete removes one template rule.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	return s.Templates.Delete(ctx, id)
}

// ReplaceAll swaps the whole program for the given rules. The previous
// rules are discarded; callers own sending the complete intended set.
func (s *TemplateService) ReplaceAll(ctx context.Context, in []models.TemplateInput) error {
	resolved := make([]models.TemplateInput, 0, len(in))
	for i := range in {
		if err := s.validate(&in[i]); err != nil {
			return err
		}
		vaccineID, err := s.resolveVaccine(ctx, in[i].VaccineID, in[i].VaccineName)
		if err != nil {
			return err
		}
		item := in[i]
		item.VaccineID = vaccineID
		resolved = append(resolved, item)
	}
	return s.Templates.ReplaceAll(ctx, resolved)
}

// Suggestions compares the reference program against the current
// template set and returns the doses the program is missing, colored by
// urgency of the age window.
func (s *TemplateService) Suggestions(ctx context.Context) ([]models.TemplateSuggestion, error) {
	reference, err := s.Vaccines.ListReference(ctx)
	if err != nil {
		return nil, err
	}
	templates, err := s.Templates.List(ctx)
	if err != nil {
		return nil, err
	}

	type dose struct {
		vaccineID string
		stage     int
	}
	covered := make(map[dose]bool, len(templates))
	for _, t := range templates {
		covered[dose{t.VaccineID, t.Stage}] = true
	}

	var suggestions []models.TemplateSuggestion
	for _, v := range reference {
		stage := v.Stage
		if stage < 1 {
			stage = 1
		}
		if covered[dose{v.ID, stage}] {
			continue
		}
		suggestions = append(suggestions, models.TemplateSuggestion{
			VaccineID:   v.ID,
			VaccineName: v.Name,
			NameDisplay: fmt.Sprintf("%s (Dose %d)", v.Name, stage),
			Stage:       stage,
			DaysOld:     v.DaysOld,
			Dosage:      v.Dosage,
			Description: v.Description,
			Color:       priorityColor(v.DaysOld),
			Type:        "gap_analysis",
		})
	}
	return suggestions, nil
}

func (s *TemplateService) validate(in *models.TemplateInput) error {
	if in.VaccineID == "" && strings.TrimSpace(in.VaccineName) == "" {
		return fmt.Errorf("%w: vaccineId or vaccineName is required", ErrInvalidInput)
	}
	if in.Stage < 1 {
		return fmt.Errorf("%w: stage must be at least 1", ErrInvalidInput)
	}
	if in.DaysOld < 0 {
		return fmt.Errorf("%w: daysOld cannot be negative", ErrInvalidInput)
	}
	return nil
}

func (s *TemplateService) resolveVaccine(ctx context.Context, vaccineID, vaccineName string) (string, error) {
	if vaccineID != "" {
		return vaccineID, nil
	}
	name := strings.TrimSpace(vaccineName)
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

// priorityColor flags how early in the batch's life a dose falls.
func priorityColor(daysOld int) string {
	switch {
	case daysOld <= 21:
		return "red"
	case daysOld <= 45:
		return "orange"
	default:
		return "blue"
	}
}
