package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pigfarm-backend/internal/models"
)

type VaccinationTemplateRepository struct {
	DB *pgxpool.Pool
}

func NewVaccinationTemplateRepository(db *pgxpool.Pool) *VaccinationTemplateRepository {
	return &VaccinationTemplateRepository{DB: db}
}

// List returns all template rules ordered by age, with vaccine names
// resolved.
func (r *VaccinationTemplateRepository) List(ctx context.Context) ([]models.VaccinationTemplate, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT t.id, t.vaccine_id, COALESCE(v.vaccine_name, 'Unknown'),
		       t.stage, COALESCE(t.dosage, ''), t.days_old, COALESCE(t.notes, '')
		FROM vaccination_templates t
		LEFT JOIN vaccines v ON v.id = t.vaccine_id
		ORDER BY t.days_old ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.VaccinationTemplate
	for rows.Next() {
		var t models.VaccinationTemplate
		if err := rows.Scan(&t.ID, &t.VaccineID, &t.VaccineName, &t.Stage, &t.Dosage, &t.DaysOld, &t.Notes); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// Get returns one template rule, or ErrNotFound.
func (r *VaccinationTemplateRepository) Get(ctx context.Context, id string) (*models.VaccinationTemplate, error) {
	var t models.VaccinationTemplate
	err := r.DB.QueryRow(ctx, `
		SELECT t.id, t.vaccine_id, COALESCE(v.vaccine_name, 'Unknown'),
		       t.stage, COALESCE(t.dosage, ''), t.days_old, COALESCE(t.notes, '')
		FROM vaccination_templates t
		LEFT JOIN vaccines v ON v.id = t.vaccine_id
		WHERE t.id = $1
	`, id).Scan(&t.ID, &t.VaccineID, &t.VaccineName, &t.Stage, &t.Dosage, &t.DaysOld, &t.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create inserts a single template rule and returns it with the vaccine
// name resolved.
func (r *VaccinationTemplateRepository) Create(ctx context.Context, in *models.TemplateInput) (*models.VaccinationTemplate, error) {
	var id string
	err := r.DB.QueryRow(ctx, `
		INSERT INTO vaccination_templates (vaccine_id, stage, days_old, dosage, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, in.VaccineID, in.Stage, in.DaysOld, in.Dosage, in.Notes).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return r.Get(ctx, id)
}

// Delete removes one template rule. ErrNotFound if it does not exist.
func (r *VaccinationTemplateRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM vaccination_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceAll deletes every template rule and recreates the set from the
// submitted list, in one transaction. Destructive by design: prior rule
// ids are not preserved.
func (r *VaccinationTemplateRepository) ReplaceAll(ctx context.Context, in []models.TemplateInput) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM vaccination_templates`); err != nil {
		return err
	}

	for _, item := range in {
		_, err := tx.Exec(ctx, `
			INSERT INTO vaccination_templates (vaccine_id, stage, days_old, dosage, notes)
			VALUES ($1, $2, $3, $4, $5)
		`, item.VaccineID, item.Stage, item.DaysOld, item.Dosage, item.Notes)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
