package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pigfarm-backend/internal/models"
)

type VaccineRepository struct {
	DB *pgxpool.Pool
}

func NewVaccineRepository(db *pgxpool.Pool) *VaccineRepository {
	return &VaccineRepository{DB: db}
}

// List returns the full vaccine reference library ordered by name.
func (r *VaccineRepository) List(ctx context.Context) ([]models.Vaccine, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, vaccine_name, stage, days_old, COALESCE(dosage, ''), COALESCE(description, '')
		FROM vaccines
		ORDER BY vaccine_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanVaccines(rows)
}

// ListReference returns the standard immunization program: library rows
// carrying an age-in-days recommendation. Used for gap analysis.
func (r *VaccineRepository) ListReference(ctx context.Context) ([]models.Vaccine, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, vaccine_name, stage, days_old, COALESCE(dosage, ''), COALESCE(description, '')
		FROM vaccines
		WHERE days_old > 0
		ORDER BY days_old ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanVaccines(rows)
}

// FindByName matches a vaccine by name, case-insensitively. Returns
// (nil, nil) when no vaccine matches.
func (r *VaccineRepository) FindByName(ctx context.Context, name string) (*models.Vaccine, error) {
	var v models.Vaccine
	err := r.DB.QueryRow(ctx, `
		SELECT id, vaccine_name, stage, days_old, COALESCE(dosage, ''), COALESCE(description, '')
		FROM vaccines
		WHERE LOWER(vaccine_name) = LOWER($1)
		LIMIT 1
	`, name).Scan(&v.ID, &v.Name, &v.Stage, &v.DaysOld, &v.Dosage, &v.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// Create inserts a bare vaccine row for a manually entered name.
func (r *VaccineRepository) Create(ctx context.Context, name string) (*models.Vaccine, error) {
	var v models.Vaccine
	err := r.DB.QueryRow(ctx, `
		INSERT INTO vaccines (vaccine_name)
		VALUES ($1)
		RETURNING id, vaccine_name, stage, days_old, dosage, description
	`, name).Scan(&v.ID, &v.Name, &v.Stage, &v.DaysOld, &v.Dosage, &v.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to create vaccine: %w", err)
	}
	return &v, nil
}

func scanVaccines(rows pgx.Rows) ([]models.Vaccine, error) {
	var vaccines []models.Vaccine
	for rows.Next() {
		var v models.Vaccine
		if err := rows.Scan(&v.ID, &v.Name, &v.Stage, &v.DaysOld, &v.Dosage, &v.Description); err != nil {
			return nil, err
		}
		vaccines = append(vaccines, v)
	}
	return vaccines, rows.Err()
}
