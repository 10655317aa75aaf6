package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pigfarm-backend/internal/models"
	"pigfarm-backend/internal/timeutil"
)

type VaccinationScheduleRepository struct {
	DB *pgxpool.Pool
}

func NewVaccinationScheduleRepository(db *pgxpool.Pool) *VaccinationScheduleRepository {
	return &VaccinationScheduleRepository{DB: db}
}

const scheduleSelect = `
	SELECT s.id, s.pen_id, COALESCE(p.pen_name, ''), s.scheduled_date, s.status, COALESCE(s.color, ''),
	       d.id, d.vaccine_id, COALESCE(v.vaccine_name, 'Unknown'), d.stage, d.dosage
	FROM vaccination_schedules s
	LEFT JOIN pens p ON p.id = s.pen_id
	LEFT JOIN vaccination_schedule_details d ON d.schedule_id = s.id
	LEFT JOIN vaccines v ON v.id = d.vaccine_id
`

// ListBetween returns all schedules whose scheduled_date falls within
// [from, to], with details and vaccine names resolved.
func (r *VaccinationScheduleRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.VaccinationSchedule, error) {
	rows, err := r.DB.Query(ctx, scheduleSelect+`
		WHERE s.scheduled_date >= $1 AND s.scheduled_date <= $2
		ORDER BY s.scheduled_date ASC, s.id
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSchedules(rows)
}

// ListOnDay returns all schedules falling on the given farm-local day.
func (r *VaccinationScheduleRepository) ListOnDay(ctx context.Context, day time.Time) ([]models.VaccinationSchedule, error) {
	return r.ListBetween(ctx, timeutil.StartOfDay(day), timeutil.EndOfDay(day))
}

// ListCompletedForActivePens returns every completed (pen, vaccine, stage)
// triple for pens currently holding pigs, regardless of date. This is the
// booked set that must never forecast again.
func (r *VaccinationScheduleRepository) ListCompletedForActivePens(ctx context.Context) ([]models.CompletedShot, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT s.pen_id, d.vaccine_id, d.stage
		FROM vaccination_schedules s
		JOIN vaccination_schedule_details d ON d.schedule_id = s.id
		JOIN pens p ON p.id = s.pen_id
		WHERE s.status = 'completed' AND p.current_quantity > 0
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shots []models.CompletedShot
	for rows.Next() {
		var shot models.CompletedShot
		if err := rows.Scan(&shot.PenID, &shot.VaccineID, &shot.Stage); err != nil {
			return nil, err
		}
		shots = append(shots, shot)
	}
	return shots, rows.Err()
}

// FindByPenVaccineStage returns the earliest schedule on a pen carrying a
// detail for (vaccine, stage), irrespective of date. (nil, nil) when none
// exists. Used to avoid duplicate schedule rows for a shot that already
// has a stale pending record.
func (r *VaccinationScheduleRepository) FindByPenVaccineStage(ctx context.Context, penID, vaccineID string, stage int) (*models.VaccinationSchedule, error) {
	var id string
	err := r.DB.QueryRow(ctx, `
		SELECT s.id
		FROM vaccination_schedules s
		JOIN vaccination_schedule_details d ON d.schedule_id = s.id
		WHERE s.pen_id = $1 AND d.vaccine_id = $2 AND d.stage = $3
		ORDER BY s.scheduled_date ASC
		LIMIT 1
	`, penID, vaccineID, stage).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return r.Get(ctx, id)
}

// Get returns one schedule with details, or ErrNotFound.
func (r *VaccinationScheduleRepository) Get(ctx context.Context, id string) (*models.VaccinationSchedule, error) {
	rows, err := r.DB.Query(ctx, scheduleSelect+` WHERE s.id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules, err := scanSchedules(rows)
	if err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return nil, ErrNotFound
	}
	return &schedules[0], nil
}

// MarkCompleted flips the given schedules to completed and refreshes
// their scheduled_date to the actual administration moment.
func (r *VaccinationScheduleRepository) MarkCompleted(ctx context.Context, ids []string, at time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, `
		UPDATE vaccination_schedules
		SET status = 'completed', scheduled_date = $2
		WHERE id = ANY($1)
	`, ids, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Create inserts a schedule with its single detail row, in one
// transaction, and returns the new schedule id.
func (r *VaccinationScheduleRepository) Create(ctx context.Context, in *models.NewSchedule) (string, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var scheduleID string
	err = tx.QueryRow(ctx, `
		INSERT INTO vaccination_schedules (pen_id, scheduled_date, status, color)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id
	`, in.PenID, in.ScheduledDate, in.Status, in.Color).Scan(&scheduleID)
	if err != nil {
		return "", fmt.Errorf("failed to create schedule: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO vaccination_schedule_details (schedule_id, vaccine_id, stage, dosage)
		VALUES ($1, $2, $3, $4)
	`, scheduleID, in.VaccineID, in.Stage, in.Dosage)
	if err != nil {
		return "", fmt.Errorf("failed to create schedule detail: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return scheduleID, nil
}

// Update applies a partial update to a schedule and, when vaccine or
// stage change, to all its detail rows, in one transaction.
func (r *VaccinationScheduleRepository) Update(ctx context.Context, id string, upd *models.ScheduleUpdate) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM vaccination_schedules WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	var sets []string
	var args []interface{}
	argNum := 1

	if upd.ScheduledDate != nil {
		sets = append(sets, fmt.Sprintf("scheduled_date = $%d", argNum))
		args = append(args, *upd.ScheduledDate)
		argNum++
	}
	if upd.Color != nil {
		sets = append(sets, fmt.Sprintf("color = $%d", argNum))
		args = append(args, *upd.Color)
		argNum++
	}
	if len(sets) > 0 {
		args = append(args, id)
		query := fmt.Sprintf("UPDATE vaccination_schedules SET %s WHERE id = $%d",
			strings.Join(sets, ", "), argNum)
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return err
		}
	}

	if upd.VaccineID != nil || upd.Stage != nil {
		_, err := tx.Exec(ctx, `
			UPDATE vaccination_schedule_details
			SET vaccine_id = COALESCE($2, vaccine_id),
			    stage = COALESCE($3, stage)
			WHERE schedule_id = $1
		`, id, upd.VaccineID, upd.Stage)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Delete removes a schedule and its details, details first, in one
// transaction. ErrNotFound if the schedule does not exist.
func (r *VaccinationScheduleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM vaccination_schedule_details WHERE schedule_id = $1`, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM vaccination_schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// RevertCompleted undoes a completed schedule in a single transaction:
// deletes its details and the schedule row, then retracts the batch's
// ledger entry for each involved vaccine only when no other completed
// schedule remains for a pen sharing that batch.
func (r *VaccinationScheduleRepository) RevertCompleted(ctx context.Context, id string) (*models.RevertResult, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	result, err := revertCompletedInTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func revertCompletedInTx(ctx context.Context, q querier, id string) (*models.RevertResult, error) {
	var penID, status string
	err := q.QueryRow(ctx,
		`SELECT pen_id, status FROM vaccination_schedules WHERE id = $1`, id).Scan(&penID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// Only completed schedules revert. Reverting a pending one would
	// delete it and could retract an import-origin ledger entry.
	if status != "completed" {
		return nil, ErrNotFound
	}

	vaccineIDs, err := distinctDetailVaccines(ctx, q, id)
	if err != nil {
		return nil, err
	}

	// The schedule's pen may have been emptied or restocked since; the
	// ledger decision keys on the pen's current batch.
	var batchID *string
	err = q.QueryRow(ctx, `
		SELECT pig_batch_id FROM pigs
		WHERE pen_id = $1 AND pig_batch_id IS NOT NULL
		LIMIT 1
	`, penID).Scan(&batchID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if _, err := q.Exec(ctx,
		`DELETE FROM vaccination_schedule_details WHERE schedule_id = $1`, id); err != nil {
		return nil, err
	}
	if _, err := q.Exec(ctx,
		`DELETE FROM vaccination_schedules WHERE id = $1`, id); err != nil {
		return nil, err
	}

	result := &models.RevertResult{ScheduleID: id, VaccineIDs: vaccineIDs}
	if batchID != nil {
		result.BatchID = *batchID
		for _, vaccineID := range vaccineIDs {
			retracted, err := retractLedgerIfUnused(ctx, q, *batchID, vaccineID, id)
			if err != nil {
				return nil, err
			}
			if retracted {
				result.LedgerRetracted = true
			}
		}
	}
	return result, nil
}

func distinctDetailVaccines(ctx context.Context, q querier, scheduleID string) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT DISTINCT vaccine_id FROM vaccination_schedule_details
		WHERE schedule_id = $1
	`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// scanSchedules folds joined schedule/detail rows into schedules,
// preserving row order.
func scanSchedules(rows pgx.Rows) ([]models.VaccinationSchedule, error) {
	var schedules []models.VaccinationSchedule
	index := make(map[string]int)

	for rows.Next() {
		var s models.VaccinationSchedule
		var detailID, vaccineID, vaccineName *string
		var stage *int
		var dosage *float64

		err := rows.Scan(&s.ID, &s.PenID, &s.PenName, &s.ScheduledDate, &s.Status, &s.Color,
			&detailID, &vaccineID, &vaccineName, &stage, &dosage)
		if err != nil {
			return nil, err
		}

		pos, seen := index[s.ID]
		if !seen {
			schedules = append(schedules, s)
			pos = len(schedules) - 1
			index[s.ID] = pos
		}

		if detailID != nil {
			detail := models.VaccinationScheduleDetail{
				ID:         *detailID,
				ScheduleID: s.ID,
			}
			if vaccineID != nil {
				detail.VaccineID = *vaccineID
			}
			if vaccineName != nil {
				detail.VaccineName = *vaccineName
			}
			if stage != nil {
				detail.Stage = *stage
			}
			if dosage != nil {
				detail.Dosage = *dosage
			}
			schedules[pos].Details = append(schedules[pos].Details, detail)
		}
	}
	return schedules, rows.Err()
}
