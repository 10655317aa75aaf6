package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BatchVaccineRepository owns the per-batch administered-vaccine ledger.
// All ledger mutation goes through this file: MarkAdministered on
// completion and batch import, retractLedgerIfUnused inside the revert
// transaction.
type BatchVaccineRepository struct {
	DB *pgxpool.Pool
}

func NewBatchVaccineRepository(db *pgxpool.Pool) *BatchVaccineRepository {
	return &BatchVaccineRepository{DB: db}
}

// MarkAdministered records that a batch has received a vaccine. Upsert:
// a second call for the same (batch, vaccine) is a no-op.
func (r *BatchVaccineRepository) MarkAdministered(ctx context.Context, batchID, vaccineID string) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO pig_batch_vaccines (pig_batch_id, vaccine_id)
		VALUES ($1, $2)
		ON CONFLICT (pig_batch_id, vaccine_id) DO NOTHING
	`, batchID, vaccineID)
	if err != nil {
		return fmt.Errorf("failed to mark vaccine administered: %w", err)
	}
	return nil
}

// retractLedgerIfUnused deletes the (batch, vaccine) ledger entry only
// when no completed schedule other than excludeScheduleID remains for any
// pen currently holding the batch. The ledger entry is shared across all
// pens of a batch, so it must survive as long as any of them still has a
// completed record.
func retractLedgerIfUnused(ctx context.Context, q querier, batchID, vaccineID, excludeScheduleID string) (bool, error) {
	var remaining int
	err := q.QueryRow(ctx, `
		SELECT COUNT(DISTINCT s.id)
		FROM vaccination_schedules s
		JOIN vaccination_schedule_details d ON d.schedule_id = s.id
		WHERE s.status = 'completed'
		  AND s.id <> $3
		  AND d.vaccine_id = $2
		  AND s.pen_id IN (
			SELECT DISTINCT pen_id FROM pigs
			WHERE pig_batch_id = $1 AND pen_id IS NOT NULL
		  )
	`, batchID, vaccineID, excludeScheduleID).Scan(&remaining)
	if err != nil {
		return false, err
	}
	if remaining > 0 {
		return false, nil
	}

	tag, err := q.Exec(ctx, `
		DELETE FROM pig_batch_vaccines
		WHERE pig_batch_id = $1 AND vaccine_id = $2
	`, batchID, vaccineID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
