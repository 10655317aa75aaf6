package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pigfarm-backend/internal/models"
)

type PenRepository struct {
	DB *pgxpool.Pool
}

func NewPenRepository(db *pgxpool.Pool) *PenRepository {
	return &PenRepository{DB: db}
}

// ListActiveWithBatch returns all pens currently holding pigs, each with
// its occupying batch (first occupant decides) and that batch's
// administered-vaccine ledger loaded.
func (r *PenRepository) ListActiveWithBatch(ctx context.Context) ([]models.ActivePen, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.pen_name, p.current_quantity, b.id, b.arrival_date
		FROM pens p
		LEFT JOIN LATERAL (
			SELECT pb.id, pb.arrival_date
			FROM pigs pg
			JOIN pig_batches pb ON pb.id = pg.pig_batch_id
			WHERE pg.pen_id = p.id
			LIMIT 1
		) b ON TRUE
		WHERE p.current_quantity > 0
		ORDER BY p.pen_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pens []models.ActivePen
	var batchIDs []string
	seenBatch := make(map[string]bool)

	for rows.Next() {
		var pen models.ActivePen
		var batchID *string
		var arrival *time.Time
		if err := rows.Scan(&pen.ID, &pen.Name, &pen.Quantity, &batchID, &arrival); err != nil {
			return nil, err
		}
		if batchID != nil {
			batch := &models.PenBatch{ID: *batchID, Administered: make(map[string]bool)}
			if arrival != nil {
				batch.ArrivalDate = *arrival
				batch.HasArrival = true
			}
			pen.Batch = batch
			if !seenBatch[*batchID] {
				seenBatch[*batchID] = true
				batchIDs = append(batchIDs, *batchID)
			}
		}
		pens = append(pens, pen)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(batchIDs) == 0 {
		return pens, nil
	}

	administered, err := r.administeredByBatch(ctx, batchIDs)
	if err != nil {
		return nil, err
	}
	for i := range pens {
		if pens[i].Batch != nil {
			if ledger, ok := administered[pens[i].Batch.ID]; ok {
				pens[i].Batch.Administered = ledger
			}
		}
	}

	return pens, nil
}

// BatchFor resolves the batch currently occupying a pen. Returns
// (nil, nil) for an empty pen.
func (r *PenRepository) BatchFor(ctx context.Context, penID string) (*models.PenBatch, error) {
	var batch models.PenBatch
	var arrival *time.Time
	err := r.DB.QueryRow(ctx, `
		SELECT pb.id, pb.arrival_date
		FROM pigs pg
		JOIN pig_batches pb ON pb.id = pg.pig_batch_id
		WHERE pg.pen_id = $1
		LIMIT 1
	`, penID).Scan(&batch.ID, &arrival)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if arrival != nil {
		batch.ArrivalDate = *arrival
		batch.HasArrival = true
	}
	batch.Administered = make(map[string]bool)
	return &batch, nil
}

func (r *PenRepository) administeredByBatch(ctx context.Context, batchIDs []string) (map[string]map[string]bool, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT pig_batch_id, vaccine_id
		FROM pig_batch_vaccines
		WHERE pig_batch_id = ANY($1)
	`, batchIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]map[string]bool)
	for rows.Next() {
		var batchID, vaccineID string
		if err := rows.Scan(&batchID, &vaccineID); err != nil {
			return nil, err
		}
		if result[batchID] == nil {
			result[batchID] = make(map[string]bool)
		}
		result[batchID][vaccineID] = true
	}
	return result, rows.Err()
}
