package repositories

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakeRows struct {
	values [][]any
	idx    int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.values)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.values[r.idx-1]
	for i := range dest {
		*(dest[i].(*string)) = row[i].(string)
	}
	return nil
}

// revertQuerier scripts the statements revertCompletedInTx issues against
// a transaction, keyed on SQL fragments, and records the deletes.
type revertQuerier struct {
	scheduleExists     bool
	schedulePenID      string
	scheduleStatus     string
	detailVaccines     []string
	batchID            string // empty means the pen holds no batch
	remainingCompleted int

	deletedDetails  bool
	deletedSchedule bool
	deletedLedger   bool
}

func (q *revertQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "SELECT pen_id, status"):
		return fakeRow{scan: func(dest ...any) error {
			if !q.scheduleExists {
				return pgx.ErrNoRows
			}
			*(dest[0].(*string)) = q.schedulePenID
			*(dest[1].(*string)) = q.scheduleStatus
			return nil
		}}
	case strings.Contains(sql, "SELECT pig_batch_id FROM pigs"):
		return fakeRow{scan: func(dest ...any) error {
			if q.batchID == "" {
				return pgx.ErrNoRows
			}
			batchID := q.batchID
			*(dest[0].(**string)) = &batchID
			return nil
		}}
	case strings.Contains(sql, "SELECT COUNT(DISTINCT s.id)"):
		return fakeRow{scan: func(dest ...any) error {
			*(dest[0].(*int)) = q.remainingCompleted
			return nil
		}}
	}
	return fakeRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
}

func (q *revertQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	rows := &fakeRows{}
	if strings.Contains(sql, "SELECT DISTINCT vaccine_id") {
		for _, v := range q.detailVaccines {
			rows.values = append(rows.values, []any{v})
		}
	}
	return rows, nil
}

func (q *revertQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "DELETE FROM vaccination_schedule_details"):
		q.deletedDetails = true
	case strings.Contains(sql, "DELETE FROM vaccination_schedules"):
		q.deletedSchedule = true
	case strings.Contains(sql, "DELETE FROM pig_batch_vaccines"):
		q.deletedLedger = true
	}
	return pgconn.NewCommandTag("DELETE 1"), nil
}

func completedRevertQuerier() *revertQuerier {
	return &revertQuerier{
		scheduleExists: true,
		schedulePenID:  "pen-1",
		scheduleStatus: "completed",
		detailVaccines: []string{"vac-fmd"},
		batchID:        "batch-1",
	}
}

func TestRevertCompleted_MissingScheduleIsNotFound(t *testing.T) {
	q := completedRevertQuerier()
	q.scheduleExists = false

	_, err := revertCompletedInTx(context.Background(), q, "sched-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevertCompleted_PendingScheduleIsRejected(t *testing.T) {
	q := completedRevertQuerier()
	q.scheduleStatus = "pending"

	_, err := revertCompletedInTx(context.Background(), q, "sched-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, q.deletedDetails)
	assert.False(t, q.deletedSchedule)
	assert.False(t, q.deletedLedger)
}

func TestRevertCompleted_KeepsLedgerWhileSiblingCompletedRemains(t *testing.T) {
	q := completedRevertQuerier()
	q.remainingCompleted = 1

	result, err := revertCompletedInTx(context.Background(), q, "sched-1")
	require.NoError(t, err)

	assert.True(t, q.deletedDetails)
	assert.True(t, q.deletedSchedule)
	assert.False(t, q.deletedLedger)
	assert.False(t, result.LedgerRetracted)
	assert.Equal(t, "batch-1", result.BatchID)
}

func TestRevertCompleted_RetractsLedgerWhenLastCompletedRemoved(t *testing.T) {
	q := completedRevertQuerier()
	q.remainingCompleted = 0

	result, err := revertCompletedInTx(context.Background(), q, "sched-1")
	require.NoError(t, err)

	assert.True(t, q.deletedLedger)
	assert.True(t, result.LedgerRetracted)
	assert.Equal(t, []string{"vac-fmd"}, result.VaccineIDs)
}

func TestRevertCompleted_PenWithoutBatchSkipsLedger(t *testing.T) {
	q := completedRevertQuerier()
	q.batchID = ""

	result, err := revertCompletedInTx(context.Background(), q, "sched-1")
	require.NoError(t, err)

	assert.True(t, q.deletedSchedule)
	assert.False(t, q.deletedLedger)
	assert.False(t, result.LedgerRetracted)
	assert.Empty(t, result.BatchID)
}
