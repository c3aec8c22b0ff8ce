package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/refinery-hq/refinery/pkg/models"
)

const runColumns = `id, source_id, status, output_format, processed_count, total_count, error_message, config_snapshot, started_at, completed_at`

func scanRun(row interface{ Scan(...any) error }) (ProcessingRun, error) {
	var r ProcessingRun
	err := row.Scan(&r.ID, &r.SourceID, &r.Status, &r.OutputFormat,
		&r.ProcessedCount, &r.TotalCount, &r.ErrorMessage, &r.ConfigSnapshot,
		&r.StartedAt, &r.CompletedAt)
	return r, err
}

// CreateRunIfIdle inserts a pending run only if the source has no other
// non-terminal run. The guard and the insert are one statement, so two
// concurrent starts cannot both succeed. Returns pgx.ErrNoRows on conflict.
func (q *Queries) CreateRunIfIdle(ctx context.Context, sourceID uuid.UUID, format models.OutputFormat, snapshot models.ConfigSnapshot) (ProcessingRun, error) {
	return scanRun(q.db.QueryRow(ctx,
		`INSERT INTO processing_runs
		   (id, source_id, status, output_format, processed_count, total_count, config_snapshot, started_at)
		 SELECT gen_random_uuid(), $1, $2, $3, 0, 0, $4, now()
		 WHERE NOT EXISTS (
		   SELECT 1 FROM processing_runs
		   WHERE source_id = $1 AND status IN ('pending', 'processing')
		 )
		 RETURNING `+runColumns,
		sourceID, models.RunPending, format, snapshot))
}

func (q *Queries) GetRun(ctx context.Context, id uuid.UUID) (ProcessingRun, error) {
	return scanRun(q.db.QueryRow(ctx,
		`SELECT `+runColumns+` FROM processing_runs WHERE id = $1`, id))
}

func (q *Queries) GetRunStatus(ctx context.Context, id uuid.UUID) (models.RunStatus, error) {
	var status models.RunStatus
	err := q.db.QueryRow(ctx,
		`SELECT status FROM processing_runs WHERE id = $1`, id).Scan(&status)
	return status, err
}

func (q *Queries) ListRunsBySource(ctx context.Context, sourceID uuid.UUID) ([]ProcessingRun, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+runColumns+` FROM processing_runs
		 WHERE source_id = $1
		 ORDER BY started_at DESC`,
		sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ProcessingRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// ClaimRun flips a pending run to processing. Returns pgx.ErrNoRows when
// the run is no longer pending (already claimed, or cancelled before the
// worker picked it up).
func (q *Queries) ClaimRun(ctx context.Context, id uuid.UUID) (ProcessingRun, error) {
	return scanRun(q.db.QueryRow(ctx,
		`UPDATE processing_runs SET status = $2
		 WHERE id = $1 AND status = $3
		 RETURNING `+runColumns,
		id, models.RunProcessing, models.RunPending))
}

func (q *Queries) SetRunTotal(ctx context.Context, id uuid.UUID, total int) error {
	_, err := q.db.Exec(ctx,
		`UPDATE processing_runs SET total_count = $2 WHERE id = $1`, id, total)
	return err
}

func (q *Queries) UpdateRunProgress(ctx context.Context, id uuid.UUID, processed int) error {
	_, err := q.db.Exec(ctx,
		`UPDATE processing_runs SET processed_count = $2 WHERE id = $1`, id, processed)
	return err
}

func (q *Queries) CompleteRun(ctx context.Context, id uuid.UUID, processed int) error {
	_, err := q.db.Exec(ctx,
		`UPDATE processing_runs
		 SET status = $2, processed_count = $3, completed_at = now()
		 WHERE id = $1`,
		id, models.RunCompleted, processed)
	return err
}

func (q *Queries) FailRun(ctx context.Context, id uuid.UUID, errorMessage string) error {
	_, err := q.db.Exec(ctx,
		`UPDATE processing_runs
		 SET status = $2, error_message = $3, completed_at = now()
		 WHERE id = $1`,
		id, models.RunFailed, errorMessage)
	return err
}

// CancelRun marks a non-terminal run cancelled. Returns pgx.ErrNoRows when
// the run is already terminal.
func (q *Queries) CancelRun(ctx context.Context, id uuid.UUID) (ProcessingRun, error) {
	return scanRun(q.db.QueryRow(ctx,
		`UPDATE processing_runs
		 SET status = $2, completed_at = now()
		 WHERE id = $1 AND status IN ('pending', 'processing')
		 RETURNING `+runColumns,
		id, models.RunCancelled))
}
