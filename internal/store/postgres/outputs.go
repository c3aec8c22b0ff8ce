package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/refinery-hq/refinery/pkg/models"
)

const outputColumns = `id, run_id, filename, format, file_size, record_count, object_name, created_at`

func scanOutput(row interface{ Scan(...any) error }) (Output, error) {
	var o Output
	err := row.Scan(&o.ID, &o.RunID, &o.Filename, &o.Format, &o.FileSize,
		&o.RecordCount, &o.ObjectName, &o.CreatedAt)
	return o, err
}

func (q *Queries) CreateOutput(ctx context.Context, runID uuid.UUID, filename string, format models.OutputFormat, fileSize int64, recordCount int, objectName string) (Output, error) {
	return scanOutput(q.db.QueryRow(ctx,
		`INSERT INTO outputs (id, run_id, filename, format, file_size, record_count, object_name)
		 VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		 RETURNING `+outputColumns,
		runID, filename, format, fileSize, recordCount, objectName))
}

func (q *Queries) GetOutput(ctx context.Context, id uuid.UUID) (Output, error) {
	return scanOutput(q.db.QueryRow(ctx,
		`SELECT `+outputColumns+` FROM outputs WHERE id = $1`, id))
}

func (q *Queries) GetOutputByRun(ctx context.Context, runID uuid.UUID) (Output, error) {
	return scanOutput(q.db.QueryRow(ctx,
		`SELECT `+outputColumns+` FROM outputs WHERE run_id = $1`, runID))
}

// ListOutputsBySource returns every artifact produced for a source, newest
// first, across all of its runs.
func (q *Queries) ListOutputsBySource(ctx context.Context, sourceID uuid.UUID) ([]Output, error) {
	rows, err := q.db.Query(ctx,
		`SELECT o.id, o.run_id, o.filename, o.format, o.file_size, o.record_count, o.object_name, o.created_at
		 FROM outputs o
		 JOIN processing_runs r ON r.id = o.run_id
		 WHERE r.source_id = $1
		 ORDER BY o.created_at DESC`,
		sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Output
	for rows.Next() {
		o, err := scanOutput(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

func (q *Queries) DeleteOutput(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM outputs WHERE id = $1`, id)
	return err
}
