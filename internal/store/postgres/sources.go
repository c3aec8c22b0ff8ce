package postgres

import (
	"context"

	"github.com/google/uuid"
)

const sourceColumns = `id, project_id, name, source_type, status, columns, row_count, object_name, created_at, updated_at`

func scanSource(row interface{ Scan(...any) error }) (Source, error) {
	var s Source
	err := row.Scan(&s.ID, &s.ProjectID, &s.Name, &s.SourceType, &s.Status,
		&s.Columns, &s.RowCount, &s.ObjectName, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (q *Queries) CreateSource(ctx context.Context, projectID uuid.UUID, name, sourceType string) (Source, error) {
	return scanSource(q.db.QueryRow(ctx,
		`INSERT INTO sources (id, project_id, name, source_type, status, columns, row_count)
		 VALUES (gen_random_uuid(), $1, $2, $3, $4, '{}', 0)
		 RETURNING `+sourceColumns,
		projectID, name, sourceType, SourceUploading))
}

func (q *Queries) GetSource(ctx context.Context, id uuid.UUID) (Source, error) {
	return scanSource(q.db.QueryRow(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE id = $1`, id))
}

func (q *Queries) ListSourcesByProject(ctx context.Context, projectID uuid.UUID) ([]Source, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+sourceColumns+` FROM sources
		 WHERE project_id = $1
		 ORDER BY created_at DESC`,
		projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (q *Queries) UpdateSourceStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := q.db.Exec(ctx,
		`UPDATE sources SET status = $2, updated_at = now() WHERE id = $1`,
		id, status)
	return err
}

// SetSourceParsed records the parse outcome and flips the source to ready.
func (q *Queries) SetSourceParsed(ctx context.Context, id uuid.UUID, columns []string, rowCount int, objectName string) error {
	_, err := q.db.Exec(ctx,
		`UPDATE sources
		 SET status = $2, columns = $3, row_count = $4, object_name = $5, updated_at = now()
		 WHERE id = $1`,
		id, SourceReady, columns, rowCount, objectName)
	return err
}

func (q *Queries) DeleteSource(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM sources WHERE id = $1`, id)
	return err
}

// SourceHasActiveRun reports whether a non-terminal processing run exists
// for the source. Configuration writes are refused while one does.
func (q *Queries) SourceHasActiveRun(ctx context.Context, sourceID uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM processing_runs
		   WHERE source_id = $1 AND status IN ('pending', 'processing')
		 )`,
		sourceID).Scan(&exists)
	return exists, err
}
