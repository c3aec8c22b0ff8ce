package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertSourceRows bulk-loads parsed records via COPY, preserving their
// file order as row_index.
func (q *Queries) InsertSourceRows(ctx context.Context, sourceID uuid.UUID, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}

	_, err := q.db.CopyFrom(ctx,
		pgx.Identifier{"source_rows"},
		[]string{"source_id", "row_index", "data"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			data, err := json.Marshal(rows[i])
			if err != nil {
				return nil, fmt.Errorf("marshal row %d: %w", i, err)
			}
			return []any{sourceID, i, data}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy source rows: %w", err)
	}
	return nil
}

func (q *Queries) ListSourceRows(ctx context.Context, sourceID uuid.UUID) ([]SourceRow, error) {
	return q.querySourceRows(ctx,
		`SELECT source_id, row_index, data FROM source_rows
		 WHERE source_id = $1
		 ORDER BY row_index`,
		sourceID)
}

// ListSourceRowsPaged returns rows ordered by row_index, paginated by
// (limit, offset). The worker iterates sources in pages rather than
// loading every row at once.
func (q *Queries) ListSourceRowsPaged(ctx context.Context, sourceID uuid.UUID, limit, offset int) ([]SourceRow, error) {
	return q.querySourceRows(ctx,
		`SELECT source_id, row_index, data FROM source_rows
		 WHERE source_id = $1
		 ORDER BY row_index
		 LIMIT $2 OFFSET $3`,
		sourceID, limit, offset)
}

func (q *Queries) CountSourceRows(ctx context.Context, sourceID uuid.UUID) (int, error) {
	var count int
	err := q.db.QueryRow(ctx,
		`SELECT count(*) FROM source_rows WHERE source_id = $1`, sourceID).Scan(&count)
	return count, err
}

func (q *Queries) DeleteSourceRows(ctx context.Context, sourceID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM source_rows WHERE source_id = $1`, sourceID)
	return err
}

func (q *Queries) querySourceRows(ctx context.Context, sql string, args ...any) ([]SourceRow, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SourceRow
	for rows.Next() {
		var r SourceRow
		if err := rows.Scan(&r.SourceID, &r.RowIndex, &r.Data); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
