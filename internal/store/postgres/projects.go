package postgres

import (
	"context"

	"github.com/google/uuid"
)

const projectColumns = `id, name, slug, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) CreateProject(ctx context.Context, name, slug string) (Project, error) {
	return scanProject(q.db.QueryRow(ctx,
		`INSERT INTO projects (id, name, slug)
		 VALUES (gen_random_uuid(), $1, $2)
		 RETURNING `+projectColumns,
		name, slug))
}

func (q *Queries) GetProject(ctx context.Context, id uuid.UUID) (Project, error) {
	return scanProject(q.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
}

func (q *Queries) GetProjectBySlug(ctx context.Context, slug string) (Project, error) {
	return scanProject(q.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE slug = $1`, slug))
}

func (q *Queries) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (q *Queries) UpdateProject(ctx context.Context, id uuid.UUID, name string) (Project, error) {
	return scanProject(q.db.QueryRow(ctx,
		`UPDATE projects SET name = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+projectColumns,
		id, name))
}

func (q *Queries) DeleteProject(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}
