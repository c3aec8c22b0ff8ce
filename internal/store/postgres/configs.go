package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/refinery-hq/refinery/pkg/models"
)

// Configuration rows are keyed by source_id, one row per source, written
// with upserts so the handlers never care whether config exists yet.

func (q *Queries) UpsertFieldMapping(ctx context.Context, sourceID uuid.UUID, mappings []models.MappingEntry, customFields []string) (FieldMapping, error) {
	var m FieldMapping
	err := q.db.QueryRow(ctx,
		`INSERT INTO field_mappings (source_id, mappings, custom_fields, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (source_id)
		 DO UPDATE SET mappings = $2, custom_fields = $3, updated_at = now()
		 RETURNING source_id, mappings, custom_fields, updated_at`,
		sourceID, mappings, customFields).
		Scan(&m.SourceID, &m.Mappings, &m.CustomFields, &m.UpdatedAt)
	return m, err
}

func (q *Queries) GetFieldMapping(ctx context.Context, sourceID uuid.UUID) (FieldMapping, error) {
	var m FieldMapping
	err := q.db.QueryRow(ctx,
		`SELECT source_id, mappings, custom_fields, updated_at
		 FROM field_mappings WHERE source_id = $1`,
		sourceID).
		Scan(&m.SourceID, &m.Mappings, &m.CustomFields, &m.UpdatedAt)
	return m, err
}

func (q *Queries) UpsertDeidentificationConfig(ctx context.Context, sourceID uuid.UUID, rules []models.Rule, columnsToScan []string) (DeidentificationConfig, error) {
	var c DeidentificationConfig
	err := q.db.QueryRow(ctx,
		`INSERT INTO deidentification_configs (source_id, rules, columns_to_scan, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (source_id)
		 DO UPDATE SET rules = $2, columns_to_scan = $3, updated_at = now()
		 RETURNING source_id, rules, columns_to_scan, scan_results, updated_at`,
		sourceID, rules, columnsToScan).
		Scan(&c.SourceID, &c.Rules, &c.ColumnsToScan, &c.ScanResults, &c.UpdatedAt)
	return c, err
}

func (q *Queries) GetDeidentificationConfig(ctx context.Context, sourceID uuid.UUID) (DeidentificationConfig, error) {
	var c DeidentificationConfig
	err := q.db.QueryRow(ctx,
		`SELECT source_id, rules, columns_to_scan, scan_results, updated_at
		 FROM deidentification_configs WHERE source_id = $1`,
		sourceID).
		Scan(&c.SourceID, &c.Rules, &c.ColumnsToScan, &c.ScanResults, &c.UpdatedAt)
	return c, err
}

// SetScanResults stores the latest PII scan snapshot. The config row must
// already exist; a scan without a rule configuration has nothing to attach
// to.
func (q *Queries) SetScanResults(ctx context.Context, sourceID uuid.UUID, results json.RawMessage) error {
	_, err := q.db.Exec(ctx,
		`UPDATE deidentification_configs
		 SET scan_results = $2, updated_at = now()
		 WHERE source_id = $1`,
		sourceID, results)
	return err
}

func (q *Queries) UpsertFilterConfig(ctx context.Context, sourceID uuid.UUID, filters models.FilterConfig) (FilterConfig, error) {
	var f FilterConfig
	err := q.db.QueryRow(ctx,
		`INSERT INTO filter_configs (source_id, filters, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (source_id)
		 DO UPDATE SET filters = $2, updated_at = now()
		 RETURNING source_id, filters, updated_at`,
		sourceID, filters).
		Scan(&f.SourceID, &f.Filters, &f.UpdatedAt)
	return f, err
}

func (q *Queries) GetFilterConfig(ctx context.Context, sourceID uuid.UUID) (FilterConfig, error) {
	var f FilterConfig
	err := q.db.QueryRow(ctx,
		`SELECT source_id, filters, updated_at
		 FROM filter_configs WHERE source_id = $1`,
		sourceID).
		Scan(&f.SourceID, &f.Filters, &f.UpdatedAt)
	return f, err
}
