package postgres

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/refinery-hq/refinery/pkg/models"
)

type Project struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Source statuses.
const (
	SourceUploading = "uploading"
	SourceParsing   = "parsing"
	SourceReady     = "ready"
	SourceError     = "error"
)

type Source struct {
	ID         uuid.UUID
	ProjectID  uuid.UUID
	Name       string
	SourceType string
	Status     string
	Columns    []string
	RowCount   int
	ObjectName pgtype.Text
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SourceRow is one parsed record of a source, ordered by RowIndex.
type SourceRow struct {
	SourceID uuid.UUID
	RowIndex int
	Data     map[string]any
}

type FieldMapping struct {
	SourceID     uuid.UUID
	Mappings     []models.MappingEntry
	CustomFields []string
	UpdatedAt    time.Time
}

// DeidentificationConfig holds the rule set and scan column selection for a
// source. ScanResults is the raw snapshot of the last PII scan, passed
// through to clients without reinterpretation.
type DeidentificationConfig struct {
	SourceID      uuid.UUID
	Rules         []models.Rule
	ColumnsToScan []string
	ScanResults   json.RawMessage
	UpdatedAt     time.Time
}

type FilterConfig struct {
	SourceID  uuid.UUID
	Filters   models.FilterConfig
	UpdatedAt time.Time
}

type ProcessingRun struct {
	ID             uuid.UUID
	SourceID       uuid.UUID
	Status         models.RunStatus
	OutputFormat   models.OutputFormat
	ProcessedCount int
	TotalCount     int
	ErrorMessage   pgtype.Text
	ConfigSnapshot models.ConfigSnapshot
	StartedAt      time.Time
	CompletedAt    pgtype.Timestamptz
}

type Output struct {
	ID          uuid.UUID
	RunID       uuid.UUID
	Filename    string
	Format      models.OutputFormat
	FileSize    int64
	RecordCount int
	ObjectName  string
	CreatedAt   time.Time
}
