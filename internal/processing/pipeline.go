package processing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/refinery-hq/refinery/internal/filter"
	"github.com/refinery-hq/refinery/internal/mapping"
	"github.com/refinery-hq/refinery/internal/output"
	"github.com/refinery-hq/refinery/internal/pii"
	"github.com/refinery-hq/refinery/internal/store/postgres"
	"github.com/refinery-hq/refinery/pkg/models"
)

// RunStore is the slice of the query layer the pipeline needs.
type RunStore interface {
	ClaimRun(ctx context.Context, id uuid.UUID) (postgres.ProcessingRun, error)
	GetRunStatus(ctx context.Context, id uuid.UUID) (models.RunStatus, error)
	SetRunTotal(ctx context.Context, id uuid.UUID, total int) error
	UpdateRunProgress(ctx context.Context, id uuid.UUID, processed int) error
	CompleteRun(ctx context.Context, id uuid.UUID, processed int) error
	FailRun(ctx context.Context, id uuid.UUID, errorMessage string) error
	ListSourceRowsPaged(ctx context.Context, sourceID uuid.UUID, limit, offset int) ([]postgres.SourceRow, error)
	CreateOutput(ctx context.Context, runID uuid.UUID, filename string, format models.OutputFormat, fileSize int64, recordCount int, objectName string) (postgres.Output, error)
}

// ObjectStore uploads the finished artifact.
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
}

// Pipeline executes one processing run end to end: load rows, filter, map,
// de-identify, format, persist artifact.
type Pipeline struct {
	store     RunStore
	objects   ObjectStore
	logger    *slog.Logger
	batchSize int
}

func NewPipeline(store RunStore, objects ObjectStore, logger *slog.Logger, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Pipeline{store: store, objects: objects, logger: logger, batchSize: batchSize}
}

// errCancelled aborts the run without marking it failed: the cancelled
// status was already written by the API.
var errCancelled = errors.New("run cancelled")

// Execute claims the run and drives it to a terminal state. A run that is
// no longer pending (already claimed, or cancelled before pickup) is
// skipped without error.
func (p *Pipeline) Execute(ctx context.Context, runID uuid.UUID) error {
	run, err := p.store.ClaimRun(ctx, runID)
	if errors.Is(err, pgx.ErrNoRows) {
		p.logger.Info("run not pending, skipping", slog.String("run_id", runID.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("claim run: %w", err)
	}

	p.logger.Info("run started",
		slog.String("run_id", run.ID.String()),
		slog.String("source_id", run.SourceID.String()),
		slog.String("format", string(run.OutputFormat)))

	if err := p.process(ctx, run); err != nil {
		if errors.Is(err, errCancelled) {
			p.logger.Info("run cancelled", slog.String("run_id", run.ID.String()))
			return nil
		}
		p.logger.Error("run failed",
			slog.String("run_id", run.ID.String()),
			slog.String("error", err.Error()))
		if failErr := p.store.FailRun(ctx, run.ID, err.Error()); failErr != nil {
			return fmt.Errorf("mark run failed: %w", failErr)
		}
		return nil
	}

	return nil
}

func (p *Pipeline) process(ctx context.Context, run postgres.ProcessingRun) error {
	rows, err := p.loadRows(ctx, run)
	if err != nil {
		return err
	}

	if err := p.store.SetRunTotal(ctx, run.ID, len(rows)); err != nil {
		return fmt.Errorf("set total count: %w", err)
	}

	records := make([]models.Record, len(rows))
	for i, row := range rows {
		records[i] = models.Record{RowIndex: row.RowIndex, Data: row.Data}
	}
	filtered := filter.Apply(records, run.ConfigSnapshot.Filters)

	outputRecords := make([]map[string]any, 0, len(filtered))
	for i, record := range filtered {
		mapped := mapping.ApplyMappings(record, run.ConfigSnapshot.Mappings)

		// De-identification scans every mapped field, not the configured
		// scan columns: those refer to source columns, which no longer
		// exist after mapping.
		if len(run.ConfigSnapshot.Rules) > 0 {
			mapped = pii.DeidentifyRecord(mapped, mappedFields(mapped), run.ConfigSnapshot.Rules).Deidentified
		}
		outputRecords = append(outputRecords, mapped)

		if i%100 == 0 {
			if err := p.store.UpdateRunProgress(ctx, run.ID, i+1); err != nil {
				return fmt.Errorf("update progress: %w", err)
			}
		}
		if (i+1)%p.batchSize == 0 {
			if err := p.checkCancelled(ctx, run.ID); err != nil {
				return err
			}
		}
	}

	if err := p.checkCancelled(ctx, run.ID); err != nil {
		return err
	}

	content, recordCount, err := output.Format(outputRecords, run.OutputFormat)
	if err != nil {
		return fmt.Errorf("format output: %w", err)
	}

	filename := artifactFilename(run.ID, run.OutputFormat, time.Now().UTC())
	objectName := fmt.Sprintf("outputs/%s/%s", run.ID, filename)

	if err := p.objects.UploadFile(ctx, objectName, bytes.NewReader(content),
		int64(len(content)), run.OutputFormat.ContentType()); err != nil {
		return fmt.Errorf("upload artifact: %w", err)
	}

	if _, err := p.store.CreateOutput(ctx, run.ID, filename, run.OutputFormat,
		int64(len(content)), recordCount, objectName); err != nil {
		return fmt.Errorf("create output record: %w", err)
	}

	if err := p.store.CompleteRun(ctx, run.ID, len(filtered)); err != nil {
		return fmt.Errorf("mark run completed: %w", err)
	}

	p.logger.Info("run completed",
		slog.String("run_id", run.ID.String()),
		slog.Int("record_count", recordCount),
		slog.Int("file_size", len(content)))
	return nil
}

func (p *Pipeline) loadRows(ctx context.Context, run postgres.ProcessingRun) ([]postgres.SourceRow, error) {
	var rows []postgres.SourceRow
	for offset := 0; ; offset += p.batchSize {
		if err := p.checkCancelled(ctx, run.ID); err != nil {
			return nil, err
		}
		page, err := p.store.ListSourceRowsPaged(ctx, run.SourceID, p.batchSize, offset)
		if err != nil {
			return nil, fmt.Errorf("load rows at offset %d: %w", offset, err)
		}
		rows = append(rows, page...)
		if len(page) < p.batchSize {
			return rows, nil
		}
	}
}

func (p *Pipeline) checkCancelled(ctx context.Context, runID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	status, err := p.store.GetRunStatus(ctx, runID)
	if err != nil {
		return fmt.Errorf("check run status: %w", err)
	}
	if status == models.RunCancelled {
		return errCancelled
	}
	return nil
}

func mappedFields(record map[string]any) []string {
	fields := make([]string, 0, len(record))
	for field := range record {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func artifactFilename(runID uuid.UUID, format models.OutputFormat, now time.Time) string {
	return fmt.Sprintf("output-%s-%s.%s", runID, now.Format("2006-01-02T15-04-05"), format.Extension())
}
