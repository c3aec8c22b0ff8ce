package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/refinery-hq/refinery/internal/filter"
	"github.com/refinery-hq/refinery/internal/mapping"
	"github.com/refinery-hq/refinery/internal/output"
	"github.com/refinery-hq/refinery/internal/pii"
	"github.com/refinery-hq/refinery/internal/processing"
	"github.com/refinery-hq/refinery/internal/store"
	"github.com/refinery-hq/refinery/internal/store/postgres"
	"github.com/refinery-hq/refinery/pkg/apierr"
	"github.com/refinery-hq/refinery/pkg/models"
)

type RunHandler struct {
	logger   *slog.Logger
	store    *store.Store
	producer *processing.Producer
}

func NewRunHandler(logger *slog.Logger, s *store.Store, producer *processing.Producer) *RunHandler {
	return &RunHandler{logger: logger, store: s, producer: producer}
}

func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	if _, ok := getSourceOr404(w, r, h.logger, h.store, id); !ok {
		return
	}

	runs, err := h.store.ListRunsBySource(r.Context(), id)
	if err != nil {
		writeAPIError(w, h.logger, apierr.RunListFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"total": len(runs),
	})
}

// Start freezes the source's current configuration into a snapshot, creates
// the run, and hands it to the worker queue. At most one run per source may
// be pending or processing.
func (h *RunHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	source, ok := getSourceOr404(w, r, h.logger, h.store, id)
	if !ok {
		return
	}
	if source.Status != postgres.SourceReady {
		writeAPIError(w, h.logger, apierr.SourceNotReady())
		return
	}

	var req struct {
		OutputFormat models.OutputFormat `json:"output_format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}
	if err := validateOutputFormat(req.OutputFormat); err != nil {
		writeAPIError(w, h.logger, err)
		return
	}

	snapshot, err := h.snapshotConfig(r, id)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	run, err := h.store.CreateRunIfIdle(r.Context(), id, req.OutputFormat, snapshot)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeAPIError(w, h.logger, apierr.RunConflict())
		} else {
			writeAPIError(w, h.logger, apierr.RunStartFailed(err))
		}
		return
	}

	if _, err := h.producer.Enqueue(r.Context(), processing.RunMessage{RunID: run.ID, SourceID: id}); err != nil {
		// The run row exists but no worker will pick it up. Fail it so the
		// client is not left polling a run that never moves.
		if ferr := h.store.FailRun(r.Context(), run.ID, "failed to enqueue run"); ferr != nil {
			h.logger.Error("fail unenqueued run", slog.String("error", ferr.Error()),
				slog.String("run_id", run.ID.String()))
		}
		writeAPIError(w, h.logger, apierr.RunStartFailed(err))
		return
	}

	writeJSON(w, http.StatusCreated, run)
}

// snapshotConfig collects the three per-source configurations, treating a
// missing one as empty.
func (h *RunHandler) snapshotConfig(r *http.Request, sourceID uuid.UUID) (models.ConfigSnapshot, error) {
	var snapshot models.ConfigSnapshot

	mappingCfg, err := h.store.GetFieldMapping(r.Context(), sourceID)
	if err != nil && !apierr.IsNotFound(err) {
		return snapshot, err
	}
	snapshot.Mappings = mappingCfg.Mappings

	deidentCfg, err := h.store.GetDeidentificationConfig(r.Context(), sourceID)
	if err != nil && !apierr.IsNotFound(err) {
		return snapshot, err
	}
	snapshot.Rules = deidentCfg.Rules
	snapshot.ColumnsToScan = deidentCfg.ColumnsToScan

	filterCfg, err := h.store.GetFilterConfig(r.Context(), sourceID)
	if err != nil && !apierr.IsNotFound(err) {
		return snapshot, err
	}
	snapshot.Filters = filterCfg.Filters

	return snapshot, nil
}

func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "runID"), "run")
	if !ok {
		return
	}

	run, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, h.logger, apierr.RunNotFound())
		} else {
			writeAPIError(w, h.logger, apierr.InternalError(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// Cancel requests cooperative cancellation. The worker notices the status
// flip at its next batch boundary and abandons the run.
func (h *RunHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "runID"), "run")
	if !ok {
		return
	}

	run, err := h.store.CancelRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeAPIError(w, h.logger, apierr.RunNotActive())
		} else {
			writeAPIError(w, h.logger, apierr.InternalError(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// OutputPreview runs the full pipeline over a handful of rows and shows what
// the artifact would contain, without creating a run.
func (h *RunHandler) OutputPreview(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	if _, ok := getSourceOr404(w, r, h.logger, h.store, id); !ok {
		return
	}

	var req struct {
		OutputFormat models.OutputFormat `json:"output_format"`
		Limit        int                 `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}
	if err := validateOutputFormat(req.OutputFormat); err != nil {
		writeAPIError(w, h.logger, err)
		return
	}
	if req.Limit <= 0 || req.Limit > 50 {
		req.Limit = 5
	}

	snapshot, err := h.snapshotConfig(r, id)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	// Over-fetch so filtering still leaves enough rows to show.
	rows, err := h.store.ListSourceRowsPaged(r.Context(), id, req.Limit*2, 0)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}
	records := make([]models.Record, len(rows))
	for i, row := range rows {
		records[i] = models.Record{RowIndex: row.RowIndex, Data: row.Data}
	}
	filtered := filter.Apply(records, snapshot.Filters)
	if len(filtered) > req.Limit {
		filtered = filtered[:req.Limit]
	}

	outputRecords := make([]map[string]any, 0, len(filtered))
	for _, record := range filtered {
		mapped := mapping.ApplyMappings(record, snapshot.Mappings)
		if len(snapshot.Rules) > 0 {
			mapped = pii.DeidentifyRecord(mapped, mappedFieldNames(mapped), snapshot.Rules).Deidentified
		}
		outputRecords = append(outputRecords, mapped)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"preview": formatPreview(outputRecords, req.OutputFormat, req.Limit),
		"format":  req.OutputFormat,
	})
}

func formatPreview(records []map[string]any, format models.OutputFormat, limit int) []any {
	switch format {
	case models.FormatConversationalJSONL:
		preview := make([]any, len(records))
		for i, record := range records {
			id, _ := record["conversation_id"].(string)
			if id == "" {
				id = "sample"
			}
			role, _ := record["role"].(string)
			if role == "" {
				role = "user"
			}
			content, _ := record["content"].(string)
			preview[i] = map[string]any{
				"conversation_id": id,
				"messages": []map[string]any{
					{"role": role, "content": content},
				},
			}
		}
		return preview
	case models.FormatQAPairsJSONL:
		pairs := output.ExtractQAPairs(records)
		if len(pairs) > limit {
			pairs = pairs[:limit]
		}
		if len(pairs) == 0 {
			return []any{map[string]any{
				"question": "Sample question",
				"answer":   "Sample answer (no Q&A pairs found in sample)",
			}}
		}
		preview := make([]any, len(pairs))
		for i, pair := range pairs {
			preview[i] = pair
		}
		return preview
	default:
		preview := make([]any, len(records))
		for i, record := range records {
			preview[i] = record
		}
		return preview
	}
}

// mappedFieldNames is sorted so pseudonym counters assign deterministically.
func mappedFieldNames(record map[string]any) []string {
	fields := make([]string, 0, len(record))
	for field := range record {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	return fields
}
