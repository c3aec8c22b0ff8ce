package handler

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"regexp"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/refinery-hq/refinery/internal/pii"
	"github.com/refinery-hq/refinery/internal/store"
	"github.com/refinery-hq/refinery/internal/store/postgres"
	"github.com/refinery-hq/refinery/pkg/apierr"
	"github.com/refinery-hq/refinery/pkg/models"
)

// testPatternSampleLimit bounds how many rows a custom-pattern dry run
// reads.
const testPatternSampleLimit = 1000

type DeidentHandler struct {
	logger *slog.Logger
	store  *store.Store
}

func NewDeidentHandler(logger *slog.Logger, s *store.Store) *DeidentHandler {
	return &DeidentHandler{logger: logger, store: s}
}

func (h *DeidentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	if _, ok := getSourceOr404(w, r, h.logger, h.store, id); !ok {
		return
	}

	config, ok := h.getConfigOr404(w, r, id)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, config)
}

func (h *DeidentHandler) Put(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	source, ok := getSourceOr404(w, r, h.logger, h.store, id)
	if !ok {
		return
	}
	if !sourceIdleOr409(w, r, h.logger, h.store, id) {
		return
	}

	var req struct {
		Rules         []models.Rule `json:"rules"`
		ColumnsToScan []string      `json:"columns_to_scan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}

	for _, rule := range req.Rules {
		if rule.Type == models.RuleCustom && rule.Pattern != "" {
			if _, err := regexp.Compile(rule.Pattern); err != nil {
				writeAPIError(w, h.logger, apierr.InvalidPattern(rule.ID, err))
				return
			}
		}
	}
	for _, col := range req.ColumnsToScan {
		if !slices.Contains(source.Columns, col) {
			writeAPIError(w, h.logger, apierr.UnknownScanColumn(col))
			return
		}
	}

	config, err := h.store.UpsertDeidentificationConfig(r.Context(), id, req.Rules, req.ColumnsToScan)
	if err != nil {
		writeAPIError(w, h.logger, apierr.ConfigSaveFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, config)
}

// Scan runs the detectors over every record of the source and persists the
// results on the configuration row.
func (h *DeidentHandler) Scan(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	if _, ok := getSourceOr404(w, r, h.logger, h.store, id); !ok {
		return
	}
	config, ok := h.getConfigOr404(w, r, id)
	if !ok {
		return
	}
	if len(config.ColumnsToScan) == 0 {
		writeAPIError(w, h.logger, apierr.NoScanColumns())
		return
	}

	records, ok := h.loadRecords(w, r, id)
	if !ok {
		return
	}

	results := pii.ScanRecords(records, config.ColumnsToScan, config.Rules)

	snapshot, err := json.Marshal(results)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}
	if err := h.store.SetScanResults(r.Context(), id, snapshot); err != nil {
		writeAPIError(w, h.logger, apierr.ConfigSaveFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "complete",
		"summary":             results.Summary,
		"by_column":           results.ByColumn,
		"samples":             results.Samples,
		"total_pii_instances": results.TotalInstances(),
		"scanned_at":          results.ScannedAt,
	})
}

// Summary reports the persisted scan results plus the share of sampled
// records that contained PII.
func (h *DeidentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	if _, ok := getSourceOr404(w, r, h.logger, h.store, id); !ok {
		return
	}
	config, ok := h.getConfigOr404(w, r, id)
	if !ok {
		return
	}
	if len(config.ScanResults) == 0 {
		writeAPIError(w, h.logger, apierr.ScanNotPerformed())
		return
	}

	var results pii.ScanResults
	if err := json.Unmarshal(config.ScanResults, &results); err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	rowCount, err := h.store.CountSourceRows(r.Context(), id)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	rowsWithPii := map[int]bool{}
	for _, s := range results.Samples {
		rowsWithPii[s.RowIndex] = true
	}
	var pct float64
	if rowCount > 0 {
		pct = math.Round(float64(len(rowsWithPii))/float64(rowCount)*1000) / 10
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scanned_at":            results.ScannedAt,
		"summary":               results.Summary,
		"by_column":             results.ByColumn,
		"total_pii_instances":   results.TotalInstances(),
		"percentage_of_records": pct,
	})
}

// Preview de-identifies the first rows with the saved configuration and
// returns before/after pairs with highlight spans.
func (h *DeidentHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	if _, ok := getSourceOr404(w, r, h.logger, h.store, id); !ok {
		return
	}
	config, ok := h.getConfigOr404(w, r, id)
	if !ok {
		return
	}

	var req struct {
		Limit int `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 10
	}

	rows, err := h.store.ListSourceRowsPaged(r.Context(), id, req.Limit, 0)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	type previewRow struct {
		RowIndex      int             `json:"row_index"`
		Original      map[string]any  `json:"original"`
		Deidentified  map[string]any  `json:"deidentified"`
		PiiHighlights []pii.Highlight `json:"pii_highlights"`
	}
	preview := make([]previewRow, len(rows))
	for i, row := range rows {
		result := pii.DeidentifyRecord(row.Data, config.ColumnsToScan, config.Rules)
		preview[i] = previewRow{
			RowIndex:      row.RowIndex,
			Original:      result.Original,
			Deidentified:  result.Deidentified,
			PiiHighlights: result.PiiHighlights,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"preview": preview})
}

// TestPattern dry-runs a custom regex against sample rows without saving
// anything. A bad pattern is reported in the body, not as an error status.
func (h *DeidentHandler) TestPattern(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	if _, ok := getSourceOr404(w, r, h.logger, h.store, id); !ok {
		return
	}
	config, ok := h.getConfigOr404(w, r, id)
	if !ok {
		return
	}

	var req struct {
		Pattern     string `json:"pattern"`
		Replacement string `json:"replacement"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}

	re, err := regexp.Compile(req.Pattern)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"valid":       false,
			"error":       "Invalid regex: " + err.Error(),
			"matches":     []any{},
			"match_count": 0,
		})
		return
	}

	rows, err := h.store.ListSourceRowsPaged(r.Context(), id, testPatternSampleLimit, 0)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	type patternMatch struct {
		RowIndex int    `json:"row_index"`
		Column   string `json:"column"`
		Original string `json:"original"`
		Replaced string `json:"replaced"`
	}
	matches := []patternMatch{}
	matchCount := 0

	for _, row := range rows {
		for _, column := range config.ColumnsToScan {
			value, ok := row.Data[column].(string)
			if !ok || value == "" {
				continue
			}
			found := re.FindAllString(value, -1)
			matchCount += len(found)
			if len(found) > 0 && len(matches) < 10 {
				matches = append(matches, patternMatch{
					RowIndex: row.RowIndex,
					Column:   column,
					Original: value,
					Replaced: re.ReplaceAllString(value, req.Replacement),
				})
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":       true,
		"matches":     matches,
		"match_count": matchCount,
	})
}

func (h *DeidentHandler) getConfigOr404(w http.ResponseWriter, r *http.Request, sourceID uuid.UUID) (postgres.DeidentificationConfig, bool) {
	config, err := h.store.GetDeidentificationConfig(r.Context(), sourceID)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, h.logger, apierr.DeidentificationNotFound())
		} else {
			writeAPIError(w, h.logger, apierr.InternalError(err))
		}
		return postgres.DeidentificationConfig{}, false
	}
	return config, true
}

func (h *DeidentHandler) loadRecords(w http.ResponseWriter, r *http.Request, sourceID uuid.UUID) ([]models.Record, bool) {
	rows, err := h.store.ListSourceRows(r.Context(), sourceID)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return nil, false
	}
	records := make([]models.Record, len(rows))
	for i, row := range rows {
		records[i] = models.Record{RowIndex: row.RowIndex, Data: row.Data}
	}
	return records, true
}
