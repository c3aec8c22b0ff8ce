package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/refinery-hq/refinery/internal/mapping"
	"github.com/refinery-hq/refinery/internal/store"
	"github.com/refinery-hq/refinery/pkg/apierr"
	"github.com/refinery-hq/refinery/pkg/models"
)

type MappingHandler struct {
	logger *slog.Logger
	store  *store.Store
}

func NewMappingHandler(logger *slog.Logger, s *store.Store) *MappingHandler {
	return &MappingHandler{logger: logger, store: s}
}

func (h *MappingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	if _, ok := getSourceOr404(w, r, h.logger, h.store, id); !ok {
		return
	}

	config, err := h.store.GetFieldMapping(r.Context(), id)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, h.logger, apierr.MappingNotFound())
		} else {
			writeAPIError(w, h.logger, apierr.InternalError(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, config)
}

func (h *MappingHandler) Put(w http.ResponseWriter, r *http.Request) {
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
		Mappings     []models.MappingEntry `json:"mappings"`
		CustomFields []string              `json:"custom_fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}

	for _, entry := range req.Mappings {
		if !slices.Contains(source.Columns, entry.SourceColumn) {
			writeAPIError(w, h.logger, apierr.UnknownSourceColumn(entry.SourceColumn))
			return
		}
	}

	config, err := h.store.UpsertFieldMapping(r.Context(), id, req.Mappings, req.CustomFields)
	if err != nil {
		writeAPIError(w, h.logger, apierr.ConfigSaveFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, config)
}

// Suggestions proposes target fields for the source's columns based on
// column-name patterns.
func (h *MappingHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	source, ok := getSourceOr404(w, r, h.logger, h.store, id)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"suggestions":   mapping.Suggest(source.Columns),
		"target_fields": models.StandardTargetFields,
	})
}

func (h *MappingHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	if _, ok := getSourceOr404(w, r, h.logger, h.store, id); !ok {
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

	config, err := h.store.GetFieldMapping(r.Context(), id)
	if err != nil || len(config.Mappings) == 0 {
		if err != nil && !apierr.IsNotFound(err) {
			writeAPIError(w, h.logger, apierr.InternalError(err))
			return
		}
		writeAPIError(w, h.logger, apierr.NoMappingsConfigured())
		return
	}

	rows, err := h.store.ListSourceRowsPaged(r.Context(), id, req.Limit, 0)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	records := make([]models.Record, len(rows))
	for i, row := range rows {
		records[i] = models.Record{RowIndex: row.RowIndex, Data: row.Data}
	}
	preview := mapping.Preview(records, config.Mappings, req.Limit)

	writeJSON(w, http.StatusOK, map[string]any{
		"preview":      preview,
		"record_count": len(preview),
	})
}
