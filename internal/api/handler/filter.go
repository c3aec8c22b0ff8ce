package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/refinery-hq/refinery/internal/filter"
	"github.com/refinery-hq/refinery/internal/store"
	"github.com/refinery-hq/refinery/pkg/apierr"
	"github.com/refinery-hq/refinery/pkg/models"
)

type FilterHandler struct {
	logger *slog.Logger
	store  *store.Store
}

func NewFilterHandler(logger *slog.Logger, s *store.Store) *FilterHandler {
	return &FilterHandler{logger: logger, store: s}
}

func (h *FilterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	if _, ok := getSourceOr404(w, r, h.logger, h.store, id); !ok {
		return
	}

	config, err := h.store.GetFilterConfig(r.Context(), id)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, h.logger, apierr.FilterNotFound())
		} else {
			writeAPIError(w, h.logger, apierr.InternalError(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, config)
}

func (h *FilterHandler) Put(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	if _, ok := getSourceOr404(w, r, h.logger, h.store, id); !ok {
		return
	}
	if !sourceIdleOr409(w, r, h.logger, h.store, id) {
		return
	}

	var req models.FilterConfig
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}

	if err := validateDateRange(req.DateRange); err != nil {
		writeAPIError(w, h.logger, err)
		return
	}

	config, err := h.store.UpsertFilterConfig(r.Context(), id, req)
	if err != nil {
		writeAPIError(w, h.logger, apierr.ConfigSaveFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, config)
}

// Summary replays the saved filters stage by stage and reports how many
// records each stage removes.
func (h *FilterHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	if _, ok := getSourceOr404(w, r, h.logger, h.store, id); !ok {
		return
	}

	config, err := h.store.GetFilterConfig(r.Context(), id)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, h.logger, apierr.FilterNotFound())
		} else {
			writeAPIError(w, h.logger, apierr.InternalError(err))
		}
		return
	}

	rows, err := h.store.ListSourceRows(r.Context(), id)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}
	records := make([]models.Record, len(rows))
	for i, row := range rows {
		records[i] = models.Record{RowIndex: row.RowIndex, Data: row.Data}
	}

	writeJSON(w, http.StatusOK, filter.GetSummary(records, config.Filters))
}
