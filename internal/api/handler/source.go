package handler

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/refinery-hq/refinery/internal/parser"
	"github.com/refinery-hq/refinery/internal/store"
	minioclient "github.com/refinery-hq/refinery/internal/store/minio"
	"github.com/refinery-hq/refinery/internal/store/postgres"
	"github.com/refinery-hq/refinery/pkg/apierr"
)

const maxUploadBytes = 100 * 1024 * 1024

type SourceHandler struct {
	logger *slog.Logger
	store  *store.Store
	minio  *minioclient.Client
}

func NewSourceHandler(logger *slog.Logger, s *store.Store, minio *minioclient.Client) *SourceHandler {
	return &SourceHandler{logger: logger, store: s, minio: minio}
}

func (h *SourceHandler) List(w http.ResponseWriter, r *http.Request) {
	project, ok := getProjectOr404(w, r, h.logger, h.store, chi.URLParam(r, "slug"))
	if !ok {
		return
	}

	sources, err := h.store.ListSourcesByProject(r.Context(), project.ID)
	if err != nil {
		writeAPIError(w, h.logger, apierr.SourceListFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *SourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}

	source, ok := getSourceOr404(w, r, h.logger, h.store, id)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, source)
}

// Upload receives a multipart file, parses it, stores the raw file in MinIO
// and the parsed rows in Postgres, and returns the ready source.
func (h *SourceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	project, ok := getProjectOr404(w, r, h.logger, h.store, chi.URLParam(r, "slug"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, h.logger, apierr.FileRequired())
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeAPIError(w, h.logger, apierr.UploadFailed(err))
		return
	}

	sourceName := header.Filename
	if sourceName == "" {
		sourceName = "upload-" + uuid.New().String()[:8]
	}

	source, err := h.store.CreateSource(r.Context(), project.ID, sourceName, "file")
	if err != nil {
		writeAPIError(w, h.logger, apierr.SourceCreateFailed(err))
		return
	}

	objectName := fmt.Sprintf("%s/%s/%s", project.Slug, source.ID, header.Filename)
	if h.minio != nil {
		contentType := header.Header.Get("Content-Type")
		if err := h.minio.UploadFile(r.Context(), objectName, bytes.NewReader(content),
			int64(len(content)), contentType); err != nil {
			h.failSource(r, source.ID)
			writeAPIError(w, h.logger, apierr.UploadFailed(err))
			return
		}
	}

	if err := h.store.UpdateSourceStatus(r.Context(), source.ID, postgres.SourceParsing); err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	result, err := parser.Parse(content, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		h.failSource(r, source.ID)
		writeAPIError(w, h.logger, apierr.SourceParseFailed(err))
		return
	}

	err = h.store.WithTx(r.Context(), func(q *postgres.Queries) error {
		if err := q.InsertSourceRows(r.Context(), source.ID, result.Rows); err != nil {
			return err
		}
		return q.SetSourceParsed(r.Context(), source.ID, result.Columns, result.RowCount, objectName)
	})
	if err != nil {
		h.failSource(r, source.ID)
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	source, ok = getSourceOr404(w, r, h.logger, h.store, source.ID)
	if !ok {
		return
	}

	writeJSON(w, http.StatusCreated, source)
}

func (h *SourceHandler) failSource(r *http.Request, id uuid.UUID) {
	if err := h.store.UpdateSourceStatus(r.Context(), id, postgres.SourceError); err != nil {
		h.logger.Error("mark source errored", slog.String("error", err.Error()),
			slog.String("source_id", id.String()))
	}
}

// Preview returns the first rows of a parsed source.
func (h *SourceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	source, ok := getSourceOr404(w, r, h.logger, h.store, id)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	rows, err := h.store.ListSourceRowsPaged(r.Context(), id, limit, 0)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	preview := make([]map[string]any, len(rows))
	for i, row := range rows {
		preview[i] = row.Data
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"columns":   source.Columns,
		"rows":      preview,
		"row_count": source.RowCount,
	})
}

func (h *SourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	source, ok := getSourceOr404(w, r, h.logger, h.store, id)
	if !ok {
		return
	}

	// Refuse while a run is executing: the worker is still reading rows.
	if !sourceIdleOr409(w, r, h.logger, h.store, id) {
		return
	}

	err := h.store.WithTx(r.Context(), func(q *postgres.Queries) error {
		if err := q.DeleteSourceRows(r.Context(), id); err != nil {
			return err
		}
		return q.DeleteSource(r.Context(), id)
	})
	if err != nil {
		writeAPIError(w, h.logger, apierr.SourceDeleteFailed(err))
		return
	}

	if h.minio != nil && source.ObjectName.Valid {
		if err := h.minio.DeleteFile(r.Context(), source.ObjectName.String); err != nil {
			h.logger.Warn("delete source object", slog.String("error", err.Error()),
				slog.String("source_id", id.String()))
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
