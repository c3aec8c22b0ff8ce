package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/refinery-hq/refinery/internal/store"
	minioclient "github.com/refinery-hq/refinery/internal/store/minio"
	"github.com/refinery-hq/refinery/internal/store/postgres"
	"github.com/refinery-hq/refinery/pkg/apierr"
	"github.com/refinery-hq/refinery/pkg/models"
)

type OutputHandler struct {
	logger *slog.Logger
	store  *store.Store
	minio  *minioclient.Client
}

func NewOutputHandler(logger *slog.Logger, s *store.Store, minio *minioclient.Client) *OutputHandler {
	return &OutputHandler{logger: logger, store: s, minio: minio}
}

func (h *OutputHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDOr400(w, h.logger, chi.URLParam(r, "sourceID"), "source")
	if !ok {
		return
	}
	if _, ok := getSourceOr404(w, r, h.logger, h.store, id); !ok {
		return
	}

	outputs, err := h.store.ListOutputsBySource(r.Context(), id)
	if err != nil {
		writeAPIError(w, h.logger, apierr.OutputListFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"outputs": outputs,
		"total":   len(outputs),
	})
}

func (h *OutputHandler) Get(w http.ResponseWriter, r *http.Request) {
	output, ok := h.getOutputOr404(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, output)
}

// Preview returns the first records of a stored artifact without forcing a
// full download.
func (h *OutputHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.minio == nil {
		writeAPIError(w, h.logger, apierr.StorageUnavailable())
		return
	}

	output, ok := h.getOutputOr404(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	object, err := h.minio.DownloadFile(r.Context(), output.ObjectName)
	if err != nil {
		writeAPIError(w, h.logger, apierr.OutputFetchFailed(err))
		return
	}
	defer object.Close()

	format := models.OutputFormat(output.Format)
	preview, err := previewArtifact(object, format, limit)
	if err != nil {
		writeAPIError(w, h.logger, apierr.OutputFetchFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"preview":      preview,
		"format":       output.Format,
		"record_count": output.RecordCount,
	})
}

// previewArtifact decodes the first limit records. JSONL formats read one
// line per record; raw JSON decodes the whole array and slices it.
func previewArtifact(reader io.Reader, format models.OutputFormat, limit int) ([]json.RawMessage, error) {
	if format == models.FormatRawJSON {
		var records []json.RawMessage
		if err := json.NewDecoder(reader).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode artifact: %w", err)
		}
		if len(records) > limit {
			records = records[:limit]
		}
		return records, nil
	}

	preview := []json.RawMessage{}
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() && len(preview) < limit {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			return nil, fmt.Errorf("artifact line %d is not valid JSON", len(preview)+1)
		}
		preview = append(preview, json.RawMessage(append([]byte(nil), line...)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return preview, nil
}

// Download streams the artifact as a file attachment.
func (h *OutputHandler) Download(w http.ResponseWriter, r *http.Request) {
	if h.minio == nil {
		writeAPIError(w, h.logger, apierr.StorageUnavailable())
		return
	}

	output, ok := h.getOutputOr404(w, r)
	if !ok {
		return
	}

	object, err := h.minio.DownloadFile(r.Context(), output.ObjectName)
	if err != nil {
		writeAPIError(w, h.logger, apierr.OutputFetchFailed(err))
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", models.OutputFormat(output.Format).ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", output.Filename))
	if output.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(output.FileSize, 10))
	}

	if _, err := io.Copy(w, object); err != nil {
		h.logger.Error("stream artifact", slog.String("error", err.Error()),
			slog.String("output_id", output.ID.String()))
	}
}

func (h *OutputHandler) Delete(w http.ResponseWriter, r *http.Request) {
	output, ok := h.getOutputOr404(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteOutput(r.Context(), output.ID); err != nil {
		writeAPIError(w, h.logger, apierr.OutputDeleteFailed(err))
		return
	}

	// Best effort: a dangling object is reclaimable, a dangling row is not.
	if h.minio != nil {
		if err := h.minio.DeleteFile(r.Context(), output.ObjectName); err != nil {
			h.logger.Warn("delete artifact object", slog.String("error", err.Error()),
				slog.String("output_id", output.ID.String()))
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OutputHandler) getOutputOr404(w http.ResponseWriter, r *http.Request) (postgres.Output, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "outputID"))
	if err != nil {
		writeAPIError(w, h.logger, apierr.InvalidID("output"))
		return postgres.Output{}, false
	}

	output, err := h.store.GetOutput(r.Context(), id)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, h.logger, apierr.OutputNotFound())
		} else {
			writeAPIError(w, h.logger, apierr.InternalError(err))
		}
		return postgres.Output{}, false
	}
	return output, true
}
