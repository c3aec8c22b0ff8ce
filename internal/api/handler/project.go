package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/refinery-hq/refinery/internal/store"
	"github.com/refinery-hq/refinery/pkg/apierr"
)

type ProjectHandler struct {
	logger *slog.Logger
	store  *store.Store
}

func NewProjectHandler(logger *slog.Logger, s *store.Store) *ProjectHandler {
	return &ProjectHandler{logger: logger, store: s}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		writeAPIError(w, h.logger, apierr.ProjectListFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"projects": projects,
		"total":    len(projects),
	})
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	project, ok := getProjectOr404(w, r, h.logger, h.store, slug)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}

	if err := validateSlug(req.Slug); err != nil {
		writeAPIError(w, h.logger, err)
		return
	}
	if err := validateName(req.Name); err != nil {
		writeAPIError(w, h.logger, err)
		return
	}

	project, err := h.store.CreateProject(r.Context(), req.Name, req.Slug)
	if err != nil {
		writeAPIError(w, h.logger, apierr.ProjectCreateFailed(err))
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}

	if err := validateName(req.Name); err != nil {
		writeAPIError(w, h.logger, err)
		return
	}

	current, ok := getProjectOr404(w, r, h.logger, h.store, slug)
	if !ok {
		return
	}

	project, err := h.store.UpdateProject(r.Context(), current.ID, req.Name)
	if err != nil {
		writeAPIError(w, h.logger, apierr.ProjectUpdateFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	project, ok := getProjectOr404(w, r, h.logger, h.store, slug)
	if !ok {
		return
	}

	if err := h.store.DeleteProject(r.Context(), project.ID); err != nil {
		writeAPIError(w, h.logger, apierr.ProjectDeleteFailed(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
