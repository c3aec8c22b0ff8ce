package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/refinery-hq/refinery/internal/store"
	"github.com/refinery-hq/refinery/internal/store/postgres"
	"github.com/refinery-hq/refinery/pkg/apierr"
)

// getProjectOr404 fetches a project by slug and writes a 404/500 error on failure.
// Returns the project and true on success, or zero-value and false if an error was written.
func getProjectOr404(w http.ResponseWriter, r *http.Request, logger *slog.Logger, s *store.Store, slug string) (postgres.Project, bool) {
	project, err := s.GetProjectBySlug(r.Context(), slug)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, logger, apierr.ProjectNotFound())
		} else {
			writeAPIError(w, logger, apierr.InternalError(err))
		}
		return postgres.Project{}, false
	}
	return project, true
}

// getSourceOr404 fetches a source by UUID and writes a 404/500 error on failure.
// Returns the source and true on success, or zero-value and false if an error was written.
func getSourceOr404(w http.ResponseWriter, r *http.Request, logger *slog.Logger, s *store.Store, id uuid.UUID) (postgres.Source, bool) {
	source, err := s.GetSource(r.Context(), id)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, logger, apierr.SourceNotFound())
		} else {
			writeAPIError(w, logger, apierr.InternalError(err))
		}
		return postgres.Source{}, false
	}
	return source, true
}

// sourceIdleOr409 refuses configuration writes while a run is pending or
// processing. The run executes against a frozen snapshot, but letting the
// config drift mid-run invites confusion about what a run actually used.
func sourceIdleOr409(w http.ResponseWriter, r *http.Request, logger *slog.Logger, s *store.Store, sourceID uuid.UUID) bool {
	active, err := s.SourceHasActiveRun(r.Context(), sourceID)
	if err != nil {
		writeAPIError(w, logger, apierr.InternalError(err))
		return false
	}
	if active {
		writeAPIError(w, logger, apierr.SourceBusy())
		return false
	}
	return true
}

// parseIDOr400 parses a UUID path parameter and writes a 400 error on failure.
func parseIDOr400(w http.ResponseWriter, logger *slog.Logger, raw, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeAPIError(w, logger, apierr.InvalidID(entity))
		return uuid.Nil, false
	}
	return id, true
}
