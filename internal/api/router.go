package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	apihandler "github.com/refinery-hq/refinery/internal/api/handler"
	apimw "github.com/refinery-hq/refinery/internal/api/middleware"
	"github.com/refinery-hq/refinery/internal/processing"
	"github.com/refinery-hq/refinery/internal/store"
	minioclient "github.com/refinery-hq/refinery/internal/store/minio"
)

// RouterDeps holds optional dependencies for the router.
type RouterDeps struct {
	MinIO    *minioclient.Client
	Producer *processing.Producer
}

func NewRouter(logger *slog.Logger, s *store.Store, deps *RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apimw.Logger(logger))
	r.Use(apimw.CORS)
	r.Use(chimw.Recoverer)

	// Health checks
	health := apihandler.NewHealthHandler(s.Pool())
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	if deps == nil {
		deps = &RouterDeps{}
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		projects := apihandler.NewProjectHandler(logger, s)
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projects.List)
			r.Post("/", projects.Create)
			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", projects.Get)
				r.Put("/", projects.Update)
				r.Delete("/", projects.Delete)

				sources := apihandler.NewSourceHandler(logger, s, deps.MinIO)
				r.Route("/sources", func(r chi.Router) {
					r.Get("/", sources.List)
					r.Post("/", sources.Upload)
					r.Route("/{sourceID}", func(r chi.Router) {
						r.Get("/", sources.Get)
						r.Delete("/", sources.Delete)
						r.Get("/preview", sources.Preview)

						mappings := apihandler.NewMappingHandler(logger, s)
						r.Route("/mapping", func(r chi.Router) {
							r.Get("/", mappings.Get)
							r.Put("/", mappings.Put)
							r.Get("/suggestions", mappings.Suggestions)
							r.Post("/preview", mappings.Preview)
						})

						deident := apihandler.NewDeidentHandler(logger, s)
						r.Route("/deidentification", func(r chi.Router) {
							r.Get("/", deident.Get)
							r.Put("/", deident.Put)
							r.Post("/scan", deident.Scan)
							r.Get("/summary", deident.Summary)
							r.Post("/preview", deident.Preview)
							r.Post("/test-pattern", deident.TestPattern)
						})

						filters := apihandler.NewFilterHandler(logger, s)
						r.Route("/filters", func(r chi.Router) {
							r.Get("/", filters.Get)
							r.Put("/", filters.Put)
							r.Get("/summary", filters.Summary)
						})

						runs := apihandler.NewRunHandler(logger, s, deps.Producer)
						r.Get("/processing-runs", runs.List)
						r.Post("/process", runs.Start)
						r.Post("/output-preview", runs.OutputPreview)

						outputs := apihandler.NewOutputHandler(logger, s, deps.MinIO)
						r.Get("/outputs", outputs.List)
					})
				})
			})
		})

		// Runs addressed directly, outside the project tree
		runs := apihandler.NewRunHandler(logger, s, deps.Producer)
		r.Route("/runs/{runID}", func(r chi.Router) {
			r.Get("/", runs.Get)
			r.Post("/cancel", runs.Cancel)
		})

		// Outputs addressed directly
		outputs := apihandler.NewOutputHandler(logger, s, deps.MinIO)
		r.Route("/outputs/{outputID}", func(r chi.Router) {
			r.Get("/", outputs.Get)
			r.Get("/preview", outputs.Preview)
			r.Get("/download", outputs.Download)
			r.Delete("/", outputs.Delete)
		})
	})

	return r
}
