// Package server exposes the landing page, the ingestion endpoint and the admin views over HTTP.
package server

import (
	"context"
	"embed"
	"html/template"
	"log/slog"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/UnknownOlympus/waypoint/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

//go:embed templates/*.html
var templateFS embed.FS

// Tracker is the storage service the handlers depend on.
type Tracker interface {
	Ingest(ctx context.Context, obs models.Observation) (models.Observation, error)
	Observations(ctx context.Context) (service.Source, []models.Observation, error)
}

// Handler holds the dependencies shared by every route.
type Handler struct {
	log       *slog.Logger
	tracker   Tracker
	validate  *validator.Validate
	templates *template.Template
	videoURL  string
}

// NewHandler parses the embedded templates and returns a Handler.
// It panics if the templates are invalid, which can only happen at build time.
func NewHandler(log *slog.Logger, tracker Tracker, videoURL string) *Handler {
	return &Handler{
		log:       log,
		tracker:   tracker,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
		videoURL:  videoURL,
	}
}

// Routes builds the router. Extra handlers such as /metrics and /healthz are mounted by the caller.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/yt/{id}", h.Landing)
	r.Post("/log", h.Ingest)
	r.Get("/admin/logs", h.ListObservations)
	r.Get("/admin/logs/download", h.DownloadObservations)

	return r
}
