package server

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/UnknownOlympus/waypoint/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

const (
	maxBodyBytes = 16 << 10

	msgBadRequest     = "Invalid observation"
	msgSaveFailed     = "Error saving log"
	msgFetchFailed    = "Error fetching logs"
	msgDownloadFailed = "Error downloading logs"
	msgRenderFailed   = "Error rendering page"
)

type landingPage struct {
	VideoURL  string
	IP        string
	UserAgent string
}

// Landing renders the check-in page. Nothing is stored until the visitor opts in
// and the page posts to /log.
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	page := landingPage{VideoURL: h.videoURL, IP: clientIP(r), UserAgent: r.UserAgent()}
	h.log.DebugContext(r.Context(), "Serving landing page", "id", chi.URLParam(r, "id"), "ip", page.IP)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "landing.html", page); err != nil {
		h.log.ErrorContext(r.Context(), "failed to render landing page", "error", err)
		http.Error(w, msgRenderFailed, http.StatusInternalServerError)
	}
}

// Ingest accepts one observation and acknowledges it with {"status":"ok"}.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var input models.ObservationInput
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(&input); err != nil {
		h.log.InfoContext(r.Context(), "Rejected undecodable observation", "error", err)
		http.Error(w, msgBadRequest, http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(input); err != nil {
		h.log.InfoContext(r.Context(), "Rejected invalid observation", "error", err)
		http.Error(w, msgBadRequest, http.StatusBadRequest)
		return
	}

	if _, err := h.tracker.Ingest(r.Context(), input.Observation()); err != nil {
		h.log.ErrorContext(r.Context(), "failed to store observation", "error", err)
		http.Error(w, msgSaveFailed, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, r, map[string]string{"status": "ok"})
}

type listingRow struct {
	Time      string
	IP        string
	Lat       string
	Lon       string
	UserAgent string
	MapURL    string
}

type listingPage struct {
	SourceName string
	Rows       []listingRow
}

// ListObservations renders every observation as an HTML table.
func (h *Handler) ListObservations(w http.ResponseWriter, r *http.Request) {
	source, observations, err := h.tracker.Observations(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to load observations", "source", source, "error", err)
		http.Error(w, msgFetchFailed, http.StatusInternalServerError)
		return
	}

	page := listingPage{SourceName: sourceName(source), Rows: make([]listingRow, 0, len(observations))}
	for _, obs := range observations {
		page.Rows = append(page.Rows, listingRow{
			Time:      obs.Timestamp.UTC().Format(models.TimestampLayout),
			IP:        obs.IP,
			Lat:       obs.Lat,
			Lon:       obs.Lon,
			UserAgent: obs.UserAgent,
			MapURL:    mapURL(obs.Lat, obs.Lon),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err = h.templates.ExecuteTemplate(w, "logs.html", page); err != nil {
		h.log.ErrorContext(r.Context(), "failed to render listing", "error", err)
	}
}

// DownloadObservations sends every observation as a JSON attachment.
func (h *Handler) DownloadObservations(w http.ResponseWriter, r *http.Request) {
	source, observations, err := h.tracker.Observations(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to load observations", "source", source, "error", err)
		http.Error(w, msgDownloadFailed, http.StatusInternalServerError)
		return
	}
	if observations == nil {
		observations = []models.Observation{}
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(source)))
	h.writeJSON(w, r, observations)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
}

func exportFilename(source service.Source) string {
	if source == service.SourcePrimary {
		return "logs.json"
	}

	return "logs_backup.json"
}

func sourceName(source service.Source) string {
	if source == service.SourcePrimary {
		return "PostgreSQL"
	}

	return "Local File"
}

func mapURL(lat, lon string) string {
	return "https://www.google.com/maps?q=" + url.QueryEscape(lat+","+lon)
}

// clientIP prefers the first X-Forwarded-For entry and falls back to the connection address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
