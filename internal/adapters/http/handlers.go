// SPDX-License-Identifier: AGPL-3.0-or-later

// Package http provides HTTP handlers that delegate to application services.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/somcorpus/corpuswatch/internal/app"
	"github.com/somcorpus/corpuswatch/internal/services/narrative"
)

// Handlers holds HTTP handlers and their dependencies.
type Handlers struct {
	sources   *app.SourceService
	ingest    *app.IngestService
	analytics *app.AnalyticsService
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers with the given services.
func NewHandlers(
	sources *app.SourceService,
	ingest *app.IngestService,
	analytics *app.AnalyticsService,
	logger *slog.Logger,
) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		sources:   sources,
		ingest:    ingest,
		analytics: analytics,
		logger:    logger,
	}
}

// Healthcheck returns a simple health status.
func (h *Handlers) Healthcheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// RegisterRequest is the JSON payload for source registration.
type RegisterRequest struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	PublicKey string `json:"public_key"`
}

// Register handles source registration requests.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid JSON", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	h.logger.Info("registering source", "slug", req.Slug, "name", req.Name, "kind", req.Kind)

	source, err := h.sources.Register(r.Context(), app.RegisterSourceInput{
		Slug:      req.Slug,
		Name:      req.Name,
		Kind:      req.Kind,
		PublicKey: req.PublicKey,
	})
	if err != nil {
		h.logger.Error("registration failed", "slug", req.Slug, "error", err)
		http.Error(w, "Registration failed", http.StatusBadRequest)
		return
	}

	h.logger.Info("source registered", "slug", source.Slug)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"slug":   source.Slug.String(),
	})
}

// Activate handles source activation requests.
func (h *Handlers) Activate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slug := r.Header.Get("X-Source-ID")
	h.logger.Info("activating source", "slug", slug)

	if err := h.sources.Activate(r.Context(), slug); err != nil {
		h.logger.Error("activation failed", "slug", slug, "error", err)
		http.Error(w, "Activation failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("source activated", "slug", slug)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "active"})
}

// TelemetryRequest is the JSON payload for run report submission.
type TelemetryRequest struct {
	SourceSlug string          `json:"source_slug"`
	Timestamp  time.Time       `json:"timestamp"`
	Payload    json.RawMessage `json:"payload"`
}

// Telemetry handles run report submission requests.
func (h *Handlers) Telemetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slug := r.Header.Get("X-Source-ID")

	var req TelemetryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid JSON", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	runID, err := h.ingest.Save(r.Context(), app.SaveTelemetryInput{
		SourceSlug: req.SourceSlug,
		Timestamp:  req.Timestamp,
		Payload:    req.Payload,
	})
	if err != nil {
		h.logger.Error("telemetry rejected", "slug", slug, "error", err)
		http.Error(w, "Telemetry rejected", http.StatusInternalServerError)
		return
	}

	h.logger.Info("telemetry received", "slug", slug, "run_id", runID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"run_id": runID.String(),
	})
}

// Analytics handles full analytics requests.
// GET /api/v1/analytics?period=7d&source=wikipedia-somali
func (h *Handlers) Analytics(w http.ResponseWriter, r *http.Request) {
	period := app.ParsePeriod(r.URL.Query().Get("period"))
	source := r.URL.Query().Get("source")

	result, err := h.analytics.GetAnalytics(r.Context(), period, source)
	if err != nil {
		h.logger.Error("failed to compute analytics", "period", period, "source", source, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// Rollup handles cross-pipeline rollup requests.
// GET /api/v1/rollup?period=30d
func (h *Handlers) Rollup(w http.ResponseWriter, r *http.Request) {
	period := app.ParsePeriod(r.URL.Query().Get("period"))
	source := r.URL.Query().Get("source")

	rollup, err := h.analytics.GetRollup(r.Context(), period, source)
	if err != nil {
		h.logger.Error("failed to compute rollup", "period", period, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rollup)
}

// Summary handles narrative summary requests.
// GET /api/v1/summary?period=7d
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	period := app.ParsePeriod(r.URL.Query().Get("period"))
	source := r.URL.Query().Get("source")

	result, err := h.analytics.GetAnalytics(r.Context(), period, source)
	if err != nil {
		h.logger.Error("failed to compute summary", "period", period, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"period":  string(period),
		"summary": narrative.Summarize(result),
	})
}

// History handles run report history requests for a single source.
// GET /api/v1/history/{slug}?limit=50
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Path[len("/api/v1/history/"):]
	if slug == "" {
		http.Error(w, "Source slug required", http.StatusBadRequest)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	records, err := h.ingest.History(r.Context(), slug, limit)
	if err != nil {
		h.logger.Error("failed to load history", "slug", slug, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		response = append(response, map[string]any{
			"run_id":      rec.RunID.String(),
			"source":      rec.SourceSlug.String(),
			"received_at": rec.ReceivedAt.Format(time.RFC3339),
			"payload":     rec.Payload,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}
