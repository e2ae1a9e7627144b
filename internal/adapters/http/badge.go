// SPDX-License-Identifier: AGPL-3.0-or-later

package http

import (
	"net/http"
	"strings"

	"github.com/somcorpus/corpuswatch/internal/analytics"
	"github.com/somcorpus/corpuswatch/internal/app"
	"github.com/somcorpus/corpuswatch/internal/services/badge"
)

// Badge generates a shield-style SVG badge for a source.
// GET /badge/{slug}.svg?metric=quality|records|top-filter&period=30d
func (h *Handlers) Badge(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/badge/"), ".svg")
	if slug == "" || strings.Contains(slug, "/") {
		renderErrorBadge(w, "invalid slug")
		return
	}

	period := app.ParsePeriod(r.URL.Query().Get("period"))

	result, err := h.analytics.GetAnalytics(r.Context(), period, slug)
	if err != nil {
		h.logger.Warn("failed to compute badge data", "slug", slug, "error", err)
		renderErrorBadge(w, "error")
		return
	}

	var rollup analytics.SourceRollup
	if len(result.PerSource) > 0 {
		rollup = result.PerSource[0]
	}

	label := r.URL.Query().Get("label")

	var b *badge.Badge
	switch r.URL.Query().Get("metric") {
	case "", "quality":
		b = badge.Quality(label, rollup.Quality)
	case "records":
		b = badge.Records(label, rollup.Records)
	case "top-filter":
		b = badge.TopFilter(label, rollup.TopFilter)
	default:
		renderErrorBadge(w, "unknown metric")
		return
	}

	if customColor := r.URL.Query().Get("color"); customColor != "" {
		b.Color = "#" + strings.TrimPrefix(customColor, "#")
	}

	renderSVGBadge(w, b.ToSVG())
}

// renderSVGBadge writes an SVG badge to the response with proper headers.
func renderSVGBadge(w http.ResponseWriter, svg string) {
	w.Header().Set("Content-Type", "image/svg+xml;charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(svg))
}

// renderErrorBadge renders an error badge.
func renderErrorBadge(w http.ResponseWriter, message string) {
	b := badge.NewBadge("error", message, badge.ColorRed)
	renderSVGBadge(w, b.ToSVG())
}
