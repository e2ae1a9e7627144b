// SPDX-License-Identifier: AGPL-3.0-or-later

// Package narrative renders collection analytics as a plain-text digest.
package narrative

import (
	"fmt"
	"strings"

	"github.com/somcorpus/corpuswatch/internal/analytics"
	"github.com/somcorpus/corpuswatch/internal/services/badge"
)

// Summarize renders a short human-readable report for a computed result.
// An empty or nil result yields a fixed "no data" line.
func Summarize(res *analytics.Result) string {
	if res == nil || res.TotalRecords == 0 {
		return "No collection activity recorded for this period."
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Collected %s records across %d active source", badge.FormatNumber(float64(res.TotalRecords)), res.ActiveSources)
	if res.ActiveSources != 1 {
		b.WriteString("s")
	}
	fmt.Fprintf(&b, " at %s average quality.", badge.FormatPercent(res.AvgQualityRate))

	if len(res.PerSource) > 0 {
		top := res.PerSource[0]
		fmt.Fprintf(&b, " Largest contributor: %s with %s records (%s of the total).",
			top.Name,
			badge.FormatNumber(float64(top.Records)),
			badge.FormatPercent(top.Share),
		)
	}

	if res.TotalRejected > 0 {
		fmt.Fprintf(&b, " %s records were rejected by quality filters", badge.FormatNumber(float64(res.TotalRejected)))
		if res.TopFilter != nil {
			fmt.Fprintf(&b, ", led by %s (%.1f%%)", res.TopFilter.Reason, res.TopFilter.Percentage)
		}
		b.WriteString(".")
	}

	if trend := trendDirection(res.Trend); trend != "" {
		b.WriteString(" " + trend)
	}

	return b.String()
}

// trendDirection compares the first and last trend points.
func trendDirection(trend []analytics.TrendPoint) string {
	if len(trend) < 2 {
		return ""
	}
	first, last := trend[0], trend[len(trend)-1]
	delta := last.Quality - first.Quality
	switch {
	case delta > 0.01:
		return fmt.Sprintf("Quality is trending up, from %s to %s.", badge.FormatPercent(first.Quality), badge.FormatPercent(last.Quality))
	case delta < -0.01:
		return fmt.Sprintf("Quality is trending down, from %s to %s.", badge.FormatPercent(first.Quality), badge.FormatPercent(last.Quality))
	default:
		return "Quality is stable across the period."
	}
}
