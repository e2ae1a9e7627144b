// SPDX-License-Identifier: AGPL-3.0-or-later

package analytics

import (
	"time"

	"github.com/somcorpus/corpuswatch/internal/domain"
)

// The pipelines have gone through three report schemas:
//
//   - current: flat camelCase fields on the report root
//   - legacy-v1: camelCase fields nested under "legacySnapshot"
//   - legacy-v2: snake_case fields nested under "legacyStatistics"
//
// A single report may carry any mix of the three (partial migrations were
// common), so normalization collects every candidate location in priority
// order (current first, then legacy-v1, then legacy-v2) and the resolvers
// in extract.go walk the candidates. This keeps schema coverage auditable
// in one place instead of scattering path probes through the aggregation.

const (
	keyLegacySnapshot   = "legacySnapshot"
	keyLegacyStatistics = "legacyStatistics"
)

// successKeys are the pipeline-type-specific success fields, in cascade
// order: HTTP request success (web-fetch), content extraction success
// (web-fetch), file extraction success (file-processing), record parsing
// success (streaming).
var successKeys = []string{
	"httpSuccessRate",
	"extractionSuccessRate",
	"fileSuccessRate",
	"parseSuccessRate",
}

var legacySuccessKeys = []string{"success_rate"}

// counter is a numeric field that tracks structural presence, so a present
// zero can be told apart from an absent field.
type counter struct {
	value   float64
	present bool
}

// facts is the normalized view of one run report: every candidate value for
// each metric kind, in resolution order.
type facts struct {
	source string

	recordCandidates  []any
	qualityCandidates []any
	dedupCandidates   []any
	successCandidates []any

	passedFilter      counter
	received          counter
	recordsFiltered   counter
	duplicatesRemoved counter
	itemsTotal        counter

	filterCounts map[string]int64

	timestamp    time.Time
	hasTimestamp bool

	textMean any
}

// gather normalizes a raw report into facts. A nil payload yields zero
// facts; every consumer of the result tolerates total absence.
func gather(p domain.Payload) facts {
	var f facts
	if p == nil {
		return f
	}

	v1, _ := p.Child(keyLegacySnapshot)
	v2, _ := p.Child(keyLegacyStatistics)

	f.source = firstString(
		stringCandidate(p, "source"),
		stringCandidate(v1, "source"),
		stringCandidate(v2, "source_name"),
	)

	f.recordCandidates = collect(
		valueCandidate(p, "recordsWritten"),
		valueCandidate(v1, "recordsWritten"),
		valueCandidate(v2, "records_written"),
	)
	f.qualityCandidates = collect(
		valueCandidate(p, "qualityPassRate"),
		valueCandidate(v1, "qualityPassRate"),
		valueCandidate(v2, "quality_pass_rate"),
	)
	f.dedupCandidates = collect(
		valueCandidate(p, "dedupRate"),
		valueCandidate(v1, "dedupRate"),
		valueCandidate(v2, "dedup_rate"),
	)

	for _, key := range successKeys {
		f.successCandidates = append(f.successCandidates, collect(
			valueCandidate(p, key),
			valueCandidate(v1, key),
		)...)
	}
	for _, key := range legacySuccessKeys {
		f.successCandidates = append(f.successCandidates, collect(
			valueCandidate(v2, key),
		)...)
	}

	f.passedFilter = firstCounter(p, v1, v2, "passedFilterCount", "passed_filter_count")
	f.received = firstCounter(p, v1, v2, "receivedCount", "received_count")
	f.recordsFiltered = firstCounter(p, v1, v2, "recordsFiltered", "records_filtered")
	f.duplicatesRemoved = firstCounter(p, v1, v2, "duplicatesRemoved", "duplicates_removed")

	f.itemsTotal = firstCounter(p, v1, v2, "itemsFetched", "items_fetched")
	if !f.itemsTotal.present {
		f.itemsTotal = firstCounter(p, v1, v2, "itemsProcessed", "items_processed")
	}

	f.filterCounts = gatherFilterCounts(p, v1, v2)

	for _, c := range collect(
		valueCandidate(p, "timestamp"),
		valueCandidate(v1, "timestamp"),
		valueCandidate(v2, "timestamp"),
	) {
		s, ok := c.(string)
		if !ok {
			continue
		}
		if ts, ok := parseTimestamp(s); ok {
			f.timestamp = ts
			f.hasTimestamp = true
			break
		}
	}

	if stats, ok := p.Child("textLengthStats"); ok {
		f.textMean = stats["mean"]
	} else if stats, ok := v2.Child("text_length_stats"); ok {
		f.textMean = stats["mean"]
	}

	return f
}

// gatherFilterCounts merges the rejection-reason breakdowns from every
// schema location. Counts pass through the safety guard; negative or
// non-finite counts contribute nothing.
func gatherFilterCounts(locations ...domain.Payload) map[string]int64 {
	var counts map[string]int64
	for i, loc := range locations {
		key := "filterBreakdown"
		if i == 2 {
			key = "filter_breakdown"
		}
		breakdown, ok := loc.Child(key)
		if !ok {
			continue
		}
		for reason, raw := range breakdown {
			n := ToCount(raw)
			if n <= 0 {
				continue
			}
			if counts == nil {
				counts = make(map[string]int64)
			}
			counts[reason] += n
		}
	}
	return counts
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTimestamp parses an ISO-8601-ish timestamp string. Anything it
// cannot parse is treated as absent, never as an error.
func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

type candidate struct {
	value   any
	present bool
}

func valueCandidate(p domain.Payload, key string) candidate {
	if p == nil {
		return candidate{}
	}
	v, ok := p[key]
	return candidate{value: v, present: ok}
}

func stringCandidate(p domain.Payload, key string) candidate {
	if p == nil {
		return candidate{}
	}
	s, ok := p.String(key)
	return candidate{value: s, present: ok && s != ""}
}

func collect(cands ...candidate) []any {
	var out []any
	for _, c := range cands {
		if c.present {
			out = append(out, c.value)
		}
	}
	return out
}

func firstString(cands ...candidate) string {
	for _, c := range cands {
		if c.present {
			if s, ok := c.value.(string); ok {
				return s
			}
		}
	}
	return ""
}

// firstCounter resolves a count field by structural presence: the first
// location that carries the key wins, even if its value is zero.
func firstCounter(p, v1, v2 domain.Payload, camel, snake string) counter {
	for _, c := range []candidate{
		valueCandidate(p, camel),
		valueCandidate(v1, camel),
		valueCandidate(v2, snake),
	} {
		if c.present {
			return counter{value: ToNumber(c.value, 0), present: true}
		}
	}
	return counter{}
}
