// SPDX-License-Identifier: AGPL-3.0-or-later

package analytics

import (
	"time"

	"github.com/somcorpus/corpuswatch/internal/domain"
)

// unknownSource labels reports that carry no source identifier anywhere.
const unknownSource = "unknown"

// SourceName resolves the source identifier of a run report.
func SourceName(p domain.Payload) string {
	return resolveSource(gather(p))
}

// RecordsWritten resolves the persisted-record count of a run report.
func RecordsWritten(p domain.Payload) int64 {
	return resolveRecords(gather(p))
}

// QualityRate resolves the quality pass rate of a run report.
func QualityRate(p domain.Payload) float64 {
	return resolveQuality(gather(p))
}

// SuccessRate resolves the request/extraction success rate of a run report.
func SuccessRate(p domain.Payload) float64 {
	return resolveSuccess(gather(p))
}

// DedupRate resolves the duplicate-removal rate of a run report.
func DedupRate(p domain.Payload) float64 {
	return resolveDedup(gather(p))
}

// FilterCounts resolves the rejection-reason breakdown of a run report.
// Returns nil when the report carries no breakdown.
func FilterCounts(p domain.Payload) map[string]int64 {
	return gather(p).filterCounts
}

// Timestamp resolves the report timestamp. The second return is false when
// no location carries a parseable timestamp.
func Timestamp(p domain.Payload) (time.Time, bool) {
	f := gather(p)
	return f.timestamp, f.hasTimestamp
}

// MeanTextLength resolves the mean character count from the optional text
// length statistics, guarded to a finite non-negative number.
func MeanTextLength(p domain.Payload) float64 {
	return resolveTextMean(gather(p))
}

func resolveSource(f facts) string {
	if f.source != "" {
		return f.source
	}
	return unknownSource
}

// resolveRecords picks the first non-zero finite candidate. Zero is
// ambiguous with "absent" for a volume count, so an all-zero cascade
// resolves to 0, a legitimate "no output" state rather than an error.
func resolveRecords(f facts) int64 {
	for _, c := range f.recordCandidates {
		if n := ToCount(c); n > 0 {
			return n
		}
	}
	return 0
}

// resolveQuality walks the quality cascade.
//
// Ratio fields early-exit only on a clamped value > 0, so a source whose
// every record was rejected correctly reports 0 instead of picking up a
// later fallback. When no ratio field is usable the rate is derived from
// raw counts; a derivation with a positive denominator is authoritative
// even when it yields 0.
func resolveQuality(f facts) float64 {
	for _, c := range f.qualityCandidates {
		if r := ClampRatio(c); r > 0 {
			return r
		}
	}

	if f.passedFilter.present && f.received.present && f.received.value > 0 {
		return ClampRatio(f.passedFilter.value / f.received.value)
	}

	if f.recordsFiltered.present {
		written := float64(resolveRecords(f))
		if total := written + f.recordsFiltered.value; total > 0 {
			return ClampRatio(written / total)
		}
	}

	return 0
}

// resolveSuccess walks the success cascade. Each pipeline type reports
// success under its own field; the candidates are tried in a fixed order.
// With no usable rate field, the rate is derived from volume over items
// fetched/processed; volume with no failure signal at all implies success.
func resolveSuccess(f facts) float64 {
	for _, c := range f.successCandidates {
		if r := ClampRatio(c); r > 0 {
			return r
		}
	}

	written := float64(resolveRecords(f))

	if f.itemsTotal.present && f.itemsTotal.value > 0 {
		return ClampRatio(written / f.itemsTotal.value)
	}

	if written > 0 {
		return 1
	}

	return 0
}

// resolveDedup walks the dedup cascade, with the same early-exit rule as
// resolveQuality.
func resolveDedup(f facts) float64 {
	for _, c := range f.dedupCandidates {
		if r := ClampRatio(c); r > 0 {
			return r
		}
	}

	if f.duplicatesRemoved.present && f.received.present && f.received.value > 0 {
		return ClampRatio(f.duplicatesRemoved.value / f.received.value)
	}

	return 0
}

func resolveTextMean(f facts) float64 {
	n := ToNumber(f.textMean, 0)
	if n < 0 {
		return 0
	}
	return n
}
