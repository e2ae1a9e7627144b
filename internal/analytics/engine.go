// SPDX-License-Identifier: AGPL-3.0-or-later

package analytics

import (
	"sort"
	"time"

	"github.com/somcorpus/corpuswatch/internal/domain"
)

// Result is the full analytics model computed from a batch of run reports.
// Every numeric field is finite, every ratio lies in [0, 1], and every
// slice/map field is present (possibly empty), never nil; downstream
// renderers rely on both guarantees.
type Result struct {
	TotalRecords   int64            `json:"totalRecords"`
	TotalRejected  int64            `json:"totalRejected"`
	AvgQualityRate float64          `json:"avgQualityRate"`
	AvgDedupRate   float64          `json:"avgDedupRate"`
	ActiveSources  int              `json:"activeSources"`
	PerSource      []SourceRollup   `json:"perSource"`
	FilterTotals   map[string]int64 `json:"filterTotals"`
	Pareto         []FilterStat     `json:"pareto"`
	TopFilter      *FilterStat      `json:"topFilter"`
	Trend          []TrendPoint     `json:"trend"`
}

// SourceRollup is the per-source breakdown. TopFilter is the dominant
// rejection reason within this source's own breakdown, empty when the
// source reported no rejections.
type SourceRollup struct {
	Name           string           `json:"name"`
	Records        int64            `json:"records"`
	Share          float64          `json:"share"`
	Quality        float64          `json:"quality"`
	DedupRate      float64          `json:"dedupRate"`
	Rejected       int64            `json:"rejected"`
	RejectionRate  float64          `json:"rejectionRate"`
	Filters        map[string]int64 `json:"filters"`
	TopFilter      string           `json:"topFilter,omitempty"`
	MeanTextLength float64          `json:"meanTextLength,omitempty"`
	LastUpdated    *time.Time       `json:"lastUpdated"`
}

// FilterStat is one rejection reason in the pareto ranking. Percentage is
// this reason's share of all rejections in percent; Cumulative is the
// running share down the ranking, also in percent.
type FilterStat struct {
	Reason     string  `json:"reason"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
	Cumulative float64 `json:"cumulative"`
}

// TrendPoint is one calendar date (UTC, YYYY-MM-DD) in the quality trend.
type TrendPoint struct {
	Date    string  `json:"date"`
	Quality float64 `json:"quality"`
	Records int64   `json:"records"`
}

type sourceAcc struct {
	records    int64
	rejected   int64
	weight     float64
	qualityNum float64
	dedupNum   float64
	textNum    float64
	filters    map[string]int64
	last       time.Time
	hasLast    bool
}

type dateAcc struct {
	records    int64
	weight     float64
	qualityNum float64
}

// Compute reconciles a batch of run reports into a Result.
//
// There is no failure mode: a nil collection, nil entries, reports missing
// every field, and non-finite numeric values all degrade locally and the
// returned Result is always structurally valid. Each call computes from
// scratch; nothing is cached across invocations.
func Compute(records []domain.Payload) *Result {
	res := &Result{
		PerSource:    []SourceRollup{},
		FilterTotals: map[string]int64{},
		Pareto:       []FilterStat{},
		Trend:        []TrendPoint{},
	}
	if len(records) == 0 {
		return res
	}

	sources := make(map[string]*sourceAcc)
	dates := make(map[string]*dateAcc)
	var totalWeight, qualityNum, dedupNum float64

	for _, p := range records {
		f := gather(p)
		written := resolveRecords(f)
		quality := resolveQuality(f)
		dedup := resolveDedup(f)

		res.TotalRecords += written
		if written > 0 {
			res.ActiveSources++
		}

		name := resolveSource(f)
		acc := sources[name]
		if acc == nil {
			acc = &sourceAcc{}
			sources[name] = acc
		}
		acc.records += written

		if written > 0 {
			w := float64(written)
			totalWeight += w
			qualityNum += w * quality
			dedupNum += w * dedup

			acc.weight += w
			acc.qualityNum += w * quality
			acc.dedupNum += w * dedup
			acc.textNum += w * resolveTextMean(f)
		}

		for reason, count := range f.filterCounts {
			if acc.filters == nil {
				acc.filters = make(map[string]int64)
			}
			acc.filters[reason] += count
			acc.rejected += count
			res.FilterTotals[reason] += count
			res.TotalRejected += count
		}

		// A date is a property of when data arrived, not a condition for
		// the datum's validity: reports without a parseable timestamp are
		// excluded from the trend only.
		if f.hasTimestamp {
			if !acc.hasLast || f.timestamp.After(acc.last) {
				acc.last = f.timestamp
				acc.hasLast = true
			}

			day := f.timestamp.UTC().Format("2006-01-02")
			da := dates[day]
			if da == nil {
				da = &dateAcc{}
				dates[day] = da
			}
			da.records += written
			if written > 0 {
				w := float64(written)
				da.weight += w
				da.qualityNum += w * quality
			}
		}
	}

	if totalWeight > 0 {
		res.AvgQualityRate = qualityNum / totalWeight
		res.AvgDedupRate = dedupNum / totalWeight
	}

	res.PerSource = buildPerSource(sources, res.TotalRecords)
	res.Pareto = buildPareto(res.FilterTotals, res.TotalRejected)
	if len(res.Pareto) > 0 {
		top := res.Pareto[0]
		res.TopFilter = &top
	}
	res.Trend = buildTrend(dates)

	return res
}

func buildPerSource(sources map[string]*sourceAcc, totalRecords int64) []SourceRollup {
	out := make([]SourceRollup, 0, len(sources))
	for name, acc := range sources {
		entry := SourceRollup{
			Name:        name,
			Records:     acc.records,
			Rejected:    acc.rejected,
			Filters:     map[string]int64{},
			TopFilter:   dominantReason(acc.filters),
			LastUpdated: nil,
		}
		for reason, count := range acc.filters {
			entry.Filters[reason] = count
		}
		if totalRecords > 0 {
			entry.Share = float64(acc.records) / float64(totalRecords)
		}
		if acc.weight > 0 {
			entry.Quality = acc.qualityNum / acc.weight
			entry.DedupRate = acc.dedupNum / acc.weight
			entry.MeanTextLength = acc.textNum / acc.weight
		}
		if denom := acc.records + acc.rejected; denom > 0 {
			entry.RejectionRate = float64(acc.rejected) / float64(denom)
		}
		if acc.hasLast {
			last := acc.last
			entry.LastUpdated = &last
		}
		out = append(out, entry)
	}

	// Largest sources first; name break ties for determinism.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Records != out[j].Records {
			return out[i].Records > out[j].Records
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func buildPareto(totals map[string]int64, totalRejected int64) []FilterStat {
	if totalRejected <= 0 {
		return []FilterStat{}
	}

	out := make([]FilterStat, 0, len(totals))
	for reason, count := range totals {
		out = append(out, FilterStat{Reason: reason, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})

	var running int64
	for i := range out {
		running += out[i].Count
		out[i].Percentage = float64(out[i].Count) / float64(totalRejected) * 100
		out[i].Cumulative = float64(running) / float64(totalRejected) * 100
	}
	return out
}

func buildTrend(dates map[string]*dateAcc) []TrendPoint {
	out := make([]TrendPoint, 0, len(dates))
	for day, acc := range dates {
		point := TrendPoint{Date: day, Records: acc.records}
		if acc.weight > 0 {
			point.Quality = acc.qualityNum / acc.weight
		}
		out = append(out, point)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// dominantReason returns the reason with the largest count, breaking ties
// lexicographically. Empty breakdown yields "".
func dominantReason(filters map[string]int64) string {
	var best string
	var bestCount int64 = -1
	for reason, count := range filters {
		if count > bestCount || (count == bestCount && reason < best) {
			best = reason
			bestCount = count
		}
	}
	return best
}
