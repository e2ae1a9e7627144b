// SPDX-License-Identifier: AGPL-3.0-or-later

package analytics

import (
	"math"
	"reflect"
	"testing"

	"github.com/somcorpus/corpuswatch/internal/domain"
)

func TestCompute_NilSafety(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.Payload
	}{
		{"nil collection", nil},
		{"empty collection", []domain.Payload{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute(tt.records)

			if res.TotalRecords != 0 || res.TotalRejected != 0 || res.ActiveSources != 0 {
				t.Errorf("expected zeroed result, got %+v", res)
			}
			if res.PerSource == nil || len(res.PerSource) != 0 {
				t.Errorf("PerSource should be empty, not nil: %v", res.PerSource)
			}
			if res.Trend == nil || len(res.Trend) != 0 {
				t.Errorf("Trend should be empty, not nil: %v", res.Trend)
			}
			if res.FilterTotals == nil || len(res.FilterTotals) != 0 {
				t.Errorf("FilterTotals should be empty, not nil: %v", res.FilterTotals)
			}
			if res.TopFilter != nil {
				t.Errorf("TopFilter should be nil, got %+v", res.TopFilter)
			}
		})
	}
}

func TestCompute_ShareInvariant(t *testing.T) {
	records := []domain.Payload{
		report("Wikipedia-Somali", 1000, 0.87),
		report("BBC-Somali", 500, 0.92),
		report("Wikipedia-Somali", 333, 0.8),
		report("HuggingFace", 817, 0.75),
		report("idle-source", 0, 0.99),
	}

	res := Compute(records)

	var sum float64
	for _, s := range res.PerSource {
		sum += s.Share
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("sum of shares = %v, want 1.0", sum)
	}
}

func TestCompute_ParetoInvariant(t *testing.T) {
	records := []domain.Payload{
		{
			"source": "a",
			"filterBreakdown": map[string]any{
				"duplicate_filter": 150.0,
				"length_filter":    40.0,
			},
		},
		{
			"source": "b",
			"filterBreakdown": map[string]any{
				"duplicate_filter": 176.0,
				"lang_filter":      80.0,
			},
		},
		{
			"source": "c",
			"filterBreakdown": map[string]any{
				"duplicate_filter": 36.0,
			},
		},
	}

	res := Compute(records)

	var sum int64
	for _, count := range res.FilterTotals {
		sum += count
	}
	if sum != res.TotalRejected {
		t.Errorf("sum(FilterTotals) = %d, TotalRejected = %d", sum, res.TotalRejected)
	}

	if res.TopFilter == nil {
		t.Fatal("expected a top filter")
	}
	if res.TopFilter.Reason != "duplicate_filter" {
		t.Errorf("TopFilter.Reason = %q, want duplicate_filter", res.TopFilter.Reason)
	}
	if res.TopFilter.Count != 362 {
		t.Errorf("TopFilter.Count = %d, want 362", res.TopFilter.Count)
	}
	wantPct := 362.0 / float64(res.TotalRejected) * 100
	if math.Abs(res.TopFilter.Percentage-wantPct) > 1e-9 {
		t.Errorf("TopFilter.Percentage = %v, want %v", res.TopFilter.Percentage, wantPct)
	}

	// Pareto is sorted descending with a running cumulative share ending
	// at 100%.
	for i := 1; i < len(res.Pareto); i++ {
		if res.Pareto[i].Count > res.Pareto[i-1].Count {
			t.Errorf("pareto not sorted at %d: %v", i, res.Pareto)
		}
		if res.Pareto[i].Cumulative < res.Pareto[i-1].Cumulative {
			t.Errorf("cumulative share not monotonic at %d: %v", i, res.Pareto)
		}
	}
	last := res.Pareto[len(res.Pareto)-1]
	if math.Abs(last.Cumulative-100) > 1e-9 {
		t.Errorf("final cumulative share = %v, want 100", last.Cumulative)
	}
}

func TestCompute_NoRejections(t *testing.T) {
	res := Compute([]domain.Payload{report("a", 100, 0.9)})

	if res.TopFilter != nil {
		t.Errorf("TopFilter should be nil with no rejections, got %+v", res.TopFilter)
	}
	if len(res.Pareto) != 0 {
		t.Errorf("Pareto should be empty with no rejections, got %v", res.Pareto)
	}
	if res.TotalRejected != 0 {
		t.Errorf("TotalRejected = %d, want 0", res.TotalRejected)
	}
}

func TestCompute_RatioBounds(t *testing.T) {
	// Deliberately adversarial: negative, above-one, NaN, and Infinity
	// raw values everywhere.
	records := []domain.Payload{
		{
			"source":          "hostile",
			"recordsWritten":  1000.0,
			"qualityPassRate": math.NaN(),
			"dedupRate":       math.Inf(1),
			"httpSuccessRate": -3.0,
		},
		{
			"source":          "hostile",
			"recordsWritten":  500.0,
			"qualityPassRate": 7.5,
			"dedupRate":       -0.2,
		},
		{
			"source":          "other",
			"recordsWritten":  math.Inf(1),
			"qualityPassRate": 0.5,
			"filterBreakdown": map[string]any{"x": math.Inf(1), "y": 10.0},
		},
		nil,
	}

	res := Compute(records)

	check := func(field string, v float64) {
		t.Helper()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s is not finite: %v", field, v)
		}
		if v < 0 || v > 1 {
			t.Errorf("%s out of [0,1]: %v", field, v)
		}
	}

	check("AvgQualityRate", res.AvgQualityRate)
	check("AvgDedupRate", res.AvgDedupRate)
	for _, s := range res.PerSource {
		check("Share", s.Share)
		check("Quality", s.Quality)
		check("DedupRate", s.DedupRate)
		check("RejectionRate", s.RejectionRate)
	}
	for _, p := range res.Trend {
		check("Trend.Quality", p.Quality)
	}
}

func TestCompute_HugeFiniteCounts(t *testing.T) {
	// Finite but absurd counts must clamp instead of overflowing int64
	// into negative totals.
	records := []domain.Payload{
		{
			"source":          "runaway",
			"recordsWritten":  1e300,
			"qualityPassRate": 0.9,
			"filterBreakdown": map[string]any{"length_filter": 1e300},
		},
		{
			"source":          "sane",
			"recordsWritten":  100.0,
			"qualityPassRate": 0.8,
		},
	}

	res := Compute(records)

	if res.TotalRecords <= 0 {
		t.Errorf("TotalRecords = %d, want positive", res.TotalRecords)
	}
	if res.TotalRejected < 0 {
		t.Errorf("TotalRejected = %d, want non-negative", res.TotalRejected)
	}
	for _, s := range res.PerSource {
		if s.Records < 0 {
			t.Errorf("source %s Records = %d, want non-negative", s.Name, s.Records)
		}
		if s.Rejected < 0 {
			t.Errorf("source %s Rejected = %d, want non-negative", s.Name, s.Rejected)
		}
		if s.Share < 0 || s.Share > 1 {
			t.Errorf("source %s Share = %v, want in [0,1]", s.Name, s.Share)
		}
	}
}

func TestCompute_PerSourceGrouping(t *testing.T) {
	records := []domain.Payload{
		{
			"source":          "Wikipedia-Somali",
			"recordsWritten":  1000.0,
			"qualityPassRate": 0.9,
			"timestamp":       "2025-10-27T10:00:00Z",
			"filterBreakdown": map[string]any{"length_filter": 50.0},
		},
		{
			"source":          "Wikipedia-Somali",
			"recordsWritten":  1000.0,
			"qualityPassRate": 0.7,
			"timestamp":       "2025-10-28T10:00:00Z",
			"filterBreakdown": map[string]any{"duplicate_filter": 150.0},
		},
		{
			"source":         "BBC-Somali",
			"recordsWritten": 500.0,
		},
	}

	res := Compute(records)

	if len(res.PerSource) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(res.PerSource))
	}

	// Sorted by volume: Wikipedia-Somali first.
	wiki := res.PerSource[0]
	if wiki.Name != "Wikipedia-Somali" {
		t.Fatalf("expected Wikipedia-Somali first, got %q", wiki.Name)
	}
	if wiki.Records != 2000 {
		t.Errorf("Records = %d, want 2000", wiki.Records)
	}
	if math.Abs(wiki.Quality-0.8) > 1e-9 {
		t.Errorf("Quality = %v, want 0.8", wiki.Quality)
	}
	if wiki.Rejected != 200 {
		t.Errorf("Rejected = %d, want 200", wiki.Rejected)
	}
	if wiki.TopFilter != "duplicate_filter" {
		t.Errorf("TopFilter = %q, want duplicate_filter", wiki.TopFilter)
	}
	wantRejection := 200.0 / 2200.0
	if math.Abs(wiki.RejectionRate-wantRejection) > 1e-9 {
		t.Errorf("RejectionRate = %v, want %v", wiki.RejectionRate, wantRejection)
	}
	if wiki.LastUpdated == nil {
		t.Fatal("expected LastUpdated")
	}
	if got := wiki.LastUpdated.Format("2006-01-02"); got != "2025-10-28" {
		t.Errorf("LastUpdated = %s, want 2025-10-28", got)
	}

	bbc := res.PerSource[1]
	if bbc.TopFilter != "" {
		t.Errorf("BBC TopFilter should be empty, got %q", bbc.TopFilter)
	}
	if bbc.LastUpdated != nil {
		t.Errorf("BBC LastUpdated should be nil, got %v", bbc.LastUpdated)
	}
}

func TestCompute_TrendChronology(t *testing.T) {
	records := []domain.Payload{
		{"source": "a", "recordsWritten": 100.0, "qualityPassRate": 0.8, "timestamp": "2025-10-29T08:00:00Z"},
		{"source": "a", "recordsWritten": 200.0, "qualityPassRate": 0.9, "timestamp": "2025-10-27T08:00:00Z"},
		{"source": "b", "recordsWritten": 300.0, "qualityPassRate": 0.7, "timestamp": "2025-10-28T08:00:00Z"},
		{"source": "b", "recordsWritten": 50.0, "qualityPassRate": 0.6, "timestamp": "not-a-timestamp"},
	}

	res := Compute(records)

	if len(res.Trend) != 3 {
		t.Fatalf("expected 3 trend points, got %d", len(res.Trend))
	}
	wantDates := []string{"2025-10-27", "2025-10-28", "2025-10-29"}
	for i, want := range wantDates {
		if res.Trend[i].Date != want {
			t.Errorf("Trend[%d].Date = %s, want %s", i, res.Trend[i].Date, want)
		}
	}

	// The unparseable-timestamp record is excluded from the trend but
	// still counted everywhere else.
	if res.TotalRecords != 650 {
		t.Errorf("TotalRecords = %d, want 650", res.TotalRecords)
	}
	var trendRecords int64
	for _, p := range res.Trend {
		trendRecords += p.Records
	}
	if trendRecords != 600 {
		t.Errorf("trend records = %d, want 600", trendRecords)
	}
}

func TestCompute_TrendBucketsWeightQuality(t *testing.T) {
	records := []domain.Payload{
		{"source": "a", "recordsWritten": 100.0, "qualityPassRate": 0.8, "timestamp": "2025-10-27T01:00:00Z"},
		{"source": "b", "recordsWritten": 300.0, "qualityPassRate": 0.6, "timestamp": "2025-10-27T23:00:00Z"},
		{"source": "c", "recordsWritten": 0.0, "qualityPassRate": 0.99, "timestamp": "2025-10-27T12:00:00Z"},
	}

	res := Compute(records)

	if len(res.Trend) != 1 {
		t.Fatalf("expected 1 trend point, got %d", len(res.Trend))
	}
	want := (100*0.8 + 300*0.6) / 400
	if math.Abs(res.Trend[0].Quality-want) > 1e-9 {
		t.Errorf("Trend quality = %v, want %v", res.Trend[0].Quality, want)
	}
	if res.Trend[0].Records != 400 {
		t.Errorf("Trend records = %d, want 400", res.Trend[0].Records)
	}
}

func TestCompute_Idempotence(t *testing.T) {
	records := []domain.Payload{
		{
			"source":          "a",
			"recordsWritten":  123.0,
			"qualityPassRate": 0.77,
			"timestamp":       "2025-10-27T10:00:00Z",
			"filterBreakdown": map[string]any{"duplicate_filter": 5.0, "length_filter": 9.0},
		},
		{"source": "b", "recordsWritten": 456.0},
		nil,
	}

	first := Compute(records)
	second := Compute(records)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ across calls:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
