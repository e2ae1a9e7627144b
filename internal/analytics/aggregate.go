// SPDX-License-Identifier: AGPL-3.0-or-later

package analytics

import "github.com/somcorpus/corpuswatch/internal/domain"

// Rollup summarizes a batch of run reports across every pipeline.
type Rollup struct {
	TotalRecords   int64   `json:"totalRecords"`
	AvgQualityRate float64 `json:"avgQualityRate"`
	AvgSuccessRate float64 `json:"avgSuccessRate"`
	ActiveSources  int     `json:"activeSources"`
}

// Aggregate computes record-count-weighted rollups over raw run reports.
// A nil or empty collection yields the zero Rollup.
//
// Reports with zero volume still count toward TotalRecords (trivially, as
// 0) but contribute no weight to either average: a source that wrote
// nothing carries no quality or success signal, and letting its nominal
// rate fields pull on the averages was the original corruption bug this
// package exists to prevent.
func Aggregate(records []domain.Payload) Rollup {
	var r Rollup
	var qualityNum, successNum, weight float64

	for _, p := range records {
		f := gather(p)
		written := resolveRecords(f)

		r.TotalRecords += written
		if written <= 0 {
			continue
		}
		r.ActiveSources++

		w := float64(written)
		weight += w
		qualityNum += w * resolveQuality(f)
		successNum += w * resolveSuccess(f)
	}

	if weight > 0 {
		r.AvgQualityRate = qualityNum / weight
		r.AvgSuccessRate = successNum / weight
	}

	return r
}
