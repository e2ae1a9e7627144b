// SPDX-License-Identifier: AGPL-3.0-or-later

// Package analytics reconciles heterogeneous pipeline run reports into a
// single consistent quality/performance model. Reports may carry a metric
// under several possible field paths, omit it entirely, or contain
// non-finite values from upstream division errors; every extractor here
// resolves "the" value through an ordered fallback cascade and guarantees
// that no NaN or Infinity ever reaches an output field.
package analytics

import (
	"math"
	"strconv"
)

// ToNumber coerces an arbitrary payload value to a finite float64.
// NaN, Infinity, nil, and non-numeric values all yield the fallback.
func ToNumber(v any, fallback float64) float64 {
	var n float64
	switch val := v.(type) {
	case float64:
		n = val
	case float32:
		n = float64(val)
	case int:
		n = float64(val)
	case int32:
		n = float64(val)
	case int64:
		n = float64(val)
	case uint:
		n = float64(val)
	case uint32:
		n = float64(val)
	case uint64:
		n = float64(val)
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fallback
		}
		n = f
	default:
		return fallback
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return fallback
	}
	return n
}

// maxCount caps extracted record counts. It is the largest integer a
// float64 represents exactly; any real corpus volume sits far below it,
// and the cap keeps batch sums inside int64.
const maxCount int64 = 1 << 53

// ToCount coerces a value to a non-negative record count. Negative, NaN,
// Infinity and non-numeric inputs yield 0; finite values beyond maxCount
// clamp to it instead of overflowing the conversion.
func ToCount(v any) int64 {
	n := ToNumber(v, 0)
	if n <= 0 {
		return 0
	}
	if n >= float64(maxCount) {
		return maxCount
	}
	return int64(n)
}

// ClampRatio coerces a value to a finite number and clamps it to [0, 1].
// Negative, NaN, and Infinity inputs all yield 0; values above 1 yield 1.
func ClampRatio(v any) float64 {
	n := ToNumber(v, 0)
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}
