// SPDX-License-Identifier: AGPL-3.0-or-later

package badge

import (
	"fmt"
	"math"
)

// FormatNumber formats a number with k/M/B suffixes for compact display.
func FormatNumber(n float64) string {
	if n < 0 {
		return "0"
	}

	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", n/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", n/1_000)
	default:
		if n == math.Floor(n) {
			return fmt.Sprintf("%.0f", n)
		}
		return fmt.Sprintf("%.1f", n)
	}
}

// FormatPercent renders a rate in [0, 1] as a percentage like "87.2%".
func FormatPercent(rate float64) string {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	return fmt.Sprintf("%.1f%%", rate*100)
}
