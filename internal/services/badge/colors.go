// SPDX-License-Identifier: AGPL-3.0-or-later

package badge

// Color palette for badges.
const (
	// Label background (left side)
	ColorLabel = "#404040"

	// Status colors (right side)
	ColorGreen  = "#00D084" // Healthy, high quality
	ColorBlue   = "#3B82F6" // Info, neutral
	ColorYellow = "#F59E0B" // Warning, degraded quality
	ColorRed    = "#EF4444" // Error, poor quality
	ColorPurple = "#8B5CF6" // Filter breakdowns
	ColorGray   = "#6B7280" // Inactive, no data
)

// GetQualityColor returns the color for a quality pass rate in [0, 1].
func GetQualityColor(rate float64) string {
	switch {
	case rate >= 0.9:
		return ColorGreen
	case rate >= 0.7:
		return ColorYellow
	case rate > 0:
		return ColorRed
	default:
		return ColorGray
	}
}

// GetRecordsColor returns the color for a record volume.
func GetRecordsColor(count int64) string {
	switch {
	case count >= 100_000:
		return ColorGreen
	case count >= 10_000:
		return ColorBlue
	case count > 0:
		return ColorYellow
	default:
		return ColorGray
	}
}
