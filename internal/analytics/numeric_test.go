// SPDX-License-Identifier: AGPL-3.0-or-later

package analytics

import (
	"math"
	"testing"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		fallback float64
		expected float64
	}{
		{"float64", 0.5, 0, 0.5},
		{"int", 42, 0, 42},
		{"int64", int64(7), 0, 7},
		{"numeric string", "3.25", 0, 3.25},
		{"negative", -2.5, 0, -2.5},
		{"non-numeric string", "n/a", 0, 0},
		{"nan", math.NaN(), 0, 0},
		{"positive infinity", math.Inf(1), 0, 0},
		{"negative infinity", math.Inf(-1), 0, 0},
		{"nan string", "NaN", 0, 0},
		{"infinity string", "+Inf", 0, 0},
		{"nil", nil, 0, 0},
		{"bool", true, 0, 0},
		{"map", map[string]any{}, 0, 0},
		{"fallback used", nil, 99, 99},
		{"fallback unused", 1.0, 99, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToNumber(tt.input, tt.fallback)
			if got != tt.expected {
				t.Errorf("ToNumber(%v, %v) = %v, want %v", tt.input, tt.fallback, got, tt.expected)
			}
		})
	}
}

func TestToCount(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected int64
	}{
		{"small count", 42.0, 42},
		{"fractional truncates", 7.9, 7},
		{"zero", 0.0, 0},
		{"negative", -5.0, 0},
		{"nan", math.NaN(), 0},
		{"infinity", math.Inf(1), 0},
		{"nil", nil, 0},
		{"numeric string", "1500", 1500},
		{"at cap", float64(maxCount), maxCount},
		{"huge finite clamps", 1e300, maxCount},
		{"above max int64", 1e19, maxCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToCount(tt.input)
			if got < 0 {
				t.Fatalf("ToCount(%v) = %d, must never be negative", tt.input, got)
			}
			if got != tt.expected {
				t.Errorf("ToCount(%v) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClampRatio(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected float64
	}{
		{"in range", 0.5, 0.5},
		{"zero", 0.0, 0},
		{"one", 1.0, 1},
		{"negative", -0.3, 0},
		{"above one", 1.7, 1},
		{"far above one", 1e9, 1},
		{"nan", math.NaN(), 0},
		{"infinity", math.Inf(1), 0},
		{"negative infinity", math.Inf(-1), 0},
		{"nil", nil, 0},
		{"numeric string", "0.25", 0.25},
		{"garbage string", "lots", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampRatio(tt.input)
			if got != tt.expected {
				t.Errorf("ClampRatio(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
