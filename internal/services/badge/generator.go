// SPDX-License-Identifier: AGPL-3.0-or-later

// Package badge renders shield-style SVG badges for corpus sources.
package badge

import (
	"fmt"
	"strings"
)

// Badge represents a shield-style badge with label and value.
type Badge struct {
	Label      string
	Value      string
	Color      string // Hex color for value side
	LabelColor string // Hex color for label side (default: ColorLabel)
}

// NewBadge creates a new badge with the given parameters.
func NewBadge(label, value, color string) *Badge {
	return &Badge{
		Label:      label,
		Value:      value,
		Color:      color,
		LabelColor: ColorLabel,
	}
}

// ToSVG generates an SVG representation of the badge.
func (b *Badge) ToSVG() string {
	if b.LabelColor == "" {
		b.LabelColor = ColorLabel
	}

	// Width approximation: 6px per char plus padding
	labelWidth := len(b.Label)*6 + 10
	valueWidth := len(b.Value)*6 + 10
	totalWidth := labelWidth + valueWidth

	var svg strings.Builder

	svg.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="20" role="img" aria-label="%s: %s">`,
		totalWidth, b.Label, b.Value))
	svg.WriteString(fmt.Sprintf(`<title>%s: %s</title>`, b.Label, b.Value))

	svg.WriteString(`<linearGradient id="s" x2="0" y2="100%">`)
	svg.WriteString(`<stop offset="0" stop-color="#bbb" stop-opacity=".1"/>`)
	svg.WriteString(`<stop offset="1" stop-opacity=".1"/>`)
	svg.WriteString(`</linearGradient>`)

	svg.WriteString(fmt.Sprintf(`<clipPath id="r"><rect width="%d" height="20" rx="3" fill="#fff"/></clipPath>`, totalWidth))

	svg.WriteString(`<g clip-path="url(#r)">`)
	svg.WriteString(fmt.Sprintf(`<rect width="%d" height="20" fill="%s"/>`, labelWidth, b.LabelColor))
	svg.WriteString(fmt.Sprintf(`<rect x="%d" width="%d" height="20" fill="%s"/>`, labelWidth, valueWidth, b.Color))
	svg.WriteString(fmt.Sprintf(`<rect width="%d" height="20" fill="url(#s)"/>`, totalWidth))
	svg.WriteString(`</g>`)

	svg.WriteString(`<g fill="#fff" text-anchor="middle" font-family="Verdana,Geneva,DejaVu Sans,sans-serif" text-rendering="geometricPrecision" font-size="110">`)

	labelX := labelWidth / 2
	svg.WriteString(fmt.Sprintf(`<text aria-hidden="true" x="%d" y="150" fill="#010101" fill-opacity=".3" transform="scale(.1)" textLength="%d">%s</text>`,
		labelX*10, (labelWidth-10)*10, b.Label))
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="140" transform="scale(.1)" fill="#fff" textLength="%d">%s</text>`,
		labelX*10, (labelWidth-10)*10, b.Label))

	valueX := labelWidth + valueWidth/2
	svg.WriteString(fmt.Sprintf(`<text aria-hidden="true" x="%d" y="150" fill="#010101" fill-opacity=".3" transform="scale(.1)" textLength="%d">%s</text>`,
		valueX*10, (valueWidth-10)*10, b.Value))
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="140" transform="scale(.1)" fill="#fff" textLength="%d">%s</text>`,
		valueX*10, (valueWidth-10)*10, b.Value))

	svg.WriteString(`</g>`)
	svg.WriteString(`</svg>`)

	return svg.String()
}

// Quality builds a badge for a source quality pass rate.
func Quality(label string, rate float64) *Badge {
	if label == "" {
		label = "quality"
	}
	return NewBadge(label, FormatPercent(rate), GetQualityColor(rate))
}

// Records builds a badge for a source record volume.
func Records(label string, count int64) *Badge {
	if label == "" {
		label = "records"
	}
	return NewBadge(label, FormatNumber(float64(count)), GetRecordsColor(count))
}

// TopFilter builds a badge naming the dominant rejection reason.
func TopFilter(label, reason string) *Badge {
	if label == "" {
		label = "top filter"
	}
	if reason == "" {
		return NewBadge(label, "none", ColorGray)
	}
	return NewBadge(label, reason, ColorPurple)
}
