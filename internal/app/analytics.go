// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/somcorpus/corpuswatch/internal/analytics"
	"github.com/somcorpus/corpuswatch/internal/app/ports"
	"github.com/somcorpus/corpuswatch/internal/domain"
)

// Period represents a time period for analytics queries.
type Period string

const (
	Period24h Period = "24h"
	Period7d  Period = "7d"
	Period30d Period = "30d"
	Period3m  Period = "3m"
	PeriodAll Period = "all"
)

// Duration returns the time.Duration for the period.
func (p Period) Duration() time.Duration {
	switch p {
	case Period7d:
		return 7 * 24 * time.Hour
	case Period30d:
		return 30 * 24 * time.Hour
	case Period3m:
		return 90 * 24 * time.Hour
	case PeriodAll:
		return 10 * 365 * 24 * time.Hour // 10 years
	default:
		return 24 * time.Hour
	}
}

// ParsePeriod parses a period string, defaulting to 24h.
func ParsePeriod(s string) Period {
	switch s {
	case "7d":
		return Period7d
	case "30d":
		return Period30d
	case "3m":
		return Period3m
	case "all":
		return PeriodAll
	default:
		return Period24h
	}
}

// AnalyticsService computes analytics over stored run reports.
// This is a read-only service (CQRS-lite pattern): every call loads the
// matching payloads and computes a fresh result; nothing is cached
// across invocations.
type AnalyticsService struct {
	reader ports.RecordReader
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(reader ports.RecordReader) *AnalyticsService {
	return &AnalyticsService{reader: reader}
}

func (s *AnalyticsService) load(ctx context.Context, period Period, sourceSlug string) ([]domain.Payload, error) {
	filter := ports.RecordFilter{
		Since: time.Now().UTC().Add(-period.Duration()),
	}
	if sourceSlug != "" {
		slug, err := domain.NewSourceSlug(sourceSlug)
		if err != nil {
			return nil, err
		}
		filter.SourceSlug = slug
	}

	return s.reader.ListPayloads(ctx, filter)
}

// GetAnalytics computes the full analytics model for the period, optionally
// narrowed to a single source.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, period Period, sourceSlug string) (*analytics.Result, error) {
	payloads, err := s.load(ctx, period, sourceSlug)
	if err != nil {
		return nil, fmt.Errorf("get analytics: %w", err)
	}
	return analytics.Compute(payloads), nil
}

// GetRollup computes the cross-pipeline rollup for the period, optionally
// narrowed to a single source.
func (s *AnalyticsService) GetRollup(ctx context.Context, period Period, sourceSlug string) (analytics.Rollup, error) {
	payloads, err := s.load(ctx, period, sourceSlug)
	if err != nil {
		return analytics.Rollup{}, fmt.Errorf("get rollup: %w", err)
	}
	return analytics.Aggregate(payloads), nil
}
