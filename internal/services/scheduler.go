// SPDX-License-Identifier: AGPL-3.0-or-later

// Package services holds background services that run alongside the HTTP server.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/somcorpus/corpuswatch/internal/app/ports"
)

// Scheduler handles background periodic tasks.
type Scheduler struct {
	sources    ports.SourceRepository
	staleAfter time.Duration
	interval   time.Duration
	logger     *slog.Logger
}

// NewScheduler creates a Scheduler that marks sources inactive when they
// have not reported for staleAfter.
func NewScheduler(sources ports.SourceRepository, staleAfter, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if staleAfter <= 0 {
		staleAfter = 48 * time.Hour
	}
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	return &Scheduler{
		sources:    sources,
		staleAfter: staleAfter,
		interval:   interval,
		logger:     logger,
	}
}

// Start begins running scheduled tasks in the background.
// This function blocks until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", s.interval, "stale_after", s.staleAfter)

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep marks sources inactive when their last report is older than the cutoff.
func (s *Scheduler) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.staleAfter)

	n, err := s.sources.MarkInactive(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to sweep stale sources", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("marked stale sources inactive", "count", n, "cutoff", cutoff)
	}
}
