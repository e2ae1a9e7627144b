// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ports defines the interfaces (ports) used by the application layer.
// These interfaces are implemented by adapters (repositories, external services).
// Following hexagonal architecture: interfaces are declared where they are consumed.
package ports

import (
	"context"
	"time"

	"github.com/somcorpus/corpuswatch/internal/domain"
)

// SourceRepository defines persistence operations for registered sources.
type SourceRepository interface {
	// Save persists a source (insert or update).
	Save(ctx context.Context, source *domain.Source) error

	// FindBySlug retrieves a source by its slug.
	// Returns domain.ErrSourceNotFound if not found.
	FindBySlug(ctx context.Context, slug domain.SourceSlug) (*domain.Source, error)

	// GetPublicKey retrieves the public key for a source.
	// Returns domain.ErrSourceNotFound if not found.
	// Returns domain.ErrSourceRevoked if the source is revoked.
	GetPublicKey(ctx context.Context, slug domain.SourceSlug) (domain.PublicKey, error)

	// UpdateStatus updates the status and last_seen_at timestamp.
	UpdateStatus(ctx context.Context, slug domain.SourceSlug, status domain.SourceStatus) error

	// MarkInactive flips active sources not seen since the cutoff to
	// inactive. Returns the number of sources affected.
	MarkInactive(ctx context.Context, cutoff time.Time) (int64, error)
}

// RecordRepository defines persistence operations for run reports.
type RecordRepository interface {
	// Save persists a record and updates the source heartbeat.
	Save(ctx context.Context, record *domain.Record) error

	// FindBySource retrieves recent records for a source.
	FindBySource(ctx context.Context, slug domain.SourceSlug, limit int) ([]*domain.Record, error)
}

// RecordFilter narrows the record collection handed to the analytics
// engine. Zero values mean "no restriction".
type RecordFilter struct {
	SourceSlug domain.SourceSlug
	Since      time.Time
}

// RecordReader defines read operations for analytics computation.
// Separated from the write repository for CQRS-lite pattern.
type RecordReader interface {
	// ListPayloads returns the raw report payloads matching the filter,
	// newest first.
	ListPayloads(ctx context.Context, filter RecordFilter) ([]domain.Payload, error)
}
