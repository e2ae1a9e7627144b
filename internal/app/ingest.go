// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/somcorpus/corpuswatch/internal/app/ports"
	"github.com/somcorpus/corpuswatch/internal/domain"
)

// SaveTelemetryInput holds the data needed to save a run report.
type SaveTelemetryInput struct {
	SourceSlug string
	Timestamp  time.Time
	Payload    json.RawMessage
}

// IngestService handles telemetry ingestion use cases.
type IngestService struct {
	records ports.RecordRepository
	sources ports.SourceRepository
}

// NewIngestService creates a new IngestService.
func NewIngestService(records ports.RecordRepository, sources ports.SourceRepository) *IngestService {
	return &IngestService{
		records: records,
		sources: sources,
	}
}

// Save validates and persists a run report from a source.
// The source must exist and not be revoked (verified by signature middleware).
// Returns the run ID assigned to the stored record.
func (s *IngestService) Save(ctx context.Context, input SaveTelemetryInput) (uuid.UUID, error) {
	record, err := domain.NewRecord(input.SourceSlug, input.Timestamp, input.Payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("save telemetry: %w", err)
	}

	// Verify source exists and is not revoked
	if _, err := s.sources.GetPublicKey(ctx, record.SourceSlug); err != nil {
		return uuid.Nil, fmt.Errorf("save telemetry: %w", err)
	}

	if err := s.records.Save(ctx, record); err != nil {
		return uuid.Nil, fmt.Errorf("save telemetry: %w", err)
	}

	return record.RunID, nil
}

// History retrieves recent run reports for a source.
func (s *IngestService) History(ctx context.Context, sourceSlug string, limit int) ([]*domain.Record, error) {
	slug, err := domain.NewSourceSlug(sourceSlug)
	if err != nil {
		return nil, fmt.Errorf("get report history: %w", err)
	}

	if limit <= 0 {
		limit = 100
	}

	records, err := s.records.FindBySource(ctx, slug, limit)
	if err != nil {
		return nil, fmt.Errorf("get report history: %w", err)
	}

	return records, nil
}
