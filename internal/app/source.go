// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/somcorpus/corpuswatch/internal/app/ports"
	"github.com/somcorpus/corpuswatch/internal/domain"
)

// RegisterSourceInput holds the data needed to register a source.
type RegisterSourceInput struct {
	Slug      string
	Name      string
	Kind      string
	PublicKey string
}

// SourceService handles source-related use cases.
type SourceService struct {
	repo   ports.SourceRepository
	logger *slog.Logger
}

// NewSourceService creates a new SourceService.
func NewSourceService(repo ports.SourceRepository, logger *slog.Logger) *SourceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceService{repo: repo, logger: logger}
}

// Register registers a new source or updates an existing one.
// This is an unauthenticated endpoint - pipelines self-register with their
// public key. When no slug is given, one is derived from the name.
func (s *SourceService) Register(ctx context.Context, input RegisterSourceInput) (*domain.Source, error) {
	slug := input.Slug
	if slug == "" {
		slug = domain.Slugify(input.Name).String()
	}

	source, err := domain.NewSource(slug, input.Name, input.Kind, input.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("register source: %w", err)
	}

	// An existing source keeps its status; re-registration only refreshes
	// metadata (a revoked source cannot re-register itself back in).
	existing, err := s.repo.FindBySlug(ctx, source.Slug)
	if err == nil && existing != nil {
		if existing.IsRevoked() {
			return nil, fmt.Errorf("register source: %w", domain.ErrSourceRevoked)
		}
		existing.Name = source.Name
		existing.Kind = source.Kind
		existing.PublicKey = source.PublicKey
		existing.UpdateHeartbeat()
		source = existing
	}

	if err := s.repo.Save(ctx, source); err != nil {
		return nil, fmt.Errorf("register source: %w", err)
	}

	s.logger.Info("source registered", "slug", source.Slug, "kind", source.Kind)
	return source, nil
}

// Activate transitions a source from pending (or inactive) to active.
// This requires a valid signature (verified by middleware before calling this).
func (s *SourceService) Activate(ctx context.Context, slug string) error {
	id, err := domain.NewSourceSlug(slug)
	if err != nil {
		return fmt.Errorf("activate source: %w", err)
	}

	source, err := s.repo.FindBySlug(ctx, id)
	if err != nil {
		return fmt.Errorf("activate source: %w", err)
	}

	if err := source.Activate(); err != nil {
		return fmt.Errorf("activate source: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, id, source.Status); err != nil {
		return fmt.Errorf("activate source: %w", err)
	}

	return nil
}

// GetPublicKey retrieves the public key for signature verification.
// Returns an error if the source is not found or is revoked.
func (s *SourceService) GetPublicKey(ctx context.Context, slug string) (string, error) {
	id, err := domain.NewSourceSlug(slug)
	if err != nil {
		return "", fmt.Errorf("get public key: %w", err)
	}

	pk, err := s.repo.GetPublicKey(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get public key: %w", err)
	}

	return pk.String(), nil
}

// Revoke revokes a source, preventing further telemetry submissions.
func (s *SourceService) Revoke(ctx context.Context, slug string) error {
	id, err := domain.NewSourceSlug(slug)
	if err != nil {
		return fmt.Errorf("revoke source: %w", err)
	}

	source, err := s.repo.FindBySlug(ctx, id)
	if err != nil {
		return fmt.Errorf("revoke source: %w", err)
	}

	if err := source.Revoke(); err != nil {
		return fmt.Errorf("revoke source: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, id, source.Status); err != nil {
		return fmt.Errorf("revoke source: %w", err)
	}

	s.logger.Info("source revoked", "slug", id)
	return nil
}
