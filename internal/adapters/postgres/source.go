// SPDX-License-Identifier: AGPL-3.0-or-later

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/somcorpus/corpuswatch/internal/domain"
)

// SourceRepository implements ports.SourceRepository for PostgreSQL.
type SourceRepository struct {
	db *sql.DB
}

// NewSourceRepository creates a new SourceRepository.
func NewSourceRepository(db *sql.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// Save persists a source (insert or update keyed on slug).
func (r *SourceRepository) Save(ctx context.Context, source *domain.Source) error {
	query := `
		INSERT INTO sources (slug, name, kind, public_key, status, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			kind = EXCLUDED.kind,
			public_key = EXCLUDED.public_key,
			status = EXCLUDED.status,
			last_seen_at = EXCLUDED.last_seen_at
	`
	_, err := r.db.ExecContext(ctx, query,
		source.Slug.String(),
		source.Name,
		string(source.Kind),
		source.PublicKey.String(),
		string(source.Status),
		source.CreatedAt,
		source.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("save source %s: %w", source.Slug, err)
	}
	return nil
}

// FindBySlug retrieves a source by its slug.
func (r *SourceRepository) FindBySlug(ctx context.Context, slug domain.SourceSlug) (*domain.Source, error) {
	query := `
		SELECT slug, name, kind, public_key, status, created_at, last_seen_at
		FROM sources
		WHERE slug = $1
	`
	row := r.db.QueryRowContext(ctx, query, slug.String())

	var src domain.Source
	var s, kind, key, status string
	err := row.Scan(&s, &src.Name, &kind, &key, &status, &src.CreatedAt, &src.LastSeenAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("find source %s: %w", slug, domain.ErrSourceNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find source %s: %w", slug, err)
	}

	src.Slug = domain.SourceSlug(s)
	src.Kind = domain.PipelineKind(kind)
	src.PublicKey = domain.PublicKey(key)
	src.Status = domain.SourceStatus(status)
	return &src, nil
}

// GetPublicKey retrieves the public key for a source.
func (r *SourceRepository) GetPublicKey(ctx context.Context, slug domain.SourceSlug) (domain.PublicKey, error) {
	query := `SELECT public_key, status FROM sources WHERE slug = $1`
	row := r.db.QueryRowContext(ctx, query, slug.String())

	var key, status string
	err := row.Scan(&key, &status)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("get public key for %s: %w", slug, domain.ErrSourceNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get public key for %s: %w", slug, err)
	}

	if domain.SourceStatus(status) == domain.StatusRevoked {
		return "", fmt.Errorf("get public key for %s: %w", slug, domain.ErrSourceRevoked)
	}

	return domain.PublicKey(key), nil
}

// UpdateStatus updates the status and last_seen_at timestamp.
func (r *SourceRepository) UpdateStatus(ctx context.Context, slug domain.SourceSlug, status domain.SourceStatus) error {
	query := `UPDATE sources SET status = $1, last_seen_at = NOW() WHERE slug = $2`
	result, err := r.db.ExecContext(ctx, query, string(status), slug.String())
	if err != nil {
		return fmt.Errorf("update status for %s: %w", slug, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status for %s: %w", slug, err)
	}
	if affected == 0 {
		return fmt.Errorf("update status for %s: %w", slug, domain.ErrSourceNotFound)
	}

	return nil
}

// MarkInactive flips active sources not seen since the cutoff to inactive.
func (r *SourceRepository) MarkInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `UPDATE sources SET status = $1 WHERE status = $2 AND last_seen_at < $3`
	result, err := r.db.ExecContext(ctx, query,
		string(domain.StatusInactive),
		string(domain.StatusActive),
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("mark inactive sources: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark inactive sources: %w", err)
	}
	return affected, nil
}
