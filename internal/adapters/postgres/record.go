// SPDX-License-Identifier: AGPL-3.0-or-later

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/somcorpus/corpuswatch/internal/app/ports"
	"github.com/somcorpus/corpuswatch/internal/domain"
)

// RecordRepository implements ports.RecordRepository for PostgreSQL.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Save inserts a telemetry record and refreshes the source heartbeat
// in a single transaction.
func (r *RecordRepository) Save(ctx context.Context, record *domain.Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	payload, err := record.Payload.Raw()
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	insert := `
		INSERT INTO records (run_id, source_slug, received_at, payload)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, insert,
		record.RunID,
		record.SourceSlug.String(),
		record.ReceivedAt,
		payload,
	); err != nil {
		return fmt.Errorf("insert record for %s: %w", record.SourceSlug, err)
	}

	heartbeat := `UPDATE sources SET last_seen_at = $1 WHERE slug = $2`
	if _, err := tx.ExecContext(ctx, heartbeat, record.ReceivedAt, record.SourceSlug.String()); err != nil {
		return fmt.Errorf("update heartbeat for %s: %w", record.SourceSlug, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record for %s: %w", record.SourceSlug, err)
	}
	return nil
}

// FindBySource retrieves the most recent records for a source, newest first.
func (r *RecordRepository) FindBySource(ctx context.Context, slug domain.SourceSlug, limit int) ([]*domain.Record, error) {
	query := `
		SELECT id, run_id, source_slug, received_at, payload
		FROM records
		WHERE source_slug = $1
		ORDER BY received_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, slug.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("find records for %s: %w", slug, err)
	}
	defer rows.Close()

	var records []*domain.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("find records for %s: %w", slug, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find records for %s: %w", slug, err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (*domain.Record, error) {
	var record domain.Record
	var slug string
	var payload []byte
	if err := rows.Scan(&record.ID, &record.RunID, &slug, &record.ReceivedAt, &payload); err != nil {
		return nil, err
	}
	record.SourceSlug = domain.SourceSlug(slug)

	p, err := domain.NewPayload(payload)
	if err != nil {
		return nil, err
	}
	record.Payload = p
	return &record, nil
}

// RecordReader implements ports.RecordReader for PostgreSQL. It serves
// the analytics read path and only materializes payloads.
type RecordReader struct {
	db *sql.DB
}

// NewRecordReader creates a new RecordReader.
func NewRecordReader(db *sql.DB) *RecordReader {
	return &RecordReader{db: db}
}

// ListPayloads returns the payloads matching the filter, oldest first.
func (r *RecordReader) ListPayloads(ctx context.Context, filter ports.RecordFilter) ([]domain.Payload, error) {
	query := `
		SELECT payload
		FROM records
		WHERE ($1 = '' OR source_slug = $1)
		  AND ($2::timestamptz IS NULL OR received_at >= $2)
		ORDER BY received_at ASC
	`
	var since any
	if !filter.Since.IsZero() {
		since = filter.Since
	}

	rows, err := r.db.QueryContext(ctx, query, filter.SourceSlug, since)
	if err != nil {
		return nil, fmt.Errorf("list payloads: %w", err)
	}
	defer rows.Close()

	var payloads []domain.Payload
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("list payloads: %w", err)
		}
		p, err := domain.NewPayload(raw)
		if err != nil {
			return nil, fmt.Errorf("list payloads: %w", err)
		}
		payloads = append(payloads, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payloads: %w", err)
	}
	return payloads, nil
}
