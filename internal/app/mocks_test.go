// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"time"

	"github.com/somcorpus/corpuswatch/internal/app/ports"
	"github.com/somcorpus/corpuswatch/internal/domain"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// mockSourceRepo is a test double for ports.SourceRepository.
type mockSourceRepo struct {
	sources   map[string]*domain.Source
	saveErr   error
	marked    int64
	markedErr error
}

func newMockSourceRepo() *mockSourceRepo {
	return &mockSourceRepo{sources: make(map[string]*domain.Source)}
}

func (m *mockSourceRepo) Save(ctx context.Context, source *domain.Source) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sources[source.Slug.String()] = source
	return nil
}

func (m *mockSourceRepo) FindBySlug(ctx context.Context, slug domain.SourceSlug) (*domain.Source, error) {
	src, ok := m.sources[slug.String()]
	if !ok {
		return nil, domain.ErrSourceNotFound
	}
	return src, nil
}

func (m *mockSourceRepo) GetPublicKey(ctx context.Context, slug domain.SourceSlug) (domain.PublicKey, error) {
	src, ok := m.sources[slug.String()]
	if !ok {
		return "", domain.ErrSourceNotFound
	}
	if src.IsRevoked() {
		return "", domain.ErrSourceRevoked
	}
	return src.PublicKey, nil
}

func (m *mockSourceRepo) UpdateStatus(ctx context.Context, slug domain.SourceSlug, status domain.SourceStatus) error {
	src, ok := m.sources[slug.String()]
	if !ok {
		return domain.ErrSourceNotFound
	}
	src.Status = status
	return nil
}

func (m *mockSourceRepo) MarkInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.marked, m.markedErr
}

// mockRecordRepo is a test double for ports.RecordRepository.
type mockRecordRepo struct {
	records []*domain.Record
	saveErr error
}

func (m *mockRecordRepo) Save(ctx context.Context, record *domain.Record) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockRecordRepo) FindBySource(ctx context.Context, slug domain.SourceSlug, limit int) ([]*domain.Record, error) {
	var out []*domain.Record
	for _, r := range m.records {
		if r.SourceSlug == slug {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// mockRecordReader is a test double for ports.RecordReader.
type mockRecordReader struct {
	payloads   []domain.Payload
	err        error
	lastFilter ports.RecordFilter
}

func (m *mockRecordReader) ListPayloads(ctx context.Context, filter ports.RecordFilter) ([]domain.Payload, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	return m.payloads, nil
}
