package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driven"
)

// Ensure VerificationStore implements the interface.
var _ driven.VerificationStore = (*VerificationStore)(nil)

// VerificationStore is an in-memory implementation of driven.VerificationStore.
type VerificationStore struct {
	mu      sync.RWMutex
	records map[string]domain.VerificationRecord
}

// NewVerificationStore creates a new in-memory verification store.
func NewVerificationStore() *VerificationStore {
	return &VerificationStore{
		records: make(map[string]domain.VerificationRecord),
	}
}

// Save stores a record, replacing any record with the same ID.
func (s *VerificationStore) Save(_ context.Context, record domain.VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.Mismatches = append([]domain.Mismatch(nil), record.Mismatches...)
	s.records[record.ID] = record
	return nil
}

// Get retrieves a record by ID.
func (s *VerificationStore) Get(_ context.Context, id string) (*domain.VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// List returns records newest first, optionally restricted to one case.
func (s *VerificationStore) List(_ context.Context, filter domain.VerificationFilter) ([]domain.VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.VerificationRecord, 0, len(s.records))
	for _, r := range s.records {
		if filter.CaseID != "" && r.CaseID != filter.CaseID {
			continue
		}
		result = append(result, r)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultHistoryListLimit
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
