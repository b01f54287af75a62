package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driven"
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// ErrHistoryDisabled is returned when no verification store is configured.
var ErrHistoryDisabled = errors.New("verification history is disabled")

// HistoryService reads replay verification records.
type HistoryService struct {
	store driven.VerificationStore
}

// NewHistoryService creates a history service. store may be nil.
func NewHistoryService(store driven.VerificationStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns records newest first.
func (s *HistoryService) List(ctx context.Context, filter domain.VerificationFilter) ([]domain.VerificationRecord, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	if filter.Limit < 0 {
		return nil, &domain.ValidationError{Field: "limit", Reason: "must not be negative"}
	}
	if filter.Limit == 0 {
		filter.Limit = domain.DefaultHistoryListLimit
	}
	records, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	return records, nil
}

// Get retrieves one record.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.VerificationRecord, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get verification %s: %w", id, err)
	}
	return record, nil
}
