package driven

import (
	"context"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
)

// VerificationStore persists replay verification records.
type VerificationStore interface {
	// Save stores a record. Records are immutable once saved.
	Save(ctx context.Context, record domain.VerificationRecord) error

	// Get retrieves a record by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.VerificationRecord, error)

	// List returns records newest first.
	List(ctx context.Context, filter domain.VerificationFilter) ([]domain.VerificationRecord, error)
}
