package driving

import (
	"context"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
)

// HistoryService reads replay verification history.
type HistoryService interface {
	// List returns verification records newest first.
	List(ctx context.Context, filter domain.VerificationFilter) ([]domain.VerificationRecord, error)

	// Get retrieves one record.
	Get(ctx context.Context, id string) (*domain.VerificationRecord, error)
}
