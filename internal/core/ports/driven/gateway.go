package driven

import (
	"context"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
)

// Gateway is the request/response channel to the underwriting service.
// Methods return the raw success body; non-success responses come back
// as *domain.GatewayError. Implementations never retry.
type Gateway interface {
	// Extract submits a document for extraction.
	Extract(ctx context.Context, caseID string, doc domain.Document) ([]byte, error)

	// Index adds extracted documents to the case evidence index.
	Index(ctx context.Context, caseID string, documentIDs []string, overwrite bool) ([]byte, error)

	// Underwrite requests a decision for the case.
	Underwrite(ctx context.Context, caseID string, req domain.UnderwriteRequest) ([]byte, error)

	// FetchTrace retrieves the execution trace of a prior request.
	FetchTrace(ctx context.Context, caseID, requestID string) ([]byte, error)

	// Replay re-executes a prior underwrite request.
	Replay(ctx context.Context, caseID, requestID string) ([]byte, error)

	// Ready checks that the service is accepting requests.
	Ready(ctx context.Context) error
}
