package driven

import "github.com/custodia-labs/caseflow-cli/internal/core/domain"

// ResponseNormaliser maps raw gateway bodies into domain types.
// Failures are reported as *domain.MalformedResponseError.
type ResponseNormaliser interface {
	// Extract normalises an extraction response. document_id is required.
	Extract(raw []byte) (*domain.ExtractResult, error)

	// Index normalises an index response. All fields are optional.
	Index(raw []byte) (*domain.IndexResult, error)

	// Underwrite normalises an underwrite or replay response.
	// No field is defaulted.
	Underwrite(raw []byte) (*domain.UnderwriteResult, error)

	// Trace normalises a trace response, defaulting node names and durations
	// and preserving node order.
	Trace(raw []byte) (*domain.Trace, error)
}
