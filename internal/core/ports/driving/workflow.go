package driving

import (
	"context"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
)

// CaseWorkflow drives one case session against the underwriting service.
// At most one operation runs at a time; a call made while another is in
// flight fails with domain.ErrWorkflowBusy and changes nothing.
type CaseWorkflow interface {
	// Extract submits rawText as a document and makes the returned
	// document id current.
	Extract(ctx context.Context, caseID, filename, contentType, rawText string) (*domain.ExtractResult, error)

	// IndexEvidence indexes the current document. Fails with a
	// precondition error when no document has been extracted.
	IndexEvidence(ctx context.Context, caseID string, overwrite bool) (*domain.IndexResult, error)

	// Underwrite requests a decision, clears any replay, and fetches the
	// trace for the new request. On trace failure the stored result is
	// kept and returned together with the error.
	Underwrite(ctx context.Context, caseID string, payload domain.UnderwritePayload, modelVersion string, topK int) (*domain.UnderwriteResult, error)

	// FetchTrace replaces the stored trace timeline.
	FetchTrace(ctx context.Context, caseID, requestID string) (*domain.Trace, error)

	// Replay re-runs the current underwrite request and compares the result.
	// An empty requestID means the current one.
	Replay(ctx context.Context, caseID, requestID string) (*ReplayOutcome, error)

	// Snapshot returns a copy of the session state.
	Snapshot() domain.Snapshot

	// Reset discards the session state. Fails with domain.ErrWorkflowBusy
	// while an operation is in flight.
	Reset() error
}

// ReplayOutcome pairs a replay result with its comparison.
type ReplayOutcome struct {
	Result     *domain.UnderwriteResult
	Comparison domain.ReplayComparison
}
