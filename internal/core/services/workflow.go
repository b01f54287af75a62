package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driven"
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driving"
	"github.com/custodia-labs/caseflow-cli/internal/logger"
)

// Ensure CaseWorkflow implements the interface.
var _ driving.CaseWorkflow = (*CaseWorkflow)(nil)

// CaseWorkflow sequences gateway calls for one case session.
//
// A single busy flag admits one operation at a time. Session state is
// written only by the operation holding the flag; the mutex exists so
// Snapshot can be called from other goroutines while an operation runs.
type CaseWorkflow struct {
	gateway    driven.Gateway
	normaliser driven.ResponseNormaliser
	history    driven.VerificationStore

	busy atomic.Bool

	mu    sync.RWMutex
	state session

	now func() time.Time
}

// session is the mutable state behind a Snapshot.
type session struct {
	caseID       string
	phase        domain.Phase
	documentID   string
	original     *domain.UnderwriteResult
	replay       *domain.UnderwriteResult
	trace        []domain.TraceNode
	modelVersion string
	status       string
	err          string
}

// NewCaseWorkflow creates a workflow bound to a gateway.
// The history store is optional - if nil, replay verdicts are not recorded.
func NewCaseWorkflow(
	gateway driven.Gateway,
	normaliser driven.ResponseNormaliser,
	history driven.VerificationStore,
) *CaseWorkflow {
	return &CaseWorkflow{
		gateway:    gateway,
		normaliser: normaliser,
		history:    history,
		state:      session{phase: domain.PhaseIdle},
		now:        time.Now,
	}
}

// Extract submits rawText for extraction and makes the returned document current.
func (w *CaseWorkflow) Extract(
	ctx context.Context,
	caseID, filename, contentType, rawText string,
) (result *domain.ExtractResult, err error) {
	if err := w.begin("extract", domain.PhaseExtracting); err != nil {
		return nil, err
	}
	var status string
	defer func() { w.finish(status, err) }()

	if err := requireCaseID(caseID); err != nil {
		return nil, err
	}
	if rawText == "" {
		return nil, &domain.ValidationError{Field: "text", Reason: "document text is empty"}
	}
	if strings.TrimSpace(filename) == "" {
		return nil, &domain.ValidationError{Field: "filename", Reason: "filename is required"}
	}
	if contentType == "" {
		contentType = domain.ContentTypePlainText
	}
	w.bindCase(caseID)

	doc := domain.Document{
		Filename:    filename,
		ContentType: contentType,
		ContentB64:  base64.StdEncoding.EncodeToString([]byte(rawText)),
	}

	raw, err := w.gateway.Extract(ctx, caseID, doc)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	result, err = w.normaliser.Extract(raw)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.state.documentID = result.DocumentID
	w.mu.Unlock()

	logger.Event("workflow.extract", "case_id", caseID, "document_id", result.DocumentID, "request_id", result.RequestID)
	status = fmt.Sprintf("Extracted document %s", result.DocumentID)
	return result, nil
}

// IndexEvidence indexes the current document.
func (w *CaseWorkflow) IndexEvidence(
	ctx context.Context,
	caseID string,
	overwrite bool,
) (result *domain.IndexResult, err error) {
	if err := w.begin("index", domain.PhaseIndexing); err != nil {
		return nil, err
	}
	var status string
	defer func() { w.finish(status, err) }()

	if err := requireCaseID(caseID); err != nil {
		return nil, err
	}
	w.bindCase(caseID)

	w.mu.RLock()
	documentID := w.state.documentID
	w.mu.RUnlock()
	if documentID == "" {
		return nil, &domain.PreconditionError{Op: "index", Reason: "no document to index"}
	}

	raw, err := w.gateway.Index(ctx, caseID, []string{documentID}, overwrite)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	result, err = w.normaliser.Index(raw)
	if err != nil {
		return nil, err
	}

	logger.Event("workflow.index", "case_id", caseID, "document_id", documentID, "indexed_chunks", result.IndexedChunks)
	status = fmt.Sprintf("Indexed document %s (%d chunks)", documentID, result.IndexedChunks)
	return result, nil
}

// Underwrite requests a decision and then fetches its trace.
// A trace failure keeps the new result and is returned alongside it.
func (w *CaseWorkflow) Underwrite(
	ctx context.Context,
	caseID string,
	payload domain.UnderwritePayload,
	modelVersion string,
	topK int,
) (result *domain.UnderwriteResult, err error) {
	if err := w.begin("underwrite", domain.PhaseUnderwriting); err != nil {
		return nil, err
	}
	var status string
	defer func() { w.finish(status, err) }()

	if err := requireCaseID(caseID); err != nil {
		return nil, err
	}
	w.bindCase(caseID)

	req := domain.UnderwriteRequest{
		Payload:      payload,
		ModelVersion: modelVersion,
		TopK:         topK,
	}
	raw, err := w.gateway.Underwrite(ctx, caseID, req)
	if err != nil {
		return nil, fmt.Errorf("underwrite: %w", err)
	}
	result, err = w.normaliser.Underwrite(raw)
	if err != nil {
		return nil, err
	}

	w.applyUnderwriteResult(result, modelVersion)
	logger.Event("workflow.underwrite",
		"case_id", caseID, "request_id", result.RequestID,
		"decision", result.Decision, "risk_score", result.RiskScore)

	w.setPhase(domain.PhaseFetchingTrace)
	trace, err := w.loadTrace(ctx, caseID, result.RequestID)
	if err != nil {
		logger.Warn("trace for %s unavailable: %v", result.RequestID, err)
		return result.Clone(), err
	}

	status = fmt.Sprintf("Underwrite completed: %s (request %s, %d trace nodes)",
		result.Decision, result.RequestID, len(trace.Nodes))
	return result.Clone(), nil
}

// FetchTrace replaces the stored timeline with the trace of requestID.
// An empty requestID means the current underwrite request.
func (w *CaseWorkflow) FetchTrace(
	ctx context.Context,
	caseID, requestID string,
) (trace *domain.Trace, err error) {
	if err := w.begin("trace", domain.PhaseFetchingTrace); err != nil {
		return nil, err
	}
	var status string
	defer func() { w.finish(status, err) }()

	if err := requireCaseID(caseID); err != nil {
		return nil, err
	}
	w.bindCase(caseID)

	if requestID == "" {
		w.mu.RLock()
		if w.state.original != nil {
			requestID = w.state.original.RequestID
		}
		w.mu.RUnlock()
	}
	if requestID == "" {
		return nil, &domain.PreconditionError{Op: "trace", Reason: "no request id to fetch a trace for"}
	}

	trace, err = w.loadTrace(ctx, caseID, requestID)
	if err != nil {
		return nil, err
	}

	status = fmt.Sprintf("Loaded trace for %s (%d nodes)", requestID, len(trace.Nodes))
	return trace, nil
}

// Replay re-executes the current underwrite request and compares the outcome.
func (w *CaseWorkflow) Replay(
	ctx context.Context,
	caseID, requestID string,
) (outcome *driving.ReplayOutcome, err error) {
	if err := w.begin("replay", domain.PhaseReplaying); err != nil {
		return nil, err
	}
	var status string
	defer func() { w.finish(status, err) }()

	if err := requireCaseID(caseID); err != nil {
		return nil, err
	}
	w.bindCase(caseID)

	w.mu.RLock()
	original := w.state.original
	modelVersion := w.state.modelVersion
	w.mu.RUnlock()

	if original == nil {
		return nil, &domain.PreconditionError{Op: "replay", Reason: "no underwrite result to replay"}
	}
	if requestID == "" {
		requestID = original.RequestID
	}
	if requestID != original.RequestID {
		return nil, &domain.PreconditionError{
			Op:     "replay",
			Reason: fmt.Sprintf("request %s is not the current underwrite request %s", requestID, original.RequestID),
		}
	}

	raw, err := w.gateway.Replay(ctx, caseID, requestID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	replay, err := w.normaliser.Underwrite(raw)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.state.replay = replay
	w.mu.Unlock()

	comparison := VerifyReplay(original, replay)
	logger.Event("workflow.replay",
		"case_id", caseID, "request_id", requestID,
		"pass", comparison.Pass, "message", comparison.Message)

	w.recordVerification(ctx, caseID, modelVersion, original, replay, comparison)

	status = comparison.Message
	return &driving.ReplayOutcome{Result: replay.Clone(), Comparison: comparison}, nil
}

// Snapshot returns a copy of the session state with the comparison derived.
func (w *CaseWorkflow) Snapshot() domain.Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snap := domain.Snapshot{
		CaseID:     w.state.caseID,
		Phase:      w.state.phase,
		DocumentID: w.state.documentID,
		Original:   w.state.original.Clone(),
		Replay:     w.state.replay.Clone(),
		Trace:      append([]domain.TraceNode{}, w.state.trace...),
		Status:     w.state.status,
		Err:        w.state.err,
	}
	if w.state.original != nil && w.state.replay != nil {
		cmp := VerifyReplay(w.state.original, w.state.replay)
		snap.Comparison = &cmp
	}
	return snap
}

// Reset discards the session.
func (w *CaseWorkflow) Reset() error {
	if !w.busy.CompareAndSwap(false, true) {
		return fmt.Errorf("reset: %w", domain.ErrWorkflowBusy)
	}
	defer w.busy.Store(false)

	w.mu.Lock()
	w.state = session{phase: domain.PhaseIdle}
	w.mu.Unlock()

	logger.Debug("workflow session reset")
	return nil
}

// begin acquires the busy flag. A rejected call leaves state untouched.
func (w *CaseWorkflow) begin(op string, phase domain.Phase) error {
	if !w.busy.CompareAndSwap(false, true) {
		logger.Debug("%s rejected: another operation is in flight", op)
		return fmt.Errorf("%s: %w", op, domain.ErrWorkflowBusy)
	}

	w.mu.Lock()
	w.state.phase = phase
	w.state.err = ""
	w.mu.Unlock()

	logger.Debug("%s started", op)
	return nil
}

// finish records the outcome, returns to idle and releases the flag.
func (w *CaseWorkflow) finish(status string, err error) {
	w.mu.Lock()
	w.state.phase = domain.PhaseIdle
	if err != nil {
		w.state.err = err.Error()
	} else if status != "" {
		w.state.status = status
	}
	w.mu.Unlock()

	w.busy.Store(false)
}

func (w *CaseWorkflow) setPhase(phase domain.Phase) {
	w.mu.Lock()
	w.state.phase = phase
	w.mu.Unlock()
}

// bindCase attaches the session to caseID, discarding state held for another case.
func (w *CaseWorkflow) bindCase(caseID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.caseID != "" && w.state.caseID != caseID {
		logger.Info("case changed from %s to %s, discarding session state", w.state.caseID, caseID)
		w.state = session{phase: w.state.phase, err: w.state.err}
	}
	w.state.caseID = caseID
}

// applyUnderwriteResult stores a new original result.
// Any replay and trace belong to the previous request and are cleared.
func (w *CaseWorkflow) applyUnderwriteResult(result *domain.UnderwriteResult, modelVersion string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.state.original = result
	w.state.modelVersion = modelVersion
	w.state.replay = nil
	w.state.trace = nil
}

// loadTrace fetches, normalises and stores a trace timeline.
func (w *CaseWorkflow) loadTrace(ctx context.Context, caseID, requestID string) (*domain.Trace, error) {
	raw, err := w.gateway.FetchTrace(ctx, caseID, requestID)
	if err != nil {
		return nil, fmt.Errorf("fetch trace: %w", err)
	}
	trace, err := w.normaliser.Trace(raw)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.state.trace = append([]domain.TraceNode{}, trace.Nodes...)
	w.mu.Unlock()

	logger.Event("workflow.trace", "case_id", caseID, "request_id", requestID, "nodes", len(trace.Nodes))
	return trace, nil
}

// recordVerification stores the replay verdict. Failures are logged and
// never fail the replay.
func (w *CaseWorkflow) recordVerification(
	ctx context.Context,
	caseID, modelVersion string,
	original, replay *domain.UnderwriteResult,
	comparison domain.ReplayComparison,
) {
	if w.history == nil {
		return
	}

	record := domain.VerificationRecord{
		ID:                  uuid.NewString(),
		CaseID:              caseID,
		RequestID:           original.RequestID,
		ModelVersion:        modelVersion,
		Pass:                comparison.Pass,
		Message:             comparison.Message,
		Mismatches:          comparison.Mismatches,
		OriginalDecision:    original.Decision,
		ReplayDecision:      replay.Decision,
		OriginalRiskScore:   original.RiskScore,
		ReplayRiskScore:     replay.RiskScore,
		OriginalFingerprint: original.Fingerprint,
		ReplayFingerprint:   replay.Fingerprint,
		CreatedAt:           w.now().UTC(),
	}
	if err := w.history.Save(ctx, record); err != nil {
		logger.Warn("save verification for %s: %v", original.RequestID, err)
	}
}

func requireCaseID(caseID string) error {
	if strings.TrimSpace(caseID) == "" {
		return &domain.ValidationError{Field: "case_id", Reason: "case id is required"}
	}
	return nil
}
