package tui

import (
	"context"
	"sync"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driving"
)

// fakeWorkflow records calls and returns a canned snapshot.
type fakeWorkflow struct {
	mu       sync.Mutex
	calls    []string
	lastText string
	lastTopK int
	lastMV   string
	snapshot domain.Snapshot
	err      error
	resetErr error
}

func (f *fakeWorkflow) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeWorkflow) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeWorkflow) Extract(_ context.Context, caseID, filename, _, rawText string) (*domain.ExtractResult, error) {
	f.record("extract:" + caseID + ":" + filename)
	f.lastText = rawText
	return &domain.ExtractResult{CaseID: caseID, DocumentID: "d1"}, f.err
}

func (f *fakeWorkflow) IndexEvidence(_ context.Context, caseID string, _ bool) (*domain.IndexResult, error) {
	f.record("index:" + caseID)
	return &domain.IndexResult{CaseID: caseID}, f.err
}

func (f *fakeWorkflow) Underwrite(
	_ context.Context, caseID string, _ domain.UnderwritePayload, modelVersion string, topK int,
) (*domain.UnderwriteResult, error) {
	f.record("underwrite:" + caseID)
	f.lastMV = modelVersion
	f.lastTopK = topK
	return &domain.UnderwriteResult{CaseID: caseID}, f.err
}

func (f *fakeWorkflow) FetchTrace(_ context.Context, caseID, _ string) (*domain.Trace, error) {
	f.record("trace:" + caseID)
	return &domain.Trace{}, f.err
}

func (f *fakeWorkflow) Replay(_ context.Context, caseID, _ string) (*driving.ReplayOutcome, error) {
	f.record("replay:" + caseID)
	return &driving.ReplayOutcome{}, f.err
}

func (f *fakeWorkflow) Snapshot() domain.Snapshot {
	return f.snapshot
}

func (f *fakeWorkflow) Reset() error {
	f.record("reset")
	return f.resetErr
}

// fakeSettings returns fixed settings.
type fakeSettings struct {
	settings domain.AppSettings
	err      error
}

func (f *fakeSettings) Get() (*domain.AppSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := f.settings
	return &s, nil
}

func (f *fakeSettings) Save(*domain.AppSettings) error { return nil }
func (f *fakeSettings) SetValue(_, _ string) error     { return nil }
func (f *fakeSettings) Keys() []string                 { return nil }
func (f *fakeSettings) Validate() error                { return nil }
