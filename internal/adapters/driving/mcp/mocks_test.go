package mcp

import (
	"context"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driving"
)

// mockWorkflow implements driving.CaseWorkflow for testing.
type mockWorkflow struct {
	extract    *domain.ExtractResult
	index      *domain.IndexResult
	underwrite *domain.UnderwriteResult
	trace      *domain.Trace
	replay     *driving.ReplayOutcome
	snapshot   domain.Snapshot
	err        error

	lastFilename string
	lastPayload  domain.UnderwritePayload
	lastModel    string
	lastTopK     int
	lastRequest  string
}

func (m *mockWorkflow) Extract(_ context.Context, _, filename, _, _ string) (*domain.ExtractResult, error) {
	m.lastFilename = filename
	if m.err != nil {
		return nil, m.err
	}
	return m.extract, nil
}

func (m *mockWorkflow) IndexEvidence(_ context.Context, _ string, _ bool) (*domain.IndexResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.index, nil
}

func (m *mockWorkflow) Underwrite(
	_ context.Context, _ string, payload domain.UnderwritePayload, modelVersion string, topK int,
) (*domain.UnderwriteResult, error) {
	m.lastPayload = payload
	m.lastModel = modelVersion
	m.lastTopK = topK
	return m.underwrite, m.err
}

func (m *mockWorkflow) FetchTrace(_ context.Context, _, requestID string) (*domain.Trace, error) {
	m.lastRequest = requestID
	if m.err != nil {
		return nil, m.err
	}
	return m.trace, nil
}

func (m *mockWorkflow) Replay(_ context.Context, _, requestID string) (*driving.ReplayOutcome, error) {
	m.lastRequest = requestID
	if m.err != nil {
		return nil, m.err
	}
	return m.replay, nil
}

func (m *mockWorkflow) Snapshot() domain.Snapshot {
	return m.snapshot
}

func (m *mockWorkflow) Reset() error {
	return nil
}

// mockHistory implements driving.HistoryService for testing.
type mockHistory struct {
	records    []domain.VerificationRecord
	err        error
	lastFilter domain.VerificationFilter
}

func (m *mockHistory) List(_ context.Context, filter domain.VerificationFilter) ([]domain.VerificationRecord, error) {
	m.lastFilter = filter
	return m.records, m.err
}

func (m *mockHistory) Get(_ context.Context, _ string) (*domain.VerificationRecord, error) {
	return nil, domain.ErrNotFound
}

// mockSettings implements driving.SettingsService for testing.
type mockSettings struct {
	settings domain.AppSettings
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Save(*domain.AppSettings) error { return nil }
func (m *mockSettings) SetValue(_, _ string) error     { return nil }
func (m *mockSettings) Keys() []string                 { return nil }
func (m *mockSettings) Validate() error                { return nil }
