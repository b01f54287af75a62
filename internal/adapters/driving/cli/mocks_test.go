package cli

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driving"
)

// mockWorkflow implements driving.CaseWorkflow for testing.
type mockWorkflow struct {
	extractErr    error
	indexErr      error
	underwrite    *domain.UnderwriteResult
	underwriteErr error
	trace         []domain.TraceNode
	traceErr      error
	replay        *domain.UnderwriteResult
	comparison    domain.ReplayComparison
	replayErr     error

	calls        []string
	extractText  string
	extractName  string
	modelVersion string
	topK         int
	overwrite    bool
	replayReqID  string
}

func newMockWorkflow() *mockWorkflow {
	original := sampleResult("req-1", "APPROVE", "0.42")
	return &mockWorkflow{
		underwrite: original,
		trace: []domain.TraceNode{
			{NodeName: "retrieve", DurationMS: 12.5},
			{NodeName: "score", DurationMS: 3},
		},
		replay:     sampleResult("req-1", "APPROVE", "0.42"),
		comparison: domain.ReplayComparison{Pass: true, Message: domain.ReplayPassMessage},
	}
}

func (m *mockWorkflow) Extract(_ context.Context, caseID, filename, _, rawText string) (*domain.ExtractResult, error) {
	m.calls = append(m.calls, "extract")
	m.extractText = rawText
	m.extractName = filename
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	return &domain.ExtractResult{CaseID: caseID, DocumentID: "doc-1"}, nil
}

func (m *mockWorkflow) IndexEvidence(_ context.Context, caseID string, overwrite bool) (*domain.IndexResult, error) {
	m.calls = append(m.calls, "index")
	m.overwrite = overwrite
	if m.indexErr != nil {
		return nil, m.indexErr
	}
	return &domain.IndexResult{CaseID: caseID, IndexedChunks: 4}, nil
}

func (m *mockWorkflow) Underwrite(_ context.Context, _ string, _ domain.UnderwritePayload, modelVersion string, topK int) (*domain.UnderwriteResult, error) {
	m.calls = append(m.calls, "underwrite")
	m.modelVersion = modelVersion
	m.topK = topK
	return m.underwrite, m.underwriteErr
}

func (m *mockWorkflow) FetchTrace(_ context.Context, _, _ string) (*domain.Trace, error) {
	m.calls = append(m.calls, "trace")
	if m.traceErr != nil {
		return nil, m.traceErr
	}
	return &domain.Trace{Nodes: m.trace}, nil
}

func (m *mockWorkflow) Replay(_ context.Context, _, requestID string) (*driving.ReplayOutcome, error) {
	m.calls = append(m.calls, "replay")
	m.replayReqID = requestID
	if m.replayErr != nil {
		return nil, m.replayErr
	}
	return &driving.ReplayOutcome{Result: m.replay, Comparison: m.comparison}, nil
}

func (m *mockWorkflow) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{Phase: domain.PhaseIdle, Original: m.underwrite}
	if m.underwriteErr == nil {
		snap.Trace = m.trace
	}
	return snap
}

func (m *mockWorkflow) Reset() error { return nil }

// mockSettings implements driving.SettingsService for testing.
type mockSettings struct {
	settings    domain.AppSettings
	getErr      error
	setErr      error
	validateErr error
	values      map[string]string
}

func newMockSettings() *mockSettings {
	return &mockSettings{settings: domain.DefaultAppSettings(), values: map[string]string{}}
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettings) SetValue(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettings) Keys() []string {
	return []string{"gateway.base_url", "underwrite.top_k"}
}

func (m *mockSettings) Validate() error { return m.validateErr }

// mockHistory implements driving.HistoryService for testing.
type mockHistory struct {
	records    []domain.VerificationRecord
	listErr    error
	lastFilter domain.VerificationFilter
}

func (m *mockHistory) List(_ context.Context, filter domain.VerificationFilter) ([]domain.VerificationRecord, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.records, nil
}

func (m *mockHistory) Get(_ context.Context, id string) (*domain.VerificationRecord, error) {
	for i := range m.records {
		if m.records[i].ID == id {
			r := m.records[i]
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockProbe implements GatewayProbe for testing.
type mockProbe struct {
	err error
}

func (m *mockProbe) Ready(context.Context) error { return m.err }
func (m *mockProbe) BaseURL() string             { return "http://uw.test" }

func sampleResult(requestID, decision, score string) *domain.UnderwriteResult {
	return &domain.UnderwriteResult{
		CaseID:    "case-1",
		Decision:  decision,
		RiskScore: domain.Number(score),
		Policy:    domain.Policy{PolicyID: "policy-a", Decision: decision, Reasons: []string{"dti within limit"}},
		Justification: domain.Justification{
			Summary: "Income is stable",
			Citations: []domain.Citation{
				{DocumentID: "doc-1", ChunkID: "chunk-1", StartChar: 0, EndChar: 40, Score: 0.91},
			},
		},
		RequestID: requestID,
	}
}

func sampleRecord(id, caseID string, pass bool) domain.VerificationRecord {
	r := domain.VerificationRecord{
		ID:                id,
		CaseID:            caseID,
		RequestID:         "req-" + id,
		ModelVersion:      domain.DefaultModelVersion,
		Pass:              pass,
		Message:           domain.ReplayPassMessage,
		OriginalDecision:  "APPROVE",
		ReplayDecision:    "APPROVE",
		OriginalRiskScore: "0.42",
		ReplayRiskScore:   "0.42",
		CreatedAt:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if !pass {
		r.Message = domain.ReplayMismatchMessage
		r.ReplayDecision = "DECLINE"
		r.Mismatches = []domain.Mismatch{{Field: domain.FieldDecision, Original: "APPROVE", Replay: "DECLINE"}}
	}
	return r
}

var errBoom = errors.New("boom")

// setupTestServices installs mocks and returns them with a cleanup func
// that restores the previous services and resets every command's flags.
func setupTestServices() (*mockWorkflow, *mockSettings, *mockHistory, func()) {
	oldWorkflow, oldSettings, oldHistory, oldProbe := workflowService, settingsService, historyService, gatewayProbe

	wf := newMockWorkflow()
	st := newMockSettings()
	hist := &mockHistory{}
	workflowService = wf
	settingsService = st
	historyService = hist
	gatewayProbe = &mockProbe{}

	return wf, st, hist, func() {
		workflowService, settingsService, historyService, gatewayProbe = oldWorkflow, oldSettings, oldHistory, oldProbe
		resetFlags(rootCmd)
	}
}

// resetFlags restores defaults so flag values do not leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
