package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
)

// ExtractInput is the input schema for the extract tool.
type ExtractInput struct {
	CaseID      string `json:"case_id" jsonschema:"the case the document belongs to"`
	Text        string `json:"text" jsonschema:"plain text content of the document"`
	Filename    string `json:"filename,omitempty" jsonschema:"file name reported to the service (default document.txt)"`
	ContentType string `json:"content_type,omitempty" jsonschema:"MIME type (default text/plain)"`
}

// ExtractOutput is the output schema for the extract tool.
type ExtractOutput struct {
	CaseID     string `json:"case_id"`
	DocumentID string `json:"document_id"`
	RequestID  string `json:"request_id"`
}

// IndexInput is the input schema for the index_evidence tool.
type IndexInput struct {
	CaseID    string `json:"case_id" jsonschema:"the case to index evidence for"`
	Overwrite bool   `json:"overwrite,omitempty" jsonschema:"replace previously indexed evidence"`
}

// IndexOutput is the output schema for the index_evidence tool.
type IndexOutput struct {
	CaseID        string `json:"case_id"`
	IndexedChunks int    `json:"indexed_chunks"`
	RequestID     string `json:"request_id"`
}

// PayloadInput carries the loan figures for an underwrite call.
type PayloadInput struct {
	CreditScore   float64 `json:"credit_score"`
	MonthlyIncome float64 `json:"monthly_income"`
	MonthlyDebt   float64 `json:"monthly_debt"`
	LoanAmount    float64 `json:"loan_amount"`
	PropertyValue float64 `json:"property_value"`
	Occupancy     string  `json:"occupancy" jsonschema:"primary, secondary or investment"`
}

// UnderwriteInput is the input schema for the underwrite tool.
type UnderwriteInput struct {
	CaseID       string        `json:"case_id" jsonschema:"the case to underwrite"`
	Payload      *PayloadInput `json:"payload,omitempty" jsonschema:"loan figures; omitted means the demo payload"`
	ModelVersion string        `json:"model_version,omitempty" jsonschema:"model version (default from settings)"`
	TopK         int           `json:"top_k,omitempty" jsonschema:"evidence chunks to retrieve (default from settings)"`
}

// CitationOutput is one cited evidence chunk.
type CitationOutput struct {
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	StartChar  int     `json:"start_char"`
	EndChar    int     `json:"end_char"`
	Score      float64 `json:"score"`
}

// DecisionOutput is an underwrite or replay result.
// RiskScore is textual because the service may send it either way.
type DecisionOutput struct {
	CaseID         string           `json:"case_id"`
	RequestID      string           `json:"request_id"`
	Decision       string           `json:"decision"`
	RiskScore      string           `json:"risk_score"`
	PolicyID       string           `json:"policy_id"`
	PolicyDecision string           `json:"policy_decision"`
	PolicyReasons  []string         `json:"policy_reasons"`
	Summary        string           `json:"summary"`
	Reasons        []string         `json:"reasons"`
	Citations      []CitationOutput `json:"citations"`
	Fingerprint    string           `json:"fingerprint,omitempty"`
}

// UnderwriteOutput is the output schema for the underwrite tool.
type UnderwriteOutput struct {
	Result     DecisionOutput `json:"result"`
	TraceNodes int            `json:"trace_nodes"`

	// TraceError is set when the decision succeeded but its trace did not load.
	TraceError string `json:"trace_error,omitempty"`
}

// TraceInput is the input schema for the fetch_trace tool.
type TraceInput struct {
	CaseID    string `json:"case_id" jsonschema:"the case the request belongs to"`
	RequestID string `json:"request_id,omitempty" jsonschema:"request to trace (default the current one)"`
}

// TraceNodeOutput is one trace step.
type TraceNodeOutput struct {
	NodeName   string  `json:"node_name"`
	DurationMS float64 `json:"duration_ms"`
}

// TraceOutput is the output schema for the fetch_trace tool.
type TraceOutput struct {
	Nodes           []TraceNodeOutput `json:"nodes"`
	TotalDurationMS float64           `json:"total_duration_ms"`
}

// ReplayInput is the input schema for the replay tool.
type ReplayInput struct {
	CaseID    string `json:"case_id" jsonschema:"the case to replay"`
	RequestID string `json:"request_id,omitempty" jsonschema:"request to replay (default the current one)"`
}

// MismatchOutput names one diverging field.
type MismatchOutput struct {
	Field    string `json:"field"`
	Original string `json:"original"`
	Replay   string `json:"replay"`
}

// ReplayOutput is the output schema for the replay tool.
type ReplayOutput struct {
	Result     DecisionOutput   `json:"result"`
	Pass       bool             `json:"pass"`
	Message    string           `json:"message"`
	Mismatches []MismatchOutput `json:"mismatches"`
}

// SessionStatusInput takes no arguments.
type SessionStatusInput struct{}

// SessionStatusOutput is the output schema for the session_status tool.
type SessionStatusOutput struct {
	CaseID     string            `json:"case_id"`
	Phase      string            `json:"phase"`
	Busy       bool              `json:"busy"`
	DocumentID string            `json:"document_id"`
	RequestID  string            `json:"request_id"`
	Decision   string            `json:"decision"`
	TraceNodes int               `json:"trace_nodes"`
	Replayed   bool              `json:"replayed"`
	Pass       *bool             `json:"pass,omitempty"`
	Mismatches []MismatchOutput  `json:"mismatches"`
	Trace      []TraceNodeOutput `json:"trace"`
	Status     string            `json:"status"`
	Error      string            `json:"error"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract",
		Description: "Submit a plain text document for extraction and make it the case's current document",
	}, s.handleExtract)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_evidence",
		Description: "Index the current document as evidence for the case",
	}, s.handleIndex)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "underwrite",
		Description: "Request an underwriting decision and load its execution trace",
	}, s.handleUnderwrite)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fetch_trace",
		Description: "Load the execution trace of an underwrite request",
	}, s.handleFetchTrace)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "replay",
		Description: "Replay the current underwrite request and compare decision, risk score and citations",
	}, s.handleReplay)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "session_status",
		Description: "Show the shared case session state",
	}, s.handleSessionStatus)
}

func (s *Server) handleExtract(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	filename := input.Filename
	if filename == "" {
		filename = "document.txt"
	}

	res, err := s.ports.Workflow.Extract(ctx, input.CaseID, filename, input.ContentType, input.Text)
	if err != nil {
		return nil, ExtractOutput{}, err
	}
	return nil, ExtractOutput{CaseID: res.CaseID, DocumentID: res.DocumentID, RequestID: res.RequestID}, nil
}

func (s *Server) handleIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexInput,
) (*mcp.CallToolResult, IndexOutput, error) {
	res, err := s.ports.Workflow.IndexEvidence(ctx, input.CaseID, input.Overwrite)
	if err != nil {
		return nil, IndexOutput{}, err
	}
	return nil, IndexOutput{CaseID: res.CaseID, IndexedChunks: res.IndexedChunks, RequestID: res.RequestID}, nil
}

func (s *Server) handleUnderwrite(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UnderwriteInput,
) (*mcp.CallToolResult, UnderwriteOutput, error) {
	payload := domain.DefaultUnderwritePayload()
	if input.Payload != nil {
		payload = domain.UnderwritePayload{
			CreditScore:   input.Payload.CreditScore,
			MonthlyIncome: input.Payload.MonthlyIncome,
			MonthlyDebt:   input.Payload.MonthlyDebt,
			LoanAmount:    input.Payload.LoanAmount,
			PropertyValue: input.Payload.PropertyValue,
			Occupancy:     domain.Occupancy(input.Payload.Occupancy),
		}
	}
	modelVersion, topK := s.underwriteDefaults(input.ModelVersion, input.TopK)

	res, err := s.ports.Workflow.Underwrite(ctx, input.CaseID, payload, modelVersion, topK)
	if err != nil && res == nil {
		return nil, UnderwriteOutput{}, err
	}

	out := UnderwriteOutput{Result: decisionOutput(res)}
	if err != nil {
		// Decision stands; only the trace is missing
		out.TraceError = err.Error()
		return nil, out, nil
	}
	snap := s.ports.Workflow.Snapshot()
	out.TraceNodes = len(snap.Trace)
	return nil, out, nil
}

func (s *Server) underwriteDefaults(modelVersion string, topK int) (string, int) {
	defaults := domain.DefaultAppSettings().Underwrite
	if s.ports.Settings != nil {
		if settings, err := s.ports.Settings.Get(); err == nil {
			defaults = settings.Underwrite
		}
	}
	if modelVersion == "" {
		modelVersion = defaults.ModelVersion
	}
	if topK <= 0 {
		topK = defaults.TopK
	}
	return modelVersion, topK
}

func (s *Server) handleFetchTrace(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TraceInput,
) (*mcp.CallToolResult, TraceOutput, error) {
	trace, err := s.ports.Workflow.FetchTrace(ctx, input.CaseID, input.RequestID)
	if err != nil {
		return nil, TraceOutput{}, err
	}
	return nil, TraceOutput{
		Nodes:           traceOutput(trace.Nodes),
		TotalDurationMS: trace.TotalDurationMS(),
	}, nil
}

func (s *Server) handleReplay(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReplayInput,
) (*mcp.CallToolResult, ReplayOutput, error) {
	outcome, err := s.ports.Workflow.Replay(ctx, input.CaseID, input.RequestID)
	if err != nil {
		return nil, ReplayOutput{}, err
	}
	if outcome == nil || outcome.Result == nil {
		return nil, ReplayOutput{}, errors.New("replay returned no result")
	}
	return nil, ReplayOutput{
		Result:     decisionOutput(outcome.Result),
		Pass:       outcome.Comparison.Pass,
		Message:    outcome.Comparison.Message,
		Mismatches: mismatchOutput(outcome.Comparison.Mismatches),
	}, nil
}

func (s *Server) handleSessionStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ SessionStatusInput,
) (*mcp.CallToolResult, SessionStatusOutput, error) {
	snap := s.ports.Workflow.Snapshot()
	out := SessionStatusOutput{
		CaseID:     snap.CaseID,
		Phase:      snap.Phase.String(),
		Busy:       snap.Busy(),
		DocumentID: snap.DocumentID,
		RequestID:  snap.RequestID(),
		TraceNodes: len(snap.Trace),
		Replayed:   snap.Replay != nil,
		Mismatches: []MismatchOutput{},
		Trace:      traceOutput(snap.Trace),
		Status:     snap.Status,
		Error:      snap.Err,
	}
	if snap.Original != nil {
		out.Decision = snap.Original.Decision
	}
	if snap.Comparison != nil {
		pass := snap.Comparison.Pass
		out.Pass = &pass
		out.Mismatches = mismatchOutput(snap.Comparison.Mismatches)
	}
	return nil, out, nil
}

func decisionOutput(r *domain.UnderwriteResult) DecisionOutput {
	if r == nil {
		return DecisionOutput{}
	}
	citations := make([]CitationOutput, len(r.Justification.Citations))
	for i, c := range r.Justification.Citations {
		citations[i] = CitationOutput(c)
	}
	return DecisionOutput{
		CaseID:         r.CaseID,
		RequestID:      r.RequestID,
		Decision:       r.Decision,
		RiskScore:      r.RiskScore.String(),
		PolicyID:       r.Policy.PolicyID,
		PolicyDecision: r.Policy.Decision,
		PolicyReasons:  nonNil(r.Policy.Reasons),
		Summary:        r.Justification.Summary,
		Reasons:        nonNil(r.Justification.Reasons),
		Citations:      citations,
		Fingerprint:    r.Fingerprint,
	}
}

func traceOutput(nodes []domain.TraceNode) []TraceNodeOutput {
	out := make([]TraceNodeOutput, len(nodes))
	for i, n := range nodes {
		out[i] = TraceNodeOutput(n)
	}
	return out
}

func mismatchOutput(mismatches []domain.Mismatch) []MismatchOutput {
	out := make([]MismatchOutput, len(mismatches))
	for i, m := range mismatches {
		out[i] = MismatchOutput(m)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
