package domain

// Phase is the workflow state machine position.
type Phase string

// Workflow phases. Every operation returns to PhaseIdle.
const (
	PhaseIdle          Phase = "idle"
	PhaseExtracting    Phase = "extracting"
	PhaseIndexing      Phase = "indexing"
	PhaseUnderwriting  Phase = "underwriting"
	PhaseFetchingTrace Phase = "fetching_trace"
	PhaseReplaying     Phase = "replaying"
)

// String returns the string representation.
func (p Phase) String() string {
	return string(p)
}

// Description returns a human-readable label for the phase.
func (p Phase) Description() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseExtracting:
		return "Extracting document"
	case PhaseIndexing:
		return "Indexing evidence"
	case PhaseUnderwriting:
		return "Underwriting"
	case PhaseFetchingTrace:
		return "Fetching trace"
	case PhaseReplaying:
		return "Replaying"
	default:
		return "Unknown"
	}
}

// Snapshot is a point-in-time copy of a workflow session.
type Snapshot struct {
	// CaseID is the case the session is bound to, empty before the first operation.
	CaseID string `json:"case_id"`

	// Phase is the operation in flight, PhaseIdle when none.
	Phase Phase `json:"phase"`

	// DocumentID is the current extracted document, empty if none.
	DocumentID string `json:"document_id,omitempty"`

	// Original is the last successful underwrite result.
	Original *UnderwriteResult `json:"original,omitempty"`

	// Replay is the replay of Original, cleared whenever Original changes.
	Replay *UnderwriteResult `json:"replay,omitempty"`

	// Trace is the timeline of the last fetched trace.
	Trace []TraceNode `json:"trace"`

	// Comparison is derived from Original and Replay; nil unless both exist.
	Comparison *ReplayComparison `json:"comparison,omitempty"`

	// Status is the last success message.
	Status string `json:"status,omitempty"`

	// Err is the current error message, cleared when the next operation starts.
	Err string `json:"error,omitempty"`
}

// Busy reports whether an operation is in flight.
func (s *Snapshot) Busy() bool {
	return s.Phase != "" && s.Phase != PhaseIdle
}

// RequestID returns the request id of the current underwrite result.
func (s *Snapshot) RequestID() string {
	if s.Original == nil {
		return ""
	}
	return s.Original.RequestID
}
