package domain

// Fixed replay comparison messages.
const (
	ReplayPassMessage     = "Replay comparison passed (decision, risk_score, citations)."
	ReplayMismatchMessage = "Replay mismatch detected."
)

// Compared fields.
const (
	FieldDecision  = "decision"
	FieldRiskScore = "risk_score"
	FieldCitations = "citations"
)

// Mismatch names one compared field that diverged.
type Mismatch struct {
	Field    string `json:"field"`
	Original string `json:"original"`
	Replay   string `json:"replay"`
}

// ReplayComparison is the derived verdict of a replay against its original.
// It is recomputed whenever both results exist and is never stored by the core.
type ReplayComparison struct {
	Pass       bool       `json:"pass"`
	Message    string     `json:"message"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}
