package domain

import "time"

// VerificationRecord is the durable outcome of one replay verification.
// Written by the workflow after every replay; read by the history command.
type VerificationRecord struct {
	ID           string `json:"id"`
	CaseID       string `json:"case_id"`
	RequestID    string `json:"request_id"`
	ModelVersion string `json:"model_version,omitempty"`

	Pass       bool       `json:"pass"`
	Message    string     `json:"message"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`

	OriginalDecision  string `json:"original_decision"`
	ReplayDecision    string `json:"replay_decision"`
	OriginalRiskScore Number `json:"original_risk_score"`
	ReplayRiskScore   Number `json:"replay_risk_score"`

	// Fingerprints of the canonical response bodies.
	OriginalFingerprint string `json:"original_fingerprint,omitempty"`
	ReplayFingerprint   string `json:"replay_fingerprint,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// VerificationFilter narrows a history listing.
type VerificationFilter struct {
	// CaseID restricts to one case when non-empty.
	CaseID string

	// Limit caps the number of records; zero means the store default.
	Limit int
}
