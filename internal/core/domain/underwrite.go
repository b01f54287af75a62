package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Occupancy describes how the borrower will use the property.
type Occupancy string

// Occupancy values understood by the underwriting service.
const (
	OccupancyPrimary    Occupancy = "primary"
	OccupancySecondary  Occupancy = "secondary"
	OccupancyInvestment Occupancy = "investment"
)

// IsValid returns true if the occupancy is one the service documents.
// The workflow never enforces this; rejection is the service's call.
func (o Occupancy) IsValid() bool {
	switch o {
	case OccupancyPrimary, OccupancySecondary, OccupancyInvestment:
		return true
	default:
		return false
	}
}

// UnderwritePayload holds the operator-supplied loan figures.
type UnderwritePayload struct {
	CreditScore   float64   `json:"credit_score"`
	MonthlyIncome float64   `json:"monthly_income"`
	MonthlyDebt   float64   `json:"monthly_debt"`
	LoanAmount    float64   `json:"loan_amount"`
	PropertyValue float64   `json:"property_value"`
	Occupancy     Occupancy `json:"occupancy"`
}

// DefaultUnderwritePayload returns the demo payload offered to operators.
func DefaultUnderwritePayload() UnderwritePayload {
	return UnderwritePayload{
		CreditScore:   710,
		MonthlyIncome: 9000,
		MonthlyDebt:   2600,
		LoanAmount:    280000,
		PropertyValue: 450000,
		Occupancy:     OccupancyPrimary,
	}
}

// ParseUnderwritePayload decodes a JSON payload typed by an operator.
// Values are not range checked.
func ParseUnderwritePayload(data []byte) (UnderwritePayload, error) {
	var payload UnderwritePayload
	if len(bytes.TrimSpace(data)) == 0 {
		return payload, &ValidationError{Field: "payload", Reason: "payload is empty"}
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, &ValidationError{Field: "payload", Reason: "unparsable JSON: " + err.Error()}
	}
	return payload, nil
}

// Number is a numeric wire value kept in its textual form.
// The service may send 0.5 or "0.5"; both normalise to "0.5".
type Number string

// Float coerces the value to a float64.
// Returns false when the text is not numeric.
func (n Number) Float() (float64, bool) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String returns the textual form.
func (n Number) String() string {
	return string(n)
}

// MarshalJSON writes numeric values as JSON numbers and anything else as a string.
func (n Number) MarshalJSON() ([]byte, error) {
	if _, ok := n.Float(); ok && json.Valid([]byte(strings.TrimSpace(string(n)))) {
		return []byte(strings.TrimSpace(string(n))), nil
	}
	return json.Marshal(string(n))
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (n *Number) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}
	*n = Number(trimmed)
	return nil
}

// Policy is the rule-based policy outcome attached to a decision.
type Policy struct {
	PolicyID string             `json:"policy_id"`
	Decision string             `json:"decision"`
	Reasons  []string           `json:"reasons"`
	Derived  map[string]float64 `json:"derived"`
}

// Citation points from a justification into an evidence chunk.
// DocumentID and ChunkID together identify the chunk.
type Citation struct {
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	StartChar  int     `json:"start_char"`
	EndChar    int     `json:"end_char"`
	Score      float64 `json:"score"`
}

// Justification explains a decision with reasons and citations.
type Justification struct {
	Summary   string     `json:"summary"`
	Reasons   []string   `json:"reasons"`
	Citations []Citation `json:"citations"`
}

// UnderwriteResult is a decision returned by underwrite or replay.
type UnderwriteResult struct {
	SchemaVersion string        `json:"schema_version"`
	CaseID        string        `json:"case_id"`
	Decision      string        `json:"decision"`
	RiskScore     Number        `json:"risk_score"`
	Policy        Policy        `json:"policy"`
	Justification Justification `json:"justification"`

	// RequestID is the durable key for trace and replay lookups.
	RequestID string `json:"request_id"`

	// Fingerprint is a SHA-256 of the canonical response body.
	// Set by the normaliser; empty when built by hand.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// CitationChunkIDs returns chunk ids in the order the service ranked them.
func (r *UnderwriteResult) CitationChunkIDs() []string {
	ids := make([]string, len(r.Justification.Citations))
	for i, c := range r.Justification.Citations {
		ids[i] = c.ChunkID
	}
	return ids
}

// Clone returns a deep copy.
func (r *UnderwriteResult) Clone() *UnderwriteResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Policy.Reasons = append([]string(nil), r.Policy.Reasons...)
	if r.Policy.Derived != nil {
		out.Policy.Derived = make(map[string]float64, len(r.Policy.Derived))
		for k, v := range r.Policy.Derived {
			out.Policy.Derived[k] = v
		}
	}
	out.Justification.Reasons = append([]string(nil), r.Justification.Reasons...)
	out.Justification.Citations = append([]Citation(nil), r.Justification.Citations...)
	return &out
}

// UnderwriteRequest is the body sent to the underwrite operation.
type UnderwriteRequest struct {
	Payload      UnderwritePayload `json:"payload"`
	ModelVersion string            `json:"model_version"`
	TopK         int               `json:"top_k"`
}
