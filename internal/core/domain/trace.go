package domain

// UnknownNodeName replaces a trace node name the service omitted.
const UnknownNodeName = "unknown"

// TraceNode is one step of service-side execution.
type TraceNode struct {
	NodeName   string  `json:"node_name"`
	DurationMS float64 `json:"duration_ms"`
}

// Trace is the execution record for one request.
// Nodes are in execution order and are never re-sorted.
type Trace struct {
	CaseID    string      `json:"case_id,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	ModelID   string      `json:"model_id,omitempty"`
	Nodes     []TraceNode `json:"nodes"`
}

// TotalDurationMS sums the node durations.
func (t *Trace) TotalDurationMS() float64 {
	var total float64
	for _, n := range t.Nodes {
		total += n.DurationMS
	}
	return total
}
