package responses

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.ResponseNormaliser = (*Normaliser)(nil)

// Normaliser maps gateway bodies to domain types.
type Normaliser struct {
	underwrite *jsonschema.Schema
}

// New creates a normaliser with the underwrite schema compiled.
func New() (*Normaliser, error) {
	schema, err := compileUnderwriteSchema()
	if err != nil {
		return nil, err
	}
	return &Normaliser{underwrite: schema}, nil
}

// MustNew is New for package-level wiring where the embedded schema is known good.
func MustNew() *Normaliser {
	n, err := New()
	if err != nil {
		panic(err)
	}
	return n
}

// Extract requires a non-empty document_id.
func (n *Normaliser) Extract(raw []byte) (*domain.ExtractResult, error) {
	obj, err := decodeObject("extract", raw)
	if err != nil {
		return nil, err
	}

	documentID := stringField(obj, "document_id")
	if documentID == "" {
		return nil, &domain.MalformedResponseError{Op: "extract", Field: "document_id", Reason: "missing or empty"}
	}

	return &domain.ExtractResult{
		CaseID:     stringField(obj, "case_id"),
		DocumentID: documentID,
		RequestID:  stringField(obj, "request_id"),
	}, nil
}

// Index accepts any JSON object; the index call is a status signal.
func (n *Normaliser) Index(raw []byte) (*domain.IndexResult, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return &domain.IndexResult{}, nil
	}
	obj, err := decodeObject("index", raw)
	if err != nil {
		return nil, err
	}

	chunks, _ := numberField(obj["indexed_chunks"])
	return &domain.IndexResult{
		CaseID:        stringField(obj, "case_id"),
		IndexedChunks: int(chunks),
		RequestID:     stringField(obj, "request_id"),
	}, nil
}

// Underwrite validates the body against the underwrite schema and decodes it.
func (n *Normaliser) Underwrite(raw []byte) (*domain.UnderwriteResult, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &domain.MalformedResponseError{Op: "underwrite", Reason: "empty body"}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return nil, &domain.MalformedResponseError{Op: "underwrite", Reason: "invalid JSON: " + err.Error()}
	}
	if err := n.underwrite.Validate(instance); err != nil {
		return nil, schemaError(err)
	}

	var result domain.UnderwriteResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &domain.MalformedResponseError{Op: "underwrite", Reason: err.Error()}
	}
	result.Fingerprint = Fingerprint(raw)
	return &result, nil
}

// Trace maps the nested trace list, defaulting names and durations.
func (n *Normaliser) Trace(raw []byte) (*domain.Trace, error) {
	obj, err := decodeObject("trace", raw)
	if err != nil {
		return nil, err
	}

	outer, ok := obj["trace"].(map[string]any)
	if !ok {
		return nil, &domain.MalformedResponseError{Op: "trace", Field: "trace", Reason: "missing trace object"}
	}

	trace := &domain.Trace{
		CaseID:    stringField(outer, "case_id"),
		RequestID: stringField(outer, "request_id"),
		ModelID:   stringField(outer, "model_id"),
		Nodes:     []domain.TraceNode{},
	}

	list, present := outer["trace"]
	if !present || list == nil {
		return trace, nil
	}
	entries, ok := list.([]any)
	if !ok {
		return nil, &domain.MalformedResponseError{Op: "trace", Field: "trace.trace", Reason: "not a list"}
	}

	for _, entry := range entries {
		trace.Nodes = append(trace.Nodes, normaliseNode(entry))
	}
	return trace, nil
}

// normaliseNode never fails. Non-object entries become an unknown zero node.
func normaliseNode(entry any) domain.TraceNode {
	node := domain.TraceNode{NodeName: domain.UnknownNodeName}
	obj, ok := entry.(map[string]any)
	if !ok {
		return node
	}
	if name, ok := obj["node_name"].(string); ok {
		node.NodeName = name
	}
	if d, ok := numberField(obj["duration_ms"]); ok {
		node.DurationMS = d
	}
	return node
}

func decodeObject(op string, raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &domain.MalformedResponseError{Op: op, Reason: "empty body"}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, &domain.MalformedResponseError{Op: op, Reason: "invalid JSON: " + err.Error()}
	}
	if obj == nil {
		return nil, &domain.MalformedResponseError{Op: op, Reason: "body is not an object"}
	}
	return obj, nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// numberField coerces JSON numbers and numeric strings.
func numberField(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return finite(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	default:
		return 0, false
	}
}

// finite rejects NaN and infinities, which ParseFloat accepts by name.
func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// schemaError reduces a schema validation failure to its first leaf cause.
func schemaError(err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &domain.MalformedResponseError{Op: "underwrite", Reason: err.Error()}
	}
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	field := strings.TrimPrefix(verr.InstanceLocation, "/")
	field = strings.ReplaceAll(field, "/", ".")
	return &domain.MalformedResponseError{
		Op:     "underwrite",
		Field:  field,
		Reason: fmt.Sprint(verr.Message),
	}
}
