// Package responses normalises raw underwriting service bodies into
// domain types.
//
// Underwrite and replay bodies are validated against an embedded JSON
// Schema before decoding; nothing in them is defaulted. Trace bodies are
// lenient: a node without a name is reported as "unknown" and a missing
// or non-numeric duration as zero. Node order is preserved.
package responses
