// Package domain defines the core business entities for Caseflow.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document / ExtractResult: a document submitted for extraction
//   - UnderwritePayload / UnderwriteResult: an underwriting request and decision
//   - Citation: an evidentiary pointer into an indexed chunk
//   - TraceNode: one step of service-side execution
//   - ReplayComparison: the verdict of a replay against its original
//   - Snapshot: the session state held by the workflow orchestrator
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
