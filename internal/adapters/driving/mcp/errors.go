// Package mcp provides an MCP (Model Context Protocol) server adapter for caseflow.
// It lets AI assistants drive an underwriting case session one tool call at a time.
package mcp

import "errors"

// ErrMissingWorkflow is returned when the case workflow is not provided.
var ErrMissingWorkflow = errors.New("mcp: case workflow is required")
