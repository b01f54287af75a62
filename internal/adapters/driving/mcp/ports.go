package mcp

import (
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Workflow runs the shared case session.
	Workflow driving.CaseWorkflow

	// History reads replay verification records. Optional.
	History driving.HistoryService

	// Settings supplies underwrite defaults. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Workflow == nil {
		return ErrMissingWorkflow
	}
	return nil
}
