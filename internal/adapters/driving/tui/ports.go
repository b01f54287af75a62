// Package tui provides an interactive terminal session for one underwriting case.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Workflow runs the case session.
	Workflow driving.CaseWorkflow

	// Settings supplies underwrite defaults. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Workflow == nil {
		return ErrMissingWorkflow
	}
	return nil
}
