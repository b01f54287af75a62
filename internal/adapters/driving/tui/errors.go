package tui

import "errors"

// ErrMissingWorkflow is returned when the case workflow is not provided.
var ErrMissingWorkflow = errors.New("tui: case workflow is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")

// ErrNoDocument is shown when extract is pressed before a document loads.
var ErrNoDocument = errors.New("no document loaded; pass --file")
