// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

// Operation names a workflow step started from the keyboard.
type Operation string

// Workflow operations.
const (
	OpExtract    Operation = "extract"
	OpIndex      Operation = "index"
	OpUnderwrite Operation = "underwrite"
	OpTrace      Operation = "trace"
	OpReplay     Operation = "replay"
)

// OperationCompleted is sent when a workflow call returns.
// The workflow holds the outcome; Err is kept for display only.
type OperationCompleted struct {
	Op  Operation
	Err error
}

// DocumentLoaded carries the text of the watched document file.
type DocumentLoaded struct {
	Path string
	Text string
	Err  error

	// Reload is set when the file watcher produced the message.
	Reload bool
}

// SettingsChanged is sent when the config file was rewritten.
type SettingsChanged struct{}
