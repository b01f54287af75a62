// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the session screen.
type KeyMap struct {
	// Extract submits the loaded document.
	Extract key.Binding

	// Index indexes the current document as case evidence.
	Index key.Binding

	// Underwrite requests a decision and its trace.
	Underwrite key.Binding

	// Trace reloads the trace for the current request.
	Trace key.Binding

	// Replay re-runs the current request and compares.
	Replay key.Binding

	// NewSession discards the session state.
	NewSession key.Binding

	// Help toggles the full help.
	Help key.Binding

	// Quit exits the application.
	Quit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Extract: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "extract"),
		),
		Index: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "index"),
		),
		Underwrite: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "underwrite"),
		),
		Trace: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "trace"),
		),
		Replay: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "replay"),
		),
		NewSession: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new session"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Extract, k.Index, k.Underwrite, k.Replay, k.Help, k.Quit}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Extract, k.Index, k.Underwrite},
		{k.Trace, k.Replay, k.NewSession},
		{k.Help, k.Quit},
	}
}

// WorkflowBindings returns the bindings that start a workflow operation.
func (k *KeyMap) WorkflowBindings() []key.Binding {
	return []key.Binding{k.Extract, k.Index, k.Underwrite, k.Trace, k.Replay}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
