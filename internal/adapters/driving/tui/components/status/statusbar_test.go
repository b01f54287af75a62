package status

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseflow-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/caseflow-cli/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_ReadyView(t *testing.T) {
	bar := NewBar(nil, nil)

	view := bar.View()

	assert.Contains(t, view, "Ready")
	assert.Contains(t, view, "e: extract")
	assert.Contains(t, view, "q: quit")
	assert.NotContains(t, view, "\n")
	assert.Equal(t, 80, lipgloss.Width(view))
}

func TestStatusBar_NarrowDropsHints(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(30)

	view := bar.View()

	assert.Contains(t, view, "Ready")
	assert.NotContains(t, view, "q: quit")
	assert.NotContains(t, view, "\n")
}

func TestStatusBar_StatusMessage(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)
	bar.SetMessage("Extracted document d1")

	assert.Contains(t, bar.View(), "Extracted document d1")
}

func TestStatusBar_ErrorView(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)
	bar.SetState(StateError)
	bar.SetMessage("trace not found")

	assert.Contains(t, bar.View(), "Error: trace not found")
}

func TestStatusBar_BusyHidesWorkflowHints(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)
	bar.SetState(StateBusy)
	bar.SetActivity("*")
	bar.SetMessage("Underwriting")

	view := bar.View()

	assert.Contains(t, view, "* Underwriting")
	assert.NotContains(t, view, "e: extract")
	assert.Contains(t, view, "q: quit")
	assert.NotContains(t, view, "\n")
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetActivity("*")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
}
