package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseflow-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/caseflow-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/caseflow-cli/internal/logger"
)

var (
	tuiCaseID      string
	tuiFile        string
	tuiPayloadFile string
	tuiOverwrite   bool
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive case session",
	Long: `Launch an interactive session for one case.

The document named by --file is reloaded whenever it changes on disk, and
edits to the settings file take effect on the next underwrite.

Controls:
  e - Extract the document
  i - Index evidence
  u - Underwrite
  t - Refresh the trace
  r - Replay and compare
  n - New session
  ? - Toggle help
  q - Quit`,
	Example: `  caseflow tui --case case-001 --file paystub.txt`,
	Args:    cobra.NoArgs,
	RunE:    runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiCaseID, "case", "c", "", "case id (required)")
	tuiCmd.Flags().StringVarP(&tuiFile, "file", "f", "", "document file to extract")
	tuiCmd.Flags().StringVarP(&tuiPayloadFile, "payload", "p", "", "JSON file with the loan payload (default: demo payload)")
	tuiCmd.Flags().BoolVar(&tuiOverwrite, "overwrite", false, "replace previously indexed evidence")
	_ = tuiCmd.MarkFlagRequired("case")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	payload, err := loadPayload(tuiPayloadFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	opts := tui.Options{
		CaseID:    tuiCaseID,
		Payload:   &payload,
		Overwrite: tuiOverwrite,
	}
	if tuiFile != "" {
		opts.Watcher = tui.NewDocumentWatcher(tuiFile)
	}

	ports := &tui.Ports{
		Workflow: workflowService,
		Settings: settingsService,
	}
	app, err := tui.NewApp(ports, opts)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.Watcher != nil {
		go func() {
			if err := opts.Watcher.Run(ctx); err != nil {
				logger.Warn("document watcher stopped: %v", err)
			}
		}()
	}
	if configWatcher != nil {
		go func() {
			err := configWatcher.Watch(ctx, func() { p.Send(messages.SettingsChanged{}) })
			if err != nil {
				logger.Warn("settings watcher stopped: %v", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
