// Package cli provides the caseflow command line interface.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driving"
	"github.com/custodia-labs/caseflow-cli/internal/logger"
)

// Exit codes returned by the caseflow binary.
const (
	ExitOK       = 0
	ExitMismatch = 1
	ExitFailure  = 2
)

// ErrReplayMismatch is returned when a replay diverges from its original.
// The comparison has already been printed when it is returned.
var ErrReplayMismatch = errors.New("replay mismatch")

// GatewayProbe checks that the underwriting service is reachable.
type GatewayProbe interface {
	Ready(ctx context.Context) error
	BaseURL() string
}

// ConfigWatcher reports edits to the settings file.
type ConfigWatcher interface {
	Watch(ctx context.Context, onChange func()) error
}

var (
	version = "dev"
	verbose bool

	// Services injected by main.
	workflowService driving.CaseWorkflow
	settingsService driving.SettingsService
	historyService  driving.HistoryService
	gatewayProbe    GatewayProbe
	configWatcher   ConfigWatcher
)

var rootCmd = &cobra.Command{
	Use:   "caseflow",
	Short: "Drive and verify mortgage underwriting cases",
	Long: `caseflow runs one underwriting case at a time against the underwriting
service: extract a document, index it as evidence, request a decision with
its execution trace, then replay the request to check the decision is
reproducible.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logging to stderr")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetCaseWorkflow sets the workflow used by run, trace, tui and mcp.
func SetCaseWorkflow(w driving.CaseWorkflow) {
	workflowService = w
}

// SetSettingsService sets the settings service.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetHistoryService sets the verification history service.
func SetHistoryService(h driving.HistoryService) {
	historyService = h
}

// SetGatewayProbe sets the readiness probe used by the ready command.
func SetGatewayProbe(p GatewayProbe) {
	gatewayProbe = p
}

// SetConfigWatcher sets the watcher the TUI uses to pick up settings edits.
func SetConfigWatcher(w ConfigWatcher) {
	configWatcher = w
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrReplayMismatch):
		return ExitMismatch
	default:
		return ExitFailure
	}
}

// underwriteDefaults returns the configured model version and top_k.
func underwriteDefaults() domain.UnderwriteSettings {
	defaults := domain.DefaultAppSettings().Underwrite
	if settingsService == nil {
		return defaults
	}
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("using default underwrite settings: %v", err)
		return defaults
	}
	return settings.Underwrite
}
