package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var traceJSON bool

var traceCmd = &cobra.Command{
	Use:   "trace [case-id] [request-id]",
	Short: "Show the execution trace of an underwrite request",
	Long: `Fetches the per-node execution timeline recorded for an underwrite
request. Nodes are shown in execution order with their durations.`,
	Example: `  caseflow trace case-001 req-7f3a`,
	Args:    cobra.ExactArgs(2),
	RunE:    runTrace,
}

func init() {
	traceCmd.Flags().BoolVar(&traceJSON, "json", false, "output the trace as JSON")
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	if workflowService == nil {
		return errors.New("case workflow not configured")
	}

	trace, err := workflowService.FetchTrace(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("fetch trace failed: %w", err)
	}

	if traceJSON {
		return writeJSON(cmd, trace)
	}
	printTrace(cmd, trace.Nodes)
	return nil
}
