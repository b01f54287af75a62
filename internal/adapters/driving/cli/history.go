package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [case-id]",
	Short: "List past replay verifications",
	Long: `Lists recorded replay verifications, newest first. Pass a case id to
only show verifications for that case.`,
	Example: `  caseflow history
  caseflow history case-001 --limit 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one verification in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", domain.DefaultHistoryListLimit, "maximum records to list")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	filter := domain.VerificationFilter{Limit: historyLimit}
	if len(args) == 1 {
		filter.CaseID = args[0]
	}

	records, err := historyService.List(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if historyJSON {
		if records == nil {
			records = []domain.VerificationRecord{}
		}
		return writeJSON(cmd, records)
	}
	printHistory(cmd, records)
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	record, err := historyService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get verification: %w", err)
	}

	if historyJSON {
		return writeJSON(cmd, record)
	}
	printRecord(cmd, record)
	return nil
}
