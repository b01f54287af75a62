package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "Check the underwriting service is reachable",
	Args:  cobra.NoArgs,
	RunE:  runReady,
}

func init() {
	rootCmd.AddCommand(readyCmd)
}

func runReady(cmd *cobra.Command, _ []string) error {
	if gatewayProbe == nil {
		return errors.New("gateway not configured")
	}

	if err := gatewayProbe.Ready(cmd.Context()); err != nil {
		return fmt.Errorf("service at %s is not ready: %w", gatewayProbe.BaseURL(), err)
	}
	cmd.Printf("%s %s\n", outputStyles.Success.Render("ready"), gatewayProbe.BaseURL())
	return nil
}
