package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const apiKeySetting = "gateway.api_key"

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change how caseflow reaches the underwriting service and the
defaults used for underwrite requests.

Settings are stored in ~/.caseflow/config.toml. CASEFLOW_GATEWAY_URL,
CASEFLOW_API_KEY and CASEFLOW_BEARER_TOKEN override the stored values for
a single invocation.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:     "set [key] [value]",
	Short:   "Set one setting",
	Example: `  caseflow settings set gateway.base_url http://uw.internal:8000
  caseflow settings set underwrite.top_k 8`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List recognised setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsAPIKeyCmd = &cobra.Command{
	Use:   "api-key",
	Short: "Store the gateway API key",
	Long:  `Prompts for the gateway API key without echoing it and stores it.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsAPIKey,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsAPIKeyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	s := outputStyles

	cmd.Println(s.Title.Render("Gateway"))
	cmd.Println(s.Row("Base URL", settings.Gateway.BaseURL))
	cmd.Println(s.Row("API key", maskSecret(settings.Gateway.APIKey)))
	cmd.Println(s.Row("Bearer token", maskSecret(settings.Gateway.BearerToken)))
	cmd.Println(s.Row("Timeout", settings.Gateway.Timeout.String()))
	cmd.Println(s.Row("Rate limit", fmt.Sprintf("%g req/s, burst %d",
		settings.Gateway.RateLimitRPS, settings.Gateway.RateLimitBurst)))
	cmd.Println()

	cmd.Println(s.Title.Render("Underwrite"))
	cmd.Println(s.Row("Model version", settings.Underwrite.ModelVersion))
	cmd.Println(s.Row("Top K", fmt.Sprint(settings.Underwrite.TopK)))
	cmd.Println()

	cmd.Println(s.Title.Render("Other"))
	cmd.Println(s.Row("History", onOff(settings.History.Enabled)))
	cmd.Println(s.Row("Telemetry", onOff(settings.Telemetry.Enabled)))
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Println(s.Warning.Render("Warning: " + err.Error()))
		cmd.Println("Run 'caseflow settings set gateway.base_url <url>' to fix it.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetValue(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	value := args[1]
	if strings.HasSuffix(args[0], "api_key") || strings.HasSuffix(args[0], "token") {
		value = maskSecret(value)
	}
	cmd.Printf("%s = %s\n", args[0], value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsAPIKey(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Print("Enter API key: ")
	key := readPassword(cmd)
	cmd.Println()
	if key == "" {
		return errors.New("API key is required")
	}

	if err := settingsService.SetValue(apiKeySetting, key); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}
	cmd.Printf("API key stored: %s\n", maskSecret(key))
	return nil
}

// readPassword reads a line without echo when stdin is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(cmd *cobra.Command) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	reader := bufio.NewReader(cmd.InOrStdin())
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(secret string) string {
	switch {
	case secret == "":
		return "(not set)"
	case len(secret) <= 8:
		return "****"
	default:
		return secret[:4] + "..." + secret[len(secret)-4:]
	}
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
