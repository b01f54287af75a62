// Command caseflow drives and verifies underwriting cases.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/caseflow-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/caseflow-cli/internal/adapters/driven/gateway/rest"
	"github.com/custodia-labs/caseflow-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/caseflow-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/caseflow-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driven"
	"github.com/custodia-labs/caseflow-cli/internal/core/services"
	"github.com/custodia-labs/caseflow-cli/internal/logger"
	"github.com/custodia-labs/caseflow-cli/internal/normalisers/responses"
	"github.com/custodia-labs/caseflow-cli/internal/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup, err := wire()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitFailure
	}
	defer cleanup()

	err = cli.Execute(ctx)
	if err != nil && !errors.Is(err, cli.ErrReplayMismatch) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return cli.ExitCode(err)
}

// wire builds the services and hands them to the cli package.
// A gateway that cannot be built leaves the workflow unset so the
// settings commands still work.
func wire() (func(), error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cli.SetVersion(version)

	var configStore driven.ConfigStore
	fileStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: settings will not be saved: %v\n", err)
		configStore = memory.NewConfigStore()
	} else {
		configStore = fileStore
		cli.SetConfigWatcher(fileStore)
	}
	settingsService := services.NewSettingsService(configStore)
	cli.SetSettingsService(settingsService)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	applyEnvOverrides(&settings.Gateway)

	shutdownTracer, err := telemetry.InitTracer(telemetry.Options{Enabled: settings.Telemetry.Enabled})
	if err != nil {
		return nil, err
	}
	closers := []func(){func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			logger.Warn("tracer shutdown: %v", err)
		}
	}}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var history driven.VerificationStore = memory.NewVerificationStore()
	if settings.History.Enabled {
		store, err := sqlite.NewStore("")
		if err != nil {
			logger.Warn("history disabled: %v", err)
		} else {
			history = store.VerificationStore()
			closers = append(closers, func() { _ = store.Close() })
		}
	}
	cli.SetHistoryService(services.NewHistoryService(history))

	client, err := rest.NewClient(rest.ConfigFromSettings(settings.Gateway))
	if err != nil {
		logger.Warn("gateway unavailable: %v", err)
		return cleanup, nil
	}
	normaliser, err := responses.New()
	if err != nil {
		cleanup()
		return nil, err
	}
	cli.SetGatewayProbe(client)
	cli.SetCaseWorkflow(services.NewCaseWorkflow(client, normaliser, history))

	return cleanup, nil
}

// applyEnvOverrides lets the environment override stored gateway settings
// for one invocation without persisting them.
func applyEnvOverrides(g *domain.GatewaySettings) {
	if v := os.Getenv("CASEFLOW_GATEWAY_URL"); v != "" {
		g.BaseURL = v
	}
	if v := os.Getenv("CASEFLOW_API_KEY"); v != "" {
		g.APIKey = v
	}
	if v := os.Getenv("CASEFLOW_BEARER_TOKEN"); v != "" {
		g.BearerToken = v
	}
}
