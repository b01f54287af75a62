package domain

import (
	"net/url"
	"strings"
	"time"
)

// Default settings values.
const (
	DefaultGatewayBaseURL   = "http://localhost:8000"
	DefaultGatewayTimeout   = 30 * time.Second
	DefaultRateLimitRPS     = 5.0
	DefaultRateLimitBurst   = 10
	DefaultModelVersion     = "baseline_v1"
	DefaultTopK             = 5
	DefaultHistoryListLimit = 20
)

// GatewaySettings configures the connection to the underwriting service.
type GatewaySettings struct {
	// BaseURL is the root of the service API.
	BaseURL string

	// APIKey is sent as X-API-Key when set.
	APIKey string

	// BearerToken is sent as an Authorization bearer token when set.
	BearerToken string

	// Timeout bounds each HTTP exchange.
	Timeout time.Duration

	// RateLimitRPS is the sustained client-side request rate.
	RateLimitRPS float64

	// RateLimitBurst is the token bucket size.
	RateLimitBurst int
}

// IsConfigured returns true if the base URL parses as an absolute URL.
func (g GatewaySettings) IsConfigured() bool {
	if strings.TrimSpace(g.BaseURL) == "" {
		return false
	}
	u, err := url.Parse(g.BaseURL)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// UnderwriteSettings holds defaults for underwrite requests.
type UnderwriteSettings struct {
	ModelVersion string
	TopK         int
}

// HistorySettings controls the verification history store.
type HistorySettings struct {
	Enabled bool
}

// TelemetrySettings controls OpenTelemetry tracing of gateway calls.
type TelemetrySettings struct {
	Enabled bool
}

// AppSettings contains all application configuration.
type AppSettings struct {
	Gateway    GatewaySettings
	Underwrite UnderwriteSettings
	History    HistorySettings
	Telemetry  TelemetrySettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Gateway: GatewaySettings{
			BaseURL:        DefaultGatewayBaseURL,
			Timeout:        DefaultGatewayTimeout,
			RateLimitRPS:   DefaultRateLimitRPS,
			RateLimitBurst: DefaultRateLimitBurst,
		},
		Underwrite: UnderwriteSettings{
			ModelVersion: DefaultModelVersion,
			TopK:         DefaultTopK,
		},
		History: HistorySettings{
			Enabled: true,
		},
	}
}
