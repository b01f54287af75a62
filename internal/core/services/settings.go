package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driven"
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyGatewayBaseURL     = "gateway.base_url"
	KeyGatewayAPIKey      = "gateway.api_key"
	KeyGatewayBearerToken = "gateway.bearer_token"
	KeyGatewayTimeout     = "gateway.timeout_seconds"
	KeyGatewayRateRPS     = "gateway.rate_limit_rps"
	KeyGatewayRateBurst   = "gateway.rate_limit_burst"
	KeyModelVersion       = "underwrite.model_version"
	KeyTopK               = "underwrite.top_k"
	KeyHistoryEnabled     = "history.enabled"
	KeyTelemetryEnabled   = "telemetry.enabled"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
)

var settingKinds = map[string]keyKind{
	KeyGatewayBaseURL:     kindString,
	KeyGatewayAPIKey:      kindString,
	KeyGatewayBearerToken: kindString,
	KeyGatewayTimeout:     kindInt,
	KeyGatewayRateRPS:     kindFloat,
	KeyGatewayRateBurst:   kindInt,
	KeyModelVersion:       kindString,
	KeyTopK:               kindInt,
	KeyHistoryEnabled:     kindBool,
	KeyTelemetryEnabled:   kindBool,
}

type keyValue struct {
	key   string
	value any
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings.
// Unset or non-positive numeric values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Gateway: domain.GatewaySettings{
			BaseURL:        s.getString(KeyGatewayBaseURL, defaults.Gateway.BaseURL),
			APIKey:         s.configStore.GetString(KeyGatewayAPIKey),
			BearerToken:    s.configStore.GetString(KeyGatewayBearerToken),
			Timeout:        s.getTimeout(defaults.Gateway.Timeout),
			RateLimitRPS:   s.getFloat(KeyGatewayRateRPS, defaults.Gateway.RateLimitRPS),
			RateLimitBurst: s.getInt(KeyGatewayRateBurst, defaults.Gateway.RateLimitBurst),
		},
		Underwrite: domain.UnderwriteSettings{
			ModelVersion: s.getString(KeyModelVersion, defaults.Underwrite.ModelVersion),
			TopK:         s.getInt(KeyTopK, defaults.Underwrite.TopK),
		},
		History: domain.HistorySettings{
			Enabled: s.getBool(KeyHistoryEnabled, defaults.History.Enabled),
		},
		Telemetry: domain.TelemetrySettings{
			Enabled: s.getBool(KeyTelemetryEnabled, defaults.Telemetry.Enabled),
		},
	}

	return settings, nil
}

// Save persists application settings.
// Empty credentials are not written so a stored key is never blanked by accident.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []keyValue{
		{KeyGatewayBaseURL, settings.Gateway.BaseURL},
		{KeyGatewayTimeout, int(settings.Gateway.Timeout / time.Second)},
		{KeyGatewayRateRPS, settings.Gateway.RateLimitRPS},
		{KeyGatewayRateBurst, settings.Gateway.RateLimitBurst},
		{KeyModelVersion, settings.Underwrite.ModelVersion},
		{KeyTopK, settings.Underwrite.TopK},
		{KeyHistoryEnabled, settings.History.Enabled},
		{KeyTelemetryEnabled, settings.Telemetry.Enabled},
	}
	if settings.Gateway.APIKey != "" {
		values = append(values, keyValue{KeyGatewayAPIKey, settings.Gateway.APIKey})
	}
	if settings.Gateway.BearerToken != "" {
		values = append(values, keyValue{KeyGatewayBearerToken, settings.Gateway.BearerToken})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetValue parses value according to the key's type and stores it.
func (s *SettingsService) SetValue(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return &domain.ValidationError{Field: key, Reason: "unknown setting"}
	}

	var parsed any
	switch kind {
	case kindString:
		parsed = strings.TrimSpace(value)
		if key == KeyGatewayBaseURL && !(domain.GatewaySettings{BaseURL: value}).IsConfigured() {
			return &domain.ValidationError{Field: key, Reason: "must be an absolute URL"}
		}
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n <= 0 {
			return &domain.ValidationError{Field: key, Reason: "must be a positive integer"}
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || f <= 0 {
			return &domain.ValidationError{Field: key, Reason: "must be a positive number"}
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return &domain.ValidationError{Field: key, Reason: "must be true or false"}
		}
		parsed = b
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the recognised setting keys in display order.
func (s *SettingsService) Keys() []string {
	return []string{
		KeyGatewayBaseURL,
		KeyGatewayAPIKey,
		KeyGatewayBearerToken,
		KeyGatewayTimeout,
		KeyGatewayRateRPS,
		KeyGatewayRateBurst,
		KeyModelVersion,
		KeyTopK,
		KeyHistoryEnabled,
		KeyTelemetryEnabled,
	}
}

// Validate checks that the gateway settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if !settings.Gateway.IsConfigured() {
		return fmt.Errorf("gateway base URL %q is not an absolute URL", settings.Gateway.BaseURL)
	}
	if settings.Underwrite.ModelVersion == "" {
		return fmt.Errorf("underwrite model version is not set")
	}
	return nil
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if val := s.configStore.GetInt(key); val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if val := s.configStore.GetFloat(key); val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetBool(key)
	}
	return defaultVal
}

func (s *SettingsService) getTimeout(defaultVal time.Duration) time.Duration {
	if secs := s.configStore.GetInt(KeyGatewayTimeout); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
