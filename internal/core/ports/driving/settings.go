package driving

import "github.com/custodia-labs/caseflow-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with defaults applied.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetValue sets a single setting by key, converting the text value
	// to the key's type.
	SetValue(key, value string) error

	// Keys lists the recognised setting keys.
	Keys() []string

	// Validate checks the current settings can reach a gateway.
	Validate() error
}
