package rest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// errorEnvelope covers the three shapes the service uses for failures.
// Error is left untyped since some services send a bare string there.
type errorEnvelope struct {
	Error   any `json:"error"`
	Detail  any `json:"detail"`
	Message any `json:"message"`
}

// ResolveErrorMessage picks the human-readable message from an error body.
// It tries error.message, then detail, then message, taking the first
// non-empty string. Anything else falls back to "request failed (HTTP <status>)".
func ResolveErrorMessage(body []byte, status int) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		candidates := []any{nil, env.Detail, env.Message}
		if obj, ok := env.Error.(map[string]any); ok {
			candidates[0] = obj["message"]
		}
		for _, c := range candidates {
			if s, ok := c.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return fmt.Sprintf("request failed (HTTP %d)", status)
}
