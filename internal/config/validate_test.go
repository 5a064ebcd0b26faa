package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSettingsClean(t *testing.T) {
	violations := ValidateSettings(map[string]any{
		"server_url":         "https://ci.example.com",
		"account_name":       "prod",
		"allowed_parameters": []any{"APP_VERSION"},
		"request_timeout_ms": 5000,
		"audit_enabled":      true,
		"log_level":          "debug",
	})
	assert.Empty(t, violations)
}

func TestValidateSettingsEmptyObject(t *testing.T) {
	assert.Empty(t, ValidateSettings(map[string]any{}))
}

func TestValidateSettingsWrongTypes(t *testing.T) {
	violations := ValidateSettings(map[string]any{
		"server_url":         12345,
		"allowed_parameters": "APP_VERSION",
	})
	assert.NotEmpty(t, violations)
	joined := ""
	for _, v := range violations {
		joined += v + "\n"
	}
	assert.Contains(t, joined, "server_url")
	assert.Contains(t, joined, "allowed_parameters")
}

func TestValidateSettingsUnknownKey(t *testing.T) {
	violations := ValidateSettings(map[string]any{
		"server": "https://ci.example.com",
	})
	assert.NotEmpty(t, violations)
}

func TestValidateSettingsBadEnum(t *testing.T) {
	violations := ValidateSettings(map[string]any{
		"log_level": "verbose",
	})
	assert.NotEmpty(t, violations)
}
