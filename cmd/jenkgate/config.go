package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rendis/jenkgate/internal/config"
)

// Config holds the process-level configuration the binary needs before the
// resolver runs: where to log, where the audit database lives, and the raw
// settings handed to config.Resolve.
// Priority: env vars > settings.json > defaults.
type Config struct {
	LogLevel    string
	AuditDBPath string

	// Raw merged settings, resolver input.
	Raw map[string]any

	// Settings-file schema violations, logged as warnings at startup.
	Warnings []string
}

func jenkgateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jenkgate"
	}
	return filepath.Join(home, ".jenkgate")
}

func settingsPath() string {
	return filepath.Join(jenkgateDir(), "settings.json")
}

func loadConfig() Config {
	cfg := Config{
		LogLevel:    "info",
		AuditDBPath: filepath.Join(jenkgateDir(), "audit.db"),
		Raw:         map[string]any{},
	}

	// Layer 2: settings.json (ignore if missing or unparseable).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		var raw map[string]any
		if jsonErr := json.Unmarshal(data, &raw); jsonErr == nil {
			cfg.Warnings = config.ValidateSettings(raw)
			cfg.Raw = raw
		} else {
			cfg.Warnings = []string{"settings.json is not valid JSON: " + jsonErr.Error()}
		}
	}

	if v, ok := cfg.Raw["log_level"].(string); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := cfg.Raw["audit_db_path"].(string); ok && v != "" {
		cfg.AuditDBPath = v
	}

	// Layer 3: env vars override.
	if v := os.Getenv("JENKGATE_SERVER_URL"); v != "" {
		cfg.Raw["server_url"] = v
	}
	if v := os.Getenv("JENKGATE_ACCOUNT_NAME"); v != "" {
		cfg.Raw["account_name"] = v
	}
	if v := os.Getenv("JENKGATE_ALLOWED_PARAMETERS"); v != "" {
		var names []any
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		cfg.Raw["allowed_parameters"] = names
	}
	if v := os.Getenv("JENKGATE_REQUEST_TIMEOUT_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Raw["request_timeout_ms"] = n
		}
	}
	if v := os.Getenv("JENKGATE_AUDIT_ENABLED"); v != "" {
		cfg.Raw["audit_enabled"] = v == "true" || v == "1"
	}
	if v := os.Getenv("JENKGATE_AUDIT_DB_PATH"); v != "" {
		cfg.AuditDBPath = v
	}
	if v := os.Getenv("JENKGATE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg
}
