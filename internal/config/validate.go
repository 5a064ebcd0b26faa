package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// settingsSchemaJSON is the JSON Schema for the settings file. Embedded as a
// constant to avoid filesystem dependencies. Violations are advisory: Resolve
// still applies per-field defaults, so a malformed file degrades instead of
// failing outright.
const settingsSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://jenkgate.dev/schemas/settings.json",
  "type": "object",
  "properties": {
    "server_url": {
      "type": "string",
      "format": "uri"
    },
    "account_name": {
      "type": "string",
      "minLength": 1
    },
    "allowed_parameters": {
      "type": "array",
      "items": {
        "type": "string",
        "minLength": 1
      }
    },
    "request_timeout_ms": {
      "type": "integer",
      "minimum": 1
    },
    "audit_enabled": {
      "type": "boolean"
    },
    "audit_db_path": {
      "type": "string",
      "minLength": 1
    },
    "log_level": {
      "type": "string",
      "enum": ["debug", "info", "warn", "error"]
    }
  },
  "additionalProperties": false
}`

var (
	settingsSchemaOnce sync.Once
	settingsSchema     *jsonschema.Schema
	settingsSchemaErr  error
)

func compiledSettingsSchema() (*jsonschema.Schema, error) {
	settingsSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.AssertFormat()

		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(settingsSchemaJSON))
		if err != nil {
			settingsSchemaErr = fmt.Errorf("unmarshal settings schema: %w", err)
			return
		}
		if err := c.AddResource("https://jenkgate.dev/schemas/settings.json", doc); err != nil {
			settingsSchemaErr = fmt.Errorf("add settings schema resource: %w", err)
			return
		}
		settingsSchema, settingsSchemaErr = c.Compile("https://jenkgate.dev/schemas/settings.json")
	})
	return settingsSchema, settingsSchemaErr
}

// ValidateSettings checks a raw settings value against the settings schema
// and returns one message per violation. An empty slice means the value is
// schema-clean. Violations never block resolution.
func ValidateSettings(raw any) []string {
	compiled, err := compiledSettingsSchema()
	if err != nil {
		return []string{err.Error()}
	}

	doc, err := toJSONValue(raw)
	if err != nil {
		return []string{fmt.Sprintf("settings are not JSON-serializable: %v", err)}
	}

	if err := compiled.Validate(doc); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			return collectViolations(verr)
		}
		return []string{err.Error()}
	}
	return nil
}

// toJSONValue round-trips a Go value through JSON encoding so that numbers
// become json.Number (required by the jsonschema library).
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// collectViolations walks a ValidationError tree and collects leaf messages
// with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
