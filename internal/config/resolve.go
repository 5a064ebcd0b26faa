package config

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/rendis/jenkgate/pkg/schema"
)

// Defaults applied by Resolve for absent or wrong-typed fields.
const (
	DefaultAccountName    = "default"
	DefaultRequestTimeout = 30 * time.Second
)

// Settings is the validated, defaulted jenkgate configuration.
// Constructed once by Resolve and immutable thereafter.
type Settings struct {
	ServerURL         string        `json:"server_url,omitempty"`
	AccountName       string        `json:"account_name"`
	AllowedParameters []string      `json:"allowed_parameters"`
	RequestTimeout    time.Duration `json:"-"`
	AuditEnabled      bool          `json:"audit_enabled"`
}

// Resolve validates an untrusted raw value into Settings. Every field has an
// independent default; a field present with the wrong type falls back to its
// default rather than failing. The single fatal case is an explicitly supplied
// server_url that is not a syntactically valid absolute URL.
func Resolve(raw any) (*Settings, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		// Non-object input (nil, array, scalar) is treated as empty.
		obj = map[string]any{}
	}

	s := &Settings{
		AccountName:       DefaultAccountName,
		AllowedParameters: []string{},
		RequestTimeout:    DefaultRequestTimeout,
		AuditEnabled:      true,
	}

	if v, present := obj["server_url"]; present {
		serverURL, err := resolveServerURL(v)
		if err != nil {
			return nil, err
		}
		s.ServerURL = serverURL
	}

	if account := strings.TrimSpace(stringField(obj, "account_name")); account != "" {
		s.AccountName = account
	}

	s.AllowedParameters = stringListField(obj, "allowed_parameters")

	if ms := positiveIntField(obj, "request_timeout_ms"); ms > 0 {
		s.RequestTimeout = time.Duration(ms) * time.Millisecond
	}

	if v, present := obj["audit_enabled"]; present {
		if b, isBool := v.(bool); isBool {
			s.AuditEnabled = b
		}
	}

	return s, nil
}

// resolveServerURL validates an explicitly supplied server URL value.
func resolveServerURL(v any) (string, error) {
	str, isString := v.(string)
	if !isString {
		return "", schema.NewErrorf(schema.ErrCodeValidation,
			"server_url must be a string, got %T", v)
	}
	str = strings.TrimSpace(str)
	if str == "" {
		return "", nil
	}
	u, err := url.Parse(str)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", schema.NewErrorf(schema.ErrCodeValidation,
			"server_url is not a valid absolute URL: %q", str)
	}
	return str, nil
}

func stringField(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// stringListField extracts an ordered set of strings, deduplicating while
// preserving first-occurrence order. Non-list values and non-string elements
// are dropped.
func stringListField(obj map[string]any, key string) []string {
	out := []string{}
	v, ok := obj[key]
	if !ok {
		return out
	}
	list, ok := v.([]any)
	if !ok {
		// Tolerate a pre-typed string slice (e.g. tests or in-process callers).
		if typed, isTyped := v.([]string); isTyped {
			list = make([]any, len(typed))
			for i, s := range typed {
				list[i] = s
			}
		} else {
			return out
		}
	}
	seen := make(map[string]struct{}, len(list))
	for _, item := range list {
		s, isString := item.(string)
		if !isString {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// positiveIntField extracts a positive integer, tolerating the numeric types
// JSON decoding produces. Returns 0 when absent, non-numeric, fractional, or
// not positive.
func positiveIntField(obj map[string]any, key string) int64 {
	v, ok := obj[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		if n > 0 {
			return int64(n)
		}
	case int64:
		if n > 0 {
			return n
		}
	case float64:
		if n > 0 && n == float64(int64(n)) {
			return int64(n)
		}
	case json.Number:
		if i, err := n.Int64(); err == nil && i > 0 {
			return i
		}
	}
	return 0
}
