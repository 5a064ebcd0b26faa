package credentials

import (
	"context"
	"os"
)

// Fixed environment variable names carrying principal and secret directly.
// When both are set and non-empty they take priority over any vault contents.
const (
	EnvPrincipal = "JENKGATE_USERNAME"
	EnvSecret    = "JENKGATE_API_TOKEN"
)

// EnvProvider resolves credentials from the process environment. The account
// name does not scope environment credentials; the variables are global to
// the process.
type EnvProvider struct {
	getenv func(string) string
}

// NewEnvProvider creates a provider over the real process environment.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{getenv: os.Getenv}
}

// NewEnvProviderFunc creates a provider with an injected environment, for tests.
func NewEnvProviderFunc(getenv func(string) string) *EnvProvider {
	return &EnvProvider{getenv: getenv}
}

func (p *EnvProvider) Name() string { return "env" }

// Lookup returns credentials only when both variables are set and non-empty.
func (p *EnvProvider) Lookup(_ context.Context, _ string) (*Credentials, bool) {
	principal := p.getenv(EnvPrincipal)
	secret := p.getenv(EnvSecret)
	if principal == "" || secret == "" {
		return nil, false
	}
	return &Credentials{Principal: principal, Secret: secret}, true
}
