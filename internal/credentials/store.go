// Package credentials resolves the (principal, secret) pair used for Jenkins
// Basic auth. Sources are tried in a fixed priority order: process environment
// first, then the platform secret vault. The vault is the source of truth for
// stored credentials but environment values, when both are present, always win.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

// Credentials is a resolved (principal, secret) pair. Never persisted in the
// configuration object; resolved freshly on every read.
type Credentials struct {
	Principal string `json:"principal"`
	Secret    string `json:"secret"`
}

// Provider is a single ordered credential source.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, account string) (*Credentials, bool)
}

// Store resolves, writes, and deletes credentials scoped by account name.
// Reads walk the provider list in order; mutations go to the vault backend.
type Store struct {
	providers []Provider
	backend   Backend
	logger    *slog.Logger
}

// NewStore creates a Store over an explicit, ordered provider list and a vault
// backend for mutations. A nil logger falls back to slog.Default.
func NewStore(providers []Provider, backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{providers: providers, backend: backend, logger: logger}
}

// NewDefaultStore creates a Store with the standard provider order
// (environment, then platform vault) for the running platform.
func NewDefaultStore(logger *slog.Logger) *Store {
	backend := NewBackend()
	return NewStore([]Provider{
		NewEnvProvider(),
		NewVaultProvider(backend),
	}, backend, logger)
}

// Read resolves credentials for the account, or (nil, false) when absent.
// Failures inside any provider are swallowed to absence: a missing secret is
// an expected, recoverable state for first-run flows.
func (s *Store) Read(ctx context.Context, account string) (*Credentials, bool) {
	account = defaultAccount(account)
	for _, p := range s.providers {
		if creds, ok := p.Lookup(ctx, account); ok {
			s.logger.DebugContext(ctx, "credentials resolved",
				slog.String("provider", p.Name()), slog.String("account", account))
			return creds, true
		}
	}
	return nil, false
}

// Write upserts credentials into the vault under the account. Returns false
// on unsupported platforms and on any underlying vault error.
func (s *Store) Write(ctx context.Context, creds Credentials, account string) bool {
	account = defaultAccount(account)
	if !s.backend.Supported() {
		return false
	}
	payload, err := json.Marshal(creds)
	if err != nil {
		return false
	}
	if err := s.backend.Write(ctx, account, payload); err != nil {
		s.logger.WarnContext(ctx, "vault write failed",
			slog.String("account", account), slog.String("error", err.Error()))
		return false
	}
	return true
}

// Delete removes the vault item for the account. Deleting an item that is
// already absent counts as success; any other error returns false.
func (s *Store) Delete(ctx context.Context, account string) bool {
	account = defaultAccount(account)
	if !s.backend.Supported() {
		return false
	}
	err := s.backend.Delete(ctx, account)
	if err == nil || errors.Is(err, ErrItemNotFound) {
		return true
	}
	s.logger.WarnContext(ctx, "vault delete failed",
		slog.String("account", account), slog.String("error", err.Error()))
	return false
}

// Exists reports whether credentials are resolvable for the account: true on
// environment credentials, else on a successful vault lookup (the payload is
// not decoded). False immediately on non-vault platforms without env values.
func (s *Store) Exists(ctx context.Context, account string) bool {
	account = defaultAccount(account)
	for _, p := range s.providers {
		if _, ok := p.Lookup(ctx, account); ok {
			return true
		}
	}
	if !s.backend.Supported() {
		return false
	}
	return s.backend.Lookup(ctx, account) == nil
}

func defaultAccount(account string) string {
	if account == "" {
		return "default"
	}
	return account
}

// VaultProvider adapts the platform vault backend to the Provider interface.
type VaultProvider struct {
	backend Backend
}

// NewVaultProvider creates a read provider over the given vault backend.
func NewVaultProvider(backend Backend) *VaultProvider {
	return &VaultProvider{backend: backend}
}

func (p *VaultProvider) Name() string { return "vault" }

// Lookup reads and decodes the vault payload. Any failure (unsupported
// platform, item not found, malformed output, missing fields) is absence.
func (p *VaultProvider) Lookup(ctx context.Context, account string) (*Credentials, bool) {
	if !p.backend.Supported() {
		return nil, false
	}
	payload, err := p.backend.Read(ctx, account)
	if err != nil {
		return nil, false
	}
	var creds Credentials
	if err := json.Unmarshal(payload, &creds); err != nil {
		return nil, false
	}
	if creds.Principal == "" || creds.Secret == "" {
		return nil, false
	}
	return &creds, true
}
