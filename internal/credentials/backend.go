package credentials

import (
	"context"
	"errors"
)

// ErrItemNotFound indicates the vault holds no item for the account.
// Delete treats it as success (idempotent-absence semantics).
var ErrItemNotFound = errors.New("vault item not found")

// Backend is the platform secret vault primitive. Exactly one concrete
// implementation exists (macOS Keychain); every other platform gets the
// unsupported backend. The platform branch happens once at construction,
// never inside business logic.
type Backend interface {
	// Supported reports whether the running platform has a vault.
	Supported() bool
	// Read returns the raw stored payload for the account.
	Read(ctx context.Context, account string) ([]byte, error)
	// Write upserts the payload under the account (create-or-update).
	Write(ctx context.Context, account string, payload []byte) error
	// Delete removes the item; returns ErrItemNotFound when already absent.
	Delete(ctx context.Context, account string) error
	// Lookup checks item existence without returning the payload.
	Lookup(ctx context.Context, account string) error
}

// UnsupportedBackend is the no-op Backend for platforms without a vault.
type UnsupportedBackend struct{}

var errUnsupported = errors.New("secret vault is not supported on this platform")

func (UnsupportedBackend) Supported() bool { return false }

func (UnsupportedBackend) Read(context.Context, string) ([]byte, error) {
	return nil, errUnsupported
}

func (UnsupportedBackend) Write(context.Context, string, []byte) error {
	return errUnsupported
}

func (UnsupportedBackend) Delete(context.Context, string) error {
	return errUnsupported
}

func (UnsupportedBackend) Lookup(context.Context, string) error {
	return errUnsupported
}
