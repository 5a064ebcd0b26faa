package credentials

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ServiceName is the fixed Keychain service string scoping jenkgate items.
const ServiceName = "Jenkgate Jenkins"

// Keychain calls are short-lived and bounded independently of the HTTP timeout.
const keychainTimeout = 5 * time.Second

// runSecurity invokes the `security` CLI and returns stdout and stderr.
// Overridable in tests.
type runSecurity func(ctx context.Context, args ...string) (stdout, stderr []byte, err error)

// KeychainBackend stores credentials in the macOS Keychain via the `security`
// command-line primitive, scoped by (ServiceName, account).
type KeychainBackend struct {
	service string
	run     runSecurity
}

var _ Backend = (*KeychainBackend)(nil)

// NewKeychainBackend creates a backend over the real `security` binary.
func NewKeychainBackend() *KeychainBackend {
	return &KeychainBackend{service: ServiceName, run: execSecurity}
}

func execSecurity(ctx context.Context, args ...string) ([]byte, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, keychainTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "security", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func (b *KeychainBackend) Supported() bool { return true }

// Read returns the stored payload (the -w flag prints only the password data).
func (b *KeychainBackend) Read(ctx context.Context, account string) ([]byte, error) {
	stdout, stderr, err := b.run(ctx,
		"find-generic-password", "-s", b.service, "-a", account, "-w")
	if err != nil {
		return nil, keychainError("read", account, stderr, err)
	}
	return bytes.TrimRight(stdout, "\n"), nil
}

// Write upserts the payload. The -U flag gives create-or-update semantics
// rather than create-or-fail.
func (b *KeychainBackend) Write(ctx context.Context, account string, payload []byte) error {
	_, stderr, err := b.run(ctx,
		"add-generic-password", "-U", "-s", b.service, "-a", account, "-w", string(payload))
	if err != nil {
		return keychainError("write", account, stderr, err)
	}
	return nil
}

// Delete removes the item, mapping the Keychain's "could not be found"
// failure onto ErrItemNotFound.
func (b *KeychainBackend) Delete(ctx context.Context, account string) error {
	_, stderr, err := b.run(ctx,
		"delete-generic-password", "-s", b.service, "-a", account)
	if err != nil {
		if isNotFound(stderr) {
			return ErrItemNotFound
		}
		return keychainError("delete", account, stderr, err)
	}
	return nil
}

// Lookup checks existence without requesting the password data.
func (b *KeychainBackend) Lookup(ctx context.Context, account string) error {
	_, stderr, err := b.run(ctx,
		"find-generic-password", "-s", b.service, "-a", account)
	if err != nil {
		if isNotFound(stderr) {
			return ErrItemNotFound
		}
		return keychainError("lookup", account, stderr, err)
	}
	return nil
}

// isNotFound matches the `security` CLI's absence message, e.g.
// "security: SecKeychainSearchCopyNext: The specified item could not be found in the keychain."
func isNotFound(stderr []byte) bool {
	return strings.Contains(string(stderr), "could not be found")
}

func keychainError(op, account string, stderr []byte, err error) error {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return fmt.Errorf("keychain %s for account %q: %w", op, account, err)
	}
	return fmt.Errorf("keychain %s for account %q: %s: %w", op, account, msg, err)
}
