//go:build darwin

package credentials

// NewBackend returns the platform-appropriate vault backend.
// On macOS this is the Keychain via the `security` CLI.
func NewBackend() Backend {
	return NewKeychainBackend()
}
