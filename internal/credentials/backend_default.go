//go:build !darwin

package credentials

// NewBackend returns the platform-appropriate vault backend.
// Platforms without a native vault get the unsupported no-op; reads fall
// through to environment-only behavior.
func NewBackend() Backend {
	return UnsupportedBackend{}
}
