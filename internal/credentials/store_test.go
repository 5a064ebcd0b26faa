package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory vault Backend for store tests.
type fakeBackend struct {
	supported bool
	items     map[string][]byte

	readErr   error
	writeErr  error
	deleteErr error

	readCalls   int
	lookupCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{supported: true, items: map[string][]byte{}}
}

func (f *fakeBackend) Supported() bool { return f.supported }

func (f *fakeBackend) Read(_ context.Context, account string) ([]byte, error) {
	f.readCalls++
	if f.readErr != nil {
		return nil, f.readErr
	}
	v, ok := f.items[account]
	if !ok {
		return nil, ErrItemNotFound
	}
	return v, nil
}

func (f *fakeBackend) Write(_ context.Context, account string, payload []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.items[account] = payload
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, account string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.items[account]; !ok {
		return ErrItemNotFound
	}
	delete(f.items, account)
	return nil
}

func (f *fakeBackend) Lookup(_ context.Context, account string) error {
	f.lookupCalls++
	if _, ok := f.items[account]; !ok {
		return ErrItemNotFound
	}
	return nil
}

func envWith(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func newTestStore(env map[string]string, backend Backend) *Store {
	return NewStore([]Provider{
		NewEnvProviderFunc(envWith(env)),
		NewVaultProvider(backend),
	}, backend, nil)
}

func TestStoreRead_EnvWinsOverVault(t *testing.T) {
	backend := newFakeBackend()
	backend.items["default"] = []byte(`{"principal":"vault-user","secret":"vault-token"}`)

	store := newTestStore(map[string]string{
		EnvPrincipal: "env-user",
		EnvSecret:    "env-token",
	}, backend)

	creds, ok := store.Read(context.Background(), "default")
	require.True(t, ok)
	assert.Equal(t, "env-user", creds.Principal)
	assert.Equal(t, "env-token", creds.Secret)
	assert.Zero(t, backend.readCalls, "vault must not be touched when env is complete")
}

func TestStoreRead_PartialEnvFallsThroughToVault(t *testing.T) {
	backend := newFakeBackend()
	backend.items["default"] = []byte(`{"principal":"vault-user","secret":"vault-token"}`)

	// Only the principal is set and env alone does not count.
	store := newTestStore(map[string]string{EnvPrincipal: "env-user"}, backend)

	creds, ok := store.Read(context.Background(), "default")
	require.True(t, ok)
	assert.Equal(t, "vault-user", creds.Principal)
}

func TestStoreRead_AbsentOnVaultErrors(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(*fakeBackend)
	}{
		{"item not found", func(f *fakeBackend) {}},
		{"backend error", func(f *fakeBackend) { f.readErr = errors.New("keychain locked") }},
		{"non-JSON payload", func(f *fakeBackend) { f.items["default"] = []byte("not json") }},
		{"missing secret field", func(f *fakeBackend) { f.items["default"] = []byte(`{"principal":"u"}`) }},
		{"missing principal field", func(f *fakeBackend) { f.items["default"] = []byte(`{"secret":"s"}`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend()
			tt.prepare(backend)
			store := newTestStore(nil, backend)

			creds, ok := store.Read(context.Background(), "default")
			assert.False(t, ok)
			assert.Nil(t, creds)
		})
	}
}

func TestStoreRead_UnsupportedPlatformSkipsVault(t *testing.T) {
	backend := newFakeBackend()
	backend.supported = false
	store := newTestStore(nil, backend)

	_, ok := store.Read(context.Background(), "default")
	assert.False(t, ok)
	assert.Zero(t, backend.readCalls)
}

func TestStoreRead_EmptyAccountDefaults(t *testing.T) {
	backend := newFakeBackend()
	backend.items["default"] = []byte(`{"principal":"u","secret":"s"}`)
	store := newTestStore(nil, backend)

	creds, ok := store.Read(context.Background(), "")
	require.True(t, ok)
	assert.Equal(t, "u", creds.Principal)
}

func TestStoreWrite(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(nil, backend)

	ok := store.Write(context.Background(), Credentials{Principal: "u", Secret: "s"}, "ci")
	require.True(t, ok)
	assert.JSONEq(t, `{"principal":"u","secret":"s"}`, string(backend.items["ci"]))

	// Upsert: second write replaces.
	require.True(t, store.Write(context.Background(), Credentials{Principal: "u2", Secret: "s2"}, "ci"))
	assert.JSONEq(t, `{"principal":"u2","secret":"s2"}`, string(backend.items["ci"]))
}

func TestStoreWrite_FalseOnErrorOrUnsupported(t *testing.T) {
	backend := newFakeBackend()
	backend.writeErr = errors.New("denied")
	store := newTestStore(nil, backend)
	assert.False(t, store.Write(context.Background(), Credentials{Principal: "u", Secret: "s"}, ""))

	unsupported := newFakeBackend()
	unsupported.supported = false
	store = newTestStore(nil, unsupported)
	assert.False(t, store.Write(context.Background(), Credentials{Principal: "u", Secret: "s"}, ""))
}

func TestStoreDelete_IdempotentOnAbsence(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(nil, backend)

	// Nothing stored, still true.
	assert.True(t, store.Delete(context.Background(), "gone"))

	backend.items["ci"] = []byte("x")
	assert.True(t, store.Delete(context.Background(), "ci"))
	assert.NotContains(t, backend.items, "ci")
}

func TestStoreDelete_FalseOnOtherErrors(t *testing.T) {
	backend := newFakeBackend()
	backend.deleteErr = errors.New("keychain locked")
	store := newTestStore(nil, backend)
	assert.False(t, store.Delete(context.Background(), "ci"))

	unsupported := newFakeBackend()
	unsupported.supported = false
	store = newTestStore(nil, unsupported)
	assert.False(t, store.Delete(context.Background(), "ci"))
}

func TestStoreExists(t *testing.T) {
	// Env credentials present.
	store := newTestStore(map[string]string{
		EnvPrincipal: "u",
		EnvSecret:    "s",
	}, newFakeBackend())
	assert.True(t, store.Exists(context.Background(), "default"))

	// Vault item present, even with a payload that would not decode.
	backend := newFakeBackend()
	backend.items["default"] = []byte("opaque")
	store = newTestStore(nil, backend)
	assert.True(t, store.Exists(context.Background(), "default"))

	// Nothing anywhere.
	store = newTestStore(nil, newFakeBackend())
	assert.False(t, store.Exists(context.Background(), "default"))

	// Unsupported platform without env: immediate false, no vault call.
	unsupported := newFakeBackend()
	unsupported.supported = false
	store = newTestStore(nil, unsupported)
	assert.False(t, store.Exists(context.Background(), "default"))
	assert.Zero(t, unsupported.lookupCalls)
}
