package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRun records invocations of the `security` CLI and replays canned output.
type stubRun struct {
	calls  [][]string
	stdout []byte
	stderr []byte
	err    error
}

func (s *stubRun) run(_ context.Context, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, args)
	return s.stdout, s.stderr, s.err
}

func stubbedBackend(stub *stubRun) *KeychainBackend {
	return &KeychainBackend{service: ServiceName, run: stub.run}
}

func TestKeychainRead(t *testing.T) {
	stub := &stubRun{stdout: []byte("{\"principal\":\"u\",\"secret\":\"s\"}\n")}
	b := stubbedBackend(stub)

	payload, err := b.Read(context.Background(), "ci")
	require.NoError(t, err)
	assert.Equal(t, `{"principal":"u","secret":"s"}`, string(payload))

	require.Len(t, stub.calls, 1)
	assert.Equal(t,
		[]string{"find-generic-password", "-s", ServiceName, "-a", "ci", "-w"},
		stub.calls[0])
}

func TestKeychainRead_Failure(t *testing.T) {
	stub := &stubRun{
		stderr: []byte("security: SecKeychainSearchCopyNext: The specified item could not be found in the keychain.\n"),
		err:    errors.New("exit status 44"),
	}
	b := stubbedBackend(stub)

	_, err := b.Read(context.Background(), "ci")
	assert.Error(t, err)
}

func TestKeychainWrite_Upserts(t *testing.T) {
	stub := &stubRun{}
	b := stubbedBackend(stub)

	require.NoError(t, b.Write(context.Background(), "ci", []byte(`{"principal":"u","secret":"s"}`)))

	require.Len(t, stub.calls, 1)
	args := stub.calls[0]
	assert.Equal(t, "add-generic-password", args[0])
	assert.Contains(t, args, "-U", "write must use upsert semantics")
	assert.Contains(t, args, ServiceName)
}

func TestKeychainDelete_NotFoundIsErrItemNotFound(t *testing.T) {
	stub := &stubRun{
		stderr: []byte("security: SecKeychainSearchCopyNext: The specified item could not be found in the keychain.\n"),
		err:    errors.New("exit status 44"),
	}
	b := stubbedBackend(stub)

	err := b.Delete(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestKeychainDelete_OtherErrorPassesThrough(t *testing.T) {
	stub := &stubRun{
		stderr: []byte("security: SecKeychainDelete: User interaction is not allowed.\n"),
		err:    errors.New("exit status 36"),
	}
	b := stubbedBackend(stub)

	err := b.Delete(context.Background(), "ci")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrItemNotFound)
	assert.Contains(t, err.Error(), "User interaction is not allowed")
}

func TestKeychainLookup_OmitsPasswordFlag(t *testing.T) {
	stub := &stubRun{}
	b := stubbedBackend(stub)

	require.NoError(t, b.Lookup(context.Background(), "ci"))
	require.Len(t, stub.calls, 1)
	assert.NotContains(t, stub.calls[0], "-w")
}
