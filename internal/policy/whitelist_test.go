package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/jenkgate/pkg/schema"
)

func TestWhitelist_EmptyDeniesEverything(t *testing.T) {
	w := NewWhitelist(nil)

	for _, name := range []string{"APP_VERSION", "anything", "", "app_version"} {
		assert.False(t, w.Allows(name), "empty whitelist must deny %q", name)
	}

	err := w.Check([]string{"APP_VERSION"})
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeAuthorization, schema.CodeOf(err))
	assert.Contains(t, err.Error(), "(none)")
}

func TestWhitelist_ExactCaseSensitiveMatch(t *testing.T) {
	w := NewWhitelist([]string{"APP_VERSION"})

	assert.True(t, w.Allows("APP_VERSION"))
	assert.False(t, w.Allows("app_version"))
	assert.False(t, w.Allows("APP_VERSION "))
	assert.False(t, w.Allows("APP"))
}

func TestWhitelist_CheckRejectsWholeSet(t *testing.T) {
	w := NewWhitelist([]string{"APP_VERSION", "DEPLOY_ENV"})

	// One disallowed name poisons the entire call.
	err := w.Check([]string{"APP_VERSION", "SECRET", "DEPLOY_ENV"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"SECRET"`)
	assert.Contains(t, err.Error(), "APP_VERSION, DEPLOY_ENV")

	require.NoError(t, w.Check([]string{"DEPLOY_ENV", "APP_VERSION"}))
	require.NoError(t, w.Check(nil))
}

func TestWhitelist_PermittedListing(t *testing.T) {
	assert.Equal(t, "(none)", NewWhitelist(nil).Permitted())
	assert.Equal(t, "A, B", NewWhitelist([]string{"A", "B", "A"}).Permitted())
}
