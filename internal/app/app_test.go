package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "investtrack.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNewApp_MemoryBackend(t *testing.T) {
	path := writeTestConfig(t, `
[storage]
backend = "memory"

[logging]
level = "disabled"

[analysis]
years = 20
`)

	a, err := NewApp(path)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Storage)
	assert.NotNil(t, a.LedgerService)
	assert.NotNil(t, a.AnalysisService)
	assert.Equal(t, 20, a.Config.Analysis.Years)
	assert.False(t, a.StartupTime.IsZero())
}

func TestNewApp_ProductionRequiresSecret(t *testing.T) {
	path := writeTestConfig(t, `
environment = "production"

[storage]
backend = "memory"

[logging]
level = "disabled"
`)

	_, err := NewApp(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret")
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "explicit.toml", ResolveConfigPath("explicit.toml"))

	t.Setenv("INVESTTRACK_CONFIG", "/etc/investtrack.toml")
	assert.Equal(t, "/etc/investtrack.toml", ResolveConfigPath(""))
}
