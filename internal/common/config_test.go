package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultPort(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("INVESTTRACK_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_InvalidPortEnvIgnored(t *testing.T) {
	t.Setenv("INVESTTRACK_PORT", "not-a-port")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestConfig_StorageEnvOverrides(t *testing.T) {
	t.Setenv("INVESTTRACK_STORAGE_ADDRESS", "ws://db:8000/rpc")
	t.Setenv("INVESTTRACK_STORAGE_USERNAME", "svc")
	t.Setenv("INVESTTRACK_STORAGE_PASSWORD", "pw")
	t.Setenv("INVESTTRACK_STORAGE_BACKEND", "memory")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "ws://db:8000/rpc", cfg.Storage.Address)
	assert.Equal(t, "svc", cfg.Storage.Username)
	assert.Equal(t, "pw", cfg.Storage.Password)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "investtrack.toml")
	content := `
environment = "production"

[server]
port = 7000

[analysis]
years = 20
growth_rate = 7.5
tax_rate = 25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("INVESTTRACK_PORT", "7100")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 7100, cfg.Server.Port, "env overrides file")
	assert.Equal(t, 20, cfg.Analysis.Years)
	assert.Equal(t, 7.5, cfg.Analysis.GrowthRate)
	assert.Equal(t, 25.0, cfg.Analysis.TaxRate)
	assert.Equal(t, "investtrack", cfg.Storage.Namespace, "unset keys keep defaults")
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"), "")
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestAuthConfig_GetTokenExpiry(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"1h", time.Hour},
		{"", 24 * time.Hour},
		{"garbage", 24 * time.Hour},
		{"-5m", 24 * time.Hour},
	}
	for _, tt := range tests {
		c := AuthConfig{TokenExpiry: tt.in}
		assert.Equal(t, tt.want, c.GetTokenExpiry(), tt.in)
	}
}

func TestConfig_ValidateRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, []string{"auth.jwt_secret"}, cfg.ValidateRequired())

	cfg.Auth.JWTSecret = "real-secret"
	assert.Empty(t, cfg.ValidateRequired())

	cfg.Storage.Address = ""
	assert.Equal(t, []string{"storage.address"}, cfg.ValidateRequired())

	cfg.Storage.Backend = "memory"
	assert.Empty(t, cfg.ValidateRequired())
}
