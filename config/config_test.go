package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable NewConfig reads so tests are insulated
// from the developer's shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE",
		"PORT",
		"LOG_LEVEL",
		"LOG_MIDDLEWARE_ENABLED",
		"LOG_MAX_STR_LEN",
		"LOG_MAX_LIST_LEN",
		"LOG_MAX_DEPTH",
		"LOG_EXCLUDED_ENDPOINTS",
		"LOG_SENSITIVE_KEYS",
		"LOG_EXCLUDED_HEADERS",
		"LOG_MASK_STYLE",
		"LOG_USER_ID_FIELD",
		"LOG_USER_DISPLAY_FIELD",
		"JWT_SECRET",
		"GOOGLE_CLOUD_PROJECT",
		"LOG_TAIL_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestNewConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.MiddlewareEnabled)
	assert.Equal(t, 200, cfg.MaxStrLen)
	assert.Equal(t, 10, cfg.MaxListLen)
	assert.Equal(t, 4, cfg.MaxDepth)
	assert.Equal(t, "partial", cfg.MaskStyle)
	assert.Equal(t, "id", cfg.UserIDField)
	assert.Equal(t, "email", cfg.UserDisplayField)
	assert.Empty(t, cfg.ExcludedEndpoints)
	assert.Empty(t, cfg.SensitiveKeys)
	assert.Empty(t, cfg.ExcludedHeaders)
	assert.False(t, cfg.LogTailEnabled)
}

func TestNewConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_MIDDLEWARE_ENABLED", "false")
	t.Setenv("LOG_MAX_STR_LEN", "50")
	t.Setenv("LOG_MASK_STYLE", "complete")
	t.Setenv("LOG_EXCLUDED_ENDPOINTS", "/health, /metrics ,")
	t.Setenv("LOG_SENSITIVE_KEYS", "^password$,.*token.*")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.MiddlewareEnabled)
	assert.Equal(t, 50, cfg.MaxStrLen)
	assert.Equal(t, "complete", cfg.MaskStyle)
	assert.Equal(t, []string{"/health", "/metrics"}, cfg.ExcludedEndpoints)
	assert.Equal(t, []string{"^password$", ".*token.*"}, cfg.SensitiveKeys)
}

func TestNewConfigInvalidEnvValuesKeepDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_MAX_DEPTH", "not-a-number")
	t.Setenv("LOG_MIDDLEWARE_ENABLED", "not-a-bool")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MaxDepth)
	assert.True(t, cfg.MiddlewareEnabled)
}

func TestNewConfigFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7070"
max_depth: 2
mask_style: complete
excluded_endpoints:
  - /health
sensitive_keys:
  - ^apikey$
`), 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 2, cfg.MaxDepth)
	assert.Equal(t, "complete", cfg.MaskStyle)
	assert.Equal(t, []string{"/health"}, cfg.ExcludedEndpoints)
	assert.Equal(t, []string{"^apikey$"}, cfg.SensitiveKeys)
	// keys the file omits keep their defaults
	assert.Equal(t, 200, cfg.MaxStrLen)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestNewConfigEnvBeatsFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7070\"\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "6060")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "6060", cfg.Port)
}

func TestNewConfigMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := NewConfig()
	assert.Error(t, err)
}

func TestNewConfigMalformedFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unclosed"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	_, err := NewConfig()
	assert.Error(t, err)
}
