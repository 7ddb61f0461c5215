package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://serpapi.com/search.json", cfg.Provider.BaseURL)
	assert.Equal(t, "en", cfg.Provider.Language)
	assert.Equal(t, 30*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "arrival", cfg.Session.Ordering)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("RANKCHECK_PORT", "9090")
	t.Setenv("RANKCHECK_ORDERING", "ISSUE")
	t.Setenv("RANKCHECK_PROVIDER_TIMEOUT", "5s")
	t.Setenv("RANKCHECK_RATE_RPS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "issue", cfg.Session.Ordering)
	assert.Equal(t, 5*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 2.0, cfg.RateLimit.RequestsPerSecond)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("RANKCHECK_SERPAPI_KEY=from-file\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	// Registered so t.Setenv restores the unset state after godotenv writes it.
	t.Setenv("RANKCHECK_SERPAPI_KEY", "")
	require.NoError(t, os.Unsetenv("RANKCHECK_SERPAPI_KEY"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Provider.APIKey)
}

func TestValidate_RejectsUnknownOrdering(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("RANKCHECK_ORDERING", "random")

	_, err := Load()
	assert.ErrorContains(t, err, "RANKCHECK_ORDERING")
}
