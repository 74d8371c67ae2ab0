package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairhaven/cetrack/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	// GIVEN no config file, only the required secret in the environment
	t.Setenv("CETRACK_JWT_SECRET", "s3cret")

	// WHEN loading a path that does not exist
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	// THEN defaults apply
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Server.Dev)
	assert.Equal(t, "cetrack.db", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.TokenDuration())
	assert.Equal(t, time.Hour, cfg.ResetTokenDuration())
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.SnapshotInterval())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("CETRACK_JWT_SECRET", "")

	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoadReadsYAMLFile(t *testing.T) {
	// GIVEN a config file
	dir := t.TempDir()
	path := filepath.Join(dir, "cetrack.yaml")
	yaml := `
server:
  addr: ":9090"
  dev: true
  allowed_origins: ["https://app.example.com"]
database:
  path: /var/lib/cetrack/ce.db
auth:
  jwt_secret: from-file
  token_ttl: 12h
logging:
  level: debug
  pretty: true
scheduler:
  enabled: false
designations:
  catalog_path: /etc/cetrack/specs.json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	// WHEN loading
	cfg, err := config.Load(path)
	require.NoError(t, err)

	// THEN file values land, untouched sections keep defaults
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.Server.Dev)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "/var/lib/cetrack/ce.db", cfg.Database.Path)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 12*time.Hour, cfg.TokenDuration())
	assert.Equal(t, time.Hour, cfg.ResetTokenDuration(), "reset ttl not in file keeps default")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "/etc/cetrack/specs.json", cfg.Designations.CatalogPath)
}

func TestLoadEnvironmentBeatsFile(t *testing.T) {
	// GIVEN a file and conflicting environment variables
	dir := t.TempDir()
	path := filepath.Join(dir, "cetrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  jwt_secret: from-file\nserver:\n  addr: \":9090\"\n"), 0o600))

	t.Setenv("CETRACK_ADDR", ":7070")
	t.Setenv("CETRACK_JWT_SECRET", "from-env")
	t.Setenv("CETRACK_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("CETRACK_SCHEDULER_ENABLED", "no")

	// WHEN loading
	cfg, err := config.Load(path)
	require.NoError(t, err)

	// THEN the environment wins
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CETRACK_JWT_SECRET", "s3cret")

	t.Run("bad token ttl", func(t *testing.T) {
		t.Setenv("CETRACK_TOKEN_TTL", "one day")
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "token_ttl")
	})

	t.Run("email without key", func(t *testing.T) {
		t.Setenv("CETRACK_EMAIL_ENABLED", "true")
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api_key")
	})

	t.Run("broken yaml", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "cetrack.yaml")
		require.NoError(t, os.WriteFile(path, []byte(":\nnot yaml at all\n\t"), 0o600))
		_, err := config.Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config file")
	})
}
