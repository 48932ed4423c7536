package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": 9090},
		"database": {"driver": "memory"},
		"security": {"jwt_secret": "from-file"},
		"email": {"provider": "log", "admin_email": "atlas@example.org"}
	}`), 0o600))

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DASHBOARD_CACHE_TTL", "90s")
	t.Setenv("CORS_ORIGINS", "https://atlas.example.org, http://localhost:5173")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.Security.JWTSecret)
	assert.Equal(t, 90*time.Second, cfg.Dashboard.CacheTTL)
	assert.Equal(t, []string{"https://atlas.example.org", "http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Email.Enabled())
	assert.Equal(t, 30*time.Minute, cfg.Security.TokenTTL)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.GetServerAddr())
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.False(t, cfg.Email.Enabled())
	assert.Equal(t, "postgres://"+cfg.Database.User+":@localhost:5432/uia_atlas?sslmode=disable", cfg.Database.GetDatabaseURL())
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "jwt_secret")

	t.Setenv("JWT_SECRET", "s")
	t.Setenv("SERVER_PORT", "eighty")
	_, err = LoadConfig("")
	assert.ErrorContains(t, err, "SERVER_PORT")

	t.Setenv("SERVER_PORT", "")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	_, err = LoadConfig("")
	assert.ErrorContains(t, err, "database.driver")

	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("EMAIL_PROVIDER", "ses")
	_, err = LoadConfig("")
	assert.ErrorContains(t, err, "from_address")
}

func TestNewLogger(t *testing.T) {
	logger, err := LoggingConfig{Level: "debug", Development: true}.NewLogger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	_, err = LoggingConfig{Level: "loud"}.NewLogger()
	assert.Error(t, err)
}

func TestClientConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas", "config.yaml")

	cfg, err := LoadClientConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultClientConfig(), cfg)

	cfg.APIURL = "https://atlas.example.org"
	cfg.Debounce = 500 * time.Millisecond
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadClientConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://atlas.example.org", loaded.APIURL)
	assert.Equal(t, 500*time.Millisecond, loaded.Debounce)

	t.Setenv("ATLAS_API_URL", "http://127.0.0.1:9999")
	loaded, err = LoadClientConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999", loaded.APIURL)
}

func TestClientConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: [oops"), 0o600))
	_, err := LoadClientConfig(path)
	assert.Error(t, err)
}
