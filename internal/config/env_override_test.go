package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnvOverrides(t *testing.T) {
	t.Run("sqlite path", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_DB", "/tmp/erp-test.db")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, DriverSQLite, cfg.Store.Driver)
		assert.Equal(t, "/tmp/erp-test.db", cfg.Store.Path)
	})

	t.Run("postgres url switches driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_DB", "postgres://erp:erp@db:5432/erp?sslmode=disable")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, DriverPostgres, cfg.Store.Driver)
		assert.Equal(t, "postgres://erp:erp@db:5432/erp?sslmode=disable", cfg.Store.DSN)
		assert.Equal(t, "erp.db", cfg.Store.Path)
	})

	t.Run("explicit driver wins", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_DB", "postgresql://db/erp")
		t.Setenv("ERP_DB_DRIVER", "SQLITE")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	})

	t.Run("gemini key beats google key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOOGLE_API_KEY", "google")
		t.Setenv("GEMINI_API_KEY", "gemini")
		cfg := &Config{}
		cfg.applyEnvOverrides()
		assert.Equal(t, "gemini", cfg.LLM.APIKey)
		assert.Equal(t, "gemini", cfg.LLM.Provider)
		assert.True(t, cfg.IsNarrationEnabled())
	})

	t.Run("google key alone", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOOGLE_API_KEY", "google")
		cfg := &Config{}
		cfg.applyEnvOverrides()
		assert.Equal(t, "google", cfg.LLM.APIKey)
	})

	t.Run("server, events and logging", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_ADDR", "127.0.0.1:9000")
		t.Setenv("ERP_AMQP_URL", "amqp://erp@mq:5672/")
		t.Setenv("ERP_LOG_LEVEL", "DEBUG")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
		assert.Equal(t, "amqp://erp@mq:5672/", cfg.Events.URL)
		assert.True(t, cfg.Events.Enabled)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("empty environment changes nothing", func(t *testing.T) {
		clearEnv(t)
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, DefaultConfig(), cfg)
	})
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ERP_ADDR", ":7000")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "ERP_DOTENV_FILE_KEY"
	t.Cleanup(func() { os.Unsetenv(key) })

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0644))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv(key))
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	const key = "ERP_DOTENV_PRESET"
	t.Setenv(key, "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0644))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-env", os.Getenv(key))
}
