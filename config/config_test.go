package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "openai:gpt-4.1-mini", cfg.Models.Generation)
	assert.Equal(t, "openai:o4-mini", cfg.Models.Reflection)
	assert.Equal(t, "openai:gpt-4.1", cfg.Models.SQL)
	assert.Equal(t, "openai:o4-mini", cfg.Models.Tool)
	assert.Equal(t, 5, cfg.MaxTurns)
	assert.Equal(t, "python3", cfg.Python)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("AGENTPATTERNS_MAX_TURNS", "9")
	t.Setenv("AGENTPATTERNS_MODELS_SQL", "anthropic:claude-sonnet-4")
	t.Setenv("OPENAI_API_KEY", "sk-standard")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.MaxTurns)
	assert.Equal(t, "anthropic:claude-sonnet-4", cfg.Models.SQL)
	assert.Equal(t, "sk-standard", cfg.OpenAIAPIKey)
	assert.Equal(t, "sk-ant", cfg.APIKey("anthropic"))
	assert.Equal(t, "sk-standard", cfg.APIKey("openai"))

	t.Setenv("AGENTPATTERNS_OPENAI_API_KEY", "sk-prefixed")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-prefixed", cfg.OpenAIAPIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AGENTPATTERNS_PYTHON=/usr/bin/python3.12\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("AGENTPATTERNS_PYTHON") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/python3.12", cfg.Python)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	content := `
max_turns: 3
output_dir: charts
models:
  generation: openai:gpt-4o
store:
  driver: sqlite
  dsn: runs.db
  ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxTurns)
	assert.Equal(t, "charts", cfg.OutputDir)
	assert.Equal(t, "openai:gpt-4o", cfg.Models.Generation)
	assert.Equal(t, "openai:o4-mini", cfg.Models.Reflection)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "runs.db", cfg.Store.DSN)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdirTemp(t)
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoad_DiscoversDefaultFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agentpatterns.yaml"), []byte("log_level: debug\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{MaxTurns: 5, LogLevel: "info", Python: "python3", Store: StoreConfig{Driver: StoreMemory}}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.MaxTurns = 0
	assert.ErrorContains(t, cfg.Validate(), "max_turns")

	cfg = valid()
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Store.Driver = "mongo"
	assert.ErrorContains(t, cfg.Validate(), "unknown store driver")

	cfg = valid()
	cfg.Store.Driver = StoreRedis
	assert.ErrorContains(t, cfg.Validate(), "store.dsn")
	cfg.Store.DSN = "localhost:6379"
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Python = ""
	assert.Error(t, cfg.Validate())
}
