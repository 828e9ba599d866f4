package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the file lookup at an empty temp home and working dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("TODO_CONFIG", "")
	for _, k := range []string{"TODO_API_URL", "TODO_TIMEOUT_MS", "TODO_LOG_ERRORS", "TODO_LOG_LEVEL", "TODO_LOG_FORMAT", "TODO_LOG_FILE", "TODO_THEME"} {
		t.Setenv(k, "")
	}
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.True(t, cfg.LogErrors)
	assert.Empty(t, cfg.File)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "todo.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url = "http://todo.internal:8080"
timeout_ms = 1500
log_errors = false
theme = "neon"
`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "todo.toml", cfg.File)
	assert.Equal(t, "http://todo.internal:8080", cfg.APIURL)
	assert.Equal(t, 1500, cfg.TimeoutMS)
	assert.False(t, cfg.LogErrors)
	assert.Equal(t, "neon", cfg.Theme)
	assert.Equal(t, "info", cfg.LogLevel)

	t.Setenv("TODO_TIMEOUT_MS", "250")
	t.Setenv("TODO_LOG_ERRORS", "yes")
	t.Setenv("TODO_LOG_FILE", "/tmp/todo.log")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout())
	assert.True(t, cfg.LogErrors)
	assert.Equal(t, "/tmp/todo.log", cfg.LogFile)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`api_url = "https://api.example.com"`), 0o644))
	t.Setenv("TODO_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIURL)
}

func TestLoadErrors(t *testing.T) {
	t.Run("unknown key", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "todo.toml"), []byte(`apiurl = "x"`), 0o644))
		_, err := Load()
		assert.ErrorContains(t, err, "unknown key")
	})

	t.Run("bad timeout env", func(t *testing.T) {
		isolate(t)
		t.Setenv("TODO_TIMEOUT_MS", "soon")
		_, err := Load()
		assert.ErrorContains(t, err, "TODO_TIMEOUT_MS")
	})
}

func TestOverrideAndValidate(t *testing.T) {
	cfg := Default()
	cfg.Override("https://h", 10, "")
	assert.Equal(t, "https://h", cfg.APIURL)
	assert.Equal(t, 10, cfg.TimeoutMS)
	assert.Equal(t, "classic", cfg.Theme)
	assert.NoError(t, cfg.Validate())

	for name, mutate := range map[string]func(*Config){
		"relative url": func(c *Config) { c.APIURL = "localhost:4001" },
		"zero timeout": func(c *Config) { c.TimeoutMS = 0 },
		"bad format":   func(c *Config) { c.LogFormat = "xml" },
	} {
		c := Default()
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}
