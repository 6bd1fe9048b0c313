package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Limit)
	assert.Equal(t, 5*time.Second, cfg.ParseTimeout)
	assert.Equal(t, 30*time.Minute, cfg.PatternCache.TTL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.SyntaxDirs)
}

func TestLoadLocalFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	yaml := `
syntax_dirs: [defs, more]
limit: 50
parse_timeout: 250ms
log:
  level: debug
  format: console
pattern_cache:
  ttl: 1m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".topo.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"defs", "more"}, cfg.SyntaxDirs)
	assert.Equal(t, 50, cfg.Limit)
	assert.Equal(t, 250*time.Millisecond, cfg.ParseTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, time.Minute, cfg.PatternCache.TTL)
}

func TestLoadHomeFileAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".topo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".topo", "config.yaml"), []byte("limit: 7\n"), 0o644))
	t.Setenv("TOPO_LOG_LEVEL", "error")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Limit)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("log:\n  format: xml\n"), 0o644))
	_, err = Load(New(), bad)
	require.ErrorContains(t, err, "log.format")

	negative := filepath.Join(t.TempDir(), "negative.yaml")
	require.NoError(t, os.WriteFile(negative, []byte("limit: -1\n"), 0o644))
	_, err = Load(New(), negative)
	require.ErrorContains(t, err, "limit")
}

func TestSetupLogging(t *testing.T) {
	defer func(logger zerolog.Logger, level zerolog.Level) {
		log.Logger = logger
		zerolog.SetGlobalLevel(level)
	}(log.Logger, zerolog.GlobalLevel())

	var buf bytes.Buffer
	require.NoError(t, SetupLogging(LogConfig{Level: "info", Format: "json"}, &buf))
	log.Debug().Msg("hidden")
	log.Info().Str("file", "a.go").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"file":"a.go"`)

	require.Error(t, SetupLogging(LogConfig{Level: "loud"}, &buf))
}
