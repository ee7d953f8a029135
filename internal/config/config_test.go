package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synergism-calc/internal/errors"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Inputs.Settings = "settings.hcl"
	cfg.Inputs.Prices = "prices.csv"
	cfg.Output.NoColor = true
	cfg.Server.Address = "127.0.0.1:9000"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"output": {"default_format": "json"}}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.DefaultFormat)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"syntax.json":  `{"output":`,
		"body.json":    `{"server": {"max_body_bytes": 0}}`,
		"timeout.json": `{"server": {"read_timeout_seconds": -1}}`,
		"history.json": `{"history": {"backend": "sqlite"}}`,
		"rate.json":    `{"server": {"requests_per_minute": -5}}`,
		"dsn.json":     `{"history": {"backend": "postgres"}}`,
	}
	for name, body := range tests {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		_, err := Load(path)
		assert.True(t, errors.IsType(err, errors.TypeConfig), name)
	}
}

func TestGlobalConfig(t *testing.T) {
	orig := Get()
	t.Cleanup(func() { Set(orig) })

	cfg := Default()
	cfg.Version = "test"
	Set(cfg)
	assert.Equal(t, "test", Get().Version)
}

func TestHistoryPath(t *testing.T) {
	h := HistoryConfig{Dir: "/var/lib/calc"}
	assert.Equal(t, "/var/lib/calc", h.Path())

	t.Setenv("HOME", "/home/player")
	assert.Equal(t, filepath.Join("/home/player", ".synergism-calc", "history"), HistoryConfig{}.Path())

	pg := HistoryConfig{Backend: "postgres", Dir: "/ignored", DSN: "postgres://localhost/calc"}
	assert.Equal(t, "postgres://localhost/calc", pg.Location())
	assert.Equal(t, "/var/lib/calc", HistoryConfig{Backend: "file", Dir: "/var/lib/calc"}.Location())
}
