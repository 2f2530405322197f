package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ack.toml", `
[runtime]
strict_assignment = true
max_call_depth = 64

[runner]
dir = "scripts"
jobs = 2

[log]
level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Runtime.StrictAssignment)
	assert.Equal(t, 64, cfg.Runtime.MaxCallDepth)
	assert.Equal(t, 4096, cfg.Runtime.GCThreshold)
	assert.Equal(t, "scripts", cfg.Runner.Dir)
	assert.Equal(t, 2, cfg.Runner.Jobs)
	assert.Equal(t, "5s", cfg.Runner.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ack.yaml", `
runtime:
  gc_threshold: -1
runner:
  filter: objects
  timeout: 250ms
log:
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, -1, cfg.Runtime.GCThreshold)
	assert.Equal(t, 512, cfg.Runtime.MaxCallDepth)
	assert.Equal(t, "objects", cfg.Runner.Filter)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "warn", cfg.Log.Level)

	d, err := cfg.Runner.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)
}

func TestLoadZeroKeepsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ack.toml", "[runtime]\nmax_call_depth = 0\ngc_threshold = 0\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Runtime.MaxCallDepth)
	assert.Equal(t, 4096, cfg.Runtime.GCThreshold)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, dir, "ack.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(writeFile(t, dir, "bad.toml", "[runtime\n"))
	assert.ErrorContains(t, err, "failed to parse TOML")

	_, err = Load(writeFile(t, dir, "level.toml", "[log]\nlevel = \"loud\"\n"))
	assert.ErrorContains(t, err, "log.level")

	_, err = Load(writeFile(t, dir, "format.yml", "log:\n  format: xml\n"))
	assert.ErrorContains(t, err, "log.format")

	_, err = Load(writeFile(t, dir, "timeout.toml", "[runner]\ntimeout = \"soon\"\n"))
	assert.ErrorContains(t, err, "runner.timeout")
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, FileName, "")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, ok, err := Find(nested)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestFindNone(t *testing.T) {
	_, ok, err := Find(t.TempDir())
	require.NoError(t, err)
	// a stray ack.toml above the temp dir would make this true
	if ok {
		t.Skip("ack.toml present above the temporary directory")
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("error")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, level)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}
