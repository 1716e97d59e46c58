package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("window:\n  width: 1200\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1200, s.Window.Width)
	assert.Equal(t, 700, s.Window.Height)
	assert.True(t, s.Scan.TryHarder)
	assert.True(t, s.History.Enabled)
	assert.Equal(t, "low", s.Generate.ECLevel)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_ClampsOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`window:
  width: 100
  height: 9999
generate:
  default_kind: hologram
  ec_level: ultra
  module_scale: 500
  bar_scale: -3
history:
  enabled: true
  limit: 10000
log_level: verbose
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 640, s.Window.Width)
	assert.Equal(t, 4096, s.Window.Height)
	assert.Equal(t, "qr", s.Generate.DefaultKind)
	assert.Equal(t, "low", s.Generate.ECLevel)
	assert.Equal(t, 40, s.Generate.ModuleScale)
	assert.Equal(t, 2, s.Generate.BarScale)
	assert.Equal(t, 500, s.History.Limit)
	assert.Equal(t, "info", s.LogLevel)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	s := Default()
	s.Window.Width = 1024
	s.Generate.DefaultKind = "code128"
	s.Scan.TryHarder = false
	s.LogLevel = "debug"

	require.NoError(t, Save(path, s))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1024, loaded.Window.Width)
	assert.Equal(t, "code128", loaded.Generate.DefaultKind)
	assert.False(t, loaded.Scan.TryHarder)
	assert.Equal(t, "debug", loaded.LogLevel)
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{LogLevel: tt.name}
			assert.Equal(t, tt.want, s.SlogLevel())
		})
	}
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Equal(t, "codestudio", filepath.Base(filepath.Dir(path)))
}
