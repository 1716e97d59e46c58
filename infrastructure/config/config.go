// Package config loads and persists the application settings file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"codestudio/domain/symbol"
)

const configFileName = "config.yaml"

// Settings holds the user-adjustable application settings.
type Settings struct {
	Window   WindowSettings   `yaml:"window"`
	Generate GenerateSettings `yaml:"generate"`
	Scan     ScanSettings     `yaml:"scan"`
	History  HistorySettings  `yaml:"history"`
	LogLevel string           `yaml:"log_level"`
}

// WindowSettings controls the initial main window geometry.
type WindowSettings struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// GenerateSettings holds the rendering defaults for the generate tab.
type GenerateSettings struct {
	// DefaultKind picks the symbology preselected on start, "qr" or "code128".
	DefaultKind string `yaml:"default_kind"`
	// ECLevel is the QR error correction level: "low", "medium",
	// "quartile" or "high".
	ECLevel string `yaml:"ec_level"`
	// ModuleScale is the rendered size of one QR module in pixels.
	ModuleScale int `yaml:"module_scale"`
	// QuietZone is the white margin around Code 128 symbols in pixels.
	QuietZone int `yaml:"quiet_zone"`
	// BarHeight is the Code 128 bar height in pixels.
	BarHeight int `yaml:"bar_height"`
	// BarScale is the width of one Code 128 module in pixels.
	BarScale int `yaml:"bar_scale"`
}

// ScanSettings holds decoder options for the scan tab.
type ScanSettings struct {
	TryHarder bool `yaml:"try_harder"`
}

// HistorySettings controls the on-disk history of generated and scanned codes.
type HistorySettings struct {
	Enabled bool `yaml:"enabled"`
	Limit   int  `yaml:"limit"`
}

// Default returns the settings used when no config file exists.
func Default() *Settings {
	return &Settings{
		Window: WindowSettings{
			Width:  900,
			Height: 700,
		},
		Generate: GenerateSettings{
			DefaultKind: "qr",
			ECLevel:     "low",
			ModuleScale: 10,
			QuietZone:   16,
			BarHeight:   120,
			BarScale:    2,
		},
		Scan: ScanSettings{
			TryHarder: true,
		},
		History: HistorySettings{
			Enabled: true,
			Limit:   50,
		},
		LogLevel: "info",
	}
}

// DefaultPath returns the per-user location of the config file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "codestudio", configFileName), nil
}

// Load reads settings from path. A missing file yields the defaults; a
// present but unparsable file is an error.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal over the defaults so fields absent from the file keep
	// their default values.
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	s.normalize()
	return s, nil
}

// Save writes settings to path, creating parent directories as needed.
func Save(path string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SlogLevel maps the configured log level name to a slog level.
func (s *Settings) SlogLevel() slog.Level {
	switch s.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// normalize replaces unset or out-of-range values with usable ones. Zero
// values fall back to the defaults so a partial config file keeps working.
func (s *Settings) normalize() {
	def := Default()

	s.Window.Width = clampOrDefault(s.Window.Width, 640, 4096, def.Window.Width)
	s.Window.Height = clampOrDefault(s.Window.Height, 480, 4096, def.Window.Height)

	if _, err := symbol.ParseKind(s.Generate.DefaultKind); err != nil {
		s.Generate.DefaultKind = def.Generate.DefaultKind
	}
	if s.Generate.ECLevel == "" {
		s.Generate.ECLevel = def.Generate.ECLevel
	} else if _, err := symbol.ParseECLevel(s.Generate.ECLevel); err != nil {
		s.Generate.ECLevel = def.Generate.ECLevel
	}
	s.Generate.ModuleScale = clampOrDefault(s.Generate.ModuleScale, 1, 40, def.Generate.ModuleScale)
	s.Generate.QuietZone = clampOrDefault(s.Generate.QuietZone, 1, 64, def.Generate.QuietZone)
	s.Generate.BarHeight = clampOrDefault(s.Generate.BarHeight, 40, 400, def.Generate.BarHeight)
	s.Generate.BarScale = clampOrDefault(s.Generate.BarScale, 1, 8, def.Generate.BarScale)

	s.History.Limit = clampOrDefault(s.History.Limit, 1, 500, def.History.Limit)

	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		s.LogLevel = def.LogLevel
	}
}

// clampOrDefault returns def for non-positive values, otherwise v clamped
// to [minV, maxV].
func clampOrDefault(v, minV, maxV, def int) int {
	if v <= 0 {
		return def
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
