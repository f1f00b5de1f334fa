// Package settings holds what the tracker remembers between runs: the last
// canonical file, the colour theme and the autosave delay.
//
// Settings are an explicit value handed to the store factory and saved by
// the application; nothing here is process-global.
package settings

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/natefinch/atomic"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/aretw0/tally/pkg/tally"
)

const (
	// EnvPrefix marks environment variables that override the settings file,
	// e.g. TALLY_THEME=dark or TALLY_DEBOUNCE=2s.
	EnvPrefix = "TALLY_"

	ThemeLight = "light"
	ThemeDark  = "dark"

	maxFileSize = 1024 * 1024 // 1MB
)

// Settings is the remembered application state.
type Settings struct {
	// Path is the canonical file opened by default. Empty means the default
	// location under the user config directory.
	Path     string        `koanf:"path"`
	Theme    string        `koanf:"theme" validate:"oneof=light dark"`
	Debounce time.Duration `koanf:"debounce" validate:"gte=0"`
}

// fileSettings is the on-disk shape; the delay is kept human readable.
type fileSettings struct {
	Path     string `yaml:"path,omitempty"`
	Theme    string `yaml:"theme"`
	Debounce string `yaml:"debounce"`
}

var validate = validator.New()

// Defaults returns the settings used when nothing was saved yet.
func Defaults() Settings {
	return Settings{
		Theme:    ThemeLight,
		Debounce: tally.DefaultDelay,
	}
}

// Dir returns the per-user directory holding tally files.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, "tally"), nil
}

// DefaultPath returns where settings are stored when no path is given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.yaml"), nil
}

// CanonicalPath returns s.Path, or the default canonical file location.
func (s Settings) CanonicalPath() (string, error) {
	if s.Path != "" {
		return s.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "projects.json"), nil
}

// Load reads settings from path, then applies TALLY_* environment overrides.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (TALLY_PATH, TALLY_THEME, TALLY_DEBOUNCE)
//  2. YAML settings file
//  3. Defaults
//
// A missing file is not an error.
func Load(path string) (Settings, error) {
	k := koanf.New(".")

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Settings{}, err
		}
		path = p
	}

	if f, err := os.Open(path); err == nil {
		defer f.Close()
		content, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
		if err != nil {
			return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
		}
		if len(content) > maxFileSize {
			return Settings{}, fmt.Errorf("settings file too large (max %d bytes)", maxFileSize)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return Settings{}, fmt.Errorf("failed to load settings file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Settings{}, fmt.Errorf("failed to open settings file: %w", err)
	}

	// TALLY_DEBOUNCE -> debounce
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return Settings{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	s := Defaults()
	if err := k.Unmarshal("", &s); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if s.Theme == "" {
		s.Theme = ThemeLight
	}
	if s.Debounce == 0 {
		s.Debounce = tally.DefaultDelay
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the theme and delay.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Save writes s to path atomically, creating the directory if needed.
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	data, err := yamlv3.Marshal(fileSettings{
		Path:     s.Path,
		Theme:    s.Theme,
		Debounce: s.Debounce.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
