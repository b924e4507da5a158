// Package config loads server settings from a TOML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables. A missing config file is not an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Environment variables that override file settings.
const (
	EnvLogLevel      = "PHOTOFX_LOG_LEVEL"
	EnvGeminiAPIKey  = "GEMINI_API_KEY"
	EnvGeminiModel   = "PHOTOFX_GEMINI_MODEL"
	EnvPreviewWidth  = "PHOTOFX_PREVIEW_WIDTH"
	EnvPreviewHeight = "PHOTOFX_PREVIEW_HEIGHT"
	EnvFontDir       = "PHOTOFX_FONT_DIR"
)

// Defaults.
const (
	DefaultLogLevel      = "info"
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultPreviewWidth  = 1280
	DefaultPreviewHeight = 800
)

// Config holds the server settings.
type Config struct {
	LogLevel string `toml:"log_level"`

	Gemini  Gemini  `toml:"gemini"`
	Preview Preview `toml:"preview"`

	// FontDir is scanned for extra .ttf/.otf faces at startup.
	FontDir string `toml:"font_dir"`
}

// Gemini configures the AI analyzers. An empty APIKey disables them.
type Gemini struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// Preview is the default preview container size.
type Preview struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		Gemini:   Gemini{Model: DefaultGeminiModel},
		Preview:  Preview{Width: DefaultPreviewWidth, Height: DefaultPreviewHeight},
	}
}

// Load reads path (if non-empty and present) over the defaults and applies
// environment overrides.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if undec := md.Undecoded(); len(undec) > 0 {
				keys := make([]string, len(undec))
				for i, k := range undec {
					keys[i] = k.String()
				}
				return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
			}
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	cfg.fill()
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvGeminiAPIKey); ok && v != "" {
		c.Gemini.APIKey = v
	}
	if v, ok := lookup(EnvGeminiModel); ok && v != "" {
		c.Gemini.Model = v
	}
	if v, ok := lookup(EnvFontDir); ok && v != "" {
		c.FontDir = v
	}
	if v, ok := lookup(EnvPreviewWidth); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPreviewWidth, err)
		}
		c.Preview.Width = n
	}
	if v, ok := lookup(EnvPreviewHeight); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPreviewHeight, err)
		}
		c.Preview.Height = n
	}
	return nil
}

// fill replaces unusable values with defaults.
func (c *Config) fill() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = DefaultGeminiModel
	}
	if c.Preview.Width <= 0 {
		c.Preview.Width = DefaultPreviewWidth
	}
	if c.Preview.Height <= 0 {
		c.Preview.Height = DefaultPreviewHeight
	}
}

// GeminiEnabled reports whether an API key is configured.
func (c Config) GeminiEnabled() bool {
	return c.Gemini.APIKey != ""
}
