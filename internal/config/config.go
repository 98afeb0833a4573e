package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"go-simpler.org/env"

	"github.com/five82/shutter/internal/logging"
)

// Config holds everything shutter needs to reach the photo API.
type Config struct {
	APIURL   string
	APIKey   string
	LogFile  string
	LogLevel string
}

const (
	defaultConfigPath = "~/.config/shutter/config.toml"
	defaultLogFile    = "~/.local/state/shutter/shutter.log"
	defaultLogLevel   = "info"
	dotEnvFile        = ".env"
)

type fileConfig struct {
	APIURL   string `toml:"api_url"`
	APIKey   string `toml:"api_key"`
	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`
}

// envOverrides are applied on top of the file when non-empty.
type envOverrides struct {
	APIURL   string `env:"SHUTTER_API_URL"`
	APIKey   string `env:"SHUTTER_API_KEY"`
	LogFile  string `env:"SHUTTER_LOG_FILE"`
	LogLevel string `env:"SHUTTER_LOG_LEVEL"`
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load reads the TOML file at path (the default path when empty), applies
// environment overrides, fills defaults, and validates the result. A missing
// file is not an error as long as the environment supplies the required
// fields.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	raw, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotEnvFile, err)
	}
	var ov envOverrides
	if err := env.Load(&ov, nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := Config{
		APIURL:   pick(ov.APIURL, raw.APIURL),
		APIKey:   pick(ov.APIKey, raw.APIKey),
		LogFile:  pick(ov.LogFile, raw.LogFile),
		LogLevel: pick(ov.LogLevel, raw.LogLevel),
	}
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile
	}
	cfg.LogFile = mustExpand(cfg.LogFile)
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("api_url is required (set it in the config file or SHUTTER_API_URL)")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url %q must be an absolute http or https URL", c.APIURL)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("api_key is required (set it in the config file or SHUTTER_API_KEY)")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

func readFile(path string) (fileConfig, error) {
	var raw fileConfig

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return raw, nil
		}
		return raw, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return raw, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return raw, fmt.Errorf("parse config: %w", err)
	}
	return raw, nil
}

func pick(override, fromFile string) string {
	if v := strings.TrimSpace(override); v != "" {
		return v
	}
	return strings.TrimSpace(fromFile)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
