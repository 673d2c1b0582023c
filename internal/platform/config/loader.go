package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// candidate config files, checked in order.
var configFiles = []string{".config.yaml", "config.yaml"}

// Loader reads configuration from defaults, an optional yaml file and
// environment variables, in that order of precedence.
type Loader struct {
	useDotEnv bool
	path      string
}

// NewLoader creates a loader with .env support enabled.
func NewLoader() *Loader {
	return &Loader{useDotEnv: true}
}

// WithDotEnv toggles loading variables from a .env file first.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath pins the loader to an explicit config file (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load resolves the effective configuration. A missing config file is
// not an error; defaults plus environment still produce a usable config.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()

	path := l.path
	if path == "" {
		for _, candidate := range configFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: path}, nil
}

// applyEnv layers environment variables over the loaded values. The
// remote credential is deliberately env-only.
func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.Analysis.APIKey = v
	}
	if v := os.Getenv("GLAMAI_ANALYSIS_URL"); v != "" {
		cfg.Analysis.BaseURL = v
	}
	if v := os.Getenv("GLAMAI_ANALYSIS_MODEL"); v != "" {
		cfg.Analysis.ModelName = v
	}
	if v := os.Getenv("GLAMAI_AUTH_BACKEND_URL"); v != "" {
		cfg.Auth.BackendURL = v
	}
	if v := os.Getenv("GLAMAI_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GLAMAI_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Analysis.MaxTokens <= 0 {
		return fmt.Errorf("analysis max_tokens must be positive")
	}
	if cfg.Analysis.MaxRetries < 0 {
		return fmt.Errorf("analysis max_retries must not be negative")
	}
	if cfg.Image.MaxFileSize <= 0 {
		return fmt.Errorf("image max_file_size must be positive")
	}
	if cfg.Auth.Collection == "" {
		cfg.Auth.Collection = "users"
	}
	return nil
}
