package config

import "time"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Web      WebConfig      `yaml:"web"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Image    ImageConfig    `yaml:"image"`
	Auth     AuthConfig     `yaml:"auth"`
	History  HistoryConfig  `yaml:"history"`
}

type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	StaticDir string `yaml:"static_dir"`
}

// AnalysisConfig drives the remote multimodal chat-completion client.
// APIKey is only ever populated from the environment, never from the
// config file.
type AnalysisConfig struct {
	BaseURL     string        `yaml:"url"`
	APIKey      string        `yaml:"-"`
	ModelName   string        `yaml:"model_name"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	Referer     string        `yaml:"referer"`
}

type ImageConfig struct {
	MaxFileSize    int64         `yaml:"max_file_size"`
	MaxWidth       int           `yaml:"max_width"`
	MaxHeight      int           `yaml:"max_height"`
	MaxPixels      int64         `yaml:"max_pixels"`
	AllowedFormats []string      `yaml:"allowed_formats"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
}

// AuthConfig points at the hosted account backend. The backend is
// opaque: this server only calls its fixed collection endpoints.
type AuthConfig struct {
	BackendURL string `yaml:"backend_url"`
	Collection string `yaml:"collection"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}
