package config

import "time"

// DefaultConfig returns the baseline configuration; file and
// environment values are layered on top by the loader.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			StaticDir: "./web",
		},
		Analysis: AnalysisConfig{
			BaseURL:     "https://openrouter.ai/api/v1",
			ModelName:   "meta-llama/llama-4-maverick:free",
			MaxTokens:   2500,
			Temperature: 0.2,
			Timeout:     60 * time.Second,
			MaxRetries:  2,
			Referer:     "http://localhost",
		},
		Image: ImageConfig{
			MaxFileSize:    5 * 1024 * 1024,
			MaxWidth:       8192,
			MaxHeight:      8192,
			MaxPixels:      50_000_000,
			AllowedFormats: []string{"jpeg", "jpg", "png", "webp", "gif", "bmp"},
			FetchTimeout:   30 * time.Second,
		},
		Auth: AuthConfig{
			BackendURL: "https://glamai.fly.dev",
			Collection: "users",
		},
		History: HistoryConfig{
			Enabled: false,
			DSN:     "data/history.db",
		},
	}
}
