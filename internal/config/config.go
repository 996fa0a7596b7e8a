// Package config loads service configuration from an optional YAML file
// with environment-variable overrides. Environment wins over file so
// container deployments can tweak a baked-in config.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all process-level settings.
type Config struct {
	Addr        string `yaml:"addr"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
	AuthToken   string `yaml:"auth_token"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// Load reads the YAML file at path (skipped when path is empty or the
// file does not exist) and applies environment overrides on top of the
// defaults.
func Load(path string) (Config, error) {
	cfg := Config{Addr: ":8080"}
	cfg.Log.Format = "json"

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	overrideString(&cfg.Addr, "ADDR")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.SQLitePath, "SQLITE_PATH")
	overrideString(&cfg.AuthToken, "AUTH_TOKEN")
	overrideString(&cfg.Log.Level, "LOG_LEVEL")
	overrideString(&cfg.Log.Format, "LOG_FORMAT")
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return cfg, nil
}

func overrideString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Logger builds the process logger from the log settings. Default is
// JSON at INFO.
func (c Config) Logger() *slog.Logger {
	level := parseLogLevel(c.Log.Level)
	if strings.EqualFold(c.Log.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func parseLogLevel(s string) slog.Leveler {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "ERR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
