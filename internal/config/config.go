// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

// Package config loads service configuration from defaults, an optional
// YAML file, environment variables, and command-line flags, in that order
// of precedence.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// envPrefix namespaces the environment layer. A double underscore separates
// sections, so INKPRESS_SERVER__STATIC_DIR maps to server.static_dir.
const envPrefix = "INKPRESS_"

// jwtSecretEnv overrides auth.jwt_secret so the secret can stay out of
// config files and process arguments.
const jwtSecretEnv = "INKPRESS_JWT_SECRET"

// Config is the root service configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Database      DatabaseConfig      `koanf:"database"`
	Auth          AuthConfig          `koanf:"auth"`
	Mail          MailConfig          `koanf:"mail"`
	Log           LogConfig           `koanf:"log"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// ServerConfig controls the HTTP API listener.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	StaticDir       string        `koanf:"static_dir"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig controls the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// AuthConfig controls token issuance and the password-reset flow.
type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
	ResetTTL  time.Duration `koanf:"reset_ttl"`
}

// MailConfig controls outbound password-reset mail. With no SMTP address
// configured, reset tokens are written to the log instead.
type MailConfig struct {
	SMTPAddr string `koanf:"smtp_addr"`
	From     string `koanf:"from"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ObservabilityConfig controls the metrics and health listener.
type ObservabilityConfig struct {
	Addr string `koanf:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			StaticDir:       "web/static",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			URL: "postgres://localhost:5432/inkpress",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
			ResetTTL: time.Hour,
		},
		Mail: MailConfig{
			From: "no-reply@inkpress.local",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Observability: ObservabilityConfig{
			Addr: ":9090",
		},
	}
}

// Load layers configuration: defaults, then the YAML file at path (skipped
// when path is empty or the file does not exist), then INKPRESS_-prefixed
// environment variables, then flags, then the JWT secret environment
// variable.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, oops.Code("CONFIG_FILE_INVALID").
					With("path", path).
					Wrap(err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, oops.Code("CONFIG_FILE_INVALID").
				With("path", path).
				Wrap(err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Config{}, oops.Code("CONFIG_ENV_INVALID").Wrap(err)
	}

	if flags != nil {
		// Passing k lets file values win over unchanged flag defaults.
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if secret := os.Getenv(jwtSecretEnv); secret != "" {
		cfg.Auth.JWTSecret = secret
	}

	return cfg, nil
}

// envKey maps an environment variable name to a configuration key.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("server.addr is required")
	}
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	if c.Auth.JWTSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("auth.jwt_secret is required (set %s)", jwtSecretEnv)
	}
	if c.Auth.TokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("auth.token_ttl must be positive")
	}
	if c.Auth.ResetTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("auth.reset_ttl must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return oops.Code("CONFIG_INVALID").Errorf("log.level must be debug, info, warn, or error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return oops.Code("CONFIG_INVALID").Errorf("log.format must be text or json")
	}
	return nil
}
