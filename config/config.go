/*
Package config loads server configuration.

PURPOSE:
  One Config struct for the whole deployment, loaded in three layers:
  built-in defaults, then an optional YAML file, then CETRACK_*
  environment variables. Environment wins, so containerized deploys
  can run without a file at all.

USAGE:
  cfg, err := config.Load("cetrack.yaml")

  A missing file is not an error; a present-but-broken file is.
  Load validates the result, so a Config you receive is usable.

SEE ALSO:
  - logger.Config: built from the logging section
  - factory.ParseCatalog: consumes designations.catalog_path
*/
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		// Dev unlocks the demo-scenario endpoints and defaults
		// logging to the pretty writer.
		Dev bool `yaml:"dev"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		TokenTTL      string `yaml:"token_ttl"`
		ResetTokenTTL string `yaml:"reset_token_ttl"`
	} `yaml:"auth"`

	Email struct {
		Enabled bool   `yaml:"enabled"`
		APIKey  string `yaml:"api_key"`
		From    string `yaml:"from"`
		// NoticeTo receives feedback notifications. Empty disables them.
		NoticeTo string `yaml:"notice_to"`
		// BaseURL is the public site root used in reset links.
		BaseURL string `yaml:"base_url"`
	} `yaml:"email"`

	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`

	Scheduler struct {
		Enabled  bool   `yaml:"enabled"`
		Interval string `yaml:"interval"`
	} `yaml:"scheduler"`

	Designations struct {
		// CatalogPath points at an optional JSON file of requirement
		// specs that replace or extend the built-in catalog.
		CatalogPath string `yaml:"catalog_path"`
	} `yaml:"designations"`
}

// Load builds the config from defaults, the YAML file at path (if it
// exists), and CETRACK_* environment variables, then validates it.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Server.Addr = ":8080"
	cfg.Server.AllowedOrigins = []string{"*"}

	cfg.Database.Path = "cetrack.db"

	cfg.Auth.TokenTTL = "24h"
	cfg.Auth.ResetTokenTTL = "1h"

	cfg.Email.From = "CE Tracker <noreply@cetrack.local>"
	cfg.Email.BaseURL = "http://localhost:8080"

	cfg.Logging.Level = "info"

	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Interval = "24h"
}

func loadFromEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "CETRACK_ADDR")
	if v, ok := os.LookupEnv("CETRACK_ALLOWED_ORIGINS"); ok {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	setBool(&cfg.Server.Dev, "CETRACK_DEV")

	setString(&cfg.Database.Path, "CETRACK_DB_PATH")

	setString(&cfg.Auth.JWTSecret, "CETRACK_JWT_SECRET")
	setString(&cfg.Auth.TokenTTL, "CETRACK_TOKEN_TTL")
	setString(&cfg.Auth.ResetTokenTTL, "CETRACK_RESET_TOKEN_TTL")

	setBool(&cfg.Email.Enabled, "CETRACK_EMAIL_ENABLED")
	setString(&cfg.Email.APIKey, "CETRACK_RESEND_API_KEY")
	setString(&cfg.Email.From, "CETRACK_EMAIL_FROM")
	setString(&cfg.Email.NoticeTo, "CETRACK_EMAIL_NOTICE_TO")
	setString(&cfg.Email.BaseURL, "CETRACK_BASE_URL")

	setString(&cfg.Logging.Level, "CETRACK_LOG_LEVEL")
	setBool(&cfg.Logging.Pretty, "CETRACK_LOG_PRETTY")

	setBool(&cfg.Scheduler.Enabled, "CETRACK_SCHEDULER_ENABLED")
	setString(&cfg.Scheduler.Interval, "CETRACK_SNAPSHOT_INTERVAL")

	setString(&cfg.Designations.CatalogPath, "CETRACK_CATALOG_PATH")
}

// Validate checks the parts that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt_secret is required (set CETRACK_JWT_SECRET)")
	}
	if _, err := time.ParseDuration(c.Auth.TokenTTL); err != nil {
		return fmt.Errorf("invalid auth token_ttl: %w", err)
	}
	if _, err := time.ParseDuration(c.Auth.ResetTokenTTL); err != nil {
		return fmt.Errorf("invalid auth reset_token_ttl: %w", err)
	}
	if _, err := time.ParseDuration(c.Scheduler.Interval); err != nil {
		return fmt.Errorf("invalid scheduler interval: %w", err)
	}
	if c.Email.Enabled && c.Email.APIKey == "" {
		return fmt.Errorf("email enabled but api_key is empty")
	}
	return nil
}

// TokenDuration returns the parsed session token lifetime.
func (c *Config) TokenDuration() time.Duration {
	d, _ := time.ParseDuration(c.Auth.TokenTTL)
	return d
}

// ResetTokenDuration returns the parsed password reset token lifetime.
func (c *Config) ResetTokenDuration() time.Duration {
	d, _ := time.ParseDuration(c.Auth.ResetTokenTTL)
	return d
}

// SnapshotInterval returns the parsed scheduler interval.
func (c *Config) SnapshotInterval() time.Duration {
	d, _ := time.ParseDuration(c.Scheduler.Interval)
	return d
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		*dst = true
	case "false", "0", "no":
		*dst = false
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
