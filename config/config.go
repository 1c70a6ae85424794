// Package config loads runtime configuration from the environment.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the server. Every field has a
// development-friendly default; a .env file in the working directory is
// loaded first when present.
type Config struct {
	Addr         string        `envconfig:"ADDR" default:":8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`

	DBPath string `envconfig:"DB_PATH" default:"vakeel.db"`

	// Origins allowed to call the API (the React dashboard).
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Base URL of the external field-extraction service.
	ExtractorURL string `envconfig:"EXTRACTOR_URL" default:"http://localhost:8000"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"` // console or json

	// Daily trigger sweep.
	SweepEnabled  bool          `envconfig:"SWEEP_ENABLED" default:"true"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"24h"`

	// Email delivery. SES is used when a region and from-address are set;
	// otherwise notices go to the log sink.
	AWSRegion     string `envconfig:"AWS_REGION" default:""`
	EmailFrom     string `envconfig:"EMAIL_FROM" default:""`
	EmailFromName string `envconfig:"EMAIL_FROM_NAME" default:"Digital Vakeel"`
}

// Load reads configuration from a .env file (if present) and the
// environment. Variables are prefixed VAKEEL_ (e.g. VAKEEL_ADDR).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("vakeel", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EmailConfigured reports whether SES delivery can be wired.
func (c *Config) EmailConfigured() bool {
	return c.AWSRegion != "" && c.EmailFrom != ""
}
