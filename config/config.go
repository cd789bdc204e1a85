package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration parameters, loaded from environment variables.
type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	// Scopus API access. The key is deliberately not required at startup:
	// a missing key only fails the individual gateway call.
	ScopusBaseURL string `envconfig:"SCOPUS_BASE_URL" default:"https://api.elsevier.com/content"`
	ScopusAPIKey  string `envconfig:"SCOPUS_API_KEY"`

	// Journal quartile reference table (SJR export). Absence is non-fatal.
	QuartilesFile string `envconfig:"QUARTILES_FILE" default:"scimagojr_2023.csv"`

	StatsCronSchedule string `envconfig:"STATS_CRON_SCHEDULE" default:"0 3 * * *"`

	// S3-compatible storage for uploaded PDF files. Optional: when not
	// configured, uploads are parsed but not archived.
	S3Key    string `envconfig:"S3_KEY"`
	S3Secret string `envconfig:"S3_SECRET"`
	S3URL    string `envconfig:"S3_URL"`
	S3Region string `envconfig:"S3_REGION" default:"eu-central-1"`
	S3Bucket string `envconfig:"S3_BUCKET"`
}

// S3Enabled reports whether the PDF archive storage is configured.
func (c *Config) S3Enabled() bool {
	return c.S3URL != "" && c.S3Bucket != "" && c.S3Key != "" && c.S3Secret != ""
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
