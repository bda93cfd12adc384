// Package config loads Filez's runtime configuration via spf13/viper,
// following the teacher's layering: defaults, then a config file, then
// environment variables, then `_FILE`-suffixed environment variables that
// point at a file holding the real secret (so container orchestrators can
// mount secrets rather than inline them).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr     string `mapstructure:"http_addr" validate:"required"`
	DatabaseDSN  string `mapstructure:"database_dsn" validate:"required"`
	JWTSecret    string `mapstructure:"jwt_secret" validate:"required"`
	MetricsAddr  string `mapstructure:"metrics_addr"`

	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	JobPollInterval   string `mapstructure:"job_poll_interval"`
	QuotaSweepInterval string `mapstructure:"quota_sweep_interval"`
	MigrationsDir     string `mapstructure:"migrations_dir"`
}

type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ServiceName    string  `mapstructure:"service_name"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	Insecure       bool    `mapstructure:"insecure"`
	SampleRate     float64 `mapstructure:"sample_rate"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("metrics_addr", ":9090")
	v.SetDefault("job_poll_interval", "5s")
	v.SetDefault("migrations_dir", "migrations")
	v.SetDefault("quota_sweep_interval", "5m")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "filez")
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.insecure", true)
	v.SetDefault("telemetry.sample_rate", 1.0)
}

// Load reads configuration from configPath (if non-empty) and the FILEZ_
// environment prefix, resolving any *_FILE variable by reading the
// referenced file's contents in place of the variable's own value.
func Load(configPath string) (Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("FILEZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", configPath, err)
		}
	}

	if err := resolveFileIndirection(v, "database_dsn", "FILEZ_DATABASE_DSN_FILE"); err != nil {
		return Config{}, err
	}
	if err := resolveFileIndirection(v, "jwt_secret", "FILEZ_JWT_SECRET_FILE"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveFileIndirection checks envFileVar; if set, it overrides key's
// value in v with the contents of the named file.
func resolveFileIndirection(v *viper.Viper, key, envFileVar string) error {
	path := os.Getenv(envFileVar)
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", envFileVar, err)
	}
	v.Set(key, strings.TrimSpace(string(data)))
	return nil
}
