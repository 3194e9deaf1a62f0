// Package config loads the application configuration.
//
// Values come from EXPENSEDB_* environment variables, optionally seeded from a
// .env file. Nested keys use a double underscore:
//
//	EXPENSEDB_DATABASE__DRIVER=postgres  -> database.driver
//	EXPENSEDB_LOG__LEVEL=debug           -> log.level
//
// The result is validated before it is handed to the database, logging and
// metrics packages.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/bargom/expensedb/internal/database"
	"github.com/bargom/expensedb/pkg/logging"
	"github.com/bargom/expensedb/pkg/metrics"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "EXPENSEDB_"

// Config is the root configuration object.
type Config struct {
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Log      LogConfig      `koanf:"log" validate:"required"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// DatabaseConfig describes the store the repositories connect to.
type DatabaseConfig struct {
	Driver   string `koanf:"driver" validate:"required,oneof=mysql postgres sqlite"`
	Host     string `koanf:"host" validate:"required_unless=Driver sqlite"`
	Port     int    `koanf:"port" validate:"gte=0,lte=65535"`
	Name     string `koanf:"name" validate:"required_unless=Driver sqlite"`
	User     string `koanf:"user" validate:"required_unless=Driver sqlite"`
	Password string `koanf:"password"`
	SSLMode  string `koanf:"ssl_mode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	Path     string `koanf:"path" validate:"required_if=Driver sqlite"`
}

// LogConfig mirrors logging.Config.
type LogConfig struct {
	Level              string        `koanf:"level" validate:"oneof=debug info warn warning error"`
	Format             string        `koanf:"format" validate:"oneof=json text"`
	Output             string        `koanf:"output" validate:"required"`
	AddSource          bool          `koanf:"add_source"`
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold" validate:"gte=0"`
	RedactFields       []string      `koanf:"redact_fields"`
}

// MetricsConfig controls query instrumentation.
type MetricsConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Namespace   string `koanf:"namespace" validate:"required_if=Enabled true"`
	Environment string `koanf:"environment"`
	Version     string `koanf:"version"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	db := database.DefaultConfig()
	lc := logging.DefaultConfig()
	mc := metrics.DefaultConfig()

	return Config{
		Database: DatabaseConfig{
			Driver:  db.Driver.String(),
			Host:    db.Host,
			Port:    db.Port,
			SSLMode: db.SSLMode,
		},
		Log: LogConfig{
			Level:              lc.Level,
			Format:             lc.Format,
			Output:             lc.Output,
			AddSource:          lc.AddSource,
			SlowQueryThreshold: lc.SlowQueryThreshold,
		},
		Metrics: MetricsConfig{
			Namespace:   mc.Namespace,
			Environment: mc.DefaultLabels["environment"],
			Version:     mc.DefaultLabels["version"],
		},
	}
}

// Load reads envFile (if it exists) and the EXPENSEDB_* environment into a validated Config.
// An empty envFile means ".env". Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}
	return FromEnv()
}

// FromEnv builds a validated Config from the EXPENSEDB_* environment only.
func FromEnv() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	cfg := Default()
	driverSet := k.Exists("database.driver")
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	// koanf's decoder does not split comma lists
	if k.Exists("log.redact_fields") {
		cfg.Log.RedactFields = splitList(k.String("log.redact_fields"))
	}

	cfg.Database.Driver = database.ParseDriver(cfg.Database.Driver).String()
	if driverSet && !k.Exists("database.port") {
		cfg.Database.Port = database.DefaultPort(database.Driver(cfg.Database.Driver))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against its field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ToDatabase converts the database section into a database.Config.
func (c *Config) ToDatabase() database.Config {
	return database.Config{
		Driver:   database.Driver(c.Database.Driver),
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Database: c.Database.Name,
		User:     c.Database.User,
		Password: c.Database.Password,
		SSLMode:  c.Database.SSLMode,
		Path:     c.Database.Path,
	}
}

// ToLogging converts the log section into a logging.Config.
func (c *Config) ToLogging() logging.Config {
	return logging.Config{
		Level:              c.Log.Level,
		Format:             c.Log.Format,
		Output:             c.Log.Output,
		AddSource:          c.Log.AddSource,
		SlowQueryThreshold: c.Log.SlowQueryThreshold,
		RedactFields:       c.Log.RedactFields,
	}
}

// ToMetrics converts the metrics section into a metrics.Config.
func (c *Config) ToMetrics() metrics.Config {
	mc := metrics.DefaultConfig()
	if c.Metrics.Namespace != "" {
		mc.Namespace = c.Metrics.Namespace
	}
	if c.Metrics.Version != "" {
		mc = mc.WithVersion(c.Metrics.Version)
	}
	if c.Metrics.Environment != "" {
		mc = mc.WithEnvironment(c.Metrics.Environment)
	}
	return mc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
