// Package database provides database connectivity and operations.
package database

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrUnsupportedDriver is returned when a Config names a driver this package cannot open.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Driver represents the supported database backends.
type Driver string

const (
	// DriverMySQL represents MySQL / MariaDB.
	DriverMySQL Driver = "mysql"
	// DriverPostgres represents PostgreSQL.
	DriverPostgres Driver = "postgres"
	// DriverSQLite represents an embedded SQLite database.
	DriverSQLite Driver = "sqlite"
)

// String returns the string representation of Driver.
func (d Driver) String() string {
	return string(d)
}

// IsValid returns true if the driver is supported.
func (d Driver) IsValid() bool {
	switch d {
	case DriverMySQL, DriverPostgres, DriverSQLite:
		return true
	default:
		return false
	}
}

// ParseDriver parses a string into a Driver, accepting common aliases.
// Unknown names are returned as-is so that IsValid reports them.
func ParseDriver(s string) Driver {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mysql", "mariadb":
		return DriverMySQL
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	case "sqlite", "sqlite3":
		return DriverSQLite
	default:
		return Driver(s)
	}
}

// DefaultPort returns the conventional server port for the driver, or 0 for SQLite.
func DefaultPort(d Driver) int {
	switch d {
	case DriverMySQL:
		return 3306
	case DriverPostgres:
		return 5432
	default:
		return 0
	}
}

// Config holds database connection configuration.
type Config struct {
	Driver   Driver
	Host     string
	Port     int
	Database string
	User     string
	Password string

	// SSLMode is only used by PostgreSQL.
	SSLMode string

	// Path is the SQLite database file, or ":memory:".
	Path string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Driver:  DriverMySQL,
		Host:    "localhost",
		Port:    DefaultPort(DriverMySQL),
		SSLMode: "disable",
	}
}

// ConfigFromEnv creates a Config from environment variables.
// Environment variables:
//   - DB_DRIVER: "mysql", "postgres" or "sqlite" (default: "mysql")
//   - DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD, DB_SSL_MODE
//   - DB_PATH: SQLite file path
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		cfg.Driver = ParseDriver(driver)
		cfg.Port = DefaultPort(cfg.Driver)
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		// Keep the default if the value is not a positive integer
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			cfg.Port = p
		}
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database = name
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Password = pass
	}
	if ssl := os.Getenv("DB_SSL_MODE"); ssl != "" {
		cfg.SSLMode = ssl
	}
	if path := os.Getenv("DB_PATH"); path != "" {
		cfg.Path = path
	}

	return cfg
}

// DSN builds the driver-specific data source name.
func (c Config) DSN() (string, error) {
	switch c.Driver {
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.port()))
		mc.DBName = c.Database
		mc.ParseTime = true
		// Report matched rather than changed rows so Update is true for an unchanged row.
		mc.ClientFoundRows = true
		return mc.FormatDSN(), nil

	case DriverPostgres:
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			pqQuote(c.Host), c.port(), pqQuote(c.User), pqQuote(c.Password), pqQuote(c.Database), sslMode,
		), nil

	case DriverSQLite:
		if c.Path == "" {
			return ":memory:", nil
		}
		return c.Path, nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Driver)
	}
}

func (c Config) port() int {
	if c.Port > 0 {
		return c.Port
	}
	return DefaultPort(c.Driver)
}

// pqQuote quotes a keyword/value connection parameter for lib/pq.
func pqQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, ` '\`) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
