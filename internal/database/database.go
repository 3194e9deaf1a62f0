package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Conn is a single dedicated connection to the store.
// It owns both the pinned *sql.Conn and the *sql.DB it was taken from;
// closing it releases both. The embedded *sql.Conn provides ExecContext,
// QueryContext, QueryRowContext and BeginTx.
type Conn struct {
	*sql.Conn
	db      *sql.DB
	dialect Dialect
}

// Open establishes one connection to the database described by cfg.
// The connection is acquired eagerly and verified with a ping; there is no
// pool behind it and no reconnect.
func Open(ctx context.Context, cfg Config) (*Conn, error) {
	if !cfg.Driver.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver.String(), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection, kept for the lifetime of the Conn
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			db.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	}

	return &Conn{
		Conn:    conn,
		db:      db,
		dialect: DialectFor(cfg.Driver),
	}, nil
}

// Dialect returns the SQL dialect of the connection.
func (c *Conn) Dialect() Dialect {
	return c.dialect
}

// Ping verifies the connection is alive.
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.Conn.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}

// Close releases the connection and the underlying handle.
func (c *Conn) Close() error {
	if err := errors.Join(c.Conn.Close(), c.db.Close()); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
