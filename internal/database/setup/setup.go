// Package setup opens the expense repositories from a database configuration.
// This package bridges the database and repository packages to avoid import cycles.
package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/bargom/expensedb/internal/database"
	"github.com/bargom/expensedb/internal/database/repository"
)

// ErrInMemorySQLite is returned when the repositories would each open a private in-memory SQLite database.
var ErrInMemorySQLite = errors.New("sqlite needs a database file path: every repository opens its own connection")

// Connection holds the four repositories of one store.
// Every repository owns its own connection; closing the Connection releases all of them.
type Connection struct {
	driver database.Driver
	repos  *repository.Repositories
}

// Driver returns the driver the repositories were opened with.
func (c *Connection) Driver() database.Driver {
	return c.driver
}

// Repositories returns the repositories of the connection.
func (c *Connection) Repositories() *repository.Repositories {
	return c.repos
}

// Close closes every repository.
func (c *Connection) Close() error {
	return c.repos.Close()
}

// NewConnection opens the expense, category, user and chat repositories against cfg.
// If any of them fails to open, the ones already opened are closed again.
// SQLite must be given a file path, since an in-memory database is private to one connection.
func NewConnection(ctx context.Context, cfg database.Config, opts ...repository.Option) (*Connection, error) {
	if cfg.Driver == database.DriverSQLite && (cfg.Path == "" || cfg.Path == ":memory:") {
		return nil, ErrInMemorySQLite
	}

	var closers []interface{ Close() error }
	fail := func(err error) (*Connection, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			err = errors.Join(err, closers[i].Close())
		}
		return nil, err
	}

	expenses, err := repository.OpenExpenseRepository(ctx, cfg, opts...)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, expenses)

	categories, err := repository.OpenExpenseCategoryRepository(ctx, cfg, opts...)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, categories)

	users, err := repository.OpenUserRepository(ctx, cfg, opts...)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, users)

	chats, err := repository.OpenChatHistoryRepository(ctx, cfg, opts...)
	if err != nil {
		return fail(err)
	}

	return &Connection{
		driver: cfg.Driver,
		repos:  repository.NewRepositories(expenses, categories, users, chats),
	}, nil
}

// MustNewConnection opens the repositories and panics on error.
func MustNewConnection(ctx context.Context, cfg database.Config, opts ...repository.Option) *Connection {
	conn, err := NewConnection(ctx, cfg, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create database connection: %v", err))
	}
	return conn
}

// NewMigrator opens a dedicated connection for schema changes.
// The caller closes the returned Conn when done.
func NewMigrator(ctx context.Context, cfg database.Config) (*database.Migrator, *database.Conn, error) {
	conn, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to %s: %w", cfg.Driver, err)
	}
	return database.NewMigrator(conn, conn.Dialect()), conn, nil
}
