package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed migrations
var migrationsFS embed.FS

// Migration represents a database migration.
type Migration struct {
	Version   string
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt *time.Time
}

// MigrationDB is the subset of *sql.DB / *sql.Conn the migrator needs.
type MigrationDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Migrator handles database migrations.
// Each driver has its own migration set under migrations/<driver>.
type Migrator struct {
	db      MigrationDB
	dialect Dialect
}

// NewMigrator creates a new Migrator instance.
func NewMigrator(db MigrationDB, dialect Dialect) *Migrator {
	return &Migrator{db: db, dialect: dialect}
}

// ensureMigrationsTable creates the schema_migrations table if it doesn't exist.
func (m *Migrator) ensureMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(32) PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := m.db.ExecContext(ctx, query)
	return err
}

// getAppliedMigrations returns a map of applied migration versions.
func (m *Migrator) getAppliedMigrations(ctx context.Context) (map[string]time.Time, error) {
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx, "SELECT version, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]time.Time)
	for rows.Next() {
		var version string
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, err
		}
		applied[version] = appliedAt
	}
	return applied, rows.Err()
}

// loadMigrations loads the driver's migrations from the embedded filesystem.
func (m *Migrator) loadMigrations() ([]Migration, error) {
	dir := path.Join("migrations", m.dialect.Driver().String())
	migrations := make(map[string]*Migration)

	err := fs.WalkDir(migrationsFS, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".sql" {
			return nil
		}

		filename := path.Base(p)
		parts := strings.SplitN(filename, "_", 2)
		if len(parts) != 2 {
			return nil
		}

		version := parts[0]
		rest := parts[1]

		var direction string
		var name string
		if strings.HasSuffix(rest, ".up.sql") {
			direction = "up"
			name = strings.TrimSuffix(rest, ".up.sql")
		} else if strings.HasSuffix(rest, ".down.sql") {
			direction = "down"
			name = strings.TrimSuffix(rest, ".down.sql")
		} else {
			return nil
		}

		content, err := migrationsFS.ReadFile(p)
		if err != nil {
			return err
		}

		mig, ok := migrations[version]
		if !ok {
			mig = &Migration{Version: version, Name: name}
			migrations[version] = mig
		}

		if direction == "up" {
			mig.UpSQL = string(content)
		} else {
			mig.DownSQL = string(content)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %s: %w", m.dialect.Driver(), err)
	}

	result := make([]Migration, 0, len(migrations))
	for _, mig := range migrations {
		result = append(result, *mig)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})

	return result, nil
}

// MigrateUp runs all pending migrations.
func (m *Migrator) MigrateUp(ctx context.Context) error {
	migrations, err := m.loadMigrations()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("getting applied migrations: %w", err)
	}

	for _, mig := range migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}

		if err := m.runMigration(ctx, mig, true); err != nil {
			return fmt.Errorf("running migration %s: %w", mig.Version, err)
		}
	}

	return nil
}

// MigrateDown rolls back the last applied migration.
func (m *Migrator) MigrateDown(ctx context.Context) error {
	migrations, err := m.loadMigrations()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("getting applied migrations: %w", err)
	}

	if len(applied) == 0 {
		return nil
	}

	var lastVersion string
	for version := range applied {
		if version > lastVersion {
			lastVersion = version
		}
	}

	for _, mig := range migrations {
		if mig.Version == lastVersion {
			return m.runMigration(ctx, mig, false)
		}
	}

	return fmt.Errorf("migration %s not found", lastVersion)
}

// MigrateReset rolls back all migrations and re-applies them.
func (m *Migrator) MigrateReset(ctx context.Context) error {
	for {
		applied, err := m.getAppliedMigrations(ctx)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			break
		}
		if err := m.MigrateDown(ctx); err != nil {
			return err
		}
	}

	return m.MigrateUp(ctx)
}

// runMigration executes a single migration.
// MySQL commits DDL implicitly, so the transaction only guards the bookkeeping there.
func (m *Migrator) runMigration(ctx context.Context, mig Migration, up bool) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sqlToRun := mig.DownSQL
	direction := "down"
	if up {
		sqlToRun = mig.UpSQL
		direction = "up"
	}

	if strings.TrimSpace(sqlToRun) == "" {
		return fmt.Errorf("no %s SQL for migration %s", direction, mig.Version)
	}

	for _, stmt := range splitStatements(sqlToRun) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if up {
		_, err = tx.ExecContext(ctx, m.dialect.Rebind("INSERT INTO schema_migrations (version) VALUES (?)"), mig.Version)
	} else {
		_, err = tx.ExecContext(ctx, m.dialect.Rebind("DELETE FROM schema_migrations WHERE version = ?"), mig.Version)
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Status returns the current migration status.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	migrations, err := m.loadMigrations()
	if err != nil {
		return nil, err
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	for i := range migrations {
		if t, ok := applied[migrations[i].Version]; ok {
			migrations[i].AppliedAt = &t
		}
	}

	return migrations, nil
}

// splitStatements splits a migration file on statement-terminating semicolons.
// The go-sql-driver/mysql driver rejects multi-statement Exec unless the DSN enables it.
func splitStatements(script string) []string {
	var stmts []string
	for _, part := range strings.Split(script, ";") {
		stmt := strings.TrimSpace(part)
		if stmt == "" || isCommentOnly(stmt) {
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

func isCommentOnly(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}
