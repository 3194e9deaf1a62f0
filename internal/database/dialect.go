package database

import (
	"strconv"
	"strings"
)

// Dialect captures the SQL differences between the supported drivers.
// Queries are written with '?' placeholders and rebound per dialect.
type Dialect struct {
	driver Driver
}

// DialectFor returns the Dialect for the given driver.
func DialectFor(d Driver) Dialect {
	return Dialect{driver: d}
}

// Driver returns the driver the dialect belongs to.
func (d Dialect) Driver() Driver {
	return d.driver
}

// Rebind rewrites '?' placeholders into the driver's bind syntax.
// PostgreSQL uses $1, $2, ...; MySQL and SQLite keep '?'.
// Placeholders inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d.driver != DriverPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inLiteral := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inLiteral = !inLiteral
			b.WriteByte(c)
		case c == '?' && !inLiteral:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ReturnsID reports whether inserts must use RETURNING to read the new identity.
// lib/pq does not implement LastInsertId.
func (d Dialect) ReturnsID() bool {
	return d.driver == DriverPostgres
}

// MaxParams returns how many bind parameters a single statement may carry.
// SQLite's default SQLITE_MAX_VARIABLE_NUMBER is 32766; PostgreSQL and MySQL
// count parameters in a 16-bit field.
func (d Dialect) MaxParams() int {
	if d.driver == DriverSQLite {
		return 32766
	}
	return 65535
}

// Placeholders returns n comma-separated '?' placeholders.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
