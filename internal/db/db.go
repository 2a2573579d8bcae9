// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package db // import "github.com/toeirei/dbterm/internal/db"

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	// SQL drivers for the supported backends.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect names a supported database backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect validates a configured database type.
func ParseDialect(dbType string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(dbType))); d {
	case DialectSQLite, DialectMySQL, DialectPostgres:
		return d, nil
	case "postgresql", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database type: '%s'", dbType)
	}
}

// driverName maps a dialect to its registered database/sql driver.
// The pgx stdlib registers driver name "pgx".
func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return string(d)
}

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

// Store is the bun-backed data store used by the shell.
type Store struct {
	bun     *bun.DB
	dialect Dialect
}

// Open connects to the database described by dbType and dsn. The pool is
// capped at a single connection; the shell is strictly sequential and
// in-memory sqlite databases are per-connection.
func Open(ctx context.Context, dbType, dsn string) (*Store, error) {
	d, err := ParseDialect(dbType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	sqlDB, err := sqlOpenFunc(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", d, err)
	}
	dbLogf("opened %s driver in %s", d.driverName(), time.Since(start))

	return &Store{bun: createBunDB(sqlDB, d), dialect: d}, nil
}

// createBunDB constructs a *bun.DB for the provided *sql.DB and dialect.
func createBunDB(sqlDB *sql.DB, d Dialect) *bun.DB {
	switch d {
	case DialectPostgres:
		return bun.NewDB(sqlDB, pgdialect.New())
	case DialectMySQL:
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

// Dialect reports the backend the store is connected to.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.bun.Close()
}

// quoteIdent quotes a table or column name with the backend's identifier
// quote, doubling any embedded quote characters.
func (s *Store) quoteIdent(name string) string {
	q := string(s.bun.Dialect().IdentQuote())
	return q + strings.ReplaceAll(name, q, q+q) + q
}
