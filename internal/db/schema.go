// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"strconv"

	"github.com/toeirei/dbterm/internal/model"
)

// ListTables returns the user tables of the connected database.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	var query string
	switch s.dialect {
	case DialectMySQL:
		query = "SHOW TABLES"
	case DialectPostgres:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name"
	default:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	}

	var names []string
	if err := s.bun.NewRaw(query).Scan(ctx, &names); err != nil {
		return nil, err
	}
	return names, nil
}

type columnInfo struct {
	Field   string `bun:"field"`
	ColType string `bun:"col_type"`
	NotNull int    `bun:"not_null"`
	Null    string `bun:"nullable"`
	Key     string `bun:"col_key"`
	PK      int    `bun:"pk"`
}

const (
	mysqlDescribeQuery = `SELECT column_name AS field, column_type AS col_type, is_nullable AS nullable, column_key AS col_key
FROM information_schema.columns
WHERE table_schema = DATABASE() AND table_name = ?
ORDER BY ordinal_position`

	postgresDescribeQuery = `SELECT c.column_name AS field, c.data_type AS col_type, c.is_nullable AS nullable,
	COALESCE((SELECT 'PRI' FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage k
			ON k.constraint_name = tc.constraint_name AND k.table_schema = tc.table_schema
		WHERE tc.table_schema = c.table_schema AND tc.table_name = c.table_name
			AND tc.constraint_type = 'PRIMARY KEY' AND k.column_name = c.column_name
		LIMIT 1), '') AS col_key
FROM information_schema.columns c
WHERE c.table_schema = current_schema() AND c.table_name = ?
ORDER BY c.ordinal_position`

	sqliteDescribeQuery = `SELECT name AS field, type AS col_type, "notnull" AS not_null, pk FROM pragma_table_info(?)`
)

// DescribeTable returns the column layout of table. The table name is bound
// as a parameter; an unknown table yields ErrTableNotFound.
func (s *Store) DescribeTable(ctx context.Context, table string) ([]model.Column, error) {
	var query string
	switch s.dialect {
	case DialectMySQL:
		query = mysqlDescribeQuery
	case DialectPostgres:
		query = postgresDescribeQuery
	default:
		query = sqliteDescribeQuery
	}

	var info []columnInfo
	if err := s.bun.NewRaw(query, table).Scan(ctx, &info); err != nil {
		return nil, err
	}
	if len(info) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}

	cols := make([]model.Column, 0, len(info))
	for _, ci := range info {
		col := model.Column{Field: ci.Field, Type: ci.ColType, Null: ci.Null, Key: ci.Key}
		if s.dialect == DialectSQLite {
			col.Null = "YES"
			if ci.NotNull != 0 {
				col.Null = "NO"
			}
			if ci.PK > 0 {
				col.Key = "PRI"
			}
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// Grants returns the privileges held by the connected account.
func (s *Store) Grants(ctx context.Context) ([]string, error) {
	var query string
	switch s.dialect {
	case DialectMySQL:
		query = "SHOW GRANTS FOR CURRENT_USER"
	case DialectPostgres:
		query = "SELECT privilege_type || ' ON ' || table_name FROM information_schema.role_table_grants WHERE grantee = current_user ORDER BY table_name, privilege_type"
	default:
		return nil, fmt.Errorf("grants: %w", ErrUnsupported)
	}

	var grants []string
	if err := s.bun.NewRaw(query).Scan(ctx, &grants); err != nil {
		return nil, err
	}
	return grants, nil
}

type processInfo struct {
	ID      int64  `bun:"id"`
	User    string `bun:"user_name"`
	DB      string `bun:"db"`
	Command string `bun:"command"`
}

// ProcessList returns the server's active connections.
func (s *Store) ProcessList(ctx context.Context) ([]model.Process, error) {
	var query string
	switch s.dialect {
	case DialectMySQL:
		query = "SELECT id, user AS user_name, COALESCE(db, '') AS db, command FROM information_schema.processlist ORDER BY id"
	case DialectPostgres:
		query = "SELECT pid AS id, COALESCE(usename, '') AS user_name, COALESCE(datname, '') AS db, COALESCE(state, '') AS command FROM pg_stat_activity ORDER BY pid"
	default:
		return nil, fmt.Errorf("processlist: %w", ErrUnsupported)
	}

	var info []processInfo
	if err := s.bun.NewRaw(query).Scan(ctx, &info); err != nil {
		return nil, err
	}
	out := make([]model.Process, 0, len(info))
	for _, p := range info {
		out = append(out, model.Process{ID: strconv.FormatInt(p.ID, 10), User: p.User, Database: p.DB, Command: p.Command})
	}
	return out, nil
}

// Shutdown asks the database server to stop. Only MySQL accepts this from a
// client session.
func (s *Store) Shutdown(ctx context.Context) error {
	if s.dialect != DialectMySQL {
		return fmt.Errorf("shutdown: %w", ErrUnsupported)
	}
	_, err := s.bun.DB.ExecContext(ctx, "SHUTDOWN")
	return err
}
