// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xwb1989/sqlparser"
)

// Result is the outcome of a raw statement. Row sets carry their column names
// and rendered cell values; other statements only report affected rows.
type Result struct {
	Columns      []string
	Rows         [][]string
	IsRowSet     bool
	RowsAffected int64
}

// ReturnsRows reports whether stmt should be run as a query. Statements the
// classifier does not recognise are queried as well; when the driver returns
// no columns for them the result is reported like an exec.
func ReturnsRows(stmt string) bool {
	switch sqlparser.Preview(stmt) {
	case sqlparser.StmtSelect, sqlparser.StmtStream, sqlparser.StmtShow,
		sqlparser.StmtOther, sqlparser.StmtUnknown:
		return true
	default:
		return false
	}
}

// Execute runs an operator supplied statement verbatim against the store.
// It bypasses bun's query formatter so '?' characters reach the server
// untouched.
func (s *Store) Execute(ctx context.Context, stmt string) (*Result, error) {
	stmt = strings.TrimSpace(stmt)
	dbLogf("execute: %s", stmt)

	if ReturnsRows(stmt) {
		rows, err := s.bun.DB.QueryContext(ctx, stmt)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()
		return scanResult(rows)
	}

	res, err := s.bun.DB.ExecContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	// sqlite keeps the change count of the last DML statement across DDL.
	if sqlparser.Preview(stmt) == sqlparser.StmtDDL {
		return &Result{}, nil
	}
	n, err := res.RowsAffected()
	if err != nil {
		n = 0
	}
	return &Result{RowsAffected: n}, nil
}

func scanResult(rows *sql.Rows) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		// VACUUM, PRAGMA x = y and similar ran but produced no row set.
		for rows.Next() {
		}
		return &Result{}, rows.Err()
	}
	out := &Result{Columns: cols, IsRowSet: true}
	for rows.Next() {
		vals, err := scanRow(rows, len(cols))
		if err != nil {
			return nil, err
		}
		cells := make([]string, len(vals))
		for i, v := range vals {
			cells[i] = FormatValue(v)
		}
		out.Rows = append(out.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanRow(rows *sql.Rows, n int) ([]any, error) {
	vals := make([]any, n)
	ptrs := make([]any, n)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return vals, nil
}

// FormatValue renders a driver value for display. NULL is rendered as "NULL".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.Format(time.DateTime)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
