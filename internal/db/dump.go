// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/toeirei/dbterm/internal/model"
	"github.com/uptrace/bun"
)

// Dump writes a SQL script recreating every table and its rows. Each table
// gets a DROP TABLE IF EXISTS, the backend's own CREATE statement and one
// INSERT per row with values escaped by the active bun dialect.
func (s *Store) Dump(ctx context.Context, w io.Writer, generatedBy string, now time.Time) error {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "-- Database Dump - %s\n", now.Format(time.DateTime))
	fmt.Fprintf(bw, "-- Generated by: %s\n\n", generatedBy)

	for _, table := range tables {
		create, err := s.createStatement(ctx, table)
		if err != nil {
			return fmt.Errorf("failed to read definition of %s: %w", table, err)
		}
		qt := s.quoteIdent(table)
		fmt.Fprintf(bw, "--\n-- Table structure for table %s\n--\n", qt)
		fmt.Fprintf(bw, "DROP TABLE IF EXISTS %s;\n", qt)
		fmt.Fprintf(bw, "%s;\n\n", strings.TrimRight(create, "; \n"))

		fmt.Fprintf(bw, "--\n-- Dumping data for table %s\n--\n", qt)
		if err := s.dumpRows(ctx, bw, table); err != nil {
			return fmt.Errorf("failed to dump rows of %s: %w", table, err)
		}
		fmt.Fprintln(bw)
	}
	dbLogf("dumped %d table(s)", len(tables))
	return bw.Flush()
}

func (s *Store) dumpRows(ctx context.Context, w io.Writer, table string) error {
	qt := s.quoteIdent(table)
	rows, err := s.bun.DB.QueryContext(ctx, "SELECT * FROM "+qt)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = s.quoteIdent(c)
	}
	colList := strings.Join(quoted, ", ")

	for rows.Next() {
		vals, err := scanRow(rows, len(cols))
		if err != nil {
			return err
		}
		lits := make([]string, len(vals))
		for i, v := range vals {
			lits[i] = s.literal(v)
		}
		if _, err := fmt.Fprintf(w, "INSERT INTO %s (%s) VALUES (%s);\n", qt, colList, strings.Join(lits, ", ")); err != nil {
			return err
		}
	}
	return rows.Err()
}

// literal renders a scanned driver value as a SQL literal for the active
// dialect.
func (s *Store) literal(v any) string {
	d := s.bun.Dialect()
	switch x := v.(type) {
	case nil:
		return "NULL"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return string(d.AppendBool(nil, x))
	case time.Time:
		return string(d.AppendString(nil, x.Format(time.DateTime)))
	case []byte:
		return string(d.AppendString(nil, string(x)))
	case string:
		return string(d.AppendString(nil, x))
	default:
		return string(d.AppendString(nil, fmt.Sprint(x)))
	}
}

// createStatement returns the CREATE TABLE text for table.
func (s *Store) createStatement(ctx context.Context, table string) (string, error) {
	switch s.dialect {
	case DialectMySQL:
		var name, create string
		if err := s.bun.NewRaw("SHOW CREATE TABLE ?", bun.Ident(table)).Scan(ctx, &name, &create); err != nil {
			return "", err
		}
		return create, nil
	case DialectPostgres:
		cols, err := s.DescribeTable(ctx, table)
		if err != nil {
			return "", err
		}
		return s.buildCreateStatement(table, cols), nil
	default:
		var create sql.NullString
		err := s.bun.NewRaw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(ctx, &create)
		if err != nil {
			return "", err
		}
		return create.String, nil
	}
}

// buildCreateStatement reconstructs a portable CREATE TABLE from column
// descriptions for backends without a native "show create" statement.
func (s *Store) buildCreateStatement(table string, cols []model.Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", s.quoteIdent(table))
	var pks []string
	for i, c := range cols {
		fmt.Fprintf(&b, "  %s %s", s.quoteIdent(c.Field), c.Type)
		if c.Null == "NO" {
			b.WriteString(" NOT NULL")
		}
		if c.Key == "PRI" {
			pks = append(pks, s.quoteIdent(c.Field))
		}
		if i < len(cols)-1 || len(pks) > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	if len(pks) > 0 {
		fmt.Fprintf(&b, "  PRIMARY KEY (%s)\n", strings.Join(pks, ", "))
	}
	b.WriteString(")")
	return b.String()
}

// ExecScript replays a SQL script, one statement at a time.
func (s *Store) ExecScript(ctx context.Context, script string) error {
	stmts := SplitStatements(script, s.dialect == DialectMySQL)
	for i, stmt := range stmts {
		if _, err := s.bun.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d failed: %w", i+1, err)
		}
	}
	dbLogf("replayed %d statement(s)", len(stmts))
	return nil
}

// SplitStatements splits a script on semicolons outside of quotes. Line
// comments starting with "--" and block comments are dropped. When
// backslashEscapes is set a backslash escapes the next character inside
// quoted strings.
func SplitStatements(script string, backslashEscapes bool) []string {
	var (
		out   []string
		cur   strings.Builder
		quote rune
	)
	flush := func() {
		if stmt := strings.TrimSpace(cur.String()); stmt != "" {
			out = append(out, stmt)
		}
		cur.Reset()
	}

	rs := []rune(script)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if quote != 0 {
			cur.WriteRune(r)
			switch {
			case backslashEscapes && r == '\\' && i+1 < len(rs):
				i++
				cur.WriteRune(rs[i])
			case r == quote:
				quote = 0
			}
			continue
		}

		switch {
		case r == '\'' || r == '"' || r == '`':
			quote = r
			cur.WriteRune(r)
		case r == '-' && i+1 < len(rs) && rs[i+1] == '-':
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
			cur.WriteRune('\n')
		case r == '/' && i+1 < len(rs) && rs[i+1] == '*':
			i += 2
			for i+1 < len(rs) && !(rs[i] == '*' && rs[i+1] == '/') {
				i++
			}
			i++
			cur.WriteRune(' ')
		case r == ';':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}
