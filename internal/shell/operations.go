// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package shell

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/toeirei/dbterm/i18n"
	"github.com/toeirei/dbterm/internal/logging"
	"github.com/toeirei/dbterm/internal/model"
	"github.com/toeirei/dbterm/internal/render"
	"github.com/toeirei/dbterm/internal/session"
)

// Files listed by ls. The shell has no real working directory.
var listing = []string{
	"database_backups/",
	"sql_scripts/",
	"logs/",
	"system.log",
	"config.ini",
	"readme.txt",
	"backup_2024.sql",
}

const (
	userFormat    = "%-3s | %-15s | %-15s | %-20s"
	productHeader = "%-3s | %-20s | %-15s | %-10s | %-8s"
	productRow    = "%-3s | %-20s | %-15s | $%-9s | %-8s"
	searchFormat  = "%-3s | %-15s | %-20s | %-15s"
	columnFormat  = "%-15s | %-15s | %-10s | %-5s"
	processFormat = "%-5s | %-15s | %-20s | %-30s"
)

func id(n int64) string { return strconv.FormatInt(n, 10) }

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateTime)
}

func productRows(products []model.Product) [][]any {
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, []any{id(p.ID), p.Name, p.Category, p.Price.StringFixed(2), strconv.Itoa(p.Quantity)})
	}
	return rows
}

// storeFailed logs a read error. Read operations show the same output for
// "no rows" and "failed".
func storeFailed(op string, err error) {
	if err != nil {
		logging.Debugf("shell: %s failed: %v", op, err)
	}
}

func (s *Shell) whoami(_ context.Context, sess *session.Session, _ string) {
	s.out.Section(i18n.T("whoami.title"), 19)
	s.out.Println(i18n.T("whoami.username", sess.User.Username))
	s.out.Println(i18n.T("whoami.role", sess.User.Role))
	s.out.Println(i18n.T("whoami.user_id", sess.User.ID))
	s.out.Println(i18n.T("terminal.admin_access", yesNo(sess.IsAdmin)))
}

func (s *Shell) listUsers(ctx context.Context, _ *session.Session, _ string) {
	users, err := s.store.ListUsers(ctx)
	storeFailed("users", err)
	if err != nil || len(users) == 0 {
		s.out.Println(i18n.T("users.empty"))
		return
	}
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		rows = append(rows, []any{id(u.ID), u.Username, u.Role, formatTime(u.CreatedAt)})
	}
	s.out.Table(render.Table{
		Title:  i18n.T("users.title"),
		Width:  60,
		Format: userFormat,
		Header: []any{"ID", "Username", "Role", "Created"},
		Rows:   rows,
		Footer: i18n.T("users.total", len(users)),
	})
}

func (s *Shell) listProducts(ctx context.Context, _ *session.Session, _ string) {
	products, err := s.store.ListProducts(ctx)
	storeFailed("products", err)
	if err != nil || len(products) == 0 {
		s.out.Println(i18n.T("products.empty"))
		return
	}
	s.out.Table(render.Table{
		Title:     i18n.T("products.title"),
		Width:     80,
		Format:    productHeader,
		RowFormat: productRow,
		Header:    []any{"ID", "Name", "Category", "Price", "Qty"},
		Rows:      productRows(products),
		Footer:    i18n.T("products.total", len(products)),
	})
}

func (s *Shell) searchUsers(ctx context.Context, _ *session.Session, keyword string) {
	if keyword == "" {
		s.out.Println(i18n.T("search.usage"))
		return
	}
	users, err := s.store.SearchUsers(ctx, keyword)
	storeFailed("search", err)
	if err != nil || len(users) == 0 {
		s.out.Println(i18n.T("search.empty"))
		return
	}
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		rows = append(rows, []any{id(u.ID), u.Username, u.Password, u.Role})
	}
	s.out.Table(render.Table{
		Title:  i18n.T("search.title"),
		Width:  70,
		Format: searchFormat,
		Header: []any{"ID", "Username", "Password", "Role"},
		Rows:   rows,
		Footer: i18n.T("search.found", len(users)),
	})
}

func (s *Shell) searchProducts(ctx context.Context, _ *session.Session, keyword string) {
	if keyword == "" {
		s.out.Println(i18n.T("search_product.usage"))
		return
	}
	products, err := s.store.SearchProducts(ctx, keyword)
	storeFailed("search_product", err)
	if err != nil || len(products) == 0 {
		s.out.Println(i18n.T("search.empty"))
		return
	}
	s.out.Table(render.Table{
		Title:     i18n.T("search_product.title"),
		Width:     80,
		Format:    productHeader,
		RowFormat: productRow,
		Header:    []any{"ID", "Name", "Category", "Price", "Qty"},
		Rows:      productRows(products),
		Footer:    i18n.T("search.found", len(products)),
	})
}

func (s *Shell) createUser(ctx context.Context, _ *session.Session, _ string) {
	s.out.Println(i18n.T("create_user.title"))
	username, err := s.in.ReadLine(i18n.T("create_user.username"))
	if err != nil {
		return
	}
	password, err := s.in.ReadPassword(i18n.T("create_user.password"))
	if err != nil {
		return
	}
	role, err := s.in.ReadLine(i18n.T("create_user.role"))
	if err != nil {
		return
	}

	err = s.store.CreateUser(ctx, strings.TrimSpace(username), strings.TrimSpace(password), strings.TrimSpace(role))
	if err != nil {
		s.out.Error(i18n.T("create_user.error", err))
		return
	}
	s.out.Success(i18n.T("create_user.success"))
}

func (s *Shell) deleteUser(ctx context.Context, _ *session.Session, arg string) {
	if arg == "" {
		s.out.Println(i18n.T("delete_user.usage"))
		return
	}
	userID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		s.out.Error(i18n.T("delete_user.error", fmt.Errorf("invalid user id %q", arg)))
		return
	}
	if _, err := s.store.DeleteUser(ctx, userID); err != nil {
		s.out.Error(i18n.T("delete_user.error", err))
		return
	}
	s.out.Success(i18n.T("delete_user.success"))
}

func (s *Shell) listTables(ctx context.Context, _ *session.Session, _ string) {
	tables, err := s.store.ListTables(ctx)
	storeFailed("tables", err)
	if err != nil || len(tables) == 0 {
		s.out.Println(i18n.T("tables.empty"))
		return
	}
	s.out.Section(i18n.T("tables.title"), 30)
	for i, t := range tables {
		s.out.Printf("%d. %s\n", i+1, t)
	}
	s.out.Println(i18n.T("tables.total", len(tables)))
}

func (s *Shell) describeTable(ctx context.Context, _ *session.Session, table string) {
	if table == "" {
		s.out.Println(i18n.T("describe.usage"))
		return
	}
	cols, err := s.store.DescribeTable(ctx, table)
	if err != nil {
		s.out.Error(i18n.T("describe.error", err))
		return
	}
	rows := make([][]any, 0, len(cols))
	for _, c := range cols {
		rows = append(rows, []any{c.Field, c.Type, c.Null, c.Key})
	}
	s.out.Table(render.Table{
		Title:  i18n.T("describe.title", table),
		Width:  50,
		Format: columnFormat,
		Header: []any{"Field", "Type", "Null", "Key"},
		Rows:   rows,
	})
}

func (s *Shell) dump(ctx context.Context, sess *session.Session, _ string) {
	path, err := s.snapshots.Dump(ctx, sess.User.Username)
	if err != nil {
		s.out.Error(i18n.T("dump.error", err))
		return
	}
	s.out.Success(i18n.T("dump.success", path))
}

func (s *Shell) backup(ctx context.Context, sess *session.Session, _ string) {
	path, err := s.snapshots.Backup(ctx, sess.User.Username)
	if err != nil {
		s.out.Error(i18n.T("backup.error", err))
		return
	}
	s.out.Success(i18n.T("backup.success", path))
}

// confirm shows a warning prompt and reports whether the operator typed y.
func (s *Shell) confirm(prompt string) bool {
	s.out.Warn(prompt)
	answer, err := s.in.ReadLine("")
	if err != nil {
		s.out.Blank()
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

func (s *Shell) restore(ctx context.Context, _ *session.Session, path string) {
	if err := s.snapshots.Check(path); err != nil {
		s.out.Error(i18n.T("restore.not_found", path))
		return
	}
	if !s.confirm(i18n.T("restore.confirm")) {
		s.out.Error(i18n.T("restore.cancelled"))
		return
	}
	if err := s.snapshots.Restore(ctx, path); err != nil {
		s.out.Error(i18n.T("restore.error", err))
		return
	}
	s.out.Success(i18n.T("restore.success", path))
}

// execute is shared by query and sql. Row sets with at least one row are
// printed; an empty row set and a failure both end in the error message.
func (s *Shell) execute(ctx context.Context, stmt, kind string, reportAffected bool) {
	if stmt == "" {
		s.out.Println(i18n.T(kind + ".usage"))
		return
	}
	res, err := s.store.Execute(ctx, stmt)
	switch {
	case err != nil:
		s.out.Error(i18n.T(kind+".error", err))
	case !res.IsRowSet:
		s.out.Success(i18n.T(kind + ".success"))
		if reportAffected && res.RowsAffected > 0 {
			s.out.Println(i18n.T("query.affected", res.RowsAffected))
		}
	case len(res.Rows) > 0:
		s.out.Results(i18n.T("results.title"), res.Columns, res.Rows, i18n.T("results.total", len(res.Rows)))
	default:
		s.out.Error(i18n.T(kind+".error", ""))
	}
}

func (s *Shell) query(ctx context.Context, _ *session.Session, stmt string) {
	s.execute(ctx, stmt, "query", true)
}

func (s *Shell) rawSQL(ctx context.Context, _ *session.Session, stmt string) {
	s.execute(ctx, stmt, "sql", false)
}

func (s *Shell) privileges(ctx context.Context, _ *session.Session, _ string) {
	grants, err := s.store.Grants(ctx)
	storeFailed("privileges", err)
	if err != nil || len(grants) == 0 {
		return
	}
	s.out.Section(i18n.T("privileges.title"), 50)
	for _, g := range grants {
		s.out.Println("• " + g)
	}
}

func (s *Shell) processList(ctx context.Context, _ *session.Session, _ string) {
	procs, err := s.store.ProcessList(ctx)
	storeFailed("processlist", err)
	if err != nil || len(procs) == 0 {
		return
	}
	rows := make([][]any, 0, len(procs))
	for _, p := range procs {
		rows = append(rows, []any{p.ID, p.User, p.Database, p.Command})
	}
	s.out.Table(render.Table{
		Title:  i18n.T("processlist.title"),
		Width:  80,
		Format: processFormat,
		Header: []any{"ID", "User", "Database", "Command"},
		Rows:   rows,
	})
}

func (s *Shell) shutdown(ctx context.Context, _ *session.Session, _ string) {
	if !s.confirm(i18n.T("shutdown.confirm")) {
		s.out.Error(i18n.T("shutdown.cancelled"))
		return
	}
	if err := s.store.Shutdown(ctx); err != nil {
		s.out.Error(i18n.T("shutdown.error", err))
		return
	}
	s.out.Success(i18n.T("shutdown.success"))
}

func (s *Shell) pwd(_ context.Context, sess *session.Session, _ string) {
	s.out.Println(sess.HomeDir())
}

func (s *Shell) ls(_ context.Context, _ *session.Session, _ string) {
	s.out.Println(i18n.T("ls.title"))
	for _, f := range listing {
		s.out.Println("  " + f)
	}
}

func (s *Shell) clear(_ context.Context, _ *session.Session, _ string) {
	s.out.Clear()
}

func (s *Shell) date(_ context.Context, _ *session.Session, _ string) {
	s.out.Println(s.now().Format(time.DateTime))
}

func (s *Shell) echo(_ context.Context, _ *session.Session, text string) {
	s.out.Println(text)
}
