// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/toeirei/dbterm/config"
	"github.com/toeirei/dbterm/i18n"
	"github.com/toeirei/dbterm/internal/console"
	"github.com/toeirei/dbterm/internal/db"
	"github.com/toeirei/dbterm/internal/model"
	"github.com/toeirei/dbterm/internal/render"
	"github.com/toeirei/dbterm/internal/session"
	"github.com/toeirei/dbterm/internal/snapshot"
)

var (
	adminUser = model.User{ID: 1, Username: "admin", Password: "admin123", Role: model.RoleAdministrator}
	plainUser = model.User{ID: 2, Username: "user", Password: "pass123", Role: model.RoleUser}
)

// panicStore fails the test through a nil interface call if any store
// method is reached.
type panicStore struct{ Store }

type harness struct {
	shell *Shell
	store *db.Store
	snaps *snapshot.Manager
	out   *bytes.Buffer
}

func newStore(t *testing.T) *db.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := db.Open(context.Background(), "sqlite", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if _, err := s.Provision(context.Background()); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	return s
}

// newHarness builds a shell over a provisioned sqlite store. input feeds the
// prompts that commands such as create_user and restore read.
func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	i18n.Init("en")
	store := newStore(t)
	snaps, err := snapshot.New(config.SnapshotConfig{Tool: "builtin", Dir: t.TempDir()}, "sqlite", "", store)
	if err != nil {
		t.Fatalf("snapshot.New failed: %v", err)
	}

	var out bytes.Buffer
	sh := New(store, snaps, console.NewPlain(strings.NewReader(input), &out), render.New(&out))
	sh.now = func() time.Time { return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC) }
	return &harness{shell: sh, store: store, snaps: snaps, out: &out}
}

func (h *harness) run(sess *session.Session, line string) string {
	h.out.Reset()
	h.shell.Dispatch(context.Background(), sess, line)
	return h.out.String()
}

func (h *harness) users(t *testing.T) []model.User {
	t.Helper()
	users, err := h.store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	return users
}

func adminSession() *session.Session { return session.New(adminUser, time.Now()) }
func userSession() *session.Session  { return session.New(plainUser, time.Now()) }

// expectOutput fails unless out contains every one of want.
func expectOutput(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func rejectOutput(t *testing.T, out string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(out, u) {
			t.Errorf("output unexpectedly contains %q:\n%s", u, out)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		line, name, rest string
	}{
		{"users", "users", ""},
		{"  search   ad  min ", "search", "ad  min"},
		{"query\tSELECT 1", "query", "SELECT 1"},
		{"", "", ""},
	}
	for _, tt := range tests {
		name, rest := Parse(tt.line)
		if name != tt.name || rest != tt.rest {
			t.Errorf("Parse(%q) = (%q, %q), want (%q, %q)", tt.line, name, rest, tt.name, tt.rest)
		}
	}
}

func TestUsers_ListsSeedAccounts(t *testing.T) {
	h := newHarness(t, "")
	out := h.run(userSession(), "users")
	expectOutput(t, out, "System Users:", "admin", "Total: 2 users")
	rejectOutput(t, out, "admin123")
}

func TestDispatch_CaseInsensitive(t *testing.T) {
	h := newHarness(t, "")
	expectOutput(t, h.run(userSession(), "USERS"), "Total: 2 users")
	expectOutput(t, h.run(userSession(), "Products"), "Total: 10 products")
}

func TestDispatch_UnknownCommandTouchesNothing(t *testing.T) {
	i18n.Init("en")
	var out bytes.Buffer
	sh := New(panicStore{}, nil, console.NewPlain(strings.NewReader(""), &out), render.New(&out))
	sh.Dispatch(context.Background(), adminSession(), "frobnicate all")
	if got, want := out.String(), "Command not found: frobnicate all\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDispatch_AdminGateDeniesBeforeHandler(t *testing.T) {
	i18n.Init("en")
	var out bytes.Buffer
	sh := New(panicStore{}, nil, console.NewPlain(strings.NewReader(""), &out), render.New(&out))
	for _, line := range []string{"delete_user 1", "create_user", "backup", "restore x.sql", "shutdown"} {
		out.Reset()
		sh.Dispatch(context.Background(), userSession(), line)
		if !strings.Contains(out.String(), "Permission denied") {
			t.Errorf("%s: expected permission denied, got %q", line, out.String())
		}
	}
}

func TestDeleteUser_AdminRemovesRow(t *testing.T) {
	h := newHarness(t, "")
	expectOutput(t, h.run(adminSession(), "delete_user 2"), "User deleted successfully!")

	users := h.users(t)
	if len(users) != 1 || users[0].Username != "admin" {
		t.Errorf("expected only admin to remain, got %+v", users)
	}
}

func TestDeleteUser_NonAdminLeavesStore(t *testing.T) {
	h := newHarness(t, "")
	expectOutput(t, h.run(userSession(), "delete_user 1"), "Permission denied")
	if n := len(h.users(t)); n != 2 {
		t.Errorf("expected 2 users, got %d", n)
	}
}

// The admin flag is taken at login; promoting the logged in account in the
// store does not widen what the running session may do.
func TestSession_AdminFlagFixedAfterPromotion(t *testing.T) {
	h := newHarness(t, "")
	sess := userSession()

	expectOutput(t, h.run(sess, "query UPDATE users SET role='admin' WHERE id=2"),
		"Query executed successfully", "Rows affected: 1")
	expectOutput(t, h.run(sess, "delete_user 1"), "Permission denied")
	expectOutput(t, h.run(sess, "whoami"), "Admin Access: ❌ NO")

	users := h.users(t)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[1].Role != "admin" {
		t.Errorf("expected stored role to be promoted, got %q", users[1].Role)
	}
}

func TestDeleteUser_UsageAndBadID(t *testing.T) {
	h := newHarness(t, "")
	expectOutput(t, h.run(adminSession(), "delete_user"), "Usage: delete_user <user_id>")
	expectOutput(t, h.run(adminSession(), "delete_user abc"), "Error deleting user")
}

func TestCreateUser_ThenSearch(t *testing.T) {
	h := newHarness(t, " carol \nsecret\nuser\n")
	expectOutput(t, h.run(adminSession(), "create_user"), "Create New User:", "User created successfully!")
	expectOutput(t, h.run(userSession(), "search carol"), "Found: 1 result(s)", "secret")
}

func TestCreateUser_DuplicateReportsError(t *testing.T) {
	h := newHarness(t, "admin\nx\nadmin\n")
	expectOutput(t, h.run(adminSession(), "create_user"), "Error creating user")
}

func TestSearch(t *testing.T) {
	h := newHarness(t, "")
	expectOutput(t, h.run(userSession(), "search"), "Usage: search <keyword>")
	expectOutput(t, h.run(userSession(), "search nobody"), "No results found")
	// Only the first word after the command is used.
	expectOutput(t, h.run(userSession(), "search admin extra"), "Found: 1 result(s)")
	expectOutput(t, h.run(userSession(), "search_product Gaming"),
		"Product Search Results:", "Found: 2 result(s)", "$499.99")
}

func TestTablesAndDescribe(t *testing.T) {
	h := newHarness(t, "")
	expectOutput(t, h.run(userSession(), "tables"), "1. products", "2. users", "Total: 2 tables")
	expectOutput(t, h.run(userSession(), "describe users"), "Table Structure: users", "username")
	expectOutput(t, h.run(userSession(), "describe"), "Usage: describe <table_name>")
	expectOutput(t, h.run(userSession(), "describe nope"), "Table not found or error")
}

func TestQuery(t *testing.T) {
	h := newHarness(t, "")
	sess := userSession()

	expectOutput(t, h.run(sess, "query SELECT username, role FROM users ORDER BY id"),
		"SQL Results:", "Total rows: 2")
	expectOutput(t, h.run(sess, "query UPDATE products SET quantity = 1"),
		"Query executed successfully", "Rows affected: 10")

	out := h.run(sess, "query SELECT * FROM users WHERE id = 99")
	expectOutput(t, out, "No results or error in query:")
	rejectOutput(t, out, "SQL Results:")

	expectOutput(t, h.run(sess, "query"), "Usage: query <sql_query>")
	expectOutput(t, h.run(sess, "query SELEC nonsense"), "No results or error in query:")
}

func TestQuery_StatementsWithoutRowSet(t *testing.T) {
	h := newHarness(t, "")
	sess := userSession()

	for _, stmt := range []string{"VACUUM", "PRAGMA foreign_keys = ON"} {
		out := h.run(sess, "query "+stmt)
		expectOutput(t, out, "Query executed successfully")
		rejectOutput(t, out, "No results or error in query:", "Rows affected")
	}
}

func TestQuery_DDLAfterDMLReportsNoCount(t *testing.T) {
	h := newHarness(t, "")
	sess := userSession()

	expectOutput(t, h.run(sess, "query DELETE FROM products WHERE id > 5"), "Rows affected: 5")

	out := h.run(sess, "query CREATE TABLE extra_t (x INT)")
	expectOutput(t, out, "Query executed successfully")
	rejectOutput(t, out, "Rows affected")
}

func TestSQL(t *testing.T) {
	h := newHarness(t, "")
	sess := userSession()

	out := h.run(sess, "sql DELETE FROM products WHERE category = 'Gaming'")
	expectOutput(t, out, "SQL executed successfully")
	rejectOutput(t, out, "Rows affected")

	expectOutput(t, h.run(sess, "sql SELECT COUNT(*) AS n FROM products"), "Total rows: 1", "8")
	expectOutput(t, h.run(sess, "sql ANALYZE"), "SQL executed successfully")
	expectOutput(t, h.run(sess, "sql DROP TABLE missing"), "❌ Error:")
}

func TestRestore(t *testing.T) {
	h := newHarness(t, "n\ny\n")
	ctx := context.Background()
	path, err := h.snaps.Backup(ctx, "admin")
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if _, err := h.store.DeleteUser(ctx, 2); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	expectOutput(t, h.run(adminSession(), "restore "+path),
		"This will overwrite current database!", "Restore cancelled.")
	expectOutput(t, h.run(adminSession(), "restore "+path), "Database restored from: "+path)
	if n := len(h.users(t)); n != 2 {
		t.Errorf("expected 2 users after restore, got %d", n)
	}

	expectOutput(t, h.run(adminSession(), "restore /does/not/exist.sql"), "Backup file not found")
	expectOutput(t, h.run(adminSession(), "restore"), "Backup file not found")
}

func TestDumpAndBackup(t *testing.T) {
	h := newHarness(t, "")
	out := h.run(userSession(), "dump")
	if !strings.Contains(out, "Database dumped to: ") {
		t.Fatalf("dump did not report a path: %q", out)
	}
	path := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(out), "✅ Database dumped to: "))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading dump failed: %v", err)
	}
	expectOutput(t, string(data), "-- Generated by: user")

	expectOutput(t, h.run(adminSession(), "backup"), "Database backup created: ")
}

func TestUnsupportedOnSQLite(t *testing.T) {
	h := newHarness(t, "y\n")
	if out := h.run(userSession(), "privileges"); out != "" {
		t.Errorf("privileges: expected no output, got %q", out)
	}
	if out := h.run(userSession(), "processlist"); out != "" {
		t.Errorf("processlist: expected no output, got %q", out)
	}
	expectOutput(t, h.run(adminSession(), "shutdown"), "❌ Error:")
}

func TestShutdown_Cancelled(t *testing.T) {
	h := newHarness(t, "no\n")
	expectOutput(t, h.run(adminSession(), "shutdown"), "Shutdown cancelled.")
}

func TestSystemCommands(t *testing.T) {
	h := newHarness(t, "")
	sess := userSession()
	exact := map[string]string{
		"pwd":               "/home/user\n",
		"date":              "2026-03-14 15:09:26\n",
		"echo hello   world": "hello   world\n",
		"clear":             render.ClearScreen,
	}
	for line, want := range exact {
		if got := h.run(sess, line); got != want {
			t.Errorf("%s: got %q, want %q", line, got, want)
		}
	}
	expectOutput(t, h.run(sess, "ls"), "  backup_2024.sql")
	expectOutput(t, h.run(sess, "whoami"), "Username: user", "User ID: 2", "Admin Access: ❌ NO")
}

func TestHelp(t *testing.T) {
	h := newHarness(t, "")
	out := h.run(userSession(), "help")
	expectOutput(t, out,
		"Available Commands:",
		"USER MANAGEMENT:",
		"SYSTEM COMMANDS:",
		"users              - List all users",
		"exit               - Logout",
	)
	rejectOutput(t, out, "logout ")
}

func TestRun_ExitStopsLoop(t *testing.T) {
	h := newHarness(t, "")
	h.shell.in = console.NewPlain(strings.NewReader("whoami\n\nexit\nusers\n"), h.out)

	if err := h.shell.Run(context.Background(), userSession()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	out := h.out.String()
	expectOutput(t, out, "DATABASE CONTROL TERMINAL", "User: user | Role: user", "Logging out...")
	rejectOutput(t, out, "Total: 2 users")
}

func TestRun_LogoutAndUppercaseExit(t *testing.T) {
	h := newHarness(t, "")
	h.shell.in = console.NewPlain(strings.NewReader("EXIT\nusers\nlogout\n"), h.out)

	if err := h.shell.Run(context.Background(), adminSession()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	expectOutput(t, h.out.String(), "Admin Access: ✅ YES", "Total: 2 users", "Logging out...")
}

func TestRun_EOFEndsSession(t *testing.T) {
	h := newHarness(t, "")
	h.shell.in = console.NewPlain(strings.NewReader("users"), h.out)

	if err := h.shell.Run(context.Background(), userSession()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	out := h.out.String()
	expectOutput(t, out, "Total: 2 users")
	rejectOutput(t, out, "Logging out...")
}

func TestRun_ContextCancelled(t *testing.T) {
	h := newHarness(t, "users\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.shell.Run(ctx, userSession()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCommandNames(t *testing.T) {
	h := newHarness(t, "")
	names := h.shell.CommandNames()
	if len(names) != 25 {
		t.Errorf("expected 25 commands, got %d", len(names))
	}
	if names[0] != "users" {
		t.Errorf("expected users first, got %q", names[0])
	}
	if _, ok := h.shell.Lookup("Search_Product"); !ok {
		t.Errorf("Lookup should be case-insensitive")
	}
}
