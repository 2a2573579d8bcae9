// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/toeirei/dbterm/internal/model"
)

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{
		"sqlite":     DialectSQLite,
		"MySQL":      DialectMySQL,
		"postgres":   DialectPostgres,
		"postgresql": DialectPostgres,
		" pgx ":      DialectPostgres,
	} {
		got, err := ParseDialect(in)
		if err != nil {
			t.Fatalf("ParseDialect(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseDialect(%q) = %q, want %q", in, got, want)
		}
	}

	_, err := ParseDialect("oracle")
	if err == nil || !strings.Contains(err.Error(), "unsupported database type") {
		t.Fatalf("expected unsupported database type error, got %v", err)
	}
}

func TestOpen_UnsupportedType(t *testing.T) {
	if _, err := Open(context.Background(), "mssql", "whatever"); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestProvision_SeedsUsersAndProducts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Username != "admin" || users[0].Role != model.RoleAdministrator {
		t.Errorf("unexpected first user: %+v", users[0])
	}
	if users[1].Username != "user" {
		t.Errorf("unexpected second user: %+v", users[1])
	}
	if users[0].CreatedAt.IsZero() {
		t.Errorf("created_at should come from the column default")
	}

	products, err := s.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 10 {
		t.Fatalf("expected 10 products, got %d", len(products))
	}
	if products[0].Name != "iPhone 15 Pro" || products[0].Price.StringFixed(2) != "999.99" {
		t.Errorf("unexpected first product: %+v", products[0])
	}
	if products[2].Name != `MacBook Pro 16"` {
		t.Errorf("quote in product name not preserved: %q", products[2].Name)
	}
	if products[9].Name != "PlayStation 5" {
		t.Errorf("unexpected last product: %q", products[9].Name)
	}

	// Provisioning again starts from a clean slate.
	stats, err := s.Provision(ctx)
	if err != nil {
		t.Fatalf("second Provision failed: %v", err)
	}
	if stats != (ProvisionStats{Users: 2, Products: 10}) {
		t.Errorf("unexpected stats: %+v", stats)
	}
	users, err = s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users after reprovision, got %d", len(users))
	}
}

func TestFindUsersByCredentials(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.FindUsersByCredentials(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("FindUsersByCredentials failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected admin with id 1, got %+v", got)
	}

	got, err = s.FindUsersByCredentials(ctx, "admin", "wrong")
	if err != nil {
		t.Fatalf("FindUsersByCredentials failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("wrong password matched %d rows", len(got))
	}

	// Quotes in the input are data, not syntax.
	got, err = s.FindUsersByCredentials(ctx, "admin' --", "x' OR '1'='1")
	if err != nil {
		t.Fatalf("FindUsersByCredentials failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("quoted input matched %d rows", len(got))
	}
}

func TestSearchUsersAndProducts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	users, err := s.SearchUsers(ctx, "admin")
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if len(users) != 1 || users[0].Password != "admin123" {
		t.Fatalf("unexpected search result: %+v", users)
	}

	// "user" matches the username of one row and the role of the same row.
	users, err = s.SearchUsers(ctx, "user")
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected 1 user for 'user', got %d", len(users))
	}

	users, err = s.SearchUsers(ctx, "nobody")
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected no users, got %d", len(users))
	}

	products, err := s.SearchProducts(ctx, "Gaming")
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("expected 2 gaming products, got %d", len(products))
	}

	products, err = s.SearchProducts(ctx, "Apple")
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Apple AirPods Pro" {
		t.Errorf("unexpected Apple search result: %+v", products)
	}
}

func TestCreateAndDeleteUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, "eve", "s3cret", "user"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	found, err := s.SearchUsers(ctx, "eve")
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if len(found) != 1 || found[0].Password != "s3cret" {
		t.Fatalf("expected eve to be found once, got %+v", found)
	}

	if err := s.CreateUser(ctx, "eve", "other", "admin"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	n, err := s.DeleteUser(ctx, found[0].ID)
	if err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted row, got %d", n)
	}

	n, err = s.DeleteUser(ctx, 999)
	if err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 deleted rows for unknown id, got %d", n)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}

func TestListTablesAndDescribe(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tables, err := s.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if !reflect.DeepEqual(tables, []string{"products", "users"}) {
		t.Fatalf("unexpected tables: %v", tables)
	}

	cols, err := s.DescribeTable(ctx, "users")
	if err != nil {
		t.Fatalf("DescribeTable failed: %v", err)
	}
	if len(cols) != 5 {
		t.Fatalf("expected 5 columns, got %d", len(cols))
	}
	if want := (model.Column{Field: "id", Type: "INTEGER", Null: "YES", Key: "PRI"}); cols[0] != want {
		t.Errorf("unexpected id column: %+v", cols[0])
	}
	if cols[1].Field != "username" || cols[1].Type != "VARCHAR(50)" {
		t.Errorf("unexpected username column: %+v", cols[1])
	}

	if _, err := s.DescribeTable(ctx, "nope"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("expected ErrTableNotFound, got %v", err)
	}

	// The table name is bound, so this is just an unknown table.
	if _, err := s.DescribeTable(ctx, "users; DROP TABLE users"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("expected ErrTableNotFound, got %v", err)
	}
	tables, err = s.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if !slices.Contains(tables, "users") {
		t.Errorf("users table was dropped: %v", tables)
	}
}

func TestServerOnlyOperationsUnsupportedOnSQLite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Grants(ctx); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Grants: expected ErrUnsupported, got %v", err)
	}
	if _, err := s.ProcessList(ctx); !errors.Is(err, ErrUnsupported) {
		t.Errorf("ProcessList: expected ErrUnsupported, got %v", err)
	}
	if err := s.Shutdown(ctx); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Shutdown: expected ErrUnsupported, got %v", err)
	}
}

func TestEnsureDatabase_NoopForSQLite(t *testing.T) {
	if err := EnsureDatabase(context.Background(), "sqlite", "file:x?mode=memory"); err != nil {
		t.Errorf("expected no-op for sqlite, got %v", err)
	}
	if err := EnsureDatabase(context.Background(), "nope", ""); err == nil {
		t.Errorf("expected error for unknown type")
	}
}
