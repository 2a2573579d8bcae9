// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"strings"
	"testing"
)

// newTestStore opens an in-memory sqlite Store named after the running test
// and provisions the seed data. The store is closed when the test ends.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := openTestStore(t, t.Name())
	if _, err := s.Provision(context.Background()); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	return s
}

// openTestStore opens an empty in-memory sqlite Store.
func openTestStore(t *testing.T, name string) *Store {
	t.Helper()
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	dsn := "file:" + name + "?mode=memory&cache=shared"
	s, err := Open(context.Background(), "sqlite", dsn)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
