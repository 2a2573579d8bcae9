// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"strings"
	"testing"
)

func TestMapDBError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Fatalf("MapDBError(nil) = %v", err)
	}

	cases := []string{
		"Error 1062 (23000): Duplicate entry 'admin' for key 'users.username'",
		"ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)",
		"constraint failed: UNIQUE constraint failed: users.username (2067)",
	}
	for _, c := range cases {
		err := MapDBError(errors.New(c))
		if !errors.Is(err, ErrDuplicate) {
			t.Errorf("%q: expected ErrDuplicate, got %v", c, err)
		}
		if !strings.Contains(err.Error(), c) {
			t.Errorf("%q: original text lost: %v", c, err)
		}
	}

	other := errors.New("no such table: nope")
	if got := MapDBError(other); got != other {
		t.Errorf("unrelated error was rewritten: %v", got)
	}
}
