// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicate is returned when attempting to insert a record that already exists.
var ErrDuplicate = errors.New("duplicate record")

// ErrUnsupported is returned for operations the active backend cannot perform.
var ErrUnsupported = errors.New("operation not supported by this database")

// ErrTableNotFound is returned by DescribeTable when the table has no columns.
var ErrTableNotFound = errors.New("table not found")

// MapDBError inspects low-level driver errors and maps common constraint
// violations to package-level sentinel errors (like ErrDuplicate). The driver
// text is kept in the message so operators still see what the store reported.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return fmt.Errorf("%w: %s", ErrDuplicate, err.Error())
	}
	return err
}
