// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the core data structures used throughout dbterm.
package model // import "github.com/toeirei/dbterm/internal/model"

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Role names that grant administrator access. Matching is exact.
const (
	RoleAdministrator = "administrator"
	RoleAdmin         = "admin"
	RoleUser          = "user"
)

// User represents a row of the users table.
type User struct {
	ID        int64     // The store-assigned primary key.
	Username  string    // Unique login name.
	Password  string    // Stored as-is; dbterm does not hash credentials.
	Role      string    // Free-form role; see IsPrivilegedRole.
	CreatedAt time.Time // Set by the store on insert.
}

// String returns a short human readable form of the user.
func (u User) String() string {
	return fmt.Sprintf("%s (%s)", u.Username, u.Role)
}

// IsPrivileged reports whether the user's role grants administrator access.
func (u User) IsPrivileged() bool {
	return IsPrivilegedRole(u.Role)
}

// IsPrivilegedRole reports whether role is one of the administrator roles.
func IsPrivilegedRole(role string) bool {
	return role == RoleAdministrator || role == RoleAdmin
}

// Product represents a row of the products table. Products are seeded by the
// provisioner and never modified from the shell.
type Product struct {
	ID          int64
	Name        string
	Category    string
	Price       decimal.Decimal // DECIMAL(10,2) in the store.
	Quantity    int
	Description string
	CreatedAt   time.Time
}

// Column describes one column of a table as reported by schema introspection.
type Column struct {
	Field string
	Type  string
	Null  string // "YES" or "NO"
	Key   string // "PRI", "UNI" or empty
}

// Process is a single entry of the store's connection list.
type Process struct {
	ID       string
	User     string
	Database string
	Command  string
}
