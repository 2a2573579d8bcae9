// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "testing"

func TestIsPrivilegedRole(t *testing.T) {
	cases := map[string]bool{
		"administrator": true,
		"admin":         true,
		"user":          false,
		"Admin":         false,
		"":              false,
		"superadmin":    false,
	}
	for role, want := range cases {
		if got := IsPrivilegedRole(role); got != want {
			t.Errorf("IsPrivilegedRole(%q) = %v, want %v", role, got, want)
		}
	}
}

func TestUserString(t *testing.T) {
	u := User{Username: "admin", Role: "administrator"}
	if got := u.String(); got != "admin (administrator)" {
		t.Errorf("unexpected User.String(): %q", got)
	}
	if !u.IsPrivileged() {
		t.Errorf("expected administrator to be privileged")
	}
}
