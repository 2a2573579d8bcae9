// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/toeirei/dbterm/internal/model"
)

func TestNew_AdminFlagFromRole(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := map[string]bool{
		model.RoleAdministrator: true,
		model.RoleAdmin:         true,
		model.RoleUser:          false,
		"Admin":                 false,
		"":                      false,
	}
	for role, want := range cases {
		s := New(model.User{ID: 1, Username: "x", Role: role}, now)
		if s.IsAdmin != want {
			t.Errorf("role %q: IsAdmin = %t, want %t", role, s.IsAdmin, want)
		}
		if s.ID == uuid.Nil {
			t.Errorf("role %q: session ID not set", role)
		}
		if !s.StartedAt.Equal(now) {
			t.Errorf("role %q: StartedAt = %v, want %v", role, s.StartedAt, now)
		}
	}
}

func TestNew_DistinctIDs(t *testing.T) {
	u := model.User{ID: 2, Username: "user", Role: model.RoleUser}
	a, b := New(u, time.Now()), New(u, time.Now())
	if a.ID == b.ID {
		t.Errorf("two sessions share ID %s", a.ID)
	}
}

func TestSession_PromptAndHome(t *testing.T) {
	s := New(model.User{Username: "admin", Role: model.RoleAdministrator}, time.Now())
	if got := s.Prompt(); got != "admin@db-server:~$ " {
		t.Errorf("Prompt() = %q", got)
	}
	if got := s.HomeDir(); got != "/home/admin" {
		t.Errorf("HomeDir() = %q", got)
	}
}
