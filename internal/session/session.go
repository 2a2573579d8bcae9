// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

// Package session holds the state of one authenticated shell session.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/toeirei/dbterm/internal/model"
)

// Session is the authenticated operator. User is a snapshot taken at login
// and IsAdmin is computed once from it; neither follows later changes to the
// stored row.
type Session struct {
	ID        uuid.UUID
	User      model.User
	IsAdmin   bool
	StartedAt time.Time
}

// New starts a session for user.
func New(user model.User, now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		User:      user,
		IsAdmin:   user.IsPrivileged(),
		StartedAt: now,
	}
}

// Prompt is the shell prompt for this session.
func (s *Session) Prompt() string {
	return s.User.Username + "@db-server:~$ "
}

// HomeDir is the directory reported by pwd.
func (s *Session) HomeDir() string {
	return "/home/" + s.User.Username
}
