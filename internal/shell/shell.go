// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

// Package shell is the command dispatcher and operation catalog of the
// database control terminal. A Shell reads one line at a time, routes it to
// a command from a fixed table, enforces the administrator gate and renders
// the result.
package shell

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/toeirei/dbterm/i18n"
	"github.com/toeirei/dbterm/internal/console"
	"github.com/toeirei/dbterm/internal/db"
	"github.com/toeirei/dbterm/internal/logging"
	"github.com/toeirei/dbterm/internal/model"
	"github.com/toeirei/dbterm/internal/render"
	"github.com/toeirei/dbterm/internal/session"
)

// Store is the data store surface used by the operations.
type Store interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	SearchUsers(ctx context.Context, keyword string) ([]model.User, error)
	CreateUser(ctx context.Context, username, password, role string) error
	DeleteUser(ctx context.Context, id int64) (int64, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	SearchProducts(ctx context.Context, keyword string) ([]model.Product, error)
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) ([]model.Column, error)
	Grants(ctx context.Context) ([]string, error)
	ProcessList(ctx context.Context) ([]model.Process, error)
	Shutdown(ctx context.Context) error
	Execute(ctx context.Context, stmt string) (*db.Result, error)
}

// Snapshots writes dumps and backups and restores them.
type Snapshots interface {
	Dump(ctx context.Context, generatedBy string) (string, error)
	Backup(ctx context.Context, generatedBy string) (string, error)
	Check(path string) error
	Restore(ctx context.Context, path string) error
}

// Shell dispatches operator commands for one session at a time.
type Shell struct {
	store     Store
	snapshots Snapshots
	in        console.Reader
	out       *render.Printer

	commands []*Command
	index    map[string]*Command

	now func() time.Time
}

// New returns a Shell over the given store, snapshot manager and console.
func New(store Store, snapshots Snapshots, in console.Reader, out *render.Printer) *Shell {
	s := &Shell{
		store:     store,
		snapshots: snapshots,
		in:        in,
		out:       out,
		now:       time.Now,
	}
	s.commands = s.commandTable()
	s.index = make(map[string]*Command, len(s.commands))
	for _, c := range s.commands {
		s.index[c.Name] = c
	}
	return s
}

// Names lists the command names of a shell without needing a store, for
// completion set up before the shell exists.
func Names() []string {
	return New(nil, nil, nil, nil).CommandNames()
}

// CommandNames lists every command name in table order.
func (s *Shell) CommandNames() []string {
	names := make([]string, 0, len(s.commands))
	for _, c := range s.commands {
		names = append(names, c.Name)
	}
	return names
}

// Lookup returns the command registered under name, ignoring case.
func (s *Shell) Lookup(name string) (*Command, bool) {
	c, ok := s.index[strings.ToLower(name)]
	return c, ok
}

// Parse splits a line into the command word and the trimmed remainder.
func Parse(line string) (name, rest string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

// firstToken returns the first whitespace-delimited word of s.
func firstToken(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

// Dispatch runs one input line for sess. Unknown commands are reported and
// touch nothing else; admin-only commands are refused for other sessions
// before their handler runs.
func (s *Shell) Dispatch(ctx context.Context, sess *session.Session, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	name, rest := Parse(line)
	cmd, ok := s.Lookup(name)
	if !ok {
		s.out.Println(i18n.T("terminal.not_found", line))
		return
	}

	log := logging.With("session", sess.ID.String(), "user", sess.User.Username)
	if cmd.AdminOnly && !sess.IsAdmin {
		log.Warn("permission denied", "command", cmd.Name)
		s.out.Error(i18n.T("terminal.permission_denied"))
		return
	}
	if cmd.AdminOnly {
		log.Info("admin command", "command", cmd.Name)
	} else {
		log.Debug("command", "command", cmd.Name)
	}

	var arg string
	switch cmd.Args {
	case ArgToken:
		arg = firstToken(rest)
	case ArgRest:
		arg = rest
	}
	cmd.run(ctx, sess, arg)
}

// Run prints the terminal header and processes input until the operator
// types exit or logout, or input ends.
func (s *Shell) Run(ctx context.Context, sess *session.Session) error {
	s.header(sess)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.in.ReadLine(sess.Prompt())
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.out.Blank()
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		s.Dispatch(ctx, sess, line)

		if line == "exit" || line == "logout" {
			s.out.Println(i18n.T("terminal.logout"))
			return nil
		}
	}
}

func (s *Shell) header(sess *session.Session) {
	s.out.Clear()
	s.out.Println(i18n.T("terminal.title"))
	s.out.Println(i18n.T("terminal.user_line", sess.User.Username, sess.User.Role))
	s.out.Println(i18n.T("terminal.admin_access", yesNo(sess.IsAdmin)))
	s.out.Println(i18n.T("terminal.hint_help"))
	s.out.Println(i18n.T("terminal.hint_exit"))
	s.out.Blank()
}

func yesNo(b bool) string {
	if b {
		return i18n.T("terminal.yes")
	}
	return i18n.T("terminal.no")
}
