// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package shell

import (
	"context"

	"github.com/toeirei/dbterm/i18n"
	"github.com/toeirei/dbterm/internal/session"
)

// Category groups commands in the help listing.
type Category int

const (
	CategoryUsers Category = iota
	CategoryDatabase
	CategoryAdvanced
	CategorySystem
)

func (c Category) title() string {
	switch c {
	case CategoryUsers:
		return i18n.T("help.category_users")
	case CategoryDatabase:
		return i18n.T("help.category_database")
	case CategoryAdvanced:
		return i18n.T("help.category_advanced")
	default:
		return i18n.T("help.category_system")
	}
}

// ArgMode says what part of the line a command receives.
type ArgMode int

const (
	// ArgNone ignores everything after the command word.
	ArgNone ArgMode = iota
	// ArgToken passes the first word after the command.
	ArgToken
	// ArgRest passes the whole trimmed remainder.
	ArgRest
)

// Command is one entry of the command table.
type Command struct {
	Name      string
	Usage     string
	Category  Category
	AdminOnly bool
	Args      ArgMode
	// Hidden commands work but are not listed by help.
	Hidden bool

	run func(ctx context.Context, sess *session.Session, arg string)
}

// Description is the translated one-line help text.
func (c *Command) Description() string {
	return i18n.T("help.cmd." + c.Name)
}

func (s *Shell) commandTable() []*Command {
	return []*Command{
		{Name: "users", Usage: "users", Category: CategoryUsers, run: s.listUsers},
		{Name: "products", Usage: "products", Category: CategoryUsers, run: s.listProducts},
		{Name: "search", Usage: "search <keyword>", Category: CategoryUsers, Args: ArgToken, run: s.searchUsers},
		{Name: "search_product", Usage: "search_product <k>", Category: CategoryUsers, Args: ArgToken, run: s.searchProducts},
		{Name: "create_user", Usage: "create_user", Category: CategoryUsers, AdminOnly: true, run: s.createUser},
		{Name: "delete_user", Usage: "delete_user <id>", Category: CategoryUsers, AdminOnly: true, Args: ArgToken, run: s.deleteUser},

		{Name: "tables", Usage: "tables", Category: CategoryDatabase, run: s.listTables},
		{Name: "describe", Usage: "describe <table>", Category: CategoryDatabase, Args: ArgToken, run: s.describeTable},
		{Name: "dump", Usage: "dump", Category: CategoryDatabase, run: s.dump},
		{Name: "backup", Usage: "backup", Category: CategoryDatabase, AdminOnly: true, run: s.backup},
		{Name: "restore", Usage: "restore <file>", Category: CategoryDatabase, AdminOnly: true, Args: ArgRest, run: s.restore},

		{Name: "query", Usage: "query <sql>", Category: CategoryAdvanced, Args: ArgRest, run: s.query},
		{Name: "sql", Usage: "sql <sql>", Category: CategoryAdvanced, Args: ArgRest, run: s.rawSQL},
		{Name: "privileges", Usage: "privileges", Category: CategoryAdvanced, run: s.privileges},
		{Name: "processlist", Usage: "processlist", Category: CategoryAdvanced, run: s.processList},
		{Name: "shutdown", Usage: "shutdown", Category: CategoryAdvanced, AdminOnly: true, run: s.shutdown},

		{Name: "help", Usage: "help", Category: CategorySystem, run: s.help},
		{Name: "whoami", Usage: "whoami", Category: CategorySystem, run: s.whoami},
		{Name: "pwd", Usage: "pwd", Category: CategorySystem, run: s.pwd},
		{Name: "ls", Usage: "ls", Category: CategorySystem, run: s.ls},
		{Name: "clear", Usage: "clear", Category: CategorySystem, run: s.clear},
		{Name: "date", Usage: "date", Category: CategorySystem, run: s.date},
		{Name: "echo", Usage: "echo <text>", Category: CategorySystem, Args: ArgRest, run: s.echo},
		{Name: "exit", Usage: "exit", Category: CategorySystem, run: noop},
		{Name: "logout", Usage: "logout", Category: CategorySystem, Hidden: true, run: noop},
	}
}

func noop(context.Context, *session.Session, string) {}

// help prints the command reference generated from the table.
func (s *Shell) help(_ context.Context, _ *session.Session, _ string) {
	s.out.Blank()
	s.out.Println(i18n.T("help.title"))
	s.out.Rule("=", 21)

	current := Category(-1)
	for _, c := range s.commands {
		if c.Hidden {
			continue
		}
		if c.Category != current {
			current = c.Category
			s.out.Blank()
			s.out.Println(current.title())
			s.out.Rule("-", 19)
		}
		s.out.Printf("%-18s - %s\n", c.Usage, c.Description())
	}
}
