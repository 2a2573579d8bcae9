// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/toeirei/dbterm/config"
	"github.com/toeirei/dbterm/internal/db"
	"github.com/toeirei/dbterm/internal/logging"
)

const mask = "********"

// pgPassword matches the password of a key=value connection string, quoted
// values included.
var pgPassword = regexp.MustCompile(`(?i)(\bpassword\s*=\s*)('(?:[^'\\]|\\.)*'|\S+)`)

func newDebugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug",
		Short: "Dump the resolved configuration, flags and DBTERM_* environment",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			writeDebug(cmd, cmd.OutOrStdout(), appConfig)
		},
	}
}

func writeDebug(cmd *cobra.Command, w io.Writer, c config.Config) {
	fmt.Fprintln(w, "--- DBTERM DEBUG ---")

	b, err := yaml.Marshal(redact(c))
	if err != nil {
		logging.Errorf("could not marshal config: %v", err)
	} else {
		fmt.Fprintln(w, "-- config --")
		fmt.Fprint(w, string(b))
	}

	fmt.Fprintln(w, "-- flags --")
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		fmt.Fprintf(w, "%s = %s\n", f.Name, f.Value.String())
	})

	fmt.Fprintln(w, "-- environment (DBTERM_*) --")
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "DBTERM_") {
			continue
		}
		if k, _, ok := strings.Cut(e, "="); ok && strings.Contains(k, "PASSWORD") {
			e = k + "=" + mask
		}
		fmt.Fprintln(w, e)
	}
	fmt.Fprintln(w, "--- END DEBUG ---")
}

// redact hides credentials in c. MySQL DSNs are re-rendered with the
// password replaced; postgres URLs and key=value strings get the password
// masked in place.
func redact(c config.Config) config.Config {
	if c.Snapshot.Password != "" {
		c.Snapshot.Password = mask
	}
	dialect, err := db.ParseDialect(c.Database.Type)
	if err != nil {
		return c
	}
	switch dialect {
	case db.DialectMySQL:
		if dsn, err := mysql.ParseDSN(c.Database.Dsn); err == nil && dsn.Passwd != "" {
			dsn.Passwd = mask
			c.Database.Dsn = dsn.FormatDSN()
		}
	case db.DialectPostgres:
		c.Database.Dsn = redactPostgres(c.Database.Dsn)
	}
	return c
}

func redactPostgres(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return mask
		}
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), mask)
		}
		return u.String()
	}
	return pgPassword.ReplaceAllString(dsn, "${1}"+mask)
}
