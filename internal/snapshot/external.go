// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/toeirei/dbterm/config"
	"github.com/toeirei/dbterm/internal/logging"
)

// External runs the MySQL client programs (mysqldump and mysql by default).
// Connection settings come from the snapshot config; anything left empty is
// taken from the MySQL DSN.
type External struct {
	DumpCommand    string
	RestoreCommand string
	Host           string
	Port           int
	User           string
	Password       string
	Database       string

	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewExternal builds the external tool from cfg, filling gaps from dsn.
func NewExternal(cfg config.SnapshotConfig, dsn string) (*External, error) {
	e := &External{
		DumpCommand:    cfg.DumpCommand,
		RestoreCommand: cfg.RestoreCommand,
		Host:           cfg.Host,
		Port:           cfg.Port,
		User:           cfg.User,
		Password:       cfg.Password,
		Database:       cfg.Database,
		execCommand:    exec.CommandContext,
	}
	if e.DumpCommand == "" {
		e.DumpCommand = "mysqldump"
	}
	if e.RestoreCommand == "" {
		e.RestoreCommand = "mysql"
	}

	if dsn != "" {
		dc, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		if host, port, err := net.SplitHostPort(dc.Addr); err == nil {
			if e.Host == "" {
				e.Host = host
			}
			if e.Port == 0 {
				e.Port, _ = strconv.Atoi(port)
			}
		}
		if e.User == "" {
			e.User = dc.User
		}
		if e.Password == "" {
			e.Password = dc.Passwd
		}
		if e.Database == "" {
			e.Database = dc.DBName
		}
	}
	if e.Database == "" {
		return nil, fmt.Errorf("external snapshot tool needs a database name")
	}
	return e, nil
}

func (e *External) Name() string { return "external" }

// Args returns the connection arguments shared by both programs. The
// password is passed through MYSQL_PWD rather than the command line.
func (e *External) Args() []string {
	var args []string
	if e.Host != "" {
		args = append(args, "-h", e.Host)
	}
	if e.Port != 0 {
		args = append(args, "-P", strconv.Itoa(e.Port))
	}
	if e.User != "" {
		args = append(args, "-u", e.User)
	}
	return append(args, e.Database)
}

func (e *External) command(ctx context.Context, name string) (*exec.Cmd, *bytes.Buffer) {
	cmd := e.execCommand(ctx, name, e.Args()...)
	cmd.Env = os.Environ()
	if e.Password != "" {
		cmd.Env = append(cmd.Env, "MYSQL_PWD="+e.Password)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	return cmd, &stderr
}

// Backup streams mysqldump's output into w.
func (e *External) Backup(ctx context.Context, w io.Writer, _ Meta) error {
	cmd, stderr := e.command(ctx, e.DumpCommand)
	cmd.Stdout = w
	logging.Debugf("snapshot: running %s %s", e.DumpCommand, strings.Join(e.Args(), " "))
	if err := cmd.Run(); err != nil {
		return commandError(e.DumpCommand, err, stderr)
	}
	return nil
}

// Restore feeds r to the mysql client.
func (e *External) Restore(ctx context.Context, r io.Reader) error {
	cmd, stderr := e.command(ctx, e.RestoreCommand)
	cmd.Stdin = r
	logging.Debugf("snapshot: running %s %s", e.RestoreCommand, strings.Join(e.Args(), " "))
	if err := cmd.Run(); err != nil {
		return commandError(e.RestoreCommand, err, stderr)
	}
	return nil
}

func commandError(name string, err error, stderr *bytes.Buffer) error {
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("%s failed: %w: %s", name, err, msg)
	}
	return fmt.Errorf("%s failed: %w", name, err)
}
