// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

// Package snapshot writes and replays SQL snapshots of the store: the `dump`
// script, admin backups and restores. Backups and restores go through a Tool,
// either the MySQL client programs or the store adapter itself.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/dbterm/config"
	"github.com/toeirei/dbterm/internal/db"
	"github.com/toeirei/dbterm/internal/logging"
)

// ErrNotFound is returned when a restore source does not exist.
var ErrNotFound = errors.New("snapshot file not found")

// TimestampFormat is used in generated snapshot file names.
const TimestampFormat = "2006-01-02_15-04-05"

// Meta describes who produced a snapshot and when.
type Meta struct {
	GeneratedBy string
	Time        time.Time
}

// Tool produces and replays SQL scripts.
type Tool interface {
	Name() string
	Backup(ctx context.Context, w io.Writer, meta Meta) error
	Restore(ctx context.Context, r io.Reader) error
}

// Scripter is the part of the store adapter that can dump itself as SQL and
// replay such a script.
type Scripter interface {
	Dump(ctx context.Context, w io.Writer, generatedBy string, now time.Time) error
	ExecScript(ctx context.Context, script string) error
}

// Manager names snapshot files and handles compression around a Tool.
type Manager struct {
	store    Scripter
	tool     Tool
	dir      string
	compress bool
	now      func() time.Time
}

// New builds a Manager for the configured backend. An empty cfg.Tool selects
// the external tool for mysql and the builtin one otherwise.
func New(cfg config.SnapshotConfig, dbType, dsn string, store Scripter) (*Manager, error) {
	// db.Open has already rejected unknown types; they count as non-mysql.
	dialect, _ := db.ParseDialect(dbType)
	isMySQL := dialect == db.DialectMySQL

	var tool Tool
	switch name := strings.ToLower(cfg.Tool); {
	case name == "builtin", name == "" && !isMySQL:
		tool = NewBuiltin(store)
	case name == "external", name == "":
		if !isMySQL {
			dsn = ""
		}
		ext, err := NewExternal(cfg, dsn)
		if err != nil {
			return nil, err
		}
		tool = ext
	default:
		return nil, fmt.Errorf("unknown snapshot tool: '%s'", cfg.Tool)
	}

	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	logging.Debugf("snapshot: using %s tool, dir=%s, compress=%t", tool.Name(), dir, cfg.Compress)
	return &Manager{store: store, tool: tool, dir: dir, compress: cfg.Compress, now: time.Now}, nil
}

// Tool returns the active snapshot tool.
func (m *Manager) Tool() Tool { return m.tool }

func (m *Manager) fileName(prefix, ext string) string {
	return filepath.Join(m.dir, prefix+"_"+m.now().Format(TimestampFormat)+ext)
}

// Dump writes dump_<timestamp>.sql through the store adapter and returns its
// path.
func (m *Manager) Dump(ctx context.Context, generatedBy string) (string, error) {
	path := m.fileName("dump", ".sql")
	err := writeFile(path, false, func(w io.Writer) error {
		return m.store.Dump(ctx, w, generatedBy, m.now())
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// Backup writes backup_<timestamp>.sql (or .sql.zst when compression is on)
// through the configured tool and returns its path.
func (m *Manager) Backup(ctx context.Context, generatedBy string) (string, error) {
	ext := ".sql"
	if m.compress {
		ext += ".zst"
	}
	path := m.fileName("backup", ext)
	meta := Meta{GeneratedBy: generatedBy, Time: m.now()}
	err := writeFile(path, m.compress, func(w io.Writer) error {
		return m.tool.Backup(ctx, w, meta)
	})
	if err != nil {
		return "", err
	}
	logging.Infof("snapshot: backup written to %s by %s", path, generatedBy)
	return path, nil
}

// Check reports ErrNotFound when path does not name a readable file.
func (m *Manager) Check(path string) error {
	if path == "" {
		return ErrNotFound
	}
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return ErrNotFound
	}
	return nil
}

// Restore replays the script at path. Files ending in .zst are decompressed.
func (m *Manager) Restore(ctx context.Context, path string) error {
	if err := m.Check(path); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("could not create zstd reader: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	if err := m.tool.Restore(ctx, r); err != nil {
		return err
	}
	logging.Infof("snapshot: restored from %s", path)
	return nil
}

// writeFile creates path, streams fill into it (through zstd when compress
// is set) and removes the file again if anything fails.
func writeFile(path string, compress bool, fill func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("could not create directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if !compress {
		return fill(f)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	if err := fill(zw); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}
