// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

// Package logging provides the diagnostic logger used by dbterm. Output meant
// for the operator is printed by the shell; this logger only carries
// diagnostics and writes to stderr.
package logging

import (
	"fmt"
	"io"
	"os"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger. Callers should use the helper functions
// below rather than reaching into L directly.
var L = newLogger(os.Stderr)

func newLogger(w io.Writer) *clog.Logger {
	l := clog.NewWithOptions(w, clog.Options{
		Prefix:          "dbterm",
		ReportTimestamp: true,
		Level:           clog.WarnLevel,
	})
	return l
}

// SetOutput redirects the package logger.
func SetOutput(w io.Writer) {
	L.SetOutput(w)
}

// SetDebug enables or disables debug logging. Warnings and errors are always
// emitted.
func SetDebug(enabled bool) {
	if enabled {
		L.SetLevel(clog.DebugLevel)
		return
	}
	L.SetLevel(clog.WarnLevel)
}

// Debugf logs a debug-level formatted message.
func Debugf(format string, v ...any) {
	L.Debug(fmt.Sprintf(format, v...))
}

// Infof logs an info-level formatted message.
func Infof(format string, v ...any) {
	L.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level formatted message.
func Warnf(format string, v ...any) {
	L.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs an error-level formatted message.
func Errorf(format string, v ...any) {
	L.Error(fmt.Sprintf(format, v...))
}

// With returns a child logger carrying the given key/value pairs.
func With(keyvals ...any) *clog.Logger {
	return L.With(keyvals...)
}
