// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for dbterm.
//
// Usage:
//
//	go run . [flags]
//	./dbterm [flags]
//
// This opens the interactive database control terminal. See --help for
// options.
package main

import (
	"os"

	"github.com/toeirei/dbterm/internal/logging"
	"github.com/toeirei/dbterm/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("dbterm: %v", err)
		os.Exit(1)
	}
}
