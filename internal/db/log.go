// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import "github.com/toeirei/dbterm/internal/logging"

func dbLogf(format string, v ...any) {
	logging.Debugf("db: "+format, v...)
}
