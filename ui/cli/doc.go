// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the dbterm command line using Cobra. It resolves
// configuration, opens and provisions the store, and hands the operator to
// the login gate and the interactive shell. Terminal behaviour lives in
// internal/auth and internal/shell; this package only wires them together.
package cli
