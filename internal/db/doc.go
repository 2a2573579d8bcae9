// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db is the data store adapter for dbterm.
//
// A Store wraps a single bun.DB opened for one of the supported backends
// (sqlite via modernc, mysql via go-sql-driver, postgres via pgx) and exposes
// the fixed-shape operations the shell needs:
//
//   - typed user/product queries built with bun and bound parameters
//   - schema introspection (tables, column descriptions, grants, processes)
//   - the raw statement passthrough used by the `query` and `sql` commands
//   - SQL dump and script replay used by snapshots
//   - provisioning of the users/products schema with seed data
//
// Backend differences are isolated behind the Dialect type. Callers never
// build SQL text from operator input except through Execute, which is the
// single deliberate passthrough.
//
// Testing notes
//   - Tests open an in-memory sqlite database named after the test
//     (`file:<name>?mode=memory&cache=shared`) and call Provision.
package db
