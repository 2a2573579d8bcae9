// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package snapshot

import (
	"context"
	"fmt"
	"io"
)

// Builtin snapshots through the store adapter's own dump and script replay.
type Builtin struct {
	store Scripter
}

// NewBuiltin returns a Tool backed by store.
func NewBuiltin(store Scripter) *Builtin {
	return &Builtin{store: store}
}

func (b *Builtin) Name() string { return "builtin" }

func (b *Builtin) Backup(ctx context.Context, w io.Writer, meta Meta) error {
	return b.store.Dump(ctx, w, meta.GeneratedBy, meta.Time)
}

func (b *Builtin) Restore(ctx context.Context, r io.Reader) error {
	script, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("could not read script: %w", err)
	}
	return b.store.ExecScript(ctx, string(script))
}
