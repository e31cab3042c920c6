// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package githubfs

import (
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"
)

// syntheticDirMode is the fabricated mode for identity and repository
// directories that exist only virtually.
const syntheticDirMode = syscall.S_IFDIR | 0o755

// synthesizable reports whether an absent path at the given depth may
// be presented as a directory anyway. Identity (depth 1) and
// repository (depth 2) levels qualify: traversal tools must be able to
// descend into them, because descending is exactly what triggers
// materialization. Anything deeper is inside a working tree and absent
// means absent.
func synthesizable(d int) bool {
	return d == 1 || d == 2
}

// syntheticDir fills fabricated directory metadata: fixed mode, zeroed
// size and times. Real metadata is never mixed in — a path either
// exists on disk (storage attributes, unchanged) or it does not
// (this).
func syntheticDir(attr *fuse.Attr) {
	*attr = fuse.Attr{Mode: syntheticDirMode}
}
