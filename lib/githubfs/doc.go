// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package githubfs implements the lazy-materializing FUSE bridge that
// exposes a code-hosting service as a directory tree.
//
// The virtual namespace is:
//
//	/                              cache root contents
//	/<identity>                    the identity's repositories
//	/<identity>/<repo>             working tree at the remote's primary branch
//	/<identity>/<repo>@<ref>       working tree at <ref>
//	/<identity>/<repo>[@<ref>]/... files inside the tree
//
// Nothing is fetched until it is listed. Listing an identity calls the
// remote API (through a bounded LRU so repeated listings are free);
// listing a repository that is not yet on disk shallow-clones it into
// the cache. Everything else — reads, writes, renames, permissions —
// resolves the virtual path into the cache directory and passes
// straight through to the local filesystem.
//
// Materialization is monotonic and derived: a path's state is whatever
// the cache directory says on every access, and a cloned repository is
// never evicted by this package.
package githubfs
