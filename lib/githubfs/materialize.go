// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package githubfs

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/forgefs/forgefs/lib/git"
)

// RepositoryLister enumerates the repositories owned by an identity.
// The result must be complete (pagination followed to the end) and
// deduplicated. An identity that does not exist upstream should yield
// an error matching errors.Is(err, fs.ErrNotExist).
type RepositoryLister interface {
	ListRepositoryNames(ctx context.Context, identity string) ([]string, error)
}

// Cloner materializes a repository working tree. Clone must be a
// no-op when targetDir already exists, must tolerate concurrent
// invocations for the same target, and must not leave a partial
// targetDir behind on failure.
type Cloner interface {
	Clone(ctx context.Context, owner, repo, ref, targetDir string) error
}

// bridge is the directory materializer: it decides, per operation,
// whether to call the remote listing client, the cloner, both, or
// neither, and merges the result with whatever is already on disk.
// It holds no materialization state of its own — state is re-derived
// from disk existence on every access.
type bridge struct {
	resolver       *Resolver
	listings       *listingCache
	cloner         Cloner
	listingTimeout time.Duration
	cloneTimeout   time.Duration
	logger         *slog.Logger
}

// stat resolves a virtual path and returns its local metadata, or
// reports that the path should be presented as a synthetic directory.
// Exactly one of the two outcomes holds when errno is zero.
func (b *bridge) stat(virtual string) (st syscall.Stat_t, synthetic bool, errno syscall.Errno) {
	local, _ := b.resolver.Resolve(virtual)

	if err := syscall.Lstat(local, &st); err != nil {
		if err == syscall.ENOENT && synthesizable(depth(virtual)) {
			return syscall.Stat_t{}, true, 0
		}
		return syscall.Stat_t{}, false, gofuse.ToErrno(err)
	}
	return st, false, 0
}

// readdir produces the listing for a virtual directory. Depending on
// depth this is a pure local listing (root and working-tree paths), a
// remote listing unioned with local state (identity), or a clone
// followed by a local listing (repository). The remote-list, clone,
// and local-list steps are strictly ordered within one call.
func (b *bridge) readdir(ctx context.Context, virtual string) ([]fuse.DirEntry, syscall.Errno) {
	segments, ref := splitVirtual(virtual)
	local, _ := b.resolver.Resolve(virtual)

	entries := []fuse.DirEntry{
		{Name: ".", Mode: syscall.S_IFDIR},
		{Name: "..", Mode: syscall.S_IFDIR},
	}
	seen := map[string]bool{".": true, "..": true}

	switch len(segments) {
	case 0:
		// Mount root: local storage only, never a remote call.

	case 1:
		identity := segments[0]
		listCtx, cancel := withTimeout(ctx, b.listingTimeout)
		names, err := b.listings.repositories(listCtx, identity)
		cancel()
		if err != nil {
			b.logger.Warn("remote repository listing failed",
				"identity", identity,
				"error", err,
			)
			if errors.Is(err, fs.ErrNotExist) {
				return nil, syscall.ENOENT
			}
			return nil, syscall.EIO
		}
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			entries = append(entries, fuse.DirEntry{Name: name, Mode: syscall.S_IFDIR})
		}

	case 2:
		if _, err := os.Stat(local); err != nil {
			if !os.IsNotExist(err) {
				return nil, gofuse.ToErrno(err)
			}
			owner, repo := segments[0], segments[1]
			cloneCtx, cancel := withTimeout(ctx, b.cloneTimeout)
			cloneErr := b.cloner.Clone(cloneCtx, owner, repo, ref, local)
			cancel()
			if cloneErr != nil {
				b.logger.Warn("shallow clone failed",
					"owner", owner,
					"repo", repo,
					"ref", ref,
					"error", cloneErr,
				)
				return nil, syscall.EIO
			}
			b.logger.Info("repository materialized",
				"owner", owner,
				"repo", repo,
				"ref", ref,
				"path", local,
			)
		}
	}

	localEntries, err := os.ReadDir(local)
	if err != nil {
		if len(segments) == 1 && os.IsNotExist(err) {
			// An identity with no cloned repositories has no local
			// directory yet; the remote names alone are the listing.
			return entries, 0
		}
		return nil, gofuse.ToErrno(err)
	}

	for _, entry := range localEntries {
		name := entry.Name()
		if seen[name] || strings.HasPrefix(name, git.StagingPrefix) {
			continue
		}
		seen[name] = true
		entries = append(entries, fuse.DirEntry{Name: name, Mode: entryMode(entry)})
	}

	return entries, 0
}

// logOp emits one debug record per filesystem operation. This is the
// cross-cutting instrumentation point; operation bodies stay free of
// logging.
func (b *bridge) logOp(op, virtual string, errno syscall.Errno, start time.Time) {
	if !b.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	b.logger.Debug("fuse operation",
		"op", op,
		"path", virtual,
		"errno", int(errno),
		"duration", time.Since(start),
	)
}

func entryMode(entry os.DirEntry) uint32 {
	switch {
	case entry.IsDir():
		return syscall.S_IFDIR
	case entry.Type()&os.ModeSymlink != 0:
		return syscall.S_IFLNK
	default:
		return syscall.S_IFREG
	}
}

// withTimeout applies a deadline when one is configured. Zero means
// the boundary call blocks as long as the caller does.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
