// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package githubfs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the directory where the filesystem is mounted.
	Mountpoint string

	// CacheRoot is the directory holding materialized repositories
	// and all passthrough storage.
	CacheRoot string

	// Lister enumerates an identity's repositories for directory
	// listings at the identity level.
	Lister RepositoryLister

	// Cloner materializes repository working trees on first listing.
	Cloner Cloner

	// ListingCacheCapacity bounds the number of identities whose
	// repository listings are cached. Zero uses
	// DefaultListingCacheCapacity.
	ListingCacheCapacity int

	// ListingTimeout bounds each remote listing call. Zero means no
	// deadline beyond the kernel request's own lifetime.
	ListingTimeout time.Duration

	// CloneTimeout bounds each clone. Zero means no deadline.
	CloneTimeout time.Duration

	// AllowOther permits other users (including root) to access the
	// mount. Requires user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Debug enables FUSE protocol tracing to stderr.
	Debug bool

	// Logger receives diagnostic messages. If nil, an error-level
	// stderr logger is used.
	Logger *slog.Logger
}

// Mount mounts the filesystem at the configured mountpoint. The
// caller must call Unmount on the returned Server when done. The
// mountpoint and cache root directories are created if they do not
// exist.
func Mount(options Options) (*fuse.Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if options.CacheRoot == "" {
		return nil, fmt.Errorf("cache root is required")
	}
	if options.Lister == nil {
		return nil, fmt.Errorf("repository lister is required")
	}
	if options.Cloner == nil {
		return nil, fmt.Errorf("cloner is required")
	}

	if options.ListingCacheCapacity == 0 {
		options.ListingCacheCapacity = DefaultListingCacheCapacity
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	// The cache root must be absolute: node operations resolve
	// against it long after the process may have changed directory.
	cacheRoot, err := filepath.Abs(options.CacheRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving cache root %s: %w", options.CacheRoot, err)
	}
	if err := os.MkdirAll(cacheRoot, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache root %s: %w", cacheRoot, err)
	}
	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", options.Mountpoint, err)
	}

	listings, err := newListingCache(options.Lister, options.ListingCacheCapacity, options.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating listing cache: %w", err)
	}

	root := &node{
		bridge: &bridge{
			resolver:       NewResolver(cacheRoot),
			listings:       listings,
			cloner:         options.Cloner,
			listingTimeout: options.ListingTimeout,
			cloneTimeout:   options.CloneTimeout,
			logger:         options.Logger,
		},
	}

	// Attribute caching is short: identity and repository directories
	// flip from synthetic to real when materialization happens, and a
	// long-lived cached synthetic attribute would mask that.
	entryTimeout := 1 * time.Second
	attrTimeout := 1 * time.Second
	negativeTimeout := 100 * time.Millisecond

	server, err := gofuse.Mount(options.Mountpoint, root, &gofuse.Options{
		EntryTimeout:    &entryTimeout,
		AttrTimeout:     &attrTimeout,
		NegativeTimeout: &negativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     "forgefs",
			Name:       "forgefs",
			AllowOther: options.AllowOther,
			Debug:      options.Debug,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", options.Mountpoint, err)
	}

	options.Logger.Info("filesystem mounted",
		"mountpoint", options.Mountpoint,
		"cache_root", cacheRoot,
	)
	return server, nil
}
