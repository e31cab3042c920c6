// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package githubfs

import (
	"path/filepath"
	"strings"
)

// Resolver maps virtual paths onto the cache directory. A ref
// qualifier ("@dev" on the repository segment) selects which snapshot
// to clone but never appears in on-disk paths: both "alice/repo" and
// "alice/repo@dev" resolve to <cache>/alice/repo. Whichever ref is
// cloned first owns the on-disk tree; see the package documentation
// for the consequences.
type Resolver struct {
	cacheRoot string
}

// NewResolver returns a Resolver rooted at cacheRoot.
func NewResolver(cacheRoot string) *Resolver {
	return &Resolver{cacheRoot: cacheRoot}
}

// CacheRoot returns the cache directory.
func (r *Resolver) CacheRoot() string { return r.cacheRoot }

// Resolve maps a virtual path to its local cache path and the
// requested ref. An empty ref means the remote's primary branch.
//
// Resolve never fails: any input is accepted, qualifiers are stripped
// wherever they appear (only the repository segment is expected to
// carry one, but malformed input must not wedge the mount), and what
// remains is treated literally as path segments.
func (r *Resolver) Resolve(virtual string) (string, string) {
	segments, ref := splitVirtual(virtual)
	return filepath.Join(append([]string{r.cacheRoot}, segments...)...), ref
}

// splitVirtual splits a virtual path into its ref-stripped segments
// and the first ref qualifier found. Empty segments (leading slash,
// doubled slashes, a bare "@ref") vanish.
func splitVirtual(virtual string) ([]string, string) {
	var segments []string
	var ref string

	for _, segment := range strings.Split(virtual, "/") {
		if at := strings.IndexByte(segment, '@'); at >= 0 {
			qualifier := segment[at+1:]
			// A doubled qualifier ("repo@a@b") keeps only the first
			// token, matching the strip-everything-after-@ rule.
			if next := strings.IndexByte(qualifier, '@'); next >= 0 {
				qualifier = qualifier[:next]
			}
			if ref == "" {
				ref = qualifier
			}
			segment = segment[:at]
		}
		if segment == "" || segment == "." {
			continue
		}
		segments = append(segments, segment)
	}

	return segments, ref
}

// depth returns the number of virtual path segments after ref
// stripping: 0 for the mount root, 1 for an identity, 2 for a
// repository, more for paths inside a working tree.
func depth(virtual string) int {
	segments, _ := splitVirtual(virtual)
	return len(segments)
}
