// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package githubfs

import (
	"path/filepath"
	"testing"
)

func TestResolveStripsRefQualifier(t *testing.T) {
	t.Parallel()

	resolver := NewResolver("/cache")

	tests := []struct {
		virtual string
		local   string
		ref     string
	}{
		{"/", "/cache", ""},
		{"/alice", filepath.Join("/cache", "alice"), ""},
		{"/alice/toolkit", filepath.Join("/cache", "alice", "toolkit"), ""},
		{"/alice/toolkit@dev", filepath.Join("/cache", "alice", "toolkit"), "dev"},
		{"/alice/toolkit@v1.2.3", filepath.Join("/cache", "alice", "toolkit"), "v1.2.3"},
		{"/alice/toolkit@dev/src/main.c", filepath.Join("/cache", "alice", "toolkit", "src", "main.c"), "dev"},
		// Only the repository segment is expected to carry a
		// qualifier, but stripping applies everywhere.
		{"/alice@odd/toolkit", filepath.Join("/cache", "alice", "toolkit"), "odd"},
		// First qualifier wins.
		{"/alice/toolkit@dev/file@v2", filepath.Join("/cache", "alice", "toolkit", "file"), "dev"},
		// Doubled qualifier keeps the first token.
		{"/alice/toolkit@a@b", filepath.Join("/cache", "alice", "toolkit"), "a"},
		// A bare qualifier leaves an empty segment, which vanishes.
		{"/alice/@dev", filepath.Join("/cache", "alice"), "dev"},
		{"//alice///toolkit", filepath.Join("/cache", "alice", "toolkit"), ""},
	}

	for _, test := range tests {
		local, ref := resolver.Resolve(test.virtual)
		if local != test.local {
			t.Errorf("Resolve(%q) local = %q, want %q", test.virtual, local, test.local)
		}
		if ref != test.ref {
			t.Errorf("Resolve(%q) ref = %q, want %q", test.virtual, ref, test.ref)
		}
	}
}

func TestResolveRefVariantsShareLocalPath(t *testing.T) {
	t.Parallel()

	resolver := NewResolver("/cache")

	defaultLocal, _ := resolver.Resolve("/alice/toolkit")
	devLocal, devRef := resolver.Resolve("/alice/toolkit@dev")

	if defaultLocal != devLocal {
		t.Errorf("ref variants resolve to different paths: %q vs %q", defaultLocal, devLocal)
	}
	if devRef != "dev" {
		t.Errorf("ref = %q, want %q", devRef, "dev")
	}
}

func TestDepth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		virtual string
		want    int
	}{
		{"/", 0},
		{"", 0},
		{"/alice", 1},
		{"/alice/toolkit", 2},
		{"/alice/toolkit@dev", 2},
		{"/alice/toolkit/src", 3},
		{"/alice/toolkit@dev/src/deep/file", 5},
	}

	for _, test := range tests {
		if got := depth(test.virtual); got != test.want {
			t.Errorf("depth(%q) = %d, want %d", test.virtual, got, test.want)
		}
	}
}

func TestSynthesizable(t *testing.T) {
	t.Parallel()

	for d, want := range map[int]bool{0: false, 1: true, 2: true, 3: false, 7: false} {
		if got := synthesizable(d); got != want {
			t.Errorf("synthesizable(%d) = %v, want %v", d, got, want)
		}
	}
}
