// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package git performs shallow clones via the git CLI. ForgeFS never
// touches git internals — the CLI handles protocol negotiation and
// credential helpers, and a shallow clone is a single command.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// StagingPrefix marks in-progress clone directories created next to
// their target. The directory materializer filters these names out of
// listings so a clone in flight is invisible until it lands.
const StagingPrefix = ".forgefs-clone-"

// Cloner shallow-clones repositories into the cache. The zero value is
// not usable; construct with NewCloner.
type Cloner struct {
	remoteBase string
	depth      int
}

// NewCloner returns a Cloner that builds clone URLs as
// remoteBase/owner/repo. Depth values below 1 are treated as 1.
func NewCloner(remoteBase string, depth int) *Cloner {
	if depth < 1 {
		depth = 1
	}
	return &Cloner{
		remoteBase: strings.TrimRight(remoteBase, "/"),
		depth:      depth,
	}
}

// Clone shallow-clones owner/repo at ref into targetDir. An empty ref
// clones whatever the remote HEAD points at. If targetDir already
// exists the call is a no-op: materialization is monotonic and a
// previous clone is never replaced.
//
// The clone lands in a staging directory next to the target and is
// renamed into place on success, so a failed or interrupted clone never
// leaves a partial target behind. When two callers race on the same
// repository, the rename loser finds the target present and discards
// its staging copy.
func (c *Cloner) Clone(ctx context.Context, owner, repo, ref, targetDir string) error {
	if owner == "" || repo == "" {
		return fmt.Errorf("git: clone needs owner and repo (got %q, %q)", owner, repo)
	}

	if _, err := os.Stat(targetDir); err == nil {
		return nil
	}

	parent := filepath.Dir(targetDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("git: creating %s: %w", parent, err)
	}

	staging, err := os.MkdirTemp(parent, StagingPrefix)
	if err != nil {
		return fmt.Errorf("git: creating staging directory in %s: %w", parent, err)
	}

	args := []string{
		"clone",
		"--depth", strconv.Itoa(c.depth),
		"--single-branch",
	}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	args = append(args, c.remoteBase+"/"+owner+"/"+repo, staging)

	var stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", args...)
	command.Stdout = nil
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("git clone %s/%s@%s: %w (stderr: %s)",
			owner, repo, ref, err, strings.TrimSpace(stderr.String()))
	}

	if err := os.Rename(staging, targetDir); err != nil {
		os.RemoveAll(staging)
		if _, statErr := os.Stat(targetDir); statErr == nil {
			// A concurrent clone won the race. The target is a
			// complete clone of the same repository.
			return nil
		}
		return fmt.Errorf("git: moving clone into place at %s: %w", targetDir, err)
	}

	return nil
}
