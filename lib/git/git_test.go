// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func gitAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git not available: %v", err)
	}
}

func run(t *testing.T, dir string, args ...string) {
	t.Helper()
	command := exec.Command("git", append([]string{"-C", dir}, args...)...)
	command.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@test.local",
		"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@test.local",
	)
	if output, err := command.CombinedOutput(); err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, output)
	}
}

// initOrigin creates a local "remote" at <base>/<owner>/<repo> with a
// README on the default branch and a NOTES file on a dev branch, and
// returns base for use as the Cloner's remote base.
func initOrigin(t *testing.T, owner, repo string) string {
	t.Helper()
	gitAvailable(t)

	base := t.TempDir()
	origin := filepath.Join(base, owner, repo)
	if err := os.MkdirAll(origin, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	run(t, origin, "init", "-b", "main")
	if err := os.WriteFile(filepath.Join(origin, "README"), []byte("hello from origin\n"), 0o644); err != nil {
		t.Fatalf("write README: %v", err)
	}
	run(t, origin, "add", "README")
	run(t, origin, "commit", "-m", "initial")

	run(t, origin, "checkout", "-b", "dev")
	if err := os.WriteFile(filepath.Join(origin, "NOTES"), []byte("dev only\n"), 0o644); err != nil {
		t.Fatalf("write NOTES: %v", err)
	}
	run(t, origin, "add", "NOTES")
	run(t, origin, "commit", "-m", "dev notes")
	run(t, origin, "checkout", "main")

	return base
}

func TestCloneDefaultBranch(t *testing.T) {
	t.Parallel()

	base := initOrigin(t, "bob", "toolkit")
	cloner := NewCloner(base, 1)
	target := filepath.Join(t.TempDir(), "bob", "toolkit")

	if err := cloner.Clone(context.Background(), "bob", "toolkit", "", target); err != nil {
		t.Fatalf("Clone: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(target, "README"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(content) != "hello from origin\n" {
		t.Errorf("README = %q", content)
	}
	if _, err := os.Stat(filepath.Join(target, "NOTES")); err == nil {
		t.Error("NOTES from dev branch present in default-branch clone")
	}
}

func TestCloneRef(t *testing.T) {
	t.Parallel()

	base := initOrigin(t, "bob", "toolkit")
	cloner := NewCloner(base, 1)
	target := filepath.Join(t.TempDir(), "bob", "toolkit")

	if err := cloner.Clone(context.Background(), "bob", "toolkit", "dev", target); err != nil {
		t.Fatalf("Clone: %v", err)
	}

	if _, err := os.Stat(filepath.Join(target, "NOTES")); err != nil {
		t.Errorf("NOTES missing from dev clone: %v", err)
	}
}

func TestCloneExistingTargetIsNoop(t *testing.T) {
	t.Parallel()

	base := initOrigin(t, "bob", "toolkit")
	cloner := NewCloner(base, 1)

	target := filepath.Join(t.TempDir(), "bob", "toolkit")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	marker := filepath.Join(target, "marker")
	if err := os.WriteFile(marker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	if err := cloner.Clone(context.Background(), "bob", "toolkit", "", target); err != nil {
		t.Fatalf("Clone over existing target: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("existing target was disturbed: %v", err)
	}
}

func TestCloneConcurrentSameTarget(t *testing.T) {
	t.Parallel()

	base := initOrigin(t, "bob", "toolkit")
	cloner := NewCloner(base, 1)
	cacheRoot := t.TempDir()
	target := filepath.Join(cacheRoot, "bob", "toolkit")

	// Several callers observe the target absent and clone at once.
	// Every call must succeed: the rename winner installs the clone,
	// the losers find the target present and discard their staging
	// copies.
	const racers = 4
	results := make(chan error, racers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- cloner.Clone(context.Background(), "bob", "toolkit", "", target)
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil {
			t.Errorf("concurrent Clone: %v", err)
		}
	}

	content, err := os.ReadFile(filepath.Join(target, "README"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(content) != "hello from origin\n" {
		t.Errorf("README = %q, target is not a complete clone", content)
	}

	entries, err := os.ReadDir(filepath.Join(cacheRoot, "bob"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), StagingPrefix) {
			t.Errorf("staging directory %s left behind by a race loser", entry.Name())
		}
	}
}

func TestCloneBadRefLeavesNoTarget(t *testing.T) {
	t.Parallel()

	base := initOrigin(t, "bob", "toolkit")
	cloner := NewCloner(base, 1)
	target := filepath.Join(t.TempDir(), "bob", "toolkit")

	err := cloner.Clone(context.Background(), "bob", "toolkit", "no-such-ref", target)
	if err == nil {
		t.Fatal("expected error for nonexistent ref")
	}

	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Errorf("failed clone left target behind: %v", statErr)
	}

	// The staging directory must be cleaned up too.
	entries, readErr := os.ReadDir(filepath.Dir(target))
	if readErr != nil {
		t.Fatalf("ReadDir: %v", readErr)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), StagingPrefix) {
			t.Errorf("staging directory %s left behind", entry.Name())
		}
	}
}

func TestCloneMissingRemote(t *testing.T) {
	t.Parallel()

	base := t.TempDir() // no repositories underneath
	gitAvailable(t)
	cloner := NewCloner(base, 1)
	target := filepath.Join(t.TempDir(), "bob", "ghost")

	if err := cloner.Clone(context.Background(), "bob", "ghost", "", target); err == nil {
		t.Fatal("expected error for missing remote")
	}
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Error("failed clone left target behind")
	}
}

func TestCloneEmptyCoordinate(t *testing.T) {
	t.Parallel()

	cloner := NewCloner("https://github.com", 1)
	if err := cloner.Clone(context.Background(), "", "toolkit", "", t.TempDir()+"/x"); err == nil {
		t.Fatal("expected error for empty owner")
	}
}
