// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"fmt"
	"net/url"
)

// ListRepositories returns every repository owned by the given user or
// organization, in the order GitHub returns them, deduplicated by name.
// Pagination is followed to the end: a directory listing is only useful
// when it is complete.
//
// The /users endpoint serves both users and organizations, so callers
// never need to know which kind of identity they are listing.
func (client *Client) ListRepositories(ctx context.Context, identity string) ([]Repository, error) {
	if identity == "" {
		return nil, fmt.Errorf("github: identity must not be empty")
	}

	path := fmt.Sprintf("/users/%s/repos?per_page=100", url.PathEscape(identity))
	repos, err := list[Repository](client, path).Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("github: listing repositories for %s: %w", identity, err)
	}

	seen := make(map[string]bool, len(repos))
	deduped := repos[:0]
	for _, repo := range repos {
		if repo.Name == "" || seen[repo.Name] {
			continue
		}
		seen[repo.Name] = true
		deduped = append(deduped, repo)
	}
	return deduped, nil
}

// ListRepositoryNames returns just the repository names for an
// identity. This is the shape the directory materializer consumes.
func (client *Client) ListRepositoryNames(ctx context.Context, identity string) ([]string, error) {
	repos, err := client.ListRepositories(ctx, identity)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(repos))
	for _, repo := range repos {
		names = append(names, repo.Name)
	}
	return names, nil
}

// GetRepository fetches a single repository. Useful for resolving the
// default branch before a clone, and for distinguishing "no such repo"
// from transient failures.
func (client *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	path := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	var result Repository
	if err := client.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
