// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package githubfs

import (
	"context"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultListingCacheCapacity is the number of identities whose
// repository lists are cached before least-recently-used eviction
// kicks in.
const DefaultListingCacheCapacity = 128

// listingCache memoizes remote repository listings per identity. It
// bounds remote call volume: repeated listings of the same identity
// are served from memory until the identity is evicted under capacity
// pressure. Failures are never cached — the next listing retries the
// remote call. Safe for concurrent use.
type listingCache struct {
	lister RepositoryLister
	cache  *lru.Cache[string, []string]
	logger *slog.Logger
}

func newListingCache(lister RepositoryLister, capacity int, logger *slog.Logger) (*listingCache, error) {
	cache, err := lru.New[string, []string](capacity)
	if err != nil {
		return nil, err
	}
	return &listingCache{
		lister: lister,
		cache:  cache,
		logger: logger,
	}, nil
}

// repositories returns the repository names owned by identity, from
// cache when possible.
func (c *listingCache) repositories(ctx context.Context, identity string) ([]string, error) {
	if names, ok := c.cache.Get(identity); ok {
		c.logger.Debug("repository listing cache hit", "identity", identity)
		return names, nil
	}

	names, err := c.lister.ListRepositoryNames(ctx, identity)
	if err != nil {
		return nil, err
	}

	c.cache.Add(identity, names)
	c.logger.Debug("repository listing fetched",
		"identity", identity,
		"repositories", len(names),
	)
	return names, nil
}
