// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package github

import "sync"

// etagEntry holds a cached response for a URL.
type etagEntry struct {
	etag string
	body []byte

	// next is the next-page URL from the response's Link header, so a
	// 304 replay of a listing page restores pagination state too.
	next string
}

// etagCache stores ETag → response body mappings for conditional GET
// requests. When a GET response includes an ETag header, the body is
// cached. On subsequent GETs to the same URL, the If-None-Match header
// is sent; a 304 Not Modified answer replays the cached body without
// consuming rate limit quota.
//
// The cache has no eviction policy — it lives for the duration of the
// Client and is bounded by the number of distinct URLs queried, which
// for ForgeFS is the set of listing pages and repositories seen
// through the mount.
type etagCache struct {
	mu      sync.Mutex
	entries map[string]etagEntry
}

func newETagCache() *etagCache {
	return &etagCache{entries: make(map[string]etagEntry)}
}

// get returns the cached ETag for a URL, or empty string if not cached.
func (cache *etagCache) get(url string) string {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.entries[url].etag
}

// body returns the cached response body for a URL, or nil if not cached.
func (cache *etagCache) body(url string) []byte {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.entries[url].body
}

// entry returns the full cached entry for a URL.
func (cache *etagCache) entry(url string) (etagEntry, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	entry, ok := cache.entries[url]
	return entry, ok
}

// put stores an ETag, response body, and next-page URL for a URL.
func (cache *etagCache) put(url string, etag string, body []byte, next string) {
	if etag == "" {
		return
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.entries[url] = etagEntry{etag: etag, body: body, next: next}
}
