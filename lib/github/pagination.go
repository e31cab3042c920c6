// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// PageIterator lazily fetches pages of results from a paginated GitHub
// API endpoint. Each call to Next fetches the next page and returns the
// items. Returns nil, nil when all pages have been consumed.
//
// The iterator is not safe for concurrent use.
type PageIterator[T any] struct {
	client  *Client
	nextURL string
	done    bool
}

// Next fetches the next page of results. Returns nil, nil when no more
// pages are available. Each page fetch is subject to rate limiting,
// authentication, and ETag caching, same as any other API call: an
// unchanged page answers 304 and replays the cached body and next-page
// link without transferring the page again.
func (iterator *PageIterator[T]) Next(ctx context.Context) ([]T, error) {
	if iterator.done || iterator.nextURL == "" {
		return nil, nil
	}

	pageURL := iterator.nextURL
	response, err := iterator.client.doRaw(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotModified {
		cached, ok := iterator.client.etagCache.entry(pageURL)
		if !ok {
			// A 304 can only arrive in answer to our own If-None-Match,
			// which is only sent for cached URLs.
			return nil, fmt.Errorf("github: 304 for uncached page %s", pageURL)
		}
		var items []T
		if err := json.Unmarshal(cached.body, &items); err != nil {
			return nil, err
		}
		iterator.advance(cached.next)
		return items, nil
	}

	if response.StatusCode != http.StatusOK {
		return nil, parseAPIError(response)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("github: reading page body: %w", err)
	}

	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, err
	}

	next := parseLinkNext(response.Header.Get("Link"))
	if etag := response.Header.Get("ETag"); etag != "" {
		iterator.client.etagCache.put(pageURL, etag, body, next)
	}
	iterator.advance(next)
	return items, nil
}

func (iterator *PageIterator[T]) advance(next string) {
	iterator.nextURL = next
	if next == "" {
		iterator.done = true
	}
}

// Collect fetches all remaining pages and returns all items
// concatenated. Convenience method for callers that need the complete
// result at once — which is what a directory listing is.
func (iterator *PageIterator[T]) Collect(ctx context.Context) ([]T, error) {
	var all []T
	for {
		items, err := iterator.Next(ctx)
		if err != nil {
			return all, err
		}
		if items == nil {
			return all, nil
		}
		all = append(all, items...)
	}
}

// parseLinkNext extracts the URL with rel="next" from an RFC 5988 Link
// header. Returns empty string if no next link is present.
//
// Format: <https://api.github.com/...?page=2>; rel="next", <...>; rel="last"
func parseLinkNext(header string) string {
	if header == "" {
		return ""
	}

	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)

		// Each part is: <url>; rel="type"
		segments := strings.SplitN(part, ";", 2)
		if len(segments) != 2 {
			continue
		}

		urlPart := strings.TrimSpace(segments[0])
		relPart := strings.TrimSpace(segments[1])

		if !strings.Contains(relPart, `rel="next"`) {
			continue
		}

		if strings.HasPrefix(urlPart, "<") && strings.HasSuffix(urlPart, ">") {
			return urlPart[1 : len(urlPart)-1]
		}
	}

	return ""
}
