// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package github

import "context"

// authenticator provides Authorization header values for GitHub API
// requests. An empty header value means the request is sent without
// an Authorization header.
type authenticator interface {
	// AuthorizationHeader returns a valid Authorization header value
	// (e.g., "Bearer ghp_xxx"), or "" for anonymous access.
	AuthorizationHeader(ctx context.Context) (string, error)
}

// tokenAuth is a static Bearer token authenticator for personal access
// tokens and fine-grained tokens.
type tokenAuth struct {
	header string
}

func newTokenAuth(token string) *tokenAuth {
	return &tokenAuth{header: "Bearer " + token}
}

func (auth *tokenAuth) AuthorizationHeader(_ context.Context) (string, error) {
	return auth.header, nil
}

// anonymousAuth sends no Authorization header. GitHub serves public
// data anonymously at a sharply reduced rate limit; the rate-limit
// tracker does the rest.
type anonymousAuth struct{}

func (anonymousAuth) AuthorizationHeader(_ context.Context) (string, error) {
	return "", nil
}
