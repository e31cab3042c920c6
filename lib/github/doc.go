// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package github provides a typed, read-only client for the GitHub
// REST API — ForgeFS only ever lists and inspects repositories.
//
// The client authenticates with a personal access token (or runs
// unauthenticated, at GitHub's much lower anonymous rate limit). It
// handles rate limiting (X-RateLimit-* headers with automatic backoff),
// pagination (RFC 5988 Link headers), conditional requests (ETags), and
// structured error mapping.
//
// All requests are made over HTTPS. The client refuses non-HTTPS base URLs.
package github
