// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. Fatal is the one
// legitimate raw-stderr write in the codebase: it reports errors from
// run() in main() before or after the structured logger exists.
package process
