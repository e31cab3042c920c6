// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for ForgeFS.
//
// Configuration is loaded from a single YAML file specified by:
//   - the FORGEFS_CONFIG environment variable, or
//   - the --config flag passed to the command.
//
// When neither is set the built-in defaults apply and everything else
// comes from command-line flags. There is no search path and no hidden
// override: one file, read once, strict decoding.
package config
