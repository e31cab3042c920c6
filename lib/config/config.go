// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for a ForgeFS mount.
type Config struct {
	// CacheRoot is the directory that holds materialized repositories.
	// Created at startup if missing. Owned exclusively by the mount
	// process for its lifetime.
	CacheRoot string `yaml:"cache_root"`

	// Mountpoint is where the filesystem is mounted. Usually supplied
	// on the command line; the config value is a fallback.
	Mountpoint string `yaml:"mountpoint"`

	// GitHub configures the remote API and clone endpoints.
	GitHub GitHubConfig `yaml:"github"`

	// Clone configures shallow clone behavior.
	Clone CloneConfig `yaml:"clone"`

	// Listing configures remote repository listing behavior.
	Listing ListingConfig `yaml:"listing"`

	// Mount configures FUSE mount behavior.
	Mount MountConfig `yaml:"mount"`
}

// GitHubConfig configures access to the GitHub API and git remotes.
type GitHubConfig struct {
	// APIBaseURL is the REST API root. Default: https://api.github.com.
	APIBaseURL string `yaml:"api_base_url"`

	// RemoteBase is the base URL repositories are cloned from.
	// Default: https://github.com.
	RemoteBase string `yaml:"remote_base"`

	// Token is a personal access token. Prefer TokenFile so the token
	// does not live in the config file.
	Token string `yaml:"token"`

	// TokenFile is a file containing the token, trailing whitespace
	// trimmed.
	TokenFile string `yaml:"token_file"`
}

// CloneConfig configures the shallow clone executor.
type CloneConfig struct {
	// Depth is the shallow clone depth. Default: 1.
	Depth int `yaml:"depth"`

	// Timeout bounds a single clone invocation, as a Go duration
	// string. "0" disables the deadline. Default: 120s.
	Timeout string `yaml:"timeout"`
}

// ListingConfig configures remote repository listing.
type ListingConfig struct {
	// CacheCapacity is the number of identities whose repository
	// lists are kept in the LRU cache. Default: 128.
	CacheCapacity int `yaml:"cache_capacity"`

	// Timeout bounds a single listing call, as a Go duration string.
	// "0" disables the deadline. Default: 30s.
	Timeout string `yaml:"timeout"`
}

// MountConfig configures the FUSE mount itself.
type MountConfig struct {
	// AllowOther permits other users to access the mount. Requires
	// user_allow_other in /etc/fuse.conf.
	AllowOther bool `yaml:"allow_other"`

	// LogLevel is one of debug, info, warn, error. Default: info.
	LogLevel string `yaml:"log_level"`
}

// Default returns the default configuration. These are a usable base:
// unlike most settings, the cache root has a real default because the
// mount can run entirely from flags with no config file at all.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		CacheRoot: filepath.Join(homeDir, ".cache", "forgefs", "repos"),
		GitHub: GitHubConfig{
			APIBaseURL: "https://api.github.com",
			RemoteBase: "https://github.com",
		},
		Clone: CloneConfig{
			Depth:   1,
			Timeout: "120s",
		},
		Listing: ListingConfig{
			CacheCapacity: 128,
			Timeout:       "30s",
		},
		Mount: MountConfig{
			LogLevel: "info",
		},
	}
}

// Load loads configuration from the FORGEFS_CONFIG environment
// variable, falling back to defaults when it is unset.
func Load() (*Config, error) {
	configPath := os.Getenv("FORGEFS_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Unknown keys
// are an error so that typos do not silently fall back to defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.CacheRoot == "" {
		return fmt.Errorf("cache_root must not be empty")
	}
	if c.Clone.Depth < 1 {
		return fmt.Errorf("clone.depth must be at least 1 (got %d)", c.Clone.Depth)
	}
	if c.Listing.CacheCapacity < 1 {
		return fmt.Errorf("listing.cache_capacity must be at least 1 (got %d)", c.Listing.CacheCapacity)
	}
	if _, err := parseDuration(c.Clone.Timeout); err != nil {
		return fmt.Errorf("clone.timeout: %w", err)
	}
	if _, err := parseDuration(c.Listing.Timeout); err != nil {
		return fmt.Errorf("listing.timeout: %w", err)
	}
	switch c.Mount.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("mount.log_level must be one of debug, info, warn, error (got %q)", c.Mount.LogLevel)
	}
	return nil
}

// CloneTimeout returns the parsed clone deadline. Zero disables it.
// Call Validate first; an unparseable value degrades to zero here.
func (c *Config) CloneTimeout() time.Duration {
	d, _ := parseDuration(c.Clone.Timeout)
	return d
}

// ListingTimeout returns the parsed listing deadline. Zero disables it.
func (c *Config) ListingTimeout() time.Duration {
	d, _ := parseDuration(c.Listing.Timeout)
	return d
}

// LogLevel returns the configured log level. Call Validate first; an
// unknown value degrades to info here.
func (c *Config) LogLevel() slog.Level {
	switch c.Mount.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ResolveToken returns the GitHub token: the inline token if set, then
// the token file, then the GITHUB_TOKEN environment variable. An empty
// result is valid — the API client then serves only unauthenticated
// requests, which GitHub rate-limits aggressively.
func (c *Config) ResolveToken() (string, error) {
	if c.GitHub.Token != "" {
		return c.GitHub.Token, nil
	}
	if c.GitHub.TokenFile != "" {
		data, err := os.ReadFile(c.GitHub.TokenFile)
		if err != nil {
			return "", fmt.Errorf("reading token file %s: %w", c.GitHub.TokenFile, err)
		}
		token := strings.TrimSpace(string(data))
		if token == "" {
			return "", fmt.Errorf("token file %s is empty", c.GitHub.TokenFile)
		}
		return token, nil
	}
	return os.Getenv("GITHUB_TOKEN"), nil
}

// parseDuration parses a duration string, treating "" and "0" as zero.
func parseDuration(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
