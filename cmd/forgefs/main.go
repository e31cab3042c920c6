// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

// Command forgefs mounts a lazily materialized view of GitHub as a
// local filesystem. Listing an identity directory queries the GitHub
// API for that identity's repositories; listing a repository directory
// shallow-clones it into the cache on first access. Everything else is
// a passthrough to the cache directory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/forgefs/forgefs/lib/config"
	"github.com/forgefs/forgefs/lib/git"
	"github.com/forgefs/forgefs/lib/github"
	"github.com/forgefs/forgefs/lib/githubfs"
	"github.com/forgefs/forgefs/lib/process"
	"github.com/forgefs/forgefs/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		showVersion bool
		configPath  string
		mountpoint  string
		cacheDir    string
		tokenValue  string
		allowOther  bool
		debug       bool
	)
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.StringVar(&configPath, "config", "", "path to config file (default: $FORGEFS_CONFIG, else built-in defaults)")
	flag.StringVar(&mountpoint, "mountpoint", "", "mount directory (overrides config)")
	flag.StringVar(&cacheDir, "cache-dir", "", "repository cache directory (overrides config)")
	flag.StringVar(&tokenValue, "token", "", "GitHub token (overrides config; prefer token_file or GITHUB_TOKEN)")
	flag.BoolVar(&allowOther, "allow-other", false, "allow other users to access the mount")
	flag.BoolVar(&debug, "debug", false, "enable FUSE protocol tracing")
	flag.Parse()

	if showVersion {
		version.Print("forgefs")
		return nil
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if mountpoint != "" {
		cfg.Mountpoint = mountpoint
	}
	if cacheDir != "" {
		cfg.CacheRoot = cacheDir
	}
	if tokenValue != "" {
		cfg.GitHub.Token = tokenValue
	}
	if allowOther {
		cfg.Mount.AllowOther = true
	}
	if cfg.Mountpoint == "" {
		return fmt.Errorf("--mountpoint is required (or set mountpoint in the config file)")
	}

	logLevel := cfg.LogLevel()
	if debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	token, err := cfg.ResolveToken()
	if err != nil {
		return err
	}
	if token == "" {
		logger.Warn("no GitHub token configured, using anonymous API access (60 requests/hour)")
	}

	client, err := github.NewClient(github.Config{
		BaseURL: cfg.GitHub.APIBaseURL,
		Token:   token,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("creating GitHub client: %w", err)
	}

	server, err := githubfs.Mount(githubfs.Options{
		Mountpoint:           cfg.Mountpoint,
		CacheRoot:            cfg.CacheRoot,
		Lister:               client,
		Cloner:               git.NewCloner(cfg.GitHub.RemoteBase, cfg.Clone.Depth),
		ListingCacheCapacity: cfg.Listing.CacheCapacity,
		ListingTimeout:       cfg.ListingTimeout(),
		CloneTimeout:         cfg.CloneTimeout(),
		AllowOther:           cfg.Mount.AllowOther,
		Debug:                debug,
		Logger:               logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down", "mountpoint", cfg.Mountpoint)
		if err := server.Unmount(); err != nil {
			logger.Error("unmount failed, filesystem may still be mounted",
				"mountpoint", cfg.Mountpoint,
				"error", err,
			)
		}
	}()

	server.Wait()
	return nil
}
