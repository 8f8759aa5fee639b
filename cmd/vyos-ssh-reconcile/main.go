// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/takehaya/vyos-1x/lib/config"
	"github.com/takehaya/vyos-1x/lib/configtree"
	"github.com/takehaya/vyos-1x/lib/process"
	"github.com/takehaya/vyos-1x/lib/sshd"
	"github.com/takehaya/vyos-1x/lib/statecache"
	"github.com/takehaya/vyos-1x/lib/template"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		var configError *sshd.ConfigError
		if errors.As(err, &configError) {
			// Configuration errors are operator-facing: plain message
			// on stdout, exit 1, prior state untouched.
			fmt.Println(configError.Message)
			os.Exit(1)
		}
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath     string
		configTreePath string
		dryRun         bool
		logLevel       string
		showVersion    bool
	)

	flags := pflag.NewFlagSet("vyos-ssh-reconcile", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "reconciler configuration file (defaults apply when omitted)")
	flags.StringVar(&configTreePath, "config-tree", "", "exported configuration tree (YAML), required")
	flags.BoolVar(&dryRun, "dry-run", false, "verify and log the service plan without changing anything")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.BoolVar(&showVersion, "version", false, "print version and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Printf("vyos-ssh-reconcile %s\n", version)
		return nil
	}

	logger, err := newLogger(logLevel)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
		if err != nil {
			return err
		}
	}

	if configTreePath == "" {
		return fmt.Errorf("--config-tree is required")
	}
	store, err := configtree.LoadFile(configTreePath)
	if err != nil {
		return err
	}

	cache := &statecache.Cache{Path: cfg.Paths.State}
	ctx := context.Background()

	if dryRun {
		return preview(store, cache, cfg, logger)
	}

	pipeline := &sshd.Pipeline{
		Store:    store,
		Runner:   &process.ExecRunner{Logger: logger},
		Renderer: &template.Renderer{},
		Cache:    cache,
		Config:   cfg,
		Logger:   logger,
	}
	return pipeline.Run(ctx)
}

// preview extracts and verifies the configuration, then logs the
// service plan that a real run would execute. Nothing is mutated.
func preview(store configtree.Store, cache *statecache.Cache, cfg *config.Config, logger *slog.Logger) error {
	snapshot, err := sshd.Extract(store, cache)
	if err != nil {
		return err
	}
	if err := sshd.Verify(snapshot, store); err != nil {
		return err
	}

	plan := sshd.Decide(nil, snapshot)
	logger.Info("dry-run: configuration verified", "configured", snapshot != nil)
	logger.Info("dry-run: sidecar plan", "unit", cfg.Units.Sidecar, "action", plan.Sidecar)
	for _, action := range plan.Instances {
		logger.Info("dry-run: instance plan", "vrf", action.VRF, "action", action.Action)
	}
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})), nil
}
