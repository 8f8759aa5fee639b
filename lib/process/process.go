// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

// Package process runs external commands for the reconciler and
// provides entrypoint helpers for its binaries.
//
// All service lifecycle changes and key generation go through the
// Runner interface, so tests can substitute a recording implementation.
package process

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Runner executes an external command to completion. Implementations
// must treat a non-zero exit status as an error.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands via os/exec, blocking until completion.
// Combined output is captured and attached to the error on failure;
// successful command output is discarded.
type ExecRunner struct {
	Logger *slog.Logger
}

// Run executes the command and waits for it.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	if r.Logger != nil {
		r.Logger.Debug("running command", "command", name, "args", strings.Join(args, " "))
	}

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(output))
		if trimmed != "" {
			return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, trimmed)
		}
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors from run() where the structured logger may not be
// initialized yet.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
