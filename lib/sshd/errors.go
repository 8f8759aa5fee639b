// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

package sshd

import "fmt"

// ConfigError reports malformed or inconsistent declared
// configuration. It is raised during verification, before any
// mutation; the invoking entry point prints the message and exits
// with status 1. Chain resolution failures during generate are also
// surfaced as ConfigError, since a trust configuration without a
// complete chain is unusable.
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, so callers can still match
// specific failures such as pki.IncompleteChainError.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// configErrorf builds a ConfigError with a formatted message.
func configErrorf(format string, args ...any) error {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}
