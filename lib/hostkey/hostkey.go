// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

// Package hostkey bootstraps the SSH host identity keys. Generation is
// a one-time event per key type on a fresh system: a key file that
// already exists is never regenerated or rotated here. Key rotation,
// if ever wanted, is an operator action outside the reconciler.
package hostkey

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/crypto/ssh"

	"github.com/takehaya/vyos-1x/lib/process"
)

// Key describes one host key to ensure.
type Key struct {
	// Type is the ssh-keygen key type (rsa, dsa, ed25519).
	Type string

	// Path is the private key file location. The matching public key
	// is expected at Path + ".pub".
	Path string
}

// Ensure generates every missing key with ssh-keygen and logs the
// public key fingerprint of each ensured key. Existing key files are
// left untouched. Generation failures abort; fingerprinting failures
// only warn, since the daemon reads the private key file directly and
// does not depend on the .pub companion.
func Ensure(ctx context.Context, runner process.Runner, keys []Key, logger *slog.Logger) error {
	for _, key := range keys {
		if _, err := os.Stat(key.Path); err == nil {
			logFingerprint(key, logger)
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("checking host key %s: %w", key.Path, err)
		}

		logger.Info("host key not found, generating new key", "type", key.Type, "path", key.Path)
		if err := runner.Run(ctx, "ssh-keygen", "-q", "-N", "", "-t", key.Type, "-f", key.Path); err != nil {
			return fmt.Errorf("generating %s host key: %w", key.Type, err)
		}
		logFingerprint(key, logger)
	}
	return nil
}

// logFingerprint reads the public key companion file and logs its
// SHA256 fingerprint.
func logFingerprint(key Key, logger *slog.Logger) {
	data, err := os.ReadFile(key.Path + ".pub")
	if err != nil {
		logger.Warn("cannot read host public key", "type", key.Type, "error", err)
		return
	}
	publicKey, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		logger.Warn("cannot parse host public key", "type", key.Type, "error", err)
		return
	}
	logger.Debug("host key present",
		"type", key.Type,
		"fingerprint", ssh.FingerprintSHA256(publicKey))
}
