// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

package hostkey

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// keygenRunner simulates ssh-keygen by creating the -f target file.
type keygenRunner struct {
	generated []string
}

func (r *keygenRunner) Run(ctx context.Context, name string, args ...string) error {
	// Last argument is the key path (ssh-keygen ... -f <path>).
	path := args[len(args)-1]
	r.generated = append(r.generated, path)
	if err := os.WriteFile(path, []byte("private key material"), 0o600); err != nil {
		return err
	}
	return os.WriteFile(path+".pub", []byte("not a real public key"), 0o644)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnsureGeneratesMissingKeys(t *testing.T) {
	directory := t.TempDir()
	keys := []Key{
		{Type: "rsa", Path: filepath.Join(directory, "ssh_host_rsa_key")},
		{Type: "ed25519", Path: filepath.Join(directory, "ssh_host_ed25519_key")},
	}

	runner := &keygenRunner{}
	if err := Ensure(context.Background(), runner, keys, discardLogger()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if len(runner.generated) != 2 {
		t.Fatalf("generated %v, want both keys", runner.generated)
	}
	for _, key := range keys {
		if _, err := os.Stat(key.Path); err != nil {
			t.Errorf("key %s missing after Ensure: %v", key.Path, err)
		}
	}
}

func TestEnsureNeverRegeneratesExistingKeys(t *testing.T) {
	directory := t.TempDir()
	existing := filepath.Join(directory, "ssh_host_rsa_key")
	if err := os.WriteFile(existing, []byte("original"), 0o600); err != nil {
		t.Fatal(err)
	}

	keys := []Key{
		{Type: "rsa", Path: existing},
		{Type: "dsa", Path: filepath.Join(directory, "ssh_host_dsa_key")},
	}

	runner := &keygenRunner{}
	if err := Ensure(context.Background(), runner, keys, discardLogger()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	if len(runner.generated) != 1 || runner.generated[0] != keys[1].Path {
		t.Fatalf("generated %v, want only the dsa key", runner.generated)
	}
	data, err := os.ReadFile(existing)
	if err != nil || string(data) != "original" {
		t.Errorf("existing key was modified: %q %v", data, err)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	directory := t.TempDir()
	keys := []Key{{Type: "ed25519", Path: filepath.Join(directory, "ssh_host_ed25519_key")}}

	runner := &keygenRunner{}
	if err := Ensure(context.Background(), runner, keys, discardLogger()); err != nil {
		t.Fatal(err)
	}
	if err := Ensure(context.Background(), runner, keys, discardLogger()); err != nil {
		t.Fatal(err)
	}
	if len(runner.generated) != 1 {
		t.Errorf("key generated %d times, want exactly once", len(runner.generated))
	}
}
