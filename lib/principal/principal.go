// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

// Package principal converges the SSH authorized-principals directory
// to the set of users currently bound to certificate-based login.
//
// The directory holds one file per bound system user. Each file lists
// the certificate principal names accepted for that user, one per line.
// The daemon's AuthorizedPrincipalsFile option points at this directory
// with a %u token, so file names are user names and must be safe as a
// single path component.
package principal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/takehaya/vyos-1x/lib/atomicfile"
)

// ValidateUser checks that a bound user name is safe to use as a file
// name inside the principals directory.
//
// Rules enforced:
//   - Non-empty
//   - POSIX portable user name charset: A-Z, a-z, 0-9, ., _, -
//   - No leading dot or dash
//
// The charset excludes path separators, so a validated name can never
// escape the directory.
func ValidateUser(user string) error {
	if user == "" {
		return fmt.Errorf("user name is empty")
	}
	if user[0] == '.' || user[0] == '-' {
		return fmt.Errorf("user name %q starts with %q", user, string(user[0]))
	}
	for i := 0; i < len(user); i++ {
		c := user[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '-':
		default:
			return fmt.Errorf("user name %q contains invalid character %q", user, string(c))
		}
	}
	return nil
}

// Reconcile converges directory to hold exactly one file per desired
// user, containing that user's principal names newline-joined with a
// trailing newline.
//
// Desired files are always rewritten, even when the content is
// unchanged. The always-write cost is accepted to guarantee the files
// match the current configuration; do not add content diffing here.
//
// With an empty desired set, every regular file in the directory is
// removed and the directory itself is removed once empty. A missing
// directory is a no-op in that case. With a non-empty desired set the
// directory is created if absent and never removed.
//
// Extraneous files (names not in desired) are pruned after all desired
// files have been written. Running Reconcile twice with the same input
// leaves the filesystem in an identical state.
func Reconcile(directory string, desired map[string][]string) error {
	if len(desired) == 0 {
		return collapse(directory)
	}

	for user, principals := range desired {
		if err := ValidateUser(user); err != nil {
			return err
		}
		if len(principals) == 0 {
			return fmt.Errorf("user %q has no principals", user)
		}
	}

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("creating principals directory: %w", err)
	}

	// Deterministic write order for reproducible behavior under
	// partial failure.
	users := make([]string, 0, len(desired))
	for user := range desired {
		users = append(users, user)
	}
	sort.Strings(users)

	for _, user := range users {
		content := strings.Join(desired[user], "\n") + "\n"
		path := filepath.Join(directory, user)
		if err := atomicfile.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing principals for user %q: %w", user, err)
		}
	}

	// Prune: existing - desired.
	entries, err := os.ReadDir(directory)
	if err != nil {
		return fmt.Errorf("listing principals directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := desired[entry.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(directory, entry.Name())); err != nil {
			return fmt.Errorf("removing stale principals file %q: %w", entry.Name(), err)
		}
	}
	return nil
}

// collapse removes every regular file in the directory and then the
// directory itself if it ended up empty.
func collapse(directory string) error {
	entries, err := os.ReadDir(directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("listing principals directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(directory, entry.Name())); err != nil {
			return fmt.Errorf("removing principals file %q: %w", entry.Name(), err)
		}
	}

	remaining, err := os.ReadDir(directory)
	if err != nil {
		return fmt.Errorf("listing principals directory: %w", err)
	}
	if len(remaining) == 0 {
		if err := os.Remove(directory); err != nil {
			return fmt.Errorf("removing principals directory: %w", err)
		}
	}
	return nil
}
