// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

// Package atomicfile writes files atomically: the content goes to a
// temporary file in the target's directory and is renamed into place.
// A reader, or a crash mid-write, never observes partial content.
package atomicfile

import (
	"os"
	"path/filepath"
)

// WriteFile atomically replaces path with data. The temporary file is
// created in the same directory so the final rename stays on one
// filesystem.
func WriteFile(path string, data []byte, mode os.FileMode) error {
	directory := filepath.Dir(path)
	temp, err := os.CreateTemp(directory, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tempName := temp.Name()

	if _, err := temp.Write(data); err != nil {
		temp.Close()
		os.Remove(tempName)
		return err
	}
	if err := temp.Chmod(mode); err != nil {
		temp.Close()
		os.Remove(tempName)
		return err
	}
	if err := temp.Sync(); err != nil {
		temp.Close()
		os.Remove(tempName)
		return err
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempName)
		return err
	}
	if err := os.Rename(tempName, path); err != nil {
		os.Remove(tempName)
		return err
	}
	return nil
}
