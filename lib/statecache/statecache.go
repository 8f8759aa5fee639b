// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

// Package statecache persists the last successfully applied service
// state. The reconciler compares the declared VRF set against this
// record to detect VRF membership changes, which force a full
// stop-then-restart instead of a reload.
//
// The record lives under /run, so it is discarded on reboot. That is
// the correct lifetime: after a reboot no instances are running, and a
// missing record simply means "no prior state", which the decision
// logic treats as no VRF change.
package statecache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/takehaya/vyos-1x/lib/atomicfile"
)

// Record is the persisted state of the last successful apply.
type Record struct {
	// VRFs is the sorted set of VRFs whose service instances were
	// running after the last apply.
	VRFs []string `cbor:"vrfs"`

	// TrustAnchor reports whether a trust-anchor file was written by
	// the last apply.
	TrustAnchor bool `cbor:"trust_anchor"`

	// AppliedAt is when the record was written.
	AppliedAt time.Time `cbor:"applied_at"`
}

// encMode encodes with Core Deterministic Encoding (RFC 8949 §4.2):
// same logical record always produces identical bytes.
var encMode cbor.EncMode

// decMode accepts standard CBOR and ignores unknown fields for forward
// compatibility.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("statecache: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("statecache: CBOR decoder initialization failed: " + err.Error())
	}
}

// Cache reads and writes the state record at a fixed path.
type Cache struct {
	Path string
}

// Load reads the record. A missing or undecodable file returns
// (nil, nil): corrupt state is equivalent to no state, and the next
// successful apply rewrites it.
func (c *Cache) Load() (*Record, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading state record: %w", err)
	}

	var record Record
	if err := decMode.Unmarshal(data, &record); err != nil {
		return nil, nil
	}
	return &record, nil
}

// Store writes the record atomically. A crash mid-write never leaves
// a partial record for the next invocation to read.
func (c *Cache) Store(record *Record) error {
	sorted := append([]string(nil), record.VRFs...)
	sort.Strings(sorted)
	record.VRFs = sorted

	data, err := encMode.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding state record: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := atomicfile.WriteFile(c.Path, data, 0o600); err != nil {
		return fmt.Errorf("writing state record: %w", err)
	}
	return nil
}

// Clear removes the record. Missing files are not an error.
func (c *Cache) Clear() error {
	if err := os.Remove(c.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing state record: %w", err)
	}
	return nil
}

// VRFsChanged reports whether the declared VRF set differs from the
// recorded one. A nil record (no prior state) reports no change: with
// nothing recorded as running there is nothing to restart away from.
func (r *Record) VRFsChanged(declared []string) bool {
	if r == nil {
		return false
	}
	if len(r.VRFs) != len(declared) {
		return true
	}
	sorted := append([]string(nil), declared...)
	sort.Strings(sorted)
	for i := range sorted {
		if sorted[i] != r.VRFs[i] {
			return true
		}
	}
	return false
}
