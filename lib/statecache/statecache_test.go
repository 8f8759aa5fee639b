// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

package statecache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStoreLoadRoundtrip(t *testing.T) {
	cache := &Cache{Path: filepath.Join(t.TempDir(), "ssh", "state")}

	record := &Record{
		VRFs:        []string{"mgmt", "default"},
		TrustAnchor: true,
		AppliedAt:   time.Now().UTC(),
	}
	if err := cache.Store(record); err != nil {
		t.Fatalf("Store: %v", err)
	}

	loaded, err := cache.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned nil record")
	}
	if len(loaded.VRFs) != 2 || loaded.VRFs[0] != "default" || loaded.VRFs[1] != "mgmt" {
		t.Errorf("VRFs = %v, want sorted [default mgmt]", loaded.VRFs)
	}
	if !loaded.TrustAnchor {
		t.Error("TrustAnchor lost in round trip")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cache := &Cache{Path: filepath.Join(t.TempDir(), "absent")}
	record, err := cache.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if record != nil {
		t.Errorf("Load of missing file = %+v, want nil", record)
	}
}

func TestLoadCorruptFileTreatedAsNoState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	if err := os.WriteFile(path, []byte("not cbor at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := &Cache{Path: path}
	record, err := cache.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if record != nil {
		t.Errorf("corrupt record decoded to %+v, want nil", record)
	}
}

func TestClear(t *testing.T) {
	cache := &Cache{Path: filepath.Join(t.TempDir(), "state")}
	if err := cache.Store(&Record{VRFs: []string{"default"}}); err != nil {
		t.Fatal(err)
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	record, err := cache.Load()
	if err != nil || record != nil {
		t.Errorf("after Clear: record=%+v err=%v, want nil nil", record, err)
	}
}

func TestVRFsChanged(t *testing.T) {
	record := &Record{VRFs: []string{"default", "mgmt"}}

	if record.VRFsChanged([]string{"mgmt", "default"}) {
		t.Error("same set in different order reported as changed")
	}
	if !record.VRFsChanged([]string{"default"}) {
		t.Error("removed VRF not reported as changed")
	}
	if !record.VRFsChanged([]string{"default", "mgmt", "blue"}) {
		t.Error("added VRF not reported as changed")
	}

	var missing *Record
	if missing.VRFsChanged([]string{"default"}) {
		t.Error("nil record reported a change")
	}
}
