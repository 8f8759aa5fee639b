// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

package sshd

import (
	"path/filepath"
	"testing"

	"github.com/takehaya/vyos-1x/lib/configtree"
	"github.com/takehaya/vyos-1x/lib/statecache"
)

const fixtureTree = `
service:
  ssh:
    port: 2222
    listen-address:
      - 192.0.2.1
    disable-password-authentication: true
    vrf:
      - default
      - mgmt
    dynamic-protection:
      allow-from:
        - 192.0.2.0/24
    trusted-user-ca-key:
      ca-certificate: corp
      bind-user:
        alice:
          principal:
            - ops
            - admin
system:
  login:
    user:
      alice: {}
      bob: {}
pki:
  ca:
    corp:
      certificate: |
        -----BEGIN CERTIFICATE-----
        bm90IGEgcmVhbCBjZXJ0
        -----END CERTIFICATE-----
vrf:
  name:
    mgmt: {}
`

func fixtureStore(t *testing.T) configtree.Store {
	t.Helper()
	store, err := configtree.Parse([]byte(fixtureTree))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestExtractUnconfiguredService(t *testing.T) {
	snapshot, err := Extract(emptyStore(t), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if snapshot != nil {
		t.Errorf("snapshot = %+v, want nil", snapshot)
	}
}

func TestExtractPopulatesSnapshot(t *testing.T) {
	snapshot, err := Extract(fixtureStore(t), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if snapshot == nil {
		t.Fatal("snapshot is nil")
	}

	if snapshot.Port != 2222 {
		t.Errorf("port = %d, want 2222", snapshot.Port)
	}
	if !snapshot.PasswordAuthDisabled {
		t.Error("disable-password-authentication not decoded")
	}
	if len(snapshot.VRFs) != 2 || snapshot.VRFs[1] != "mgmt" {
		t.Errorf("vrfs = %v", snapshot.VRFs)
	}
	if len(snapshot.LoginUsers) != 2 || snapshot.LoginUsers[0] != "alice" {
		t.Errorf("login users = %v, want sorted [alice bob]", snapshot.LoginUsers)
	}
	if snapshot.CACertificates["corp"] == "" {
		t.Error("CA material not attached")
	}
	if snapshot.TrustedUserCAKey == nil || snapshot.TrustedUserCAKey.CACertificate != "corp" {
		t.Errorf("trusted-user-ca-key = %+v", snapshot.TrustedUserCAKey)
	}
	bindings := snapshot.PrincipalBindings()
	if len(bindings["alice"]) != 2 || bindings["alice"][0] != "ops" {
		t.Errorf("bindings = %v", bindings)
	}
}

func TestExtractFillsDefaults(t *testing.T) {
	store, err := configtree.Parse([]byte("service:\n  ssh: {}\n"))
	if err != nil {
		t.Fatal(err)
	}

	snapshot, err := Extract(store, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if snapshot.Port != 22 {
		t.Errorf("default port = %d, want 22", snapshot.Port)
	}
	if snapshot.LogLevel != "INFO" {
		t.Errorf("default loglevel = %q, want INFO", snapshot.LogLevel)
	}
	if len(snapshot.VRFs) != 1 || snapshot.VRFs[0] != DefaultVRF {
		t.Errorf("default vrfs = %v", snapshot.VRFs)
	}
	if snapshot.DynamicProtection != nil {
		t.Error("dynamic protection present without configuration")
	}
}

func TestExtractDynamicProtectionSubDefaults(t *testing.T) {
	snapshot, err := Extract(fixtureStore(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	protection := snapshot.DynamicProtection
	if protection == nil {
		t.Fatal("dynamic protection missing")
	}
	if protection.BlockTime != 120 || protection.DetectTime != 1800 || protection.Threshold != 30 {
		t.Errorf("protection defaults = %+v", protection)
	}
	if len(protection.AllowFrom) != 1 {
		t.Errorf("allow-from = %v", protection.AllowFrom)
	}
}

func TestExtractSetsRestartRequiredOnVRFChange(t *testing.T) {
	cache := &statecache.Cache{Path: filepath.Join(t.TempDir(), "state")}
	if err := cache.Store(&statecache.Record{VRFs: []string{"default"}}); err != nil {
		t.Fatal(err)
	}

	snapshot, err := Extract(fixtureStore(t), cache)
	if err != nil {
		t.Fatal(err)
	}
	if !snapshot.RestartRequired {
		t.Error("VRF change from [default] to [default mgmt] not detected")
	}
}

func TestExtractNoRestartWhenVRFsUnchanged(t *testing.T) {
	cache := &statecache.Cache{Path: filepath.Join(t.TempDir(), "state")}
	if err := cache.Store(&statecache.Record{VRFs: []string{"default", "mgmt"}}); err != nil {
		t.Fatal(err)
	}

	snapshot, err := Extract(fixtureStore(t), cache)
	if err != nil {
		t.Fatal(err)
	}
	if snapshot.RestartRequired {
		t.Error("unchanged VRF set reported restart required")
	}
}

func TestExtractNoRestartWithoutPriorState(t *testing.T) {
	cache := &statecache.Cache{Path: filepath.Join(t.TempDir(), "absent")}
	snapshot, err := Extract(fixtureStore(t), cache)
	if err != nil {
		t.Fatal(err)
	}
	if snapshot.RestartRequired {
		t.Error("missing prior state reported restart required")
	}
}
