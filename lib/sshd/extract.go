// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

package sshd

import (
	"fmt"
	"sort"

	"github.com/takehaya/vyos-1x/lib/configtree"
	"github.com/takehaya/vyos-1x/lib/statecache"
)

// Configuration tree paths consumed by extraction.
var (
	serviceBase   = []string{"service", "ssh"}
	loginUserBase = []string{"system", "login", "user"}
	pkiCABase     = []string{"pki", "ca"}
)

// caEntry is the shape of one CA node in the pki subtree.
type caEntry struct {
	Certificate string `yaml:"certificate"`
}

// Extract reads the declared SSH service configuration into a
// Snapshot. Returns (nil, nil) when the service is not configured at
// all. Schema defaults are filled, the system login users and PKI CA
// certificates are attached, and RestartRequired is set when the
// declared VRF set differs from the one recorded at the last
// successful apply.
func Extract(store configtree.Store, cache *statecache.Cache) (*Snapshot, error) {
	if !store.Exists(serviceBase...) {
		return nil, nil
	}

	snapshot := &Snapshot{}
	if err := store.Decode(snapshot, serviceBase...); err != nil {
		return nil, fmt.Errorf("decoding service ssh: %w", err)
	}
	snapshot.applyDefaults()

	var loginUsers map[string]any
	if err := store.Decode(&loginUsers, loginUserBase...); err != nil {
		return nil, fmt.Errorf("decoding system login users: %w", err)
	}
	snapshot.LoginUsers = make([]string, 0, len(loginUsers))
	for user := range loginUsers {
		snapshot.LoginUsers = append(snapshot.LoginUsers, user)
	}
	sort.Strings(snapshot.LoginUsers)

	var cas map[string]caEntry
	if err := store.Decode(&cas, pkiCABase...); err != nil {
		return nil, fmt.Errorf("decoding pki ca: %w", err)
	}
	snapshot.CACertificates = make(map[string]string, len(cas))
	for name, entry := range cas {
		snapshot.CACertificates[name] = entry.Certificate
	}

	if cache != nil {
		record, err := cache.Load()
		if err != nil {
			return nil, fmt.Errorf("loading last applied state: %w", err)
		}
		snapshot.RestartRequired = record.VRFsChanged(snapshot.VRFs)
	}
	return snapshot, nil
}
