// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

package sshd

import (
	"slices"

	"github.com/takehaya/vyos-1x/lib/configtree"
	"github.com/takehaya/vyos-1x/lib/pki"
)

// Verify validates the snapshot against the configuration tree. It is
// pure: no filesystem or service state is touched, and any violation
// aborts the reconciliation before generate runs. A nil snapshot (the
// service is not configured) verifies trivially.
func Verify(snapshot *Snapshot, store configtree.Store) error {
	if snapshot == nil {
		return nil
	}

	if snapshot.Rekey != nil && snapshot.Rekey.Data == 0 {
		return configErrorf("rekey data is required")
	}

	if err := verifyTrustedUserCAKey(snapshot); err != nil {
		return err
	}

	for _, vrf := range snapshot.VRFs {
		if vrf == DefaultVRF {
			continue
		}
		if !store.Exists("vrf", "name", vrf) {
			return configErrorf("VRF %q does not exist", vrf)
		}
	}
	return nil
}

func verifyTrustedUserCAKey(snapshot *Snapshot) error {
	trust := snapshot.TrustedUserCAKey
	if trust == nil {
		return nil
	}

	if trust.CACertificate == "" {
		return configErrorf("CA certificate is required for TrustedUserCAKey")
	}

	material, ok := snapshot.CACertificates[trust.CACertificate]
	if !ok || material == "" {
		return configErrorf("CA certificate %q is not valid or missing", trust.CACertificate)
	}
	if _, err := pki.LoadCertificate(material); err != nil {
		return &ConfigError{
			Message: "CA certificate " + trust.CACertificate + " cannot be loaded: " + err.Error(),
			Err:     err,
		}
	}

	for user, binding := range trust.BindUser {
		if !slices.Contains(snapshot.LoginUsers, user) {
			return configErrorf("user %q not found in system login users", user)
		}
		if len(binding.Principals) == 0 {
			return configErrorf("principal not found for user %q", user)
		}
	}
	return nil
}
