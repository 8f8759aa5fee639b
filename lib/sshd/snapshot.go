// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

package sshd

import "sort"

// Snapshot is the declared state of the SSH service for one
// reconciliation. It is populated by Extract and read-only afterwards:
// verify, generate and apply never mutate it.
type Snapshot struct {
	// Port is the daemon listen port.
	Port uint16 `yaml:"port"`

	// ListenAddresses restricts the addresses the daemon binds to.
	// Empty means all addresses.
	ListenAddresses []string `yaml:"listen-address"`

	// LogLevel is the daemon log level (QUIET through DEBUG3).
	LogLevel string `yaml:"loglevel"`

	// PasswordAuthDisabled disables password authentication, leaving
	// key and certificate based login only.
	PasswordAuthDisabled bool `yaml:"disable-password-authentication"`

	// HostValidationDisabled disables reverse DNS lookups of
	// connecting clients (UseDNS no).
	HostValidationDisabled bool `yaml:"disable-host-validation"`

	// ClientKeepaliveInterval is the ClientAliveInterval in seconds.
	// Zero leaves the daemon default.
	ClientKeepaliveInterval int `yaml:"client-keepalive-interval"`

	// Ciphers, MACs and KexAlgorithms restrict the allowed crypto
	// suites. Empty lists leave the daemon defaults.
	Ciphers       []string `yaml:"ciphers"`
	MACs          []string `yaml:"mac"`
	KexAlgorithms []string `yaml:"key-exchange"`

	// AccessControl restricts which users and groups may log in.
	AccessControl *AccessControl `yaml:"access-control"`

	// Rekey forces session rekeying after a data volume and optional
	// time limit.
	Rekey *RekeyPolicy `yaml:"rekey"`

	// TrustedUserCAKey configures certificate-based authentication
	// against a CA from the PKI subtree.
	TrustedUserCAKey *TrustedUserCAKey `yaml:"trusted-user-ca-key"`

	// VRFs lists the routing instances the daemon runs in, one
	// service instance each. Defaults to the default VRF.
	VRFs []string `yaml:"vrf"`

	// DynamicProtection enables the intrusion prevention sidecar.
	// Nil when the feature is not configured.
	DynamicProtection *DynamicProtection `yaml:"dynamic-protection"`

	// CACertificates maps PKI CA names to their PEM certificate
	// material. Filled from the pki subtree, not the service subtree.
	CACertificates map[string]string `yaml:"-"`

	// LoginUsers is the set of system login users, used to validate
	// certificate user bindings.
	LoginUsers []string `yaml:"-"`

	// RestartRequired is set during extract when the declared VRF set
	// differs from the last applied one. A changed VRF identity needs
	// a full stop and restart; a reload cannot rebind the listening
	// sockets.
	RestartRequired bool `yaml:"-"`
}

// AccessControl restricts login by user and group name.
type AccessControl struct {
	AllowUsers  []string `yaml:"allow-user"`
	DenyUsers   []string `yaml:"deny-user"`
	AllowGroups []string `yaml:"allow-group"`
	DenyGroups  []string `yaml:"deny-group"`
}

// RekeyPolicy forces session rekeying. Data is in megabytes and is
// required; Time is in minutes and optional.
type RekeyPolicy struct {
	Data int `yaml:"data"`
	Time int `yaml:"time"`
}

// TrustedUserCAKey configures certificate-based authentication.
type TrustedUserCAKey struct {
	// CACertificate names the CA in the PKI subtree whose chain is
	// written to the trust-anchor file.
	CACertificate string `yaml:"ca-certificate"`

	// BindUser maps system user names to the certificate principals
	// accepted for them.
	BindUser map[string]BindUser `yaml:"bind-user"`
}

// BindUser holds the principals bound to one system user.
type BindUser struct {
	Principals []string `yaml:"principal"`
}

// DynamicProtection configures the sshguard sidecar.
type DynamicProtection struct {
	// BlockTime is how many seconds an attacker stays blocked.
	BlockTime int `yaml:"block-time"`

	// DetectTime is the window in seconds over which attack pressure
	// accumulates.
	DetectTime int `yaml:"detect-time"`

	// Threshold is the attack pressure that triggers a block.
	Threshold int `yaml:"threshold"`

	// AllowFrom lists sources that are never blocked.
	AllowFrom []string `yaml:"allow-from"`
}

// PrincipalBindings flattens the bind-user map into the desired state
// of the authorized-principals directory. Returns nil when no trust
// anchor or no bindings are configured, which collapses the directory.
func (s *Snapshot) PrincipalBindings() map[string][]string {
	if s.TrustedUserCAKey == nil || len(s.TrustedUserCAKey.BindUser) == 0 {
		return nil
	}
	bindings := make(map[string][]string, len(s.TrustedUserCAKey.BindUser))
	for user, binding := range s.TrustedUserCAKey.BindUser {
		bindings[user] = binding.Principals
	}
	return bindings
}

// applyDefaults fills schema defaults for fields the declared
// configuration left unset. Sub-defaults of dynamic protection are
// only filled when the feature node itself is present, mirroring the
// configuration schema.
func (s *Snapshot) applyDefaults() {
	if s.Port == 0 {
		s.Port = 22
	}
	if s.LogLevel == "" {
		s.LogLevel = "INFO"
	}
	if len(s.VRFs) == 0 {
		s.VRFs = []string{DefaultVRF}
	}
	if s.DynamicProtection != nil {
		if s.DynamicProtection.BlockTime == 0 {
			s.DynamicProtection.BlockTime = 120
		}
		if s.DynamicProtection.DetectTime == 0 {
			s.DynamicProtection.DetectTime = 1800
		}
		if s.DynamicProtection.Threshold == 0 {
			s.DynamicProtection.Threshold = 30
		}
	}
}

// sameVRFSet compares two VRF lists as sets.
func sameVRFSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sortedA := append([]string(nil), a...)
	sortedB := append([]string(nil), b...)
	sort.Strings(sortedA)
	sort.Strings(sortedB)
	for i := range sortedA {
		if sortedA[i] != sortedB[i] {
			return false
		}
	}
	return true
}

// DefaultVRF is the routing instance the daemon runs in when the
// configuration declares none.
const DefaultVRF = "default"
