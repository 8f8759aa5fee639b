// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config holds the reconciler's own settings: where host keys,
// trust material, and rendered daemon configuration live on disk, and
// which systemd units carry the service.
//
// The defaults match the fixed paths of a production system. Every
// path is a configuration field rather than a process-wide constant so
// the pipeline and its tests can run against temporary directories.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the reconciler configuration.
type Config struct {
	// Paths configures file and directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Units configures the systemd units under management.
	Units UnitsConfig `yaml:"units"`
}

// PathsConfig configures file and directory locations.
type PathsConfig struct {
	// DaemonConfig is the rendered sshd configuration file.
	DaemonConfig string `yaml:"daemon_config"`

	// HostKeyRSA, HostKeyDSA and HostKeyEd25519 are the long-lived
	// host identity key files, generated once on a fresh system.
	HostKeyRSA     string `yaml:"host_key_rsa"`
	HostKeyDSA     string `yaml:"host_key_dsa"`
	HostKeyEd25519 string `yaml:"host_key_ed25519"`

	// TrustedUserCAKey is the file holding the resolved CA chain for
	// certificate-based login.
	TrustedUserCAKey string `yaml:"trusted_user_ca_key"`

	// AuthorizedPrincipals is the directory holding one principals
	// file per bound user.
	AuthorizedPrincipals string `yaml:"authorized_principals"`

	// SshguardConfig and SshguardWhitelist are the intrusion
	// prevention sidecar's configuration and allow-list files, written
	// only when dynamic protection is enabled.
	SshguardConfig    string `yaml:"sshguard_config"`
	SshguardWhitelist string `yaml:"sshguard_whitelist"`

	// State is the last-applied state record.
	State string `yaml:"state"`
}

// UnitsConfig configures the systemd units under management.
type UnitsConfig struct {
	// Service is the templated daemon service name, instantiated per
	// VRF (ssh -> ssh@<vrf>.service).
	Service string `yaml:"service"`

	// Sidecar is the intrusion prevention service unit name.
	Sidecar string `yaml:"sidecar"`
}

// Default returns the production configuration.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DaemonConfig:         "/run/sshd/sshd_config",
			HostKeyRSA:           "/etc/ssh/ssh_host_rsa_key",
			HostKeyDSA:           "/etc/ssh/ssh_host_dsa_key",
			HostKeyEd25519:       "/etc/ssh/ssh_host_ed25519_key",
			TrustedUserCAKey:     "/etc/ssh/trusted_user_ca_key",
			AuthorizedPrincipals: "/etc/ssh/authorized_principals",
			SshguardConfig:       "/etc/sshguard/sshguard.conf",
			SshguardWhitelist:    "/etc/sshguard/whitelist",
			State:                "/run/sshd/reconciler-state",
		},
		Units: UnitsConfig{
			Service: "ssh",
			Sidecar: "sshguard.service",
		},
	}
}

// LoadFile loads configuration from a YAML file, overlaying the
// defaults. Fields absent from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	required := map[string]string{
		"paths.daemon_config":         c.Paths.DaemonConfig,
		"paths.host_key_rsa":          c.Paths.HostKeyRSA,
		"paths.host_key_dsa":          c.Paths.HostKeyDSA,
		"paths.host_key_ed25519":      c.Paths.HostKeyEd25519,
		"paths.trusted_user_ca_key":   c.Paths.TrustedUserCAKey,
		"paths.authorized_principals": c.Paths.AuthorizedPrincipals,
		"paths.state":                 c.Paths.State,
		"units.service":               c.Units.Service,
		"units.sidecar":               c.Units.Sidecar,
	}
	for name, value := range required {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}

	for _, path := range []string{
		c.Paths.DaemonConfig, c.Paths.TrustedUserCAKey, c.Paths.AuthorizedPrincipals,
	} {
		if path != "" && !filepath.IsAbs(path) {
			errs = append(errs, fmt.Errorf("path %q must be absolute", path))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
