// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

package sshd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/takehaya/vyos-1x/lib/atomicfile"
	"github.com/takehaya/vyos-1x/lib/config"
	"github.com/takehaya/vyos-1x/lib/configtree"
	"github.com/takehaya/vyos-1x/lib/hostkey"
	"github.com/takehaya/vyos-1x/lib/pki"
	"github.com/takehaya/vyos-1x/lib/principal"
	"github.com/takehaya/vyos-1x/lib/process"
	"github.com/takehaya/vyos-1x/lib/statecache"
	"github.com/takehaya/vyos-1x/lib/systemd"
	"github.com/takehaya/vyos-1x/lib/template"
)

// Pipeline drives one reconciliation of the SSH service:
// extract, verify, generate, apply. Each invocation is synchronous and
// run-to-completion; a stage only starts after the previous one
// finished. Verification failures abort before any mutation. Failures
// in generate or apply may leave partial state; re-running the
// pipeline converges, so re-invocation is the recovery mechanism.
type Pipeline struct {
	Store    configtree.Store
	Runner   process.Runner
	Renderer *template.Renderer
	Cache    *statecache.Cache
	Config   *config.Config
	Logger   *slog.Logger
}

// templateData is what the daemon configuration templates consume: the
// snapshot plus the configured file locations.
type templateData struct {
	*Snapshot
	Paths config.PathsConfig
}

// Run executes one full reconciliation.
func (p *Pipeline) Run(ctx context.Context) error {
	snapshot, err := Extract(p.Store, p.Cache)
	if err != nil {
		return err
	}
	if snapshot == nil {
		p.Logger.Info("ssh service not configured, tearing down")
	}

	if err := Verify(snapshot, p.Store); err != nil {
		return err
	}
	if err := p.Generate(ctx, snapshot); err != nil {
		return err
	}
	return p.Apply(ctx, snapshot)
}

// Generate materializes the snapshot on the filesystem: host keys,
// trust-anchor file, authorized-principals directory, and the rendered
// daemon configuration. A nil snapshot generates nothing; teardown of
// the config file happens in Apply.
func (p *Pipeline) Generate(ctx context.Context, snapshot *Snapshot) error {
	if snapshot == nil {
		return nil
	}

	paths := p.Config.Paths
	keys := []hostkey.Key{
		{Type: "rsa", Path: paths.HostKeyRSA},
		{Type: "dsa", Path: paths.HostKeyDSA},
		{Type: "ed25519", Path: paths.HostKeyEd25519},
	}
	if err := hostkey.Ensure(ctx, p.Runner, keys, p.Logger); err != nil {
		return err
	}

	if err := p.generateTrustAnchor(snapshot); err != nil {
		return err
	}

	data := &templateData{Snapshot: snapshot, Paths: paths}
	if err := p.Renderer.Render(paths.DaemonConfig, template.SSHDConfig, data); err != nil {
		return err
	}

	if snapshot.DynamicProtection != nil {
		if err := p.Renderer.Render(paths.SshguardConfig, template.SshguardConfig, data); err != nil {
			return err
		}
		if err := p.Renderer.Render(paths.SshguardWhitelist, template.SshguardWhitelist, data); err != nil {
			return err
		}
	}
	return nil
}

// generateTrustAnchor resolves and writes the CA chain and converges
// the authorized-principals directory. Without a trust anchor, stale
// trust material is removed and the principals directory collapsed.
func (p *Pipeline) generateTrustAnchor(snapshot *Snapshot) error {
	paths := p.Config.Paths
	trust := snapshot.TrustedUserCAKey

	if trust == nil {
		if err := os.Remove(paths.TrustedUserCAKey); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing stale trust-anchor file: %w", err)
		}
		return principal.Reconcile(paths.AuthorizedPrincipals, nil)
	}

	leaf, err := pki.LoadCertificate(snapshot.CACertificates[trust.CACertificate])
	if err != nil {
		return &ConfigError{
			Message: "CA certificate " + trust.CACertificate + " cannot be loaded: " + err.Error(),
			Err:     err,
		}
	}

	pool := pki.NewPool()
	for name, material := range snapshot.CACertificates {
		candidate, err := pki.LoadCertificate(material)
		if err != nil {
			// Unrelated CAs with broken material cannot break the
			// chain walk; they are simply not candidates.
			p.Logger.Warn("skipping unparseable CA certificate", "ca", name, "error", err)
			continue
		}
		pool.Add(candidate)
	}

	chain, err := pki.FindChain(leaf, pool)
	if err != nil {
		return &ConfigError{
			Message: "resolving CA chain for " + trust.CACertificate + ": " + err.Error(),
			Err:     err,
		}
	}
	p.Logger.Debug("resolved CA chain", "ca", trust.CACertificate, "length", len(chain))

	if err := atomicfile.WriteFile(paths.TrustedUserCAKey, []byte(chain.Encode()), 0o644); err != nil {
		return fmt.Errorf("writing trust-anchor file: %w", err)
	}

	return principal.Reconcile(paths.AuthorizedPrincipals, snapshot.PrincipalBindings())
}

// Apply converges the running services to the snapshot. A nil
// snapshot stops every instance and the sidecar and removes the
// daemon configuration file. Otherwise the decided plan is executed
// in order, sidecar first, and the applied state is recorded for the
// next invocation's VRF-change detection.
func (p *Pipeline) Apply(ctx context.Context, snapshot *Snapshot) error {
	controller := &systemd.Controller{Runner: p.Runner}
	serviceName := p.Config.Units.Service
	sidecarUnit := p.Config.Units.Sidecar

	if snapshot == nil {
		if err := controller.Stop(ctx, systemd.InstanceUnit(serviceName, systemd.WildcardInstance)); err != nil {
			return err
		}
		if err := controller.Stop(ctx, sidecarUnit); err != nil {
			return err
		}
		if err := os.Remove(p.Config.Paths.DaemonConfig); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing daemon config: %w", err)
		}
		return p.Cache.Clear()
	}

	plan := Decide(nil, snapshot)

	if err := controller.Apply(ctx, plan.Sidecar, sidecarUnit); err != nil {
		return err
	}
	for _, action := range plan.Instances {
		unit := systemd.InstanceUnit(serviceName, action.VRF)
		if err := controller.Apply(ctx, action.Action, unit); err != nil {
			return err
		}
	}

	return p.Cache.Store(&statecache.Record{
		VRFs:        snapshot.VRFs,
		TrustAnchor: snapshot.TrustedUserCAKey != nil,
		AppliedAt:   time.Now().UTC(),
	})
}
