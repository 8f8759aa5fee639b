// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

// Package systemd assembles and executes systemctl lifecycle actions
// for templated service units. The SSH daemon runs one instance per
// VRF as ssh@<vrf>.service; the wildcard instance ssh@*.service
// addresses every running instance regardless of VRF.
package systemd

import (
	"context"
	"fmt"

	"github.com/takehaya/vyos-1x/lib/process"
)

// Action is a systemctl lifecycle verb.
type Action string

const (
	// ActionStop stops a unit.
	ActionStop Action = "stop"
	// ActionReloadOrRestart reloads a unit if it supports reloading,
	// otherwise restarts it. The default path for config changes: the
	// daemon keeps established sessions where it can.
	ActionReloadOrRestart Action = "reload-or-restart"
	// ActionRestart fully restarts a unit. Required when the instance
	// identity itself changed (for example a VRF rename), since a
	// reload cannot rebind listening sockets to a different VRF.
	ActionRestart Action = "restart"
)

// WildcardInstance addresses all running instances of a templated unit.
const WildcardInstance = "*"

// InstanceUnit returns the unit name for one instance of a templated
// service, e.g. InstanceUnit("ssh", "default") == "ssh@default.service".
func InstanceUnit(service, instance string) string {
	return fmt.Sprintf("%s@%s.service", service, instance)
}

// Unit returns the unit name for a plain (non-templated) service.
func Unit(service string) string {
	return service + ".service"
}

// Controller executes unit actions through a process runner.
type Controller struct {
	Runner process.Runner
}

// Apply runs a single systemctl action against a unit.
func (c *Controller) Apply(ctx context.Context, action Action, unit string) error {
	if err := c.Runner.Run(ctx, "systemctl", string(action), unit); err != nil {
		return fmt.Errorf("systemctl %s %s: %w", action, unit, err)
	}
	return nil
}

// Stop stops a unit.
func (c *Controller) Stop(ctx context.Context, unit string) error {
	return c.Apply(ctx, ActionStop, unit)
}

// ReloadOrRestart reloads or restarts a unit.
func (c *Controller) ReloadOrRestart(ctx context.Context, unit string) error {
	return c.Apply(ctx, ActionReloadOrRestart, unit)
}

// Restart restarts a unit.
func (c *Controller) Restart(ctx context.Context, unit string) error {
	return c.Apply(ctx, ActionRestart, unit)
}
