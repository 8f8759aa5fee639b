// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

package sshd

import "github.com/takehaya/vyos-1x/lib/systemd"

// InstanceAction is one step of a service plan: an action applied to
// the daemon instance of a single VRF, or to the wildcard instance.
type InstanceAction struct {
	// VRF names the instance, or systemd.WildcardInstance for all
	// running instances.
	VRF string

	// Action is the lifecycle verb to apply.
	Action systemd.Action
}

// Plan is the ordered set of service lifecycle actions for one apply.
type Plan struct {
	// Instances are applied in order.
	Instances []InstanceAction

	// Sidecar is the action for the intrusion prevention service:
	// stop when the feature is disabled or the whole service is
	// removed, reload-or-restart otherwise.
	Sidecar systemd.Action
}

// Decide computes the service plan from the previous and current
// snapshots. A nil current means the service was removed entirely.
//
// The rules are mutually exclusive and evaluated in priority order:
//
//  1. Service removed: stop the wildcard instance and the sidecar.
//  2. Sidecar: stop when dynamic protection is off, otherwise
//     reload-or-restart. Independent of rules 3 and 4.
//  3. VRF membership changed: stop the wildcard instance first, then
//     restart every declared VRF. The full stop avoids binding
//     conflicts when the VRF identity itself changes.
//  4. Otherwise: reload-or-restart every declared VRF, letting the
//     daemon keep established sessions where it can.
func Decide(previous, current *Snapshot) Plan {
	if current == nil {
		return Plan{
			Instances: []InstanceAction{{VRF: systemd.WildcardInstance, Action: systemd.ActionStop}},
			Sidecar:   systemd.ActionStop,
		}
	}

	var plan Plan
	if current.DynamicProtection == nil {
		plan.Sidecar = systemd.ActionStop
	} else {
		plan.Sidecar = systemd.ActionReloadOrRestart
	}

	restartRequired := current.RestartRequired
	if !restartRequired && previous != nil {
		restartRequired = !sameVRFSet(previous.VRFs, current.VRFs)
	}

	if restartRequired {
		plan.Instances = append(plan.Instances,
			InstanceAction{VRF: systemd.WildcardInstance, Action: systemd.ActionStop})
		for _, vrf := range current.VRFs {
			plan.Instances = append(plan.Instances,
				InstanceAction{VRF: vrf, Action: systemd.ActionRestart})
		}
		return plan
	}

	for _, vrf := range current.VRFs {
		plan.Instances = append(plan.Instances,
			InstanceAction{VRF: vrf, Action: systemd.ActionReloadOrRestart})
	}
	return plan
}
