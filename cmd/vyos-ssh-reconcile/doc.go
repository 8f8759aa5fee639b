// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

// vyos-ssh-reconcile converges the host's SSH daemon to the declared
// service configuration.
//
// It reads the exported configuration tree, verifies it, generates
// host keys, trust material and daemon configuration, and stops,
// reloads or restarts the per-VRF service instances and the sshguard
// sidecar as needed.
//
// Exit status is 1 with a plain message for configuration errors, so
// the commit machinery can surface them to the operator; any other
// failure also exits 1 via the standard error path.
package main
