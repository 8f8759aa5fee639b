// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

// Package sshd reconciles the declared SSH service configuration with
// the host's actual state.
//
// One reconciliation is a strict four stage sequence:
//
//	extract  - read the declared configuration into a Snapshot
//	verify   - pure validation; ConfigError aborts before any mutation
//	generate - host keys, trust anchor, principals, rendered configs
//	apply    - decide and execute service lifecycle actions
//
// The pipeline holds no locks: the surrounding configuration commit
// discipline serializes invocations, at most one per host at a time.
// All mutations are idempotent, so a failed or interrupted run is
// recovered by running the pipeline again.
package sshd
