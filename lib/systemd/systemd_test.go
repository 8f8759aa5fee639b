// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

package systemd

import (
	"context"
	"strings"
	"testing"
)

// recordingRunner captures every command line passed to Run.
type recordingRunner struct {
	commands []string
}

func (r *recordingRunner) Run(ctx context.Context, name string, args ...string) error {
	r.commands = append(r.commands, name+" "+strings.Join(args, " "))
	return nil
}

func TestInstanceUnit(t *testing.T) {
	if got := InstanceUnit("ssh", "default"); got != "ssh@default.service" {
		t.Errorf("InstanceUnit = %q, want ssh@default.service", got)
	}
	if got := InstanceUnit("ssh", WildcardInstance); got != "ssh@*.service" {
		t.Errorf("wildcard InstanceUnit = %q, want ssh@*.service", got)
	}
}

func TestControllerActions(t *testing.T) {
	runner := &recordingRunner{}
	controller := &Controller{Runner: runner}
	ctx := context.Background()

	if err := controller.Stop(ctx, "ssh@*.service"); err != nil {
		t.Fatal(err)
	}
	if err := controller.ReloadOrRestart(ctx, "sshguard.service"); err != nil {
		t.Fatal(err)
	}
	if err := controller.Restart(ctx, "ssh@mgmt.service"); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"systemctl stop ssh@*.service",
		"systemctl reload-or-restart sshguard.service",
		"systemctl restart ssh@mgmt.service",
	}
	if len(runner.commands) != len(want) {
		t.Fatalf("commands = %v, want %v", runner.commands, want)
	}
	for i := range want {
		if runner.commands[i] != want[i] {
			t.Errorf("command %d = %q, want %q", i, runner.commands[i], want[i])
		}
	}
}
