// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

// Package template renders the daemon configuration files from
// templates compiled into the binary. Rendering is deterministic text
// substitution: the same data always produces the same output.
package template

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/takehaya/vyos-1x/lib/atomicfile"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Names of the bundled templates.
const (
	// SSHDConfig is the primary daemon configuration.
	SSHDConfig = "sshd_config.tmpl"
	// SshguardConfig is the intrusion prevention sidecar configuration.
	SshguardConfig = "sshguard_config.tmpl"
	// SshguardWhitelist is the sidecar's source allow-list.
	SshguardWhitelist = "sshguard_whitelist.tmpl"
)

var templates = template.Must(
	template.New("").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(templateFS, "templates/*.tmpl"),
)

// Renderer writes rendered templates to the filesystem.
type Renderer struct{}

// Render executes the named template with data and writes the result
// to path, creating parent directories as needed. The file is written
// atomically so the daemon never reads a half-rendered configuration.
func (r *Renderer) Render(path, name string, data any) error {
	var buffer bytes.Buffer
	if err := templates.ExecuteTemplate(&buffer, name, data); err != nil {
		return fmt.Errorf("rendering template %s: %w", name, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := atomicfile.WriteFile(path, buffer.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
