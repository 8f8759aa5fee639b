// Copyright (C) 2026 VyOS maintainers and contributors
// SPDX-License-Identifier: GPL-2.0-or-later

// Package configtree provides read access to the declared configuration
// tree. The tree is produced by the configuration daemon with schema
// defaults already merged; this package treats it as an opaque nested
// mapping addressed by path segments.
//
// FileStore reads the tree from a YAML document. It backs both the
// test fixtures and the CLI's --config-tree mode, where the running
// configuration has been exported to a file.
package configtree

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Store is the read-only view of the declared configuration.
type Store interface {
	// Exists reports whether the node at the given path is present.
	Exists(path ...string) bool

	// Decode unmarshals the subtree at the given path into out. A
	// missing path leaves out unchanged and returns nil, so callers
	// distinguish absence with Exists.
	Decode(out any, path ...string) error
}

// FileStore is a Store backed by a YAML document.
type FileStore struct {
	root map[string]any
}

// LoadFile reads a configuration tree from a YAML file.
func LoadFile(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config tree: %w", err)
	}
	return Parse(data)
}

// Parse reads a configuration tree from YAML bytes.
func Parse(data []byte) (*FileStore, error) {
	root := make(map[string]any)
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing config tree: %w", err)
	}
	return &FileStore{root: root}, nil
}

// lookup walks the nested mapping along path. The second return value
// reports whether every segment was present.
func (s *FileStore) lookup(path []string) (any, bool) {
	var node any = s.root
	for _, segment := range path {
		mapping, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		child, ok := mapping[segment]
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

// Exists reports whether the node at path is present in the tree.
func (s *FileStore) Exists(path ...string) bool {
	_, ok := s.lookup(path)
	return ok
}

// Decode unmarshals the subtree at path into out by round-tripping it
// through YAML. Struct tags on out select and rename fields the same
// way they would against the original document.
func (s *FileStore) Decode(out any, path ...string) error {
	node, ok := s.lookup(path)
	if !ok {
		return nil
	}
	encoded, err := yaml.Marshal(node)
	if err != nil {
		return fmt.Errorf("encoding subtree: %w", err)
	}
	if err := yaml.Unmarshal(encoded, out); err != nil {
		return fmt.Errorf("decoding subtree at %v: %w", path, err)
	}
	return nil
}
