// SPDX-License-Identifier: MPL-2.0

// Package outfs provides the output-directory file operations the reconciler
// performs. Names are always relative to the output directory.
package outfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type (
	// FS reads, writes and deletes files inside one output directory.
	FS interface {
		ReadFile(name string) ([]byte, error)
		WriteFile(name string, data []byte) error
		Remove(name string) error
		Exists(name string) bool
	}

	// Dir is an FS backed by a directory on disk.
	Dir struct {
		root string
		perm os.FileMode
	}
)

// NewDir returns an FS rooted at root. Written files get mode 0o644.
func NewDir(root string) *Dir {
	return &Dir{root: root, perm: 0o644}
}

// Root returns the directory the FS is rooted at.
func (d *Dir) Root() string { return d.root }

// Path returns the on-disk path for name.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, filepath.FromSlash(name))
}

// ReadFile returns the contents of name.
func (d *Dir) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(d.Path(name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// WriteFile writes data to name, creating parent directories as needed.
func (d *Dir) WriteFile(name string, data []byte) error {
	path := d.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.WriteFile(path, data, d.perm); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Remove deletes name. Removing a missing file is an error.
func (d *Dir) Remove(name string) error {
	if err := os.Remove(d.Path(name)); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Exists reports whether name is a regular file.
func (d *Dir) Exists(name string) bool {
	info, err := os.Stat(d.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return err == nil && !info.IsDir()
}
