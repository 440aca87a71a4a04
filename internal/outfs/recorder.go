// SPDX-License-Identifier: MPL-2.0

package outfs

import (
	"fmt"
	"io/fs"
	"sync"
)

const (
	// OpWrite records a WriteFile call.
	OpWrite OpKind = "write"
	// OpRemove records a Remove call.
	OpRemove OpKind = "remove"
)

type (
	// OpKind is the kind of a mutating file operation.
	OpKind string

	// Op is one mutating operation observed by a Recorder.
	Op struct {
		Kind OpKind
		Name string
		Size int
	}

	// Recorder wraps an FS and records every mutating operation. In dry-run
	// mode mutations are applied to an in-memory overlay instead of the
	// underlying FS, so reads observe the planned state without touching disk.
	Recorder struct {
		base    FS
		dryRun  bool
		mu      sync.Mutex
		ops     []Op
		written map[string][]byte
		removed map[string]bool
	}
)

// NewRecorder returns a Recorder that passes mutations through to base.
func NewRecorder(base FS) *Recorder {
	return &Recorder{base: base}
}

// NewDryRun returns a Recorder that never mutates base.
func NewDryRun(base FS) *Recorder {
	return &Recorder{
		base:    base,
		dryRun:  true,
		written: make(map[string][]byte),
		removed: make(map[string]bool),
	}
}

// ReadFile reads name from the overlay first, then from the base FS.
func (r *Recorder) ReadFile(name string) ([]byte, error) {
	if r.dryRun {
		r.mu.Lock()
		data, ok := r.written[name]
		gone := r.removed[name]
		r.mu.Unlock()
		if ok {
			return append([]byte(nil), data...), nil
		}
		if gone {
			return nil, fmt.Errorf("read %s: %w", name, fs.ErrNotExist)
		}
	}
	return r.base.ReadFile(name)
}

// WriteFile records the write and applies it.
func (r *Recorder) WriteFile(name string, data []byte) error {
	r.record(Op{Kind: OpWrite, Name: name, Size: len(data)})
	if !r.dryRun {
		return r.base.WriteFile(name, data)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.written[name] = append([]byte(nil), data...)
	delete(r.removed, name)
	return nil
}

// Remove records the deletion and applies it.
func (r *Recorder) Remove(name string) error {
	r.record(Op{Kind: OpRemove, Name: name})
	if !r.dryRun {
		return r.base.Remove(name)
	}

	if !r.Exists(name) {
		return fmt.Errorf("delete %s: %w", name, fs.ErrNotExist)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.written, name)
	r.removed[name] = true
	return nil
}

// Exists consults the overlay before the base FS.
func (r *Recorder) Exists(name string) bool {
	if r.dryRun {
		r.mu.Lock()
		_, ok := r.written[name]
		gone := r.removed[name]
		r.mu.Unlock()
		if ok {
			return true
		}
		if gone {
			return false
		}
	}
	return r.base.Exists(name)
}

// Ops returns a copy of the recorded operations in call order.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// DryRun reports whether mutations are withheld from the base FS.
func (r *Recorder) DryRun() bool { return r.dryRun }

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}
