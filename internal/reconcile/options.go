// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"github.com/charmbracelet/log"
)

const (
	// DefaultManifestChunkName is the name of the unit holding the runtime manifest script.
	DefaultManifestChunkName = "manifest"
)

type (
	// Fingerprinter computes full content fingerprints.
	Fingerprinter interface {
		Compute(payload []byte) string
	}

	// Option configures a Reconciler.
	Option func(*Reconciler)
)

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *log.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFingerprinter sets the content fingerprint function. The default is MD5.
func WithFingerprinter(fp Fingerprinter) Option {
	return func(r *Reconciler) {
		if fp != nil {
			r.fingerprinter = fp
		}
	}
}

// WithPatch sets the textual substitution used for filename and manifest
// record rewrites.
// The default is BoundedPatch.
func WithPatch(fn PatchFunc) Option {
	return func(r *Reconciler) {
		if fn != nil {
			r.patch = fn
		}
	}
}

// WithFingerprintPatch sets the substitution used when a bare fingerprint is
// replaced inside JSON manifest values. The default is HexBoundedPatch.
func WithFingerprintPatch(fn PatchFunc) Option {
	return func(r *Reconciler) {
		if fn != nil {
			r.fingerprintPatch = fn
		}
	}
}

// WithManifestJSONName sets the JSON manifest filename. The default is "manifest.json".
func WithManifestJSONName(name string) Option {
	return func(r *Reconciler) {
		if name != "" {
			r.manifestJSONName = name
		}
	}
}

// WithManifestChunkName sets the name of the unit that emits the manifest script.
func WithManifestChunkName(name string) Option {
	return func(r *Reconciler) {
		if name != "" {
			r.manifestChunkName = name
		}
	}
}

// WithScriptExtensions sets the extensions treated as script output.
func WithScriptExtensions(exts ...string) Option {
	return func(r *Reconciler) {
		if len(exts) > 0 {
			r.scriptExtensions = exts
		}
	}
}
