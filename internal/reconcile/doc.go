// SPDX-License-Identifier: MPL-2.0

// Package reconcile renames emitted assets whose names carry a pre-emit
// fingerprint so that the name matches a fingerprint of the actual content,
// and propagates every rename into the artifacts that reference it: source
// maps, the runtime manifest script and its map, and the JSON manifest.
//
// A run moves through a fixed sequence of phases (see Phase). All unit
// renames complete before the manifest artifacts are patched, because the
// manifest records fingerprints for every unit at once.
package reconcile
