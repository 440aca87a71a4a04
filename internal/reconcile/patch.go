// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

const (
	// PatchBounded replaces only occurrences not embedded in a longer word.
	PatchBounded PatchStrategy = "bounded"
	// PatchPlain replaces every substring occurrence.
	PatchPlain PatchStrategy = "plain"
)

// ErrUnknownPatchStrategy is returned for an unsupported PatchStrategy.
var ErrUnknownPatchStrategy = errors.New("unknown patch strategy")

type (
	// PatchFunc returns payload with occurrences of old replaced by replacement.
	// Every textual rewrite the reconciler performs goes through one.
	PatchFunc func(payload, old, replacement string) string

	// PatchStrategy names a PatchFunc.
	PatchStrategy string
)

// Func returns the PatchFunc for the strategy. The empty strategy is bounded.
func (s PatchStrategy) Func() (PatchFunc, error) {
	switch s {
	case PatchBounded, "":
		return BoundedPatch, nil
	case PatchPlain:
		return PlainPatch, nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: bounded, plain)", ErrUnknownPatchStrategy, s)
	}
}

// FingerprintFunc returns the PatchFunc used to substitute a bare
// fingerprint. Fingerprints are hex, so the bounded strategy only refuses
// matches that continue a longer hex run.
func (s PatchStrategy) FingerprintFunc() (PatchFunc, error) {
	switch s {
	case PatchBounded, "":
		return HexBoundedPatch, nil
	case PatchPlain:
		return PlainPatch, nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: bounded, plain)", ErrUnknownPatchStrategy, s)
	}
}

// PlainPatch replaces every occurrence of old.
func PlainPatch(payload, old, replacement string) string {
	if old == "" {
		return payload
	}
	return strings.ReplaceAll(payload, old, replacement)
}

// BoundedPatch replaces occurrences of old that are not glued to a word
// character on a side where old itself starts or ends with one. Replacing
// `5:"ab"` therefore leaves `15:"ab"` alone.
func BoundedPatch(payload, old, replacement string) string {
	return boundedPatch(payload, old, replacement, isWordByte)
}

// HexBoundedPatch replaces occurrences of old that are not glued to a hex
// digit. `app_abcdef12.js` matches abcdef12 while `abcdef1234` does not.
func HexBoundedPatch(payload, old, replacement string) string {
	return boundedPatch(payload, old, replacement, isHexByte)
}

func boundedPatch(payload, old, replacement string, word func(byte) bool) string {
	if old == "" {
		return payload
	}

	var b strings.Builder
	rest := payload
	for {
		i := strings.Index(rest, old)
		if i < 0 {
			b.WriteString(rest)
			break
		}
		abs := len(payload) - len(rest) + i
		if tokenAt(payload, abs, abs+len(old), word) {
			b.WriteString(rest[:i])
			b.WriteString(replacement)
			rest = rest[i+len(old):]
			continue
		}
		b.WriteString(rest[:i+1])
		rest = rest[i+1:]
	}
	return b.String()
}

// containsToken reports whether s contains tok as a whole token, ignoring case.
func containsToken(s, tok string) bool {
	if tok == "" {
		return false
	}
	s, tok = strings.ToLower(s), strings.ToLower(tok)
	for off := 0; ; {
		i := strings.Index(s[off:], tok)
		if i < 0 {
			return false
		}
		start := off + i
		if tokenAt(s, start, start+len(tok), isWordByte) {
			return true
		}
		off = start + 1
	}
}

// tokenAt reports whether s[start:end] is delimited on both sides.
func tokenAt(s string, start, end int, word func(byte) bool) bool {
	if start > 0 && word(s[start]) && word(s[start-1]) {
		return false
	}
	if end < len(s) && word(s[end-1]) && word(s[end]) {
		return false
	}
	return true
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' ||
		('0' <= c && c <= '9') ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z')
}

func isHexByte(c byte) bool {
	return ('0' <= c && c <= '9') ||
		('a' <= c && c <= 'f') ||
		('A' <= c && c <= 'F')
}

// patchSelfRefs rewrites references to an asset's own name. Assets in a
// subdirectory usually refer to siblings by base name, so the base names are
// rewritten as well when they differ from the full names.
func patchSelfRefs(patch PatchFunc, payload, oldName, newName string) string {
	payload = patch(payload, oldName, newName)
	oldBase, newBase := path.Base(oldName), path.Base(newName)
	if oldBase != oldName && oldBase != newBase {
		payload = patch(payload, oldBase, newBase)
	}
	return payload
}
