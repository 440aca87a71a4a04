// SPDX-License-Identifier: MPL-2.0

// Package template parses output naming templates and renders filenames from them.
//
// A naming template is the bundler's filename pattern for emitted units, for
// example "[name].[chunkhash:8].js". Three placeholders are recognized:
//   - [id]: the unit identifier
//   - [name]: the unit name
//   - [hash] or [chunkhash], optionally followed by ":<digits>" to truncate
//
// Only [chunkhash] encodes the content of the emitted file, so only templates
// carrying it can be reconciled after emit.
package template

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

const (
	// KindNone means the template has no fingerprint placeholder.
	KindNone FingerprintKind = iota
	// KindStructural is the build-wide [hash] placeholder.
	KindStructural
	// KindContent is the per-unit [chunkhash] placeholder.
	KindContent
)

// NoTruncation is the TruncateLength of a placeholder without ":<digits>".
const NoTruncation = -1

// fingerprintPattern captures the placeholder kind and its optional length.
var fingerprintPattern = regexp.MustCompile(`(?i)\[((?:chunk)?hash)(?::(\d+))?\]`)

// ErrEmptyTemplate is returned when a NamingTemplate has no raw pattern.
var ErrEmptyTemplate = errors.New("empty naming template")

type (
	// FingerprintKind classifies the fingerprint placeholder of a template.
	FingerprintKind int

	// NamingTemplate is a parsed output naming template. It is immutable once parsed.
	NamingTemplate struct {
		// Raw is the template exactly as configured.
		Raw string
		// Kind is the fingerprint placeholder kind found in Raw.
		Kind FingerprintKind
		// TruncateLength is the ":<digits>" suffix of the placeholder, or NoTruncation.
		TruncateLength int
	}

	// Fields are the values substituted into a template by Render.
	Fields struct {
		ID          string
		Name        string
		Fingerprint string
		// Ext replaces the template's last dot-delimited segment when non-empty.
		Ext string
	}
)

// String returns the placeholder spelling of the kind.
func (k FingerprintKind) String() string {
	switch k {
	case KindStructural:
		return "hash"
	case KindContent:
		return "chunkhash"
	default:
		return "none"
	}
}

// Parse extracts the fingerprint placeholder semantics from raw. A template
// without a placeholder is valid and yields KindNone.
func Parse(raw string) NamingTemplate {
	t := NamingTemplate{Raw: raw, Kind: KindNone, TruncateLength: NoTruncation}

	m := fingerprintPattern.FindStringSubmatch(raw)
	if m == nil {
		return t
	}

	if strings.EqualFold(m[1], "chunkhash") {
		t.Kind = KindContent
	} else {
		t.Kind = KindStructural
	}

	if m[2] != "" {
		if n, err := strconv.Atoi(m[2]); err == nil {
			t.TruncateLength = n
		}
	}

	return t
}

// Reconcilable reports whether filenames produced by the template embed a
// content fingerprint.
func (t NamingTemplate) Reconcilable() bool {
	return t.Kind == KindContent
}

// Validate returns ErrEmptyTemplate for a whitespace-only template.
func (t NamingTemplate) Validate() error {
	if strings.TrimSpace(t.Raw) == "" {
		return ErrEmptyTemplate
	}
	return nil
}

// Render produces a filename from the template. The extension segment is
// swapped for f.Ext first, then [id] and [name] are substituted, and finally
// the first content fingerprint placeholder is replaced with f.Fingerprint.
// The fingerprint is inserted verbatim; callers truncate it beforehand.
func (t NamingTemplate) Render(f Fields) string {
	out := t.Raw
	if f.Ext != "" {
		if i := strings.LastIndex(out, "."); i >= 0 {
			out = out[:i+1] + f.Ext
		} else {
			out = out + "." + f.Ext
		}
	}

	out = strings.ReplaceAll(out, "[id]", f.ID)
	out = strings.ReplaceAll(out, "[name]", f.Name)

	replaced := false
	return fingerprintPattern.ReplaceAllStringFunc(out, func(match string) string {
		sub := fingerprintPattern.FindStringSubmatch(match)
		if replaced || !strings.EqualFold(sub[1], "chunkhash") {
			return match
		}
		replaced = true
		return f.Fingerprint
	})
}
