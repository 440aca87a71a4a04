// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"slices"
	"strings"

	"github.com/afterhash/afterhash/pkg/build"
	"github.com/afterhash/afterhash/pkg/template"
)

// DefaultScriptExtensions are the extensions treated as executable script output.
var DefaultScriptExtensions = []string{"js"}

// CandidateSelector decides which of a unit's files are renamed.
type CandidateSelector struct {
	// Extensions lists script extensions without the leading dot.
	Extensions []string
	// ManifestScript is the manifest script's filename; it and its map are
	// reconciled separately.
	ManifestScript string
	// Exists reports whether a file is present in the output directory.
	Exists func(name string) bool
}

// Select returns, in declaration order, the files of u that can be
// fingerprinted under t: script output that is neither a source map nor the
// manifest, whose name carries the unit's id or name as a token, and that
// was actually emitted. Templates without a content fingerprint select nothing.
func (s CandidateSelector) Select(u build.BuildUnit, t template.NamingTemplate) []string {
	if !t.Reconcilable() {
		return nil
	}

	var out []string
	for _, file := range u.Files {
		if s.eligible(u, file) {
			out = append(out, file)
		}
	}
	return out
}

func (s CandidateSelector) eligible(u build.BuildUnit, file string) bool {
	exts := s.Extensions
	if len(exts) == 0 {
		exts = DefaultScriptExtensions
	}
	if !slices.Contains(exts, FileExt(file)) {
		return false
	}
	if strings.HasSuffix(stripQuery(file), ".map") {
		return false
	}
	if s.ManifestScript != "" && (file == s.ManifestScript || file == s.ManifestScript+".map") {
		return false
	}
	if !containsToken(file, u.ID.String()) && !containsToken(file, u.Name) {
		return false
	}
	return s.Exists != nil && s.Exists(file)
}

// FileExt returns the last dot-delimited segment of name, ignoring a query
// string. A name without dots is returned whole.
func FileExt(name string) string {
	name = stripQuery(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

func stripQuery(name string) string {
	if i := strings.IndexByte(name, '?'); i >= 0 {
		return name[:i]
	}
	return name
}
