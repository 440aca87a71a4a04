// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/afterhash/afterhash/internal/manifestjson"
	"github.com/afterhash/afterhash/internal/outfs"
	"github.com/afterhash/afterhash/pkg/build"
	"github.com/afterhash/afterhash/pkg/fingerprint"
	"github.com/afterhash/afterhash/pkg/template"
)

type (
	// RenamePlan records one applied rename. Plans are only produced for
	// files whose name actually changes.
	RenamePlan struct {
		UnitID         build.UnitID
		UnitName       string
		OldFilename    string
		NewFilename    string
		OldFingerprint string
		NewFingerprint string
		// OldMap and NewMap name the companion source map, when one was renamed.
		OldMap string
		NewMap string
	}

	// Result summarizes a run.
	Result struct {
		Plans []RenamePlan
		// Manifest is the manifest script's own rename, if any.
		Manifest *RenamePlan
		// SkippedUnits counts units whose template has no content fingerprint.
		SkippedUnits int
		// ManifestJSONBefore and ManifestJSONAfter hold the encoded JSON
		// manifest around the run. Both are nil when no manifest was loaded.
		ManifestJSONBefore  []byte
		ManifestJSONAfter   []byte
		ManifestJSONWritten bool
	}

	// Reconciler performs a single reconciliation run over a Compilation.
	// A file's content fingerprint is computed with references to its own
	// name replaced by the template placeholder, so it differs from a plain
	// hash of the bytes on disk whenever the file names itself.
	// A Reconciler is single-use and not safe for concurrent use.
	Reconciler struct {
		comp   *build.Compilation
		fs     outfs.FS
		logger *log.Logger

		fingerprinter     Fingerprinter
		patch             PatchFunc
		fingerprintPatch  PatchFunc
		manifestJSONName  string
		manifestChunkName string
		scriptExtensions  []string

		phase     Phase
		renamer   *AssetRenamer
		artifacts *ManifestArtifacts
		claimed   map[string]string
		result    *Result
	}
)

// New creates a Reconciler for comp whose output directory is accessed through fsys.
func New(comp *build.Compilation, fsys outfs.FS, opts ...Option) (*Reconciler, error) {
	if comp == nil {
		return nil, errors.New("reconcile: nil compilation")
	}
	if fsys == nil {
		return nil, errors.New("reconcile: nil output filesystem")
	}

	defaultFingerprinter, err := fingerprint.New(fingerprint.DefaultAlgorithm)
	if err != nil {
		return nil, err
	}

	r := &Reconciler{
		comp:              comp,
		fs:                fsys,
		logger:            log.New(io.Discard),
		fingerprinter:     defaultFingerprinter,
		patch:             BoundedPatch,
		fingerprintPatch:  HexBoundedPatch,
		manifestJSONName:  manifestjson.DefaultName,
		manifestChunkName: DefaultManifestChunkName,
		scriptExtensions:  DefaultScriptExtensions,
		claimed:           make(map[string]string),
		result:            &Result{},
	}
	for _, opt := range opts {
		opt(r)
	}

	r.renamer = &AssetRenamer{FS: fsys, Assets: comp.Assets, Patch: r.patch}
	return r, nil
}

// Phase returns the current phase.
func (r *Reconciler) Phase() Phase { return r.phase }

// Run executes the whole reconciliation. It either completes or stops at
// the first fatal error; renames applied before the error are not undone.
// The context is only consulted before any work starts.
func (r *Reconciler) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reconcile canceled: %w", err)
	}
	if r.phase != PhaseIdle {
		return nil, &InvalidPhaseError{From: r.phase, To: PhaseParseTemplates}
	}

	steps := []struct {
		phase Phase
		run   func() error
	}{
		{PhaseParseTemplates, r.parseTemplates},
		{PhaseLoadArtifacts, r.loadArtifacts},
		{PhaseReconcileUnits, r.reconcileUnits},
		{PhaseReconcileManifest, r.reconcileManifest},
		{PhaseFlushManifestJSON, r.flushManifestJSON},
		{PhaseDone, func() error { return nil }},
	}

	for _, step := range steps {
		if err := r.advance(step.phase); err != nil {
			return r.result, err
		}
		if err := step.run(); err != nil {
			r.fail()
			r.logger.Error("reconciliation failed", "phase", step.phase, "err", err)
			return r.result, err
		}
	}

	r.logger.Info("reconciliation complete",
		"renamed", len(r.result.Plans),
		"manifest_renamed", r.result.Manifest != nil,
		"manifest_json_written", r.result.ManifestJSONWritten,
		"skipped_units", r.result.SkippedUnits,
	)
	return r.result, nil
}

func (r *Reconciler) advance(to Phase) error {
	if err := r.phase.next(to); err != nil {
		return err
	}
	r.logger.Debug("entering phase", "phase", to)
	r.phase = to
	return nil
}

func (r *Reconciler) fail() {
	if !r.phase.IsTerminal() {
		r.phase = PhaseFailed
	}
}

func (r *Reconciler) parseTemplates() error {
	for _, class := range []struct {
		name string
		t    template.NamingTemplate
	}{
		{"entry", r.comp.Templates.Entry},
		{"non-entry", r.comp.Templates.NonEntry},
	} {
		if !class.t.Reconcilable() {
			r.logger.Debug("template has no content fingerprint; its units are left as emitted",
				"class", class.name, "template", class.t.Raw, "placeholder", class.t.Kind)
		}
	}
	return nil
}

func (r *Reconciler) reconcileUnits() error {
	selector := CandidateSelector{
		Extensions:     r.scriptExtensions,
		ManifestScript: r.artifacts.ScriptName,
		Exists:         r.fs.Exists,
	}

	for _, u := range r.comp.Units {
		if u.Name == r.manifestChunkName {
			continue
		}
		t := r.comp.Templates.For(u)
		if !t.Reconcilable() {
			r.result.SkippedUnits++
			continue
		}

		for _, file := range selector.Select(u, t) {
			plan, err := r.reconcileFile(u, t, file)
			if err != nil {
				return err
			}
			if plan != nil {
				r.result.Plans = append(r.result.Plans, *plan)
			}
		}
	}
	return nil
}

// reconcileFile renames one candidate and its source map. It returns nil
// without touching anything when the content fingerprint yields the same name.
func (r *Reconciler) reconcileFile(u build.BuildUnit, t template.NamingTemplate, file string) (*RenamePlan, error) {
	payload, err := r.fs.ReadFile(file)
	if err != nil {
		return nil, err
	}

	ext := FileExt(file)
	newFingerprint := fingerprint.Truncate(r.contentFingerprint(payload, file, t, u, ext), t.TruncateLength)
	newName := t.Render(template.Fields{ID: u.ID.String(), Name: u.Name, Fingerprint: newFingerprint, Ext: ext})
	if newName == file {
		r.logger.Debug("fingerprint unchanged", "unit", u.ID, "file", file)
		return nil, nil
	}

	plan := &RenamePlan{
		UnitID:         u.ID,
		UnitName:       u.Name,
		OldFilename:    file,
		NewFilename:    newName,
		OldFingerprint: fingerprint.Truncate(u.PreEmitFingerprint, t.TruncateLength),
		NewFingerprint: newFingerprint,
	}

	mapName := file + ".map"
	hasMap := r.fs.Exists(mapName)
	if err := r.claim(file, newName); err != nil {
		return nil, err
	}
	if hasMap {
		if err := r.claim(mapName, newName+".map"); err != nil {
			return nil, err
		}
	}

	if err := r.renamer.Rename(payload, file, newName, file, newName); err != nil {
		return nil, err
	}
	r.logger.Info("renamed", "unit", u.ID, "from", file, "to", newName)

	if hasMap {
		mapPayload, err := r.fs.ReadFile(mapName)
		if err != nil {
			return nil, err
		}
		if err := r.renamer.Rename(mapPayload, mapName, newName+".map", file, newName); err != nil {
			return nil, err
		}
		plan.OldMap, plan.NewMap = mapName, newName+".map"
		r.logger.Debug("renamed source map", "unit", u.ID, "from", mapName, "to", plan.NewMap)
	}

	return plan, nil
}

// contentFingerprint hashes payload with references to its own name
// neutralized, so that rewriting those references after a rename does not
// change the fingerprint. This keeps a second run from renaming again.
func (r *Reconciler) contentFingerprint(payload []byte, name string, t template.NamingTemplate, u build.BuildUnit, ext string) string {
	neutral := t.Render(template.Fields{ID: u.ID.String(), Name: u.Name, Fingerprint: "[" + template.KindContent.String() + "]", Ext: ext})
	return r.fingerprinter.Compute([]byte(patchSelfRefs(r.patch, string(payload), name, neutral)))
}

// claim reserves newName for oldName, failing if another asset already
// holds or has claimed it.
func (r *Reconciler) claim(oldName, newName string) error {
	if holder, ok := r.claimed[newName]; ok && holder != oldName {
		return &RenameCollisionError{From: oldName, To: newName, Holder: holder}
	}
	if _, ok := r.comp.Assets.Get(newName); ok {
		return &RenameCollisionError{From: oldName, To: newName, Holder: "asset table entry " + newName}
	}
	if r.fs.Exists(newName) {
		return &RenameCollisionError{From: oldName, To: newName, Holder: "existing file " + newName}
	}
	r.claimed[newName] = oldName
	return nil
}
