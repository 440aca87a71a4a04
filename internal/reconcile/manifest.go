// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"fmt"
	"strings"

	"github.com/afterhash/afterhash/internal/manifestjson"
	"github.com/afterhash/afterhash/pkg/build"
	"github.com/afterhash/afterhash/pkg/fingerprint"
	"github.com/afterhash/afterhash/pkg/template"
)

// ManifestArtifacts holds the manifest files in memory for the duration of a
// run. They are read once, patched for every unit rename, and written back
// once their own names are settled.
type ManifestArtifacts struct {
	// Unit is the unit that emitted the manifest script.
	Unit build.BuildUnit

	ScriptName string
	Script     string
	HasScript  bool
	Map        string
	HasMap     bool

	JSON *manifestjson.Document

	scriptLoaded string
	mapLoaded    string
	jsonChanged  bool
}

// MapName returns the manifest script's source map filename.
func (a *ManifestArtifacts) MapName() string { return a.ScriptName + ".map" }

// scriptPattern is the manifest script's record of a unit fingerprint.
func scriptPattern(id build.UnitID, fp string) string {
	return id.String() + `:"` + fp + `"`
}

// mapPattern is scriptPattern as it appears escaped inside the source map.
func mapPattern(id build.UnitID, fp string) string {
	return id.String() + `:\"` + fp + `\"`
}

// jsonKeys are the JSON manifest keys conventionally naming a unit's script and map.
func jsonKeys(unitName string) []string {
	return []string{unitName + ".js", unitName + ".js.map"}
}

func (r *Reconciler) loadArtifacts() error {
	a := &ManifestArtifacts{}
	r.artifacts = a

	if unit, ok := r.comp.FindUnit(r.manifestChunkName); ok {
		a.Unit = unit
		for _, file := range unit.Files {
			if !strings.HasSuffix(file, ".map") {
				a.ScriptName = file
				break
			}
		}
	}

	if a.ScriptName != "" && r.fs.Exists(a.ScriptName) {
		data, err := r.fs.ReadFile(a.ScriptName)
		if err != nil {
			return err
		}
		a.Script, a.HasScript, a.scriptLoaded = string(data), true, string(data)

		if r.fs.Exists(a.MapName()) {
			data, err := r.fs.ReadFile(a.MapName())
			if err != nil {
				return err
			}
			a.Map, a.HasMap, a.mapLoaded = string(data), true, string(data)
		}
	}

	if r.fs.Exists(r.manifestJSONName) {
		data, err := r.fs.ReadFile(r.manifestJSONName)
		if err != nil {
			return err
		}
		doc, err := manifestjson.Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", r.manifestJSONName, err)
		}
		a.JSON = doc
		r.result.ManifestJSONBefore = data
	}

	r.logger.Debug("manifest artifacts loaded",
		"script", a.ScriptName, "has_script", a.HasScript, "has_map", a.HasMap,
		"json", r.manifestJSONName, "has_json", a.JSON != nil)
	return nil
}

func (r *Reconciler) reconcileManifest() error {
	for _, plan := range r.result.Plans {
		r.patchUnitReferences(plan)
	}
	return r.renameManifestScript()
}

// patchUnitReferences replaces a unit's old fingerprint with its new one in
// every loaded manifest artifact.
func (r *Reconciler) patchUnitReferences(plan RenamePlan) {
	a := r.artifacts
	if a.HasScript {
		a.Script = r.patch(a.Script, scriptPattern(plan.UnitID, plan.OldFingerprint), scriptPattern(plan.UnitID, plan.NewFingerprint))
		if a.HasMap {
			a.Map = r.patch(a.Map, mapPattern(plan.UnitID, plan.OldFingerprint), mapPattern(plan.UnitID, plan.NewFingerprint))
		}
	}
	if a.JSON != nil {
		if a.JSON.Rewrite(jsonKeys(plan.UnitName), func(v string) string {
			return r.fingerprintPatch(v, plan.OldFingerprint, plan.NewFingerprint)
		}) {
			a.jsonChanged = true
		}
	}
	r.logger.Debug("patched manifest references", "unit", plan.UnitID, "from", plan.OldFingerprint, "to", plan.NewFingerprint)
}

// renameManifestScript fingerprints the patched manifest script and renames
// it and its map with the non-entry template. When the name cannot or need
// not change, patched payloads are written in place.
func (r *Reconciler) renameManifestScript() error {
	a := r.artifacts
	if !a.HasScript {
		return nil
	}

	t := r.comp.Templates.NonEntry
	newName := a.ScriptName
	var newFingerprint string
	if t.Reconcilable() {
		ext := FileExt(a.ScriptName)
		newFingerprint = fingerprint.Truncate(r.contentFingerprint([]byte(a.Script), a.ScriptName, t, a.Unit, ext), t.TruncateLength)
		newName = t.Render(template.Fields{ID: a.Unit.ID.String(), Name: a.Unit.Name, Fingerprint: newFingerprint, Ext: ext})
	}

	if newName == a.ScriptName {
		return r.writeManifestInPlace()
	}

	if err := r.claim(a.ScriptName, newName); err != nil {
		return err
	}
	if a.HasMap {
		if err := r.claim(a.MapName(), newName+".map"); err != nil {
			return err
		}
	}

	oldName := a.ScriptName
	if err := r.renamer.Rename([]byte(a.Script), oldName, newName, oldName, newName); err != nil {
		return err
	}
	plan := &RenamePlan{
		UnitID:         a.Unit.ID,
		UnitName:       a.Unit.Name,
		OldFilename:    oldName,
		NewFilename:    newName,
		OldFingerprint: fingerprint.Truncate(a.Unit.PreEmitFingerprint, t.TruncateLength),
		NewFingerprint: newFingerprint,
	}
	if a.HasMap {
		if err := r.renamer.Rename([]byte(a.Map), a.MapName(), newName+".map", oldName, newName); err != nil {
			return err
		}
		plan.OldMap, plan.NewMap = a.MapName(), newName+".map"
	}
	r.result.Manifest = plan
	r.logger.Info("renamed manifest script", "from", oldName, "to", newName)

	if a.JSON != nil {
		if a.JSON.Rewrite(jsonKeys(r.manifestChunkName), func(v string) string {
			return r.patch(v, oldName, newName)
		}) {
			a.jsonChanged = true
		}
	}
	a.ScriptName = newName
	return nil
}

// writeManifestInPlace persists patched manifest payloads under their
// current names. Unchanged payloads are not written.
func (r *Reconciler) writeManifestInPlace() error {
	a := r.artifacts
	for _, f := range []struct {
		name, payload, loaded string
		present               bool
	}{
		{a.ScriptName, a.Script, a.scriptLoaded, a.HasScript},
		{a.MapName(), a.Map, a.mapLoaded, a.HasMap},
	} {
		if !f.present || f.payload == f.loaded {
			continue
		}
		if err := r.fs.WriteFile(f.name, []byte(f.payload)); err != nil {
			return err
		}
		r.comp.Assets.Set(f.name, []byte(f.payload))
		r.logger.Debug("rewrote manifest artifact in place", "file", f.name)
	}
	return nil
}

// flushManifestJSON replaces the JSON manifest on disk when any value changed.
// The stale file is deleted before the new one is written.
func (r *Reconciler) flushManifestJSON() error {
	doc := r.artifacts.JSON
	if doc == nil {
		return nil
	}

	encoded, err := doc.Marshal()
	if err != nil {
		return err
	}
	r.result.ManifestJSONAfter = encoded
	if !r.artifacts.jsonChanged {
		return nil
	}

	if r.fs.Exists(r.manifestJSONName) {
		if err := r.fs.Remove(r.manifestJSONName); err != nil {
			return err
		}
	}
	if err := r.fs.WriteFile(r.manifestJSONName, encoded); err != nil {
		return err
	}
	if _, ok := r.comp.Assets.Get(r.manifestJSONName); ok {
		r.comp.Assets.Set(r.manifestJSONName, encoded)
	}
	r.result.ManifestJSONWritten = true
	r.logger.Info("wrote JSON manifest", "file", r.manifestJSONName, "keys", doc.Len())
	return nil
}
