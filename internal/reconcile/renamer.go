// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"fmt"

	"github.com/afterhash/afterhash/internal/outfs"
	"github.com/afterhash/afterhash/pkg/build"
)

// AssetRenamer moves one asset to a new name in both the output directory
// and the host's asset table.
type AssetRenamer struct {
	FS     outfs.FS
	Assets build.AssetStore
	Patch  PatchFunc
}

// Rename rewrites the self-references selfRefOld to selfRefNew inside
// payload, deletes oldName, writes the patched payload as newName and moves
// the asset table entry. The table entry keeps its original payload; a name
// the table did not know is added with the patched payload.
//
// Rename has no rollback. Callers must have validated newName before calling.
func (r *AssetRenamer) Rename(payload []byte, oldName, newName, selfRefOld, selfRefNew string) error {
	patched := []byte(patchSelfRefs(r.Patch, string(payload), selfRefOld, selfRefNew))

	if err := r.FS.Remove(oldName); err != nil {
		return fmt.Errorf("rename %s: %w", oldName, err)
	}
	if err := r.FS.WriteFile(newName, patched); err != nil {
		return fmt.Errorf("rename %s to %s: %w", oldName, newName, err)
	}

	if prev, ok := r.Assets.Get(oldName); ok {
		r.Assets.Set(newName, prev)
		r.Assets.Remove(oldName)
	} else {
		r.Assets.Set(newName, patched)
	}
	return nil
}
