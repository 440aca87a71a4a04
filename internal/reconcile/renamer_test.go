// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/afterhash/afterhash/internal/outfs"
	"github.com/afterhash/afterhash/internal/testutil"
	"github.com/afterhash/afterhash/pkg/build"
)

func TestAssetRenamerRename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"js/app.aaaa.js": "load('app.aaaa.js')"})

	assets := build.NewMemoryAssetStore()
	assets.Set("js/app.aaaa.js", []byte("original"))

	r := &AssetRenamer{FS: outfs.NewDir(dir), Assets: assets, Patch: BoundedPatch}
	if err := r.Rename([]byte("load('app.aaaa.js')"), "js/app.aaaa.js", "js/app.bbbb.js", "js/app.aaaa.js", "js/app.bbbb.js"); err != nil {
		t.Fatalf("Rename() error: %v", err)
	}

	testutil.AssertNoFile(t, dir, "js/app.aaaa.js")
	testutil.AssertFile(t, dir, "js/app.bbbb.js", "load('app.bbbb.js')")

	if _, ok := assets.Get("js/app.aaaa.js"); ok {
		t.Error("old asset entry still present")
	}
	if got, ok := assets.Get("js/app.bbbb.js"); !ok || string(got) != "original" {
		t.Errorf("moved asset entry = %q, %v; want original payload", got, ok)
	}
}

func TestAssetRenamerRenameUnknownAsset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"a.js": "a.js"})

	assets := build.NewMemoryAssetStore()
	r := &AssetRenamer{FS: outfs.NewDir(dir), Assets: assets, Patch: PlainPatch}
	if err := r.Rename([]byte("a.js"), "a.js", "b.js", "a.js", "b.js"); err != nil {
		t.Fatalf("Rename() error: %v", err)
	}
	if got, ok := assets.Get("b.js"); !ok || string(got) != "b.js" {
		t.Errorf("asset entry = %q, %v; want patched payload", got, ok)
	}
}

func TestAssetRenamerRenameMissingSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := &AssetRenamer{FS: outfs.NewDir(dir), Assets: build.NewMemoryAssetStore(), Patch: BoundedPatch}

	err := r.Rename([]byte("x"), "gone.js", "new.js", "gone.js", "new.js")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Rename() error = %v, want fs.ErrNotExist", err)
	}
	testutil.AssertNoFile(t, dir, "new.js")
}
