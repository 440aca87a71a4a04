// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"sync"
	"testing"

	"github.com/afterhash/afterhash/internal/outfs"
	"github.com/afterhash/afterhash/internal/testutil"
	"github.com/afterhash/afterhash/pkg/build"
	"github.com/afterhash/afterhash/pkg/template"
)

// fakeFingerprinter maps payloads to fixed fingerprints and records every
// payload it is asked to fingerprint.
type fakeFingerprinter struct {
	mu       sync.Mutex
	byInput  map[string]string
	fallback string
	seen     []string
}

func (f *fakeFingerprinter) Compute(payload []byte) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, string(payload))
	if fp, ok := f.byInput[string(payload)]; ok {
		return fp
	}
	return f.fallback
}

func (f *fakeFingerprinter) sawPayload(p string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.seen {
		if s == p {
			return true
		}
	}
	return false
}

// fixture is an output directory plus the compilation describing it.
type fixture struct {
	dir      string
	comp     *build.Compilation
	recorder *outfs.Recorder
}

func newFixture(t *testing.T, entry, nonEntry string, units []build.BuildUnit, files map[string]string) *fixture {
	t.Helper()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, files)

	assets := build.NewMemoryAssetStore()
	for name, content := range files {
		assets.Set(name, []byte(content))
	}

	return &fixture{
		dir: dir,
		comp: &build.Compilation{
			OutputPath: dir,
			Templates: build.NamingTemplates{
				Entry:    template.Parse(entry),
				NonEntry: template.Parse(nonEntry),
			},
			Units:  units,
			Assets: assets,
		},
		recorder: outfs.NewRecorder(outfs.NewDir(dir)),
	}
}

func (f *fixture) reconciler(t *testing.T, opts ...Option) *Reconciler {
	t.Helper()
	r, err := New(f.comp, f.recorder, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return r
}

func (f *fixture) assets() *build.MemoryAssetStore {
	return f.comp.Assets.(*build.MemoryAssetStore)
}
