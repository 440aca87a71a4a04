// SPDX-License-Identifier: MPL-2.0

package build

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/afterhash/afterhash/pkg/template"
)

const jsoncDescription = `{
	// emitted by the production build
	"outputPath": "dist",
	"output": {
		"filename": "[name].[chunkhash:8].js",
		"chunkFilename": "[id].[chunkhash:8].js",
	},
	"chunks": [
		{"id": 5, "names": ["app"], "hash": "abcdef1234567890", "files": ["app.abcdef12.js", "app.abcdef12.js.map"], "entry": true},
		{"id": "vendors~app", "name": "vendors", "hash": "0011223344556677", "files": ["vendors~app.00112233.js"]},
	],
}`

const yamlDescription = `
outputPath: /srv/www/dist
output:
  filename: "[name].[chunkhash:8].js"
  chunkFilename: "[id].[chunkhash:8].js"
chunks:
  - id: 5
    names: [app]
    hash: abcdef1234567890
    files: [app.abcdef12.js]
    entry: true
`

func TestParseDescriptionJSONC(t *testing.T) {
	t.Parallel()

	d, err := ParseDescription([]byte(jsoncDescription), ".jsonc")
	if err != nil {
		t.Fatalf("ParseDescription() error: %v", err)
	}

	want := []ChunkDescription{
		{ID: "5", Names: []string{"app"}, Hash: "abcdef1234567890", Files: []string{"app.abcdef12.js", "app.abcdef12.js.map"}, Entry: true},
		{ID: "vendors~app", Name: "vendors", Hash: "0011223344556677", Files: []string{"vendors~app.00112233.js"}},
	}
	if diff := cmp.Diff(want, d.Chunks); diff != "" {
		t.Errorf("chunks mismatch (-want +got):\n%s", diff)
	}
	if d.Chunks[1].UnitName() != "vendors" {
		t.Errorf("UnitName() = %q, want vendors", d.Chunks[1].UnitName())
	}
}

func TestParseDescriptionYAML(t *testing.T) {
	t.Parallel()

	d, err := ParseDescription([]byte(yamlDescription), ".yml")
	if err != nil {
		t.Fatalf("ParseDescription() error: %v", err)
	}
	if d.OutputPath != "/srv/www/dist" {
		t.Errorf("OutputPath = %q", d.OutputPath)
	}
	if len(d.Chunks) != 1 || d.Chunks[0].ID != "5" || !d.Chunks[0].Entry {
		t.Errorf("unexpected chunks: %+v", d.Chunks)
	}
}

func TestParseDescriptionErrors(t *testing.T) {
	t.Parallel()

	if _, err := ParseDescription([]byte("{}"), ".toml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := ParseDescription([]byte(`{"chunks":[{"id":true}]}`), ".json"); err == nil {
		t.Error("expected error for boolean unit id")
	}
	if _, err := ParseDescription([]byte("chunks:\n  - id: [1, 2]\n"), ".yaml"); err == nil {
		t.Error("expected error for sequence unit id")
	}
}

func TestDescriptionCompilation(t *testing.T) {
	t.Parallel()

	d, err := ParseDescription([]byte(jsoncDescription), ".json")
	if err != nil {
		t.Fatalf("ParseDescription() error: %v", err)
	}

	c, err := d.Compilation(CompileOptions{BaseDir: "/project"})
	if err != nil {
		t.Fatalf("Compilation() error: %v", err)
	}
	if c.OutputPath != filepath.Join("/project", "dist") {
		t.Errorf("OutputPath = %q", c.OutputPath)
	}
	if c.Templates.Entry.Kind != template.KindContent || c.Templates.Entry.TruncateLength != 8 {
		t.Errorf("unexpected entry template: %+v", c.Templates.Entry)
	}

	want := []BuildUnit{
		{ID: "5", Name: "app", PreEmitFingerprint: "abcdef1234567890", Files: []string{"app.abcdef12.js", "app.abcdef12.js.map"}, IsEntry: true},
		{ID: "vendors~app", Name: "vendors", PreEmitFingerprint: "0011223344556677", Files: []string{"vendors~app.00112233.js"}},
	}
	if diff := cmp.Diff(want, c.Units); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
	if got := c.Templates.For(c.Units[1]); got.Raw != "[id].[chunkhash:8].js" {
		t.Errorf("For(non-entry) = %q", got.Raw)
	}
	if u, ok := c.FindUnit("vendors"); !ok || u.ID != "vendors~app" {
		t.Errorf("FindUnit(vendors) = %+v, %v", u, ok)
	}
}

func TestDescriptionCompilationFallbacks(t *testing.T) {
	t.Parallel()

	d := &Description{Chunks: []ChunkDescription{{ID: "1", Name: "app"}}}

	if _, err := d.Compilation(CompileOptions{}); err == nil {
		t.Fatal("expected error without output path and templates")
	}

	c, err := d.Compilation(CompileOptions{
		OutputPath:       "/out",
		EntryTemplate:    "[name].[chunkhash].js",
		NonEntryTemplate: "[id].[hash].js",
	})
	if err != nil {
		t.Fatalf("Compilation() error: %v", err)
	}
	if c.OutputPath != "/out" {
		t.Errorf("OutputPath = %q, want /out", c.OutputPath)
	}
	if c.Templates.NonEntry.Kind != template.KindStructural {
		t.Errorf("NonEntry kind = %s, want hash", c.Templates.NonEntry.Kind)
	}
}

func TestCompilationValidateUnitID(t *testing.T) {
	t.Parallel()

	c := &Compilation{
		OutputPath: "/out",
		Templates:  NamingTemplates{Entry: template.Parse("[name].js"), NonEntry: template.Parse("[id].js")},
		Units:      []BuildUnit{{ID: ""}},
		Assets:     NewMemoryAssetStore(),
	}
	err := c.Validate()
	if !errors.Is(err, ErrInvalidUnitID) {
		t.Fatalf("Validate() = %v, want ErrInvalidUnitID", err)
	}
	var idErr *InvalidUnitIDError
	if !errors.As(err, &idErr) {
		t.Errorf("error should be *InvalidUnitIDError, got %T", err)
	}
}

func TestSeedAssets(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"app.abcdef12.js":     {Data: []byte("app")},
		"app.abcdef12.js.map": {Data: []byte("map")},
		"manifest.json":       {Data: []byte("{}")},
	}
	units := []BuildUnit{
		{ID: "5", Name: "app", Files: []string{"app.abcdef12.js", "app.abcdef12.js.map", "never-emitted.js"}},
	}

	store := NewMemoryAssetStore()
	if err := SeedAssets(store, fsys, units, "manifest.json"); err != nil {
		t.Fatalf("SeedAssets() error: %v", err)
	}

	want := []string{"app.abcdef12.js", "app.abcdef12.js.map", "manifest.json"}
	if diff := cmp.Diff(want, store.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if p, _ := store.Get("app.abcdef12.js"); string(p) != "app" {
		t.Errorf("payload = %q, want app", p)
	}
}

func TestLoadDescription(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stats.yaml")
	if err := os.WriteFile(path, []byte(yamlDescription), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := LoadDescription(path)
	if err != nil {
		t.Fatalf("LoadDescription() error: %v", err)
	}
	if len(d.Chunks) != 1 {
		t.Errorf("expected 1 chunk, got %d", len(d.Chunks))
	}

	if _, err := LoadDescription(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
