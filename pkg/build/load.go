// SPDX-License-Identifier: MPL-2.0

package build

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/afterhash/afterhash/pkg/template"
)

// ErrUnsupportedFormat is returned for build descriptions with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported build description format")

type (
	// Description is the on-disk build description a bundler writes after
	// emit. Its layout follows the bundler stats format so stats files can be
	// consumed directly.
	Description struct {
		OutputPath string             `json:"outputPath" yaml:"outputPath"`
		Output     OutputDescription  `json:"output" yaml:"output"`
		Chunks     []ChunkDescription `json:"chunks" yaml:"chunks"`
	}

	// OutputDescription carries the configured naming templates.
	OutputDescription struct {
		Filename      string `json:"filename" yaml:"filename"`
		ChunkFilename string `json:"chunkFilename" yaml:"chunkFilename"`
	}

	// ChunkDescription is one emitted unit as recorded in the description.
	ChunkDescription struct {
		ID    UnitID   `json:"id" yaml:"id"`
		Names []string `json:"names,omitempty" yaml:"names,omitempty"`
		Name  string   `json:"name,omitempty" yaml:"name,omitempty"`
		Hash  string   `json:"hash" yaml:"hash"`
		Files []string `json:"files" yaml:"files"`
		Entry bool     `json:"entry" yaml:"entry"`
	}

	// CompileOptions adjusts how a Description becomes a Compilation.
	CompileOptions struct {
		// BaseDir resolves a relative OutputPath. Usually the description's directory.
		BaseDir string
		// OutputPath overrides the description's output path when set.
		OutputPath string
		// EntryTemplate and NonEntryTemplate are used when the description
		// does not carry its own templates.
		EntryTemplate    string
		NonEntryTemplate string
	}
)

// UnmarshalJSON accepts both numeric and string ids.
func (id *UnitID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UnitID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil || n == "" {
		return fmt.Errorf("unit id must be a number or string, got %s", data)
	}
	*id = UnitID(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar id.
func (id *UnitID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return fmt.Errorf("line %d: unit id must be a scalar", node.Line)
	}
	*id = UnitID(node.Value)
	return nil
}

// UnitName returns the chunk's first name, falling back to Name.
func (c ChunkDescription) UnitName() string {
	if len(c.Names) > 0 {
		return c.Names[0]
	}
	return c.Name
}

// LoadDescription reads a build description. Files ending in .yaml or .yml
// are parsed as YAML; .json and .jsonc are parsed as JSON after comments and
// trailing commas are stripped.
func LoadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read build description: %w", err)
	}
	return ParseDescription(data, filepath.Ext(path))
}

// ParseDescription decodes data according to the file extension ext.
func ParseDescription(data []byte, ext string) (*Description, error) {
	var d Description
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("parse build description: %w", err)
		}
	case ".json", ".jsonc", "":
		if err := json.Unmarshal(jsonc.ToJSON(data), &d); err != nil {
			return nil, fmt.Errorf("parse build description: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return &d, nil
}

// Compilation converts the description into a Compilation with an empty
// asset table. Use SeedAssets to populate the table from the output directory.
func (d *Description) Compilation(opts CompileOptions) (*Compilation, error) {
	outputPath := d.OutputPath
	if opts.OutputPath != "" {
		outputPath = opts.OutputPath
	}
	if outputPath != "" && !filepath.IsAbs(outputPath) && opts.BaseDir != "" {
		outputPath = filepath.Join(opts.BaseDir, outputPath)
	}

	entry := d.Output.Filename
	if entry == "" {
		entry = opts.EntryTemplate
	}
	nonEntry := d.Output.ChunkFilename
	if nonEntry == "" {
		nonEntry = opts.NonEntryTemplate
	}

	c := &Compilation{
		OutputPath: outputPath,
		Templates: NamingTemplates{
			Entry:    template.Parse(entry),
			NonEntry: template.Parse(nonEntry),
		},
		Units:  make([]BuildUnit, 0, len(d.Chunks)),
		Assets: NewMemoryAssetStore(),
	}
	for _, ch := range d.Chunks {
		c.Units = append(c.Units, BuildUnit{
			ID:                 ch.ID,
			Name:               ch.UnitName(),
			PreEmitFingerprint: ch.Hash,
			Files:              ch.Files,
			IsEntry:            ch.Entry,
		})
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid build description: %w", err)
	}
	return c, nil
}

// SeedAssets records every declared unit file that exists in fsys, plus any
// extra names, in store. Declared files that were never emitted are skipped.
func SeedAssets(store AssetStore, fsys fs.FS, units []BuildUnit, extra ...string) error {
	names := make([]string, 0, len(extra))
	for _, u := range units {
		names = append(names, u.Files...)
	}
	names = append(names, extra...)

	for _, name := range names {
		payload, err := fs.ReadFile(fsys, filepath.ToSlash(name))
		switch {
		case err == nil:
			store.Set(name, payload)
		case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrInvalid):
			continue
		default:
			return fmt.Errorf("seed asset %s: %w", name, err)
		}
	}
	return nil
}
