// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrConfigExists is returned by Init when the target file already exists.
var ErrConfigExists = errors.New("config file already exists")

// Init writes cfg as CUE to path, creating parent directories. An existing
// file is only replaced when force is set.
func Init(path string, cfg *Config, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE generates a CUE representation of the configuration that
// validates against the embedded schema.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// afterhash configuration\n")
	sb.WriteString("// Environment variables prefixed with " + EnvPrefix + "_ override these values.\n\n")

	fmt.Fprintf(&sb, "manifest_json_name:  %q\n", cfg.ManifestJSONName)
	fmt.Fprintf(&sb, "manifest_chunk_name: %q\n", cfg.ManifestChunkName)
	fmt.Fprintf(&sb, "hash_function:       %q\n", cfg.HashFunction)
	fmt.Fprintf(&sb, "patch_strategy:      %q\n", cfg.PatchStrategy)
	fmt.Fprintf(&sb, "script_extensions:   %s\n", cueList(cfg.ScriptExtensions))
	fmt.Fprintf(&sb, "log_level:           %q\n", cfg.LogLevel)

	if cfg.Templates.Entry != "" || cfg.Templates.NonEntry != "" {
		sb.WriteString("\ntemplates: {\n")
		if cfg.Templates.Entry != "" {
			fmt.Fprintf(&sb, "\tentry:     %q\n", cfg.Templates.Entry)
		}
		if cfg.Templates.NonEntry != "" {
			fmt.Fprintf(&sb, "\tnon_entry: %q\n", cfg.Templates.NonEntry)
		}
		sb.WriteString("}\n")
	}

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor:   %q\n", cfg.UI.Color)
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce.String())
	fmt.Fprintf(&sb, "\tignore:   %s\n", cueList(cfg.Watch.Ignore))
	sb.WriteString("}\n")

	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
