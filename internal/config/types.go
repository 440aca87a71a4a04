// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// HashMD5 fingerprints with MD5, the bundler default.
	HashMD5 HashFunction = "md5"
	// HashSHA256 fingerprints with SHA-256.
	HashSHA256 HashFunction = "sha256"
	// HashBLAKE3 fingerprints with BLAKE3.
	HashBLAKE3 HashFunction = "blake3"

	// PatchBounded only rewrites fingerprints that stand alone as tokens.
	PatchBounded PatchStrategy = "bounded"
	// PatchPlain rewrites every substring occurrence.
	PatchPlain PatchStrategy = "plain"

	// LogLevelDebug logs every phase transition and skipped file.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs renames and the run summary.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs only problems.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs only failures.
	LogLevelError LogLevel = "error"

	// ColorAuto colors output when stdout is a terminal.
	ColorAuto ColorMode = "auto"
	// ColorAlways forces colored output.
	ColorAlways ColorMode = "always"
	// ColorNever disables colored output.
	ColorNever ColorMode = "never"
)

var (
	// ErrInvalidHashFunction is returned when a HashFunction value is not recognized.
	ErrInvalidHashFunction = errors.New("invalid hash function")
	// ErrInvalidPatchStrategy is returned when a PatchStrategy value is not recognized.
	ErrInvalidPatchStrategy = errors.New("invalid patch strategy")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidColorMode is returned when a ColorMode value is not recognized.
	ErrInvalidColorMode = errors.New("invalid color mode")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// HashFunction names the content fingerprint algorithm.
	HashFunction string

	// PatchStrategy names the payload substitution mode.
	PatchStrategy string

	// LogLevel is the minimum level written to stderr.
	LogLevel string

	// ColorMode controls ANSI styling of command output.
	ColorMode string

	// InvalidValueError is returned when an enumerated setting holds an
	// unrecognized value. It wraps the setting's sentinel error.
	InvalidValueError struct {
		Field    string
		Value    string
		Allowed  []string
		sentinel error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// ManifestJSONName is the JSON manifest filename in the output directory.
		ManifestJSONName string `json:"manifest_json_name" mapstructure:"manifest_json_name"`
		// ManifestChunkName is the name of the unit emitting the manifest script.
		ManifestChunkName string `json:"manifest_chunk_name" mapstructure:"manifest_chunk_name"`
		// HashFunction selects the fingerprint algorithm.
		HashFunction HashFunction `json:"hash_function" mapstructure:"hash_function"`
		// ScriptExtensions lists extensions treated as script output.
		ScriptExtensions []string `json:"script_extensions" mapstructure:"script_extensions"`
		// PatchStrategy selects how fingerprints are substituted in payloads.
		PatchStrategy PatchStrategy `json:"patch_strategy" mapstructure:"patch_strategy"`
		// Templates are fallback naming templates.
		Templates TemplatesConfig `json:"templates" mapstructure:"templates"`
		// LogLevel is the minimum log level.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Watch configures the watch command.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
	}

	// TemplatesConfig holds naming templates applied when the build
	// description does not carry its own. Empty means "not configured".
	TemplatesConfig struct {
		Entry    string `json:"entry" mapstructure:"entry"`
		NonEntry string `json:"non_entry" mapstructure:"non_entry"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Color controls ANSI styling.
		Color ColorMode `json:"color" mapstructure:"color"`
	}

	// WatchConfig configures the watch command.
	WatchConfig struct {
		// Debounce is the quiet period before a run is triggered.
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
		// Ignore lists doublestar patterns that never trigger a run.
		Ignore []string `json:"ignore" mapstructure:"ignore"`
	}
)

// Error implements the error interface.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: %q (valid: %s)", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// Unwrap returns the setting's sentinel error.
func (e *InvalidValueError) Unwrap() error { return e.sentinel }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// String returns the string representation of the HashFunction.
func (h HashFunction) String() string { return string(h) }

// HashFunctions returns the accepted hash_function values in display order.
func HashFunctions() []HashFunction {
	return []HashFunction{HashMD5, HashSHA256, HashBLAKE3}
}

// IsValid returns whether h is a supported algorithm.
func (h HashFunction) IsValid() (bool, []error) {
	return checkEnum("hash_function", string(h), ErrInvalidHashFunction, HashFunctions()...)
}

// String returns the string representation of the PatchStrategy.
func (s PatchStrategy) String() string { return string(s) }

// PatchStrategies returns the accepted patch_strategy values.
func PatchStrategies() []PatchStrategy {
	return []PatchStrategy{PatchBounded, PatchPlain}
}

// IsValid returns whether s is a supported strategy.
func (s PatchStrategy) IsValid() (bool, []error) {
	return checkEnum("patch_strategy", string(s), ErrInvalidPatchStrategy, PatchStrategies()...)
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether l is a supported level.
func (l LogLevel) IsValid() (bool, []error) {
	return checkEnum("log_level", string(l), ErrInvalidLogLevel, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)
}

// String returns the string representation of the ColorMode.
func (m ColorMode) String() string { return string(m) }

// IsValid returns whether m is a supported mode.
func (m ColorMode) IsValid() (bool, []error) {
	return checkEnum("ui.color", string(m), ErrInvalidColorMode, ColorAuto, ColorAlways, ColorNever)
}

// IsValid validates every field of the configuration. Values read from a
// file were already checked by the CUE schema; this also covers values that
// came from environment variables.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, v := range []interface{ IsValid() (bool, []error) }{
		c.HashFunction, c.PatchStrategy, c.LogLevel, c.UI.Color,
	} {
		if ok, fieldErrs := v.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if strings.TrimSpace(c.ManifestJSONName) == "" {
		errs = append(errs, fmt.Errorf("manifest_json_name: must not be empty"))
	}
	if strings.TrimSpace(c.ManifestChunkName) == "" {
		errs = append(errs, fmt.Errorf("manifest_chunk_name: must not be empty"))
	}
	for i, ext := range c.ScriptExtensions {
		if ext == "" || strings.ContainsAny(ext, ". \t") {
			errs = append(errs, fmt.Errorf("script_extensions[%d]: %q is not a bare extension", i, ext))
		}
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: must not be negative, got %s", c.Watch.Debounce))
	}

	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		ManifestJSONName:  "manifest.json",
		ManifestChunkName: "manifest",
		HashFunction:      HashMD5,
		ScriptExtensions:  []string{"js"},
		PatchStrategy:     PatchBounded,
		LogLevel:          LogLevelInfo,
		UI: UIConfig{
			Verbose: false,
			Color:   ColorAuto,
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
			Ignore:   []string{"**/*.map", "**/.*"},
		},
	}
}

func checkEnum[T ~string](field, value string, sentinel error, allowed ...T) (bool, []error) {
	names := make([]string, len(allowed))
	for i, a := range allowed {
		if string(a) == value {
			return true, nil
		}
		names[i] = string(a)
	}
	return false, []error{&InvalidValueError{Field: field, Value: value, Allowed: names, sentinel: sentinel}}
}
