// SPDX-License-Identifier: MPL-2.0

// Package config loads afterhash settings using Viper with CUE as the file format.
//
// A configuration file is looked up in this order: the path given with
// --config, ./afterhash.cue in the working directory, then config.cue in the
// user configuration directory ($XDG_CONFIG_HOME/afterhash on Linux,
// ~/Library/Application Support/afterhash on macOS, %APPDATA%\afterhash on
// Windows). Without any file the built-in defaults apply. Every key can be
// overridden by an AFTERHASH_ environment variable, with dots replaced by
// underscores (AFTERHASH_WATCH_DEBOUNCE).
//
// Files are validated against the embedded CUE schema (config_schema.cue)
// before their values reach Viper.
package config
