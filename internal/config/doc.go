// Package config loads, normalizes, and validates the TOML configuration
// for transmute.
//
// Load resolves the config path (explicit flag, then
// ~/.config/transmute/config.toml, then ./transmute.toml), merges the file
// over Default(), expands ~ in every path field, and rejects unusable
// values. CreateSample writes the embedded, fully commented sample file.
package config
