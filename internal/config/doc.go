// Package config loads, normalizes, and validates the TOML configuration
// shared by the AutoFanfic daemon and CLI.
//
// Load resolves the config file location (explicit flag, then the user config
// directory, then the working directory), applies defaults for missing
// values, expands ~ in every path field, and validates the result so callers
// can trust the returned Config without re-checking it.
package config
