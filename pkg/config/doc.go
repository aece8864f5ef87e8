// Package config loads the layered stencil configuration: embedded
// TOML defaults, then the user config file, then STENCIL_ environment
// variables, later layers winning.
package config
