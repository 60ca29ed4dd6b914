// Package config loads, normalizes, and validates Sullivan configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and validates the declared service set. The
// Config type centralizes every knob the provisioning and lifecycle commands
// need: compose/env file locations, Tailscale OAuth credentials, profile
// detection thresholds, and the service dependency graph.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
