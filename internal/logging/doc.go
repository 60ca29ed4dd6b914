// Package logging assembles structured slog loggers used across Sullivan
// commands.
//
// It owns the configurable console/JSON handlers and centralizes level and
// output plumbing so provisioning steps and lifecycle operations emit log
// lines with the same shape. The package also provides a no-op logger for
// tests.
package logging
