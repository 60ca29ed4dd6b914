// Package compose wraps the docker compose CLI for the lifecycle manager.
// All operations are scoped to a single compose-file + env-file pair.
package compose
