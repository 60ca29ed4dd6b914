// Package preflight provides readiness checks for the filesystem paths and
// external binaries Sullivan depends on.
//
// The lifecycle commands run the filesystem checks before mutating the stack,
// and the status command shows both groups so a fresh host's gaps are visible
// before provisioning.
package preflight
