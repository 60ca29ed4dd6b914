package preflight

import (
	"context"

	"sullivan/internal/config"
	"sullivan/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks the lifecycle commands rely on.
// Mount-point failures are reported but commands still proceed; the storage
// may be attached later.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckFileReadable("Compose file", cfg.Paths.ComposeFile))

	for _, mount := range cfg.Media.MountPoints {
		results = append(results, CheckDirectoryAccess("Mount "+mount, mount))
	}

	return results
}

// CheckSystemDeps evaluates the external binaries the lifecycle and
// provisioning commands call. The status command uses this to show what a
// fresh host still lacks.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	composeBinary := ""
	if cfg != nil {
		composeBinary = cfg.Stack.ComposeBinary
	}
	return deps.Check(deps.Requirements(composeBinary))
}
