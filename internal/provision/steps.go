package provision

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"sullivan/internal/config"
	"sullivan/internal/services/pkgmgr"
	"sullivan/internal/services/systemd"
)

// dockerPackages are the upstream Docker engine packages installed after the
// distribution-shipped variants have been removed.
var dockerPackages = []string{
	"docker-ce", "docker-ce-cli", "containerd.io", "docker-buildx-plugin", "docker-compose-plugin",
}

// PlanDeps are the collaborators stage-one steps invoke.
type PlanDeps struct {
	Packages *pkgmgr.Manager
	Units    *systemd.Manager
	// DockerDaemonConfig is the engine config path; overridable for tests.
	DockerDaemonConfig string
}

// BuildStage1Plan assembles the ordered stage-one plan from configuration.
func BuildStage1Plan(cfg *config.Config, deps PlanDeps) Plan {
	daemonConfig := deps.DockerDaemonConfig
	if daemonConfig == "" {
		daemonConfig = "/etc/docker/daemon.json"
	}

	steps := []Step{
		{
			Name: "update-os",
			Run: func(ctx context.Context) error {
				if err := deps.Packages.UpdateIndex(ctx); err != nil {
					return err
				}
				return deps.Packages.Upgrade(ctx)
			},
		},
		{
			Name:       "remove-legacy-docker",
			BestEffort: true,
			Run: func(ctx context.Context) error {
				return deps.Packages.Remove(ctx, cfg.Provision.LegacyPackages...)
			},
		},
		{
			Name: "install-base-packages",
			Run: func(ctx context.Context) error {
				return deps.Packages.Install(ctx, cfg.Provision.Packages...)
			},
		},
		{
			Name: "install-docker",
			Run: func(ctx context.Context) error {
				return deps.Packages.Install(ctx, dockerPackages...)
			},
		},
		{
			Name: "install-tailscale",
			Run: func(ctx context.Context) error {
				return deps.Packages.Install(ctx, "tailscale")
			},
		},
		{
			Name: "enable-docker",
			Run: func(ctx context.Context) error {
				return deps.Units.EnableNow(ctx, "docker")
			},
		},
		{
			Name: "repair-docker-network",
			Run: func(ctx context.Context) error {
				changed, err := writeDockerAddressPool(daemonConfig, cfg.Provision.DockerPool)
				if err != nil {
					return err
				}
				if !changed {
					return nil
				}
				return deps.Units.Restart(ctx, "docker")
			},
		},
	}

	return Plan{Stage: 1, Steps: steps}
}

// writeDockerAddressPool pins the engine's default address pool so compose
// networks never collide with the LAN subnet. Existing unrelated settings in
// daemon.json are preserved. Returns whether the file changed.
func writeDockerAddressPool(path, pool string) (bool, error) {
	settings := map[string]any{}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &settings); err != nil {
			return false, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	wanted := []any{map[string]any{"base": pool, "size": 24}}
	if existing, ok := settings["default-address-pools"]; ok {
		if current, err := json.Marshal(existing); err == nil {
			if want, err := json.Marshal(wanted); err == nil && string(current) == string(want) {
				return false, nil
			}
		}
	}
	settings["default-address-pools"] = wanted

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
