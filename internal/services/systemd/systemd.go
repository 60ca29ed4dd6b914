package systemd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sullivan/internal/services"
)

const defaultUnitDir = "/etc/systemd/system"

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// Option configures the manager.
type Option func(*Manager)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(m *Manager) {
		if exec != nil {
			m.exec = exec
		}
	}
}

// WithUnitDir overrides the unit file directory (primarily for tests).
func WithUnitDir(dir string) Option {
	return func(m *Manager) {
		if strings.TrimSpace(dir) != "" {
			m.unitDir = dir
		}
	}
}

// Manager registers and removes the one-shot boot unit that resumes
// provisioning after the reboot.
type Manager struct {
	unitDir string
	exec    Executor
}

// New constructs a systemd manager.
func New(opts ...Option) *Manager {
	mgr := &Manager{unitDir: defaultUnitDir, exec: systemctlExecutor{}}
	for _, opt := range opts {
		opt(mgr)
	}
	return mgr
}

// UnitPath returns the unit file location for the named unit.
func (m *Manager) UnitPath(unitName string) string {
	return filepath.Join(m.unitDir, unitName+".service")
}

// RegisterResumeUnit writes a one-shot unit that runs execStart once on the
// next boot, after the network and the VPN daemon are up. RemainAfterExit
// keeps the unit in a finished state instead of restarting it.
func (m *Manager) RegisterResumeUnit(ctx context.Context, unitName, execStart string) error {
	if strings.TrimSpace(unitName) == "" {
		return errors.New("unit name required")
	}
	if strings.TrimSpace(execStart) == "" {
		return errors.New("exec start required")
	}

	unit := fmt.Sprintf(`[Unit]
Description=Sullivan provisioning stage two
After=network-online.target tailscaled.service
Wants=network-online.target

[Service]
Type=oneshot
RemainAfterExit=yes
ExecStart=%s

[Install]
WantedBy=multi-user.target
`, execStart)

	path := m.UnitPath(unitName)
	if err := os.WriteFile(path, []byte(unit), 0o644); err != nil {
		return services.Wrap(services.ErrProvisioning, "systemd", "write-unit", path, err)
	}
	if err := m.exec.Run(ctx, "systemctl", []string{"daemon-reload"}); err != nil {
		return services.Wrap(services.ErrProvisioning, "systemd", "daemon-reload", "", err)
	}
	if err := m.exec.Run(ctx, "systemctl", []string{"enable", unitName + ".service"}); err != nil {
		return services.Wrap(services.ErrProvisioning, "systemd", "enable", unitName, err)
	}
	return nil
}

// RemoveResumeUnit disables the one-shot unit and deletes its file. This is
// the cleanup half of the secret-hygiene invariant: after a successful stage
// two, no trace of the resume schedule remains.
func (m *Manager) RemoveResumeUnit(ctx context.Context, unitName string) error {
	if strings.TrimSpace(unitName) == "" {
		return errors.New("unit name required")
	}
	if err := m.exec.Run(ctx, "systemctl", []string{"disable", unitName + ".service"}); err != nil {
		return services.Wrap(services.ErrProvisioning, "systemd", "disable", unitName, err)
	}
	path := m.UnitPath(unitName)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return services.Wrap(services.ErrProvisioning, "systemd", "remove-unit", path, err)
	}
	if err := m.exec.Run(ctx, "systemctl", []string{"daemon-reload"}); err != nil {
		return services.Wrap(services.ErrProvisioning, "systemd", "daemon-reload", "", err)
	}
	return nil
}

// EnableNow enables and starts a host service (e.g. the docker engine).
func (m *Manager) EnableNow(ctx context.Context, unitName string) error {
	if err := m.exec.Run(ctx, "systemctl", []string{"enable", "--now", unitName}); err != nil {
		return services.Wrap(services.ErrProvisioning, "systemd", "enable-now", unitName, err)
	}
	return nil
}

// Restart restarts a host service.
func (m *Manager) Restart(ctx context.Context, unitName string) error {
	if err := m.exec.Run(ctx, "systemctl", []string{"restart", unitName}); err != nil {
		return services.Wrap(services.ErrProvisioning, "systemd", "restart", unitName, err)
	}
	return nil
}

type systemctlExecutor struct{}

func (systemctlExecutor) Run(ctx context.Context, binary string, args []string) error {
	return services.RunCommand(ctx, binary, args...)
}
