package pkgmgr

import (
	"context"
	"errors"
	"strings"

	"sullivan/internal/services"
)

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

// Manager wraps the apt package manager. Installs run non-interactively so
// provisioning never blocks on a prompt.
type Manager struct {
	binary string
	exec   Executor
}

// New constructs an apt manager.
func New(opts ...Option) *Manager {
	mgr := &Manager{binary: "apt-get", exec: aptExecutor{}}
	for _, opt := range opts {
		opt(mgr)
	}
	return mgr
}

// UpdateIndex refreshes the package index.
func (m *Manager) UpdateIndex(ctx context.Context) error {
	if err := m.exec.Run(ctx, m.binary, []string{"update"}); err != nil {
		return services.Wrap(services.ErrProvisioning, "pkgmgr", "update", "package index refresh failed", err)
	}
	return nil
}

// Upgrade applies pending package upgrades.
func (m *Manager) Upgrade(ctx context.Context) error {
	if err := m.exec.Run(ctx, m.binary, []string{"upgrade", "-y"}); err != nil {
		return services.Wrap(services.ErrProvisioning, "pkgmgr", "upgrade", "system upgrade failed", err)
	}
	return nil
}

// Install installs the named packages. Failure is fatal for provisioning.
func (m *Manager) Install(ctx context.Context, packages ...string) error {
	packages = trimNames(packages)
	if len(packages) == 0 {
		return errors.New("no packages requested")
	}
	args := append([]string{"install", "-y"}, packages...)
	if err := m.exec.Run(ctx, m.binary, args); err != nil {
		return services.Wrap(services.ErrProvisioning, "pkgmgr", "install",
			strings.Join(packages, " "), err)
	}
	return nil
}

// Remove removes the named packages best-effort. Legacy container runtimes
// may not be installed at all, so failure is degraded rather than fatal.
func (m *Manager) Remove(ctx context.Context, packages ...string) error {
	packages = trimNames(packages)
	if len(packages) == 0 {
		return nil
	}
	args := append([]string{"remove", "-y"}, packages...)
	if err := m.exec.Run(ctx, m.binary, args); err != nil {
		return services.Wrap(services.ErrDegraded, "pkgmgr", "remove",
			strings.Join(packages, " "), err)
	}
	return nil
}

func trimNames(packages []string) []string {
	out := packages[:0]
	for _, pkg := range packages {
		if pkg = strings.TrimSpace(pkg); pkg != "" {
			out = append(out, pkg)
		}
	}
	return out
}

type aptExecutor struct{}

func (aptExecutor) Run(ctx context.Context, binary string, args []string) error {
	return services.RunCommand(ctx, binary, args...)
}
