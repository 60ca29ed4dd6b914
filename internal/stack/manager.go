package stack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"sullivan/internal/config"
	"sullivan/internal/envfile"
	"sullivan/internal/logging"
	"sullivan/internal/services/compose"
)

// Warning is a non-fatal condition surfaced to the operator. Start and stop
// keep going past warnings; only infrastructure failures abort.
type Warning struct {
	Op     string
	Detail string
}

// StartReport summarizes a start operation.
type StartReport struct {
	Order          []string
	PendingSecrets []string
	Warnings       []Warning
	Health         []ProbeResult
}

// StopReport summarizes a stop operation.
type StopReport struct {
	Order []string
}

// ServiceStatus merges the declared service set with the runtime's view.
type ServiceStatus struct {
	Name     string
	State    string
	Health   string
	Declared bool
}

// Option configures the manager.
type Option func(*Manager)

// WithSleep overrides the settle delay sleep (tests).
func WithSleep(sleep func(time.Duration)) Option {
	return func(m *Manager) {
		if sleep != nil {
			m.sleep = sleep
		}
	}
}

// Manager drives the compose stack through its lifecycle. Mutating operations
// are serialized through an advisory file lock so concurrent invocations
// cannot interleave teardown and startup.
type Manager struct {
	cfg     *config.Config
	compose *compose.Client
	graph   *Graph
	lock    *flock.Flock
	logger  *slog.Logger
	sleep   func(time.Duration)
}

// NewManager constructs a lifecycle manager over the declared service set.
func NewManager(cfg *config.Config, client *compose.Client, logger *slog.Logger, opts ...Option) (*Manager, error) {
	if cfg == nil || client == nil {
		return nil, errors.New("manager requires config and compose client")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	graph, err := NewGraph(cfg.Stack.Services)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:     cfg,
		compose: client,
		graph:   graph,
		lock:    flock.New(cfg.LockPath()),
		logger:  logging.WithComponent(logger, "stack"),
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Graph exposes the resolved dependency graph.
func (m *Manager) Graph() *Graph { return m.graph }

func (m *Manager) withLock(fn func() error) error {
	ok, err := m.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", m.cfg.LockPath(), err)
	}
	if !ok {
		return errors.New("another sullivan operation is already running")
	}
	defer func() {
		if err := m.lock.Unlock(); err != nil {
			m.logger.Warn("failed to release lock", logging.Error(err))
		}
	}()
	return fn()
}

// Start converges the selected services to running. The selection is expanded
// to its dependency closure and started in dependency order. A full-set start
// tears the stack down first so a start over an already-running stack is a
// clean restart; a subset start leaves running dependencies untouched. Image
// refresh and health problems degrade to warnings.
func (m *Manager) Start(ctx context.Context, names []string, pull bool) (*StartReport, error) {
	report := &StartReport{}
	err := m.withLock(func() error {
		order, err := m.graph.Resolve(names)
		if err != nil {
			return err
		}
		report.Order = order
		full := len(order) == len(m.graph.Names())

		pending, err := m.synthesizeEnv()
		if err != nil {
			return err
		}
		report.PendingSecrets = pending
		for _, key := range pending {
			m.logger.Warn("env key still needs manual provisioning", logging.String("key", key))
		}

		mountWarnings := PrepareMounts(m.cfg.Media.MountPoints, m.cfg.Media.UID, m.cfg.Media.GID)
		for _, w := range mountWarnings {
			m.logger.Warn(w.Detail, logging.String("op", w.Op))
		}
		report.Warnings = append(report.Warnings, mountWarnings...)

		// Full-set starts tear down first so the whole stack converges from
		// a clean slate. Subset starts rely on `up -d` being convergent:
		// dependencies that are already running are left alone.
		if full {
			if err := m.compose.Down(ctx, nil, true); err != nil {
				return err
			}
		}

		if pull {
			if err := m.compose.Pull(ctx, order); err != nil {
				m.logger.Warn("image refresh failed, starting with cached images", logging.Error(err))
				report.Warnings = append(report.Warnings, Warning{Op: "pull", Detail: err.Error()})
			}
		}

		for _, name := range order {
			m.logger.Info("starting service", logging.String("service", name))
			if err := m.compose.Up(ctx, []string{name}); err != nil {
				return err
			}
		}

		if delay := time.Duration(m.cfg.Stack.SettleDelaySeconds) * time.Second; delay > 0 {
			m.sleep(delay)
		}

		results, err := m.probe(ctx, order)
		if err != nil {
			return err
		}
		report.Health = results
		for _, result := range results {
			if !result.Healthy {
				m.logger.Warn("service not healthy yet",
					logging.String("service", result.Service),
					logging.String("detail", result.Detail))
				report.Warnings = append(report.Warnings, Warning{
					Op:     "health",
					Detail: result.Service + ": " + result.Detail,
				})
			}
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	return report, nil
}

// Stop halts the selected services in reverse dependency order. Stopping the
// full set also removes orphaned containers left by services no longer
// declared.
func (m *Manager) Stop(ctx context.Context, names []string) (*StopReport, error) {
	report := &StopReport{}
	err := m.withLock(func() error {
		order, err := m.graph.Resolve(names)
		if err != nil {
			return err
		}
		report.Order = Reverse(order)

		if len(order) == len(m.graph.Names()) {
			return m.compose.Down(ctx, nil, true)
		}
		return m.compose.Stop(ctx, report.Order)
	})
	if err != nil {
		return report, err
	}
	return report, nil
}

// Status reports the runtime state of every declared service plus any
// container in the stack that is no longer declared. Read-only, so it takes
// no lock.
func (m *Manager) Status(ctx context.Context) ([]ServiceStatus, error) {
	snapshot, err := m.containerSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	var statuses []ServiceStatus
	for _, name := range m.graph.Names() {
		status := ServiceStatus{Name: name, State: "absent", Declared: true}
		if cs, ok := snapshot[name]; ok {
			status.State = cs.State
			status.Health = cs.Health
		}
		statuses = append(statuses, status)
		delete(snapshot, name)
	}
	for name, cs := range snapshot {
		statuses = append(statuses, ServiceStatus{Name: name, State: cs.State, Health: cs.Health})
	}
	return statuses, nil
}

// Health runs one bounded probe per selected service. Unhealthy results are
// returned, not raised.
func (m *Manager) Health(ctx context.Context, names []string) ([]ProbeResult, error) {
	order, err := m.graph.Resolve(names)
	if err != nil {
		return nil, err
	}
	return m.probe(ctx, order)
}

// Logs streams logs for the named services; an empty selection streams the
// whole stack.
func (m *Manager) Logs(ctx context.Context, names []string, follow bool, onLine func(string)) error {
	for _, name := range names {
		if !m.graph.Has(name) {
			return fmt.Errorf("unknown service %q", name)
		}
	}
	return m.compose.Logs(ctx, names, follow, onLine)
}

func (m *Manager) probe(ctx context.Context, names []string) ([]ProbeResult, error) {
	timeout := time.Duration(m.cfg.Stack.ProbeTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	results := make([]ProbeResult, 0, len(names))
	for _, name := range names {
		svc, ok := m.graph.Service(name)
		if !ok {
			continue
		}
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		results = append(results, checkFor(svc, timeout, m.containerSnapshot).Probe(probeCtx))
		cancel()
	}
	return results, nil
}

func (m *Manager) containerSnapshot(ctx context.Context) (map[string]compose.ContainerStatus, error) {
	statuses, err := m.compose.PS(ctx, nil)
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]compose.ContainerStatus, len(statuses))
	for _, status := range statuses {
		snapshot[status.Service] = status
	}
	return snapshot, nil
}

// synthesizeEnv fills the stack env file with defaults, generating internal
// secrets and leaving operator-provided values untouched. Returns the keys
// that still hold placeholders.
func (m *Manager) synthesizeEnv() ([]string, error) {
	file, err := envfile.Load(m.cfg.Paths.EnvFile)
	if err != nil {
		return nil, err
	}
	pending, err := envfile.Synthesize(file, envfile.StackDefaults(m.cfg.Media.UID, m.cfg.Media.GID, m.cfg.MediaRoot()))
	if err != nil {
		return nil, err
	}
	if err := file.Save(); err != nil {
		return nil, err
	}
	return pending, nil
}
