package pkgmgr

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sullivan/internal/services"
)

type recordingExecutor struct {
	calls [][]string
	err   error
}

func (r *recordingExecutor) Run(ctx context.Context, binary string, args []string) error {
	r.calls = append(r.calls, append([]string{binary}, args...))
	return r.err
}

func TestInstallBuildsNonInteractiveCommand(t *testing.T) {
	exec := &recordingExecutor{}
	mgr := New(WithExecutor(exec))

	if err := mgr.Install(context.Background(), "docker-ce", " docker-compose-plugin "); err != nil {
		t.Fatalf("Install returned error: %v", err)
	}
	got := strings.Join(exec.calls[0], " ")
	if got != "apt-get install -y docker-ce docker-compose-plugin" {
		t.Fatalf("unexpected command: %q", got)
	}
}

func TestInstallFailureIsFatal(t *testing.T) {
	mgr := New(WithExecutor(&recordingExecutor{err: errors.New("exit status 100")}))

	err := mgr.Install(context.Background(), "docker-ce")
	if !errors.Is(err, services.ErrProvisioning) {
		t.Fatalf("expected provisioning marker, got %v", err)
	}
}

func TestRemoveFailureIsDegraded(t *testing.T) {
	mgr := New(WithExecutor(&recordingExecutor{err: errors.New("exit status 100")}))

	err := mgr.Remove(context.Background(), "docker.io")
	if !errors.Is(err, services.ErrDegraded) {
		t.Fatalf("expected degraded marker, got %v", err)
	}
}

func TestRemoveNoPackagesIsNoop(t *testing.T) {
	exec := &recordingExecutor{}
	mgr := New(WithExecutor(exec))

	if err := mgr.Remove(context.Background()); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if len(exec.calls) != 0 {
		t.Fatalf("expected no command, got %v", exec.calls)
	}
}
