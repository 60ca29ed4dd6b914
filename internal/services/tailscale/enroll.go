package tailscale

import (
	"context"
	"strings"

	"sullivan/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// Enroller applies an enrollment key via the local tailscale CLI.
type Enroller struct {
	binary string
	exec   Executor
}

// EnrollerOption configures the enroller.
type EnrollerOption func(*Enroller)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) EnrollerOption {
	return func(e *Enroller) {
		if exec != nil {
			e.exec = exec
		}
	}
}

// NewEnroller constructs an enroller using the tailscale binary on PATH.
func NewEnroller(opts ...EnrollerOption) *Enroller {
	enroller := &Enroller{binary: "tailscale", exec: cliExecutor{}}
	for _, opt := range opts {
		opt(enroller)
	}
	return enroller
}

// Up brings the local tailscaled online with the provided auth key.
func (e *Enroller) Up(ctx context.Context, authKey string, hostname string) error {
	if strings.TrimSpace(authKey) == "" {
		return services.Wrap(services.ErrCredentialExchange, "tailscale", "up", "auth key is empty", nil)
	}
	args := []string{"up", "--authkey=" + authKey}
	if strings.TrimSpace(hostname) != "" {
		args = append(args, "--hostname="+hostname)
	}
	if err := e.exec.Run(ctx, e.binary, args); err != nil {
		return services.Wrap(services.ErrProvisioning, "tailscale", "up", "enrollment failed", err)
	}
	return nil
}
