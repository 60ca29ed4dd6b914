package compose

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sullivan/internal/services"
)

// ContainerStatus is the subset of `compose ps` output the lifecycle manager
// inspects.
type ContainerStatus struct {
	Name    string `json:"Name"`
	Service string `json:"Service"`
	State   string `json:"State"`
	Health  string `json:"Health"`
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps the docker compose CLI. Every operation is scoped to one
// compose-file + env-file pair so selections never leak across stacks.
type Client struct {
	binary      string
	composeFile string
	envFile     string
	exec        Executor
}

// New constructs a compose client.
func New(binary, composeFile, envFile string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("compose binary required")
	}
	if strings.TrimSpace(composeFile) == "" {
		return nil, errors.New("compose file required")
	}
	client := &Client{
		binary:      binary,
		composeFile: composeFile,
		envFile:     envFile,
		exec:        commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func (c *Client) baseArgs() []string {
	args := []string{"compose", "-f", c.composeFile}
	if c.envFile != "" {
		args = append(args, "--env-file", c.envFile)
	}
	return args
}

// Pull refreshes images for the selected services. Pull failures are an
// acceptable degraded mode, so individual image failures are ignored by the
// compose CLI itself and a total failure is classified as degraded by the
// caller.
func (c *Client) Pull(ctx context.Context, selection []string) error {
	args := append(c.baseArgs(), "pull", "--ignore-pull-failures")
	args = append(args, selection...)
	if err := c.exec.Run(ctx, c.binary, args, nil); err != nil {
		return services.Wrap(services.ErrDegraded, "compose", "pull", "image refresh failed", err)
	}
	return nil
}

// Up starts the selected services detached.
func (c *Client) Up(ctx context.Context, selection []string) error {
	args := append(c.baseArgs(), "up", "-d")
	args = append(args, selection...)
	if err := c.exec.Run(ctx, c.binary, args, nil); err != nil {
		return services.Wrap(services.ErrExternalTool, "compose", "up", "start failed", err)
	}
	return nil
}

// Stop stops the selected services without removing resources.
func (c *Client) Stop(ctx context.Context, selection []string) error {
	args := append(c.baseArgs(), "stop")
	args = append(args, selection...)
	if err := c.exec.Run(ctx, c.binary, args, nil); err != nil {
		return services.Wrap(services.ErrExternalTool, "compose", "stop", "stop failed", err)
	}
	return nil
}

// Down tears down the selected services. With removeOrphans set it also
// removes containers for services no longer declared in the compose file.
func (c *Client) Down(ctx context.Context, selection []string, removeOrphans bool) error {
	args := append(c.baseArgs(), "down")
	if removeOrphans {
		args = append(args, "--remove-orphans")
	}
	args = append(args, selection...)
	if err := c.exec.Run(ctx, c.binary, args, nil); err != nil {
		return services.Wrap(services.ErrExternalTool, "compose", "down", "teardown failed", err)
	}
	return nil
}

// PS reports container status for the selected services.
func (c *Client) PS(ctx context.Context, selection []string) ([]ContainerStatus, error) {
	args := append(c.baseArgs(), "ps", "-a", "--format", "json")
	args = append(args, selection...)

	var statuses []ContainerStatus
	var parseErr error
	err := c.exec.Run(ctx, c.binary, args, func(line string) {
		line = strings.TrimSpace(line)
		if line == "" || parseErr != nil {
			return
		}
		var status ContainerStatus
		if err := json.Unmarshal([]byte(line), &status); err != nil {
			parseErr = fmt.Errorf("parse ps line %q: %w", line, err)
			return
		}
		statuses = append(statuses, status)
	})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "compose", "ps", "status query failed", err)
	}
	if parseErr != nil {
		return nil, services.Wrap(services.ErrExternalTool, "compose", "ps", "unexpected output", parseErr)
	}
	return statuses, nil
}

// Logs streams log lines for the selected services. With follow set the call
// blocks until ctx is cancelled; cancellation detaches without error.
func (c *Client) Logs(ctx context.Context, selection []string, follow bool, onLine func(string)) error {
	args := append(c.baseArgs(), "logs")
	if follow {
		args = append(args, "-f")
	}
	args = append(args, selection...)
	err := c.exec.Run(ctx, c.binary, args, onLine)
	if err != nil && follow && errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "compose", "logs", "log stream failed", err)
	}
	return nil
}
