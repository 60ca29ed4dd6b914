package services

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// RunCommand executes a host binary and waits for it to finish. On failure the
// returned error carries the trailing combined output so operators see what
// the tool printed. Context cancellation and deadline expiry surface as the
// context error.
func RunCommand(ctx context.Context, binary string, args ...string) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		tail := tailLines(string(output), 20)
		if tail != "" {
			return fmt.Errorf("%w: %s", err, tail)
		}
		return err
	}
	return nil
}

func tailLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
