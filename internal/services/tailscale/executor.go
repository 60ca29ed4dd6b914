package tailscale

import (
	"context"

	"sullivan/internal/services"
)

type cliExecutor struct{}

func (cliExecutor) Run(ctx context.Context, binary string, args []string) error {
	return services.RunCommand(ctx, binary, args...)
}
