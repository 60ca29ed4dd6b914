package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"sullivan/internal/hostenv"
	"sullivan/internal/stack"
)

// selection normalizes service arguments: no args or "all" means the whole
// declared set.
func selection(args []string) []string {
	var names []string
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		if strings.EqualFold(arg, "all") {
			return nil
		}
		names = append(names, arg)
	}
	return names
}

func newStartCommand(ctx *commandContext) *cobra.Command {
	var noPull bool

	cmd := &cobra.Command{
		Use:   "start [service...]",
		Short: "Start services in dependency order",
		Long: "Start converges the selected services (default: all) to running.\n" +
			"Dependencies are started first; a start over a running stack is a clean restart.",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.stackManager()
			if err != nil {
				return err
			}

			pull := hostenv.AdvisoryDefaults(ctx.profile()).PullOnStart
			if noPull {
				pull = false
			}

			report, err := mgr.Start(cmd.Context(), selection(args), pull)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Started %d services: %s\n", len(report.Order), strings.Join(report.Order, ", "))
			renderWarnings(out, report.Warnings)
			if len(report.PendingSecrets) > 0 {
				fmt.Fprintf(out, "Env keys still needing manual values: %s\n", strings.Join(report.PendingSecrets, ", "))
			}
			renderHealth(out, report.Health)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noPull, "no-pull", false, "Skip the image refresh before starting")
	return cmd
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop [service...]",
		Short: "Stop services in reverse dependency order",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.stackManager()
			if err != nil {
				return err
			}
			report, err := mgr.Stop(cmd.Context(), selection(args))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped: %s\n", strings.Join(report.Order, ", "))
			return nil
		},
	}
}

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs [service...]",
		Short: "Show service logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.stackManager()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return mgr.Logs(cmd.Context(), selection(args), follow, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output until interrupted")
	return cmd
}

func renderWarnings(out io.Writer, warnings []stack.Warning) {
	colorize := shouldColorize(out)
	for _, w := range warnings {
		fmt.Fprintln(out, renderStatusLine(w.Op, statusWarn, w.Detail, colorize))
	}
}

func renderHealth(out io.Writer, results []stack.ProbeResult) {
	colorize := shouldColorize(out)
	for _, result := range results {
		kind := statusOK
		if !result.Healthy {
			kind = statusWarn
		}
		fmt.Fprintln(out, renderStatusLine(result.Service, kind, result.Detail, colorize))
	}
}
