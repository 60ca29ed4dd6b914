package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sullivan/internal/hostenv"
	"sullivan/internal/preflight"
	"sullivan/internal/provision"
	"sullivan/internal/stack"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show host, stack, and provisioning status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			profile := ctx.profile()
			fmt.Fprintf(out, "Profile: %s\n", profileLabel(profile))
			if provision.ResumeTokenExists(cfg.ResumeTokenPath()) {
				fmt.Fprintln(out, renderStatusLine("Provisioning", statusWarn,
					"stage two pending; reboot or run `sullivan provision --stage2`", colorize))
			}

			fmt.Fprintln(out, "\nPreflight:")
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			fmt.Fprintln(out, "\nSystem dependencies:")
			for _, dep := range preflight.CheckSystemDeps(cmd.Context(), cfg) {
				kind := statusOK
				message := dep.Command
				if !dep.Available {
					kind = statusError
					if dep.Optional {
						kind = statusWarn
					}
					message = dep.Detail
				}
				fmt.Fprintln(out, renderStatusLine(dep.Name, kind, message, colorize))
			}

			mgr, err := ctx.stackManager()
			if err != nil {
				return err
			}
			statuses, err := mgr.Status(cmd.Context())
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Stack", statusError, err.Error(), colorize))
				return nil
			}

			rows := make([]statusRow, 0, len(statuses))
			for _, status := range statuses {
				health := status.Health
				if health == "" {
					health = "-"
				}
				rows = append(rows, statusRow{
					kind:  serviceRowKind(status),
					cells: []string{status.Name, status.State, health, yesNo(status.Declared)},
				})
			}
			fmt.Fprintln(out, "\nServices:")
			fmt.Fprintln(out, renderStatusTable(
				[]string{"Service", "State", "Health", "Declared"},
				rows,
				colorize,
			))
			return nil
		},
	}
}

// serviceRowKind colors a service row: green for running, yellow for
// declared-but-absent services and for undeclared leftovers, red otherwise.
// An unhealthy container is a warning, consistent with the health command.
func serviceRowKind(status stack.ServiceStatus) statusKind {
	if !status.Declared {
		return statusWarn
	}
	switch status.State {
	case "running":
		if status.Health == "unhealthy" {
			return statusWarn
		}
		return statusOK
	case "absent":
		return statusWarn
	default:
		return statusError
	}
}

var titleCaser = cases.Title(language.English)

func profileLabel(profile hostenv.Profile) string {
	return titleCaser.String(strings.ReplaceAll(string(profile), "_", " "))
}
