package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"sullivan/internal/journal"
	"sullivan/internal/provision"
	"sullivan/internal/services/pkgmgr"
	"sullivan/internal/services/systemd"
)

func newProvisionCommand(ctx *commandContext) *cobra.Command {
	var stage2 bool
	var showStatus bool
	var reset bool

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Provision the host for the media stack",
		Long: "Provision runs stage one of host setup (packages, Docker, Tailscale),\n" +
			"then schedules stage two to run automatically after the required reboot.\n" +
			"Stage two enrolls the host into the tailnet and removes its own traces.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if showStatus {
				return renderJournal(cmd, store, out)
			}
			if reset {
				if err := store.Reset(cmd.Context(), 1); err != nil {
					return err
				}
				fmt.Fprintln(out, "Stage one journal cleared; the next provision run starts from scratch.")
				return nil
			}

			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock %s: %w", cfg.LockPath(), err)
			}
			if !locked {
				return errors.New("another sullivan operation is already running")
			}
			defer lock.Unlock()

			units := systemd.New()
			coord, err := provision.NewCoordinator(cfg, store, units, logger)
			if err != nil {
				return err
			}

			if stage2 {
				result, err := coord.RunStage2(cmd.Context())
				renderStageResult(out, result)
				return err
			}

			plan := provision.BuildStage1Plan(cfg, provision.PlanDeps{
				Packages: pkgmgr.New(),
				Units:    units,
			})
			result, err := coord.RunStage1(cmd.Context(), plan)
			renderStageResult(out, result)
			if err != nil {
				return err
			}

			if err := coord.ScheduleResume(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, "Stage one complete. Reboot now; stage two enrolls the host automatically at boot.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&stage2, "stage2", false, "Run stage two (post-reboot enrollment)")
	cmd.Flags().BoolVar(&showStatus, "status", false, "Show the provisioning journal")
	cmd.Flags().BoolVar(&reset, "reset", false, "Clear the stage one journal")
	return cmd
}

func renderStageResult(out io.Writer, result provision.StageResult) {
	colorize := shouldColorize(out)
	for _, step := range result.Steps {
		kind := statusOK
		message := ""
		switch step.Outcome {
		case provision.OutcomeSkipped:
			kind = statusInfo
			message = "already done"
		case provision.OutcomeWarned:
			kind = statusWarn
			if step.Err != nil {
				message = step.Err.Error()
			}
		case provision.OutcomeFailed:
			kind = statusError
			if step.Err != nil {
				message = step.Err.Error()
			}
		}
		fmt.Fprintln(out, renderStatusLine(step.Name, kind, message, colorize))
	}
}

func renderJournal(cmd *cobra.Command, store *journal.Store, out io.Writer) error {
	records, err := store.Records(cmd.Context())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No provisioning activity recorded.")
		return nil
	}

	rows := make([]statusRow, 0, len(records))
	for _, record := range records {
		finished := ""
		if record.FinishedAt != nil {
			finished = record.FinishedAt.Local().Format("2006-01-02 15:04:05")
		}
		cells := []string{
			fmt.Sprintf("%d", record.Stage),
			record.Step,
			string(record.Status),
			finished,
			record.Detail,
		}
		rows = append(rows, statusRow{kind: journalRowKind(record.Status), cells: cells})
	}
	fmt.Fprintln(out, renderStatusTable(
		[]string{"Stage", "Step", "Status", "Finished", "Detail"},
		rows,
		shouldColorize(out),
	))
	return nil
}

// journalRowKind maps a journal step status onto the status palette. A step
// still marked running was interrupted mid-flight, so it renders as a warning.
func journalRowKind(status journal.Status) statusKind {
	switch status {
	case journal.StatusCompleted:
		return statusOK
	case journal.StatusFailed:
		return statusError
	case journal.StatusRunning:
		return statusWarn
	default:
		return statusInfo
	}
}
