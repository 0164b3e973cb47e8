package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bingebuddy/bingebuddy/internal/batch"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "run",
		Short:       "Sync every show once and send alerts if the window is open",
		Args:        cobra.NoArgs,
		Annotations: needsFullConfig(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}

			if err := a.runLock.Acquire(); err != nil {
				return err
			}
			defer a.runLock.Release()

			result, err := a.runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			printRunSummary(cmd, result)
			return nil
		},
	}
}

func printRunSummary(cmd *cobra.Command, r *batch.RunResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s finished in %s\n", r.RunID, r.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Shows: %d synced, %d failed, %d date changes\n", r.ShowsSynced, r.ShowsFailed, r.DateChanges)
	for _, f := range r.Failures {
		fmt.Fprintf(out, "  failed: %s (tmdb %d): %v\n", f.Name, f.TmdbID, f.Err)
	}
	switch {
	case !r.WindowOpen:
		fmt.Fprintln(out, "Alerts: outside window")
	case r.AlertErr != nil:
		fmt.Fprintf(out, "Alerts: failed: %v\n", r.AlertErr)
	case r.Alerts != nil:
		fmt.Fprintf(out, "Alerts: %d users notified, %d channels failed, %d watermarks advanced\n",
			r.Alerts.UsersNotified, r.Alerts.ChannelsFailed, r.Alerts.WatermarksAdvanced)
	}
}
