package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bingebuddy/bingebuddy/internal/scheduler"
	"github.com/bingebuddy/bingebuddy/internal/scheduler/tasks"
	"github.com/bingebuddy/bingebuddy/internal/startup"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var skipProbes bool

	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "Run the sync and alert batch on a cron schedule until interrupted",
		Args:        cobra.NoArgs,
		Annotations: needsFullConfig(),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := ctx.app(runCtx)
			if err != nil {
				return err
			}

			if !skipProbes {
				err := startup.WaitForDependencies(runCtx, startup.DefaultRetryConfig(), a.logger,
					startup.Probe{Name: "catalog", Check: a.catalog.Test},
					startup.Probe{Name: "smtp", Check: a.mailer.Test},
				)
				if err != nil {
					return err
				}
			}

			sched, err := scheduler.New(a.logger, a.alerts.Window().Location)
			if err != nil {
				return err
			}
			task := tasks.NewSyncAlertsTask(a.runner, a.runLock, a.logger)
			if err := tasks.RegisterSyncAlertsTask(sched, task, a.cfg.Schedule.Cron, a.cfg.Schedule.RunOnStart); err != nil {
				return err
			}

			sched.Start()
			if info, err := sched.GetTask(tasks.SyncAlertsTaskID); err == nil && info.NextRun != nil {
				a.logger.Info().Time("nextRun", *info.NextRun).Msg("Waiting for next scheduled run")
			}

			<-runCtx.Done()
			a.logger.Info().Msg("Shutting down")
			return sched.Stop()
		},
	}

	cmd.Flags().BoolVar(&skipProbes, "skip-probes", false, "Start without waiting for the catalog and SMTP server")
	return cmd
}
