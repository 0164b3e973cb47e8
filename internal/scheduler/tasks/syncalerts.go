package tasks

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bingebuddy/bingebuddy/internal/batch"
	"github.com/bingebuddy/bingebuddy/internal/scheduler"
)

const SyncAlertsTaskID = "sync-alerts"

// BatchRunner runs one sync and alert batch.
type BatchRunner interface {
	Run(ctx context.Context) (*batch.RunResult, error)
}

// SyncAlertsTask runs the batch pipeline under the shared run lock so it
// never overlaps a manual `run` invocation.
type SyncAlertsTask struct {
	runner BatchRunner
	lock   *batch.Lock
	logger zerolog.Logger
}

// NewSyncAlertsTask creates a new sync and alerts task.
func NewSyncAlertsTask(runner BatchRunner, lock *batch.Lock, logger zerolog.Logger) *SyncAlertsTask {
	return &SyncAlertsTask{
		runner: runner,
		lock:   lock,
		logger: logger.With().Str("task", SyncAlertsTaskID).Logger(),
	}
}

// Run executes one batch.
func (t *SyncAlertsTask) Run(ctx context.Context) error {
	if err := t.lock.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := t.lock.Release(); err != nil {
			t.logger.Warn().Err(err).Msg("Failed to release run lock")
		}
	}()

	result, err := t.runner.Run(ctx)
	if err != nil {
		return err
	}
	if result.ShowsFailed > 0 {
		t.logger.Warn().
			Str("runId", result.RunID).
			Int("failed", result.ShowsFailed).
			Msg("Some shows failed to sync")
	}
	return nil
}

// RegisterSyncAlertsTask registers the batch pipeline with the scheduler.
func RegisterSyncAlertsTask(sched *scheduler.Scheduler, task *SyncAlertsTask, cron string, runOnStart bool) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          SyncAlertsTaskID,
		Name:        "Sync shows and send alerts",
		Description: "Mirrors every tracked show from the catalog and alerts users inside the alert window",
		Cron:        cron,
		Func:        task.Run,
		RunOnStart:  runOnStart,
	})
}
