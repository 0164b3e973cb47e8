// Package batch runs the periodic sync and alert pipeline.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bingebuddy/bingebuddy/internal/alerts"
	"github.com/bingebuddy/bingebuddy/internal/library/tv"
)

// ShowSyncer lists stored shows and mirrors one from the catalog.
type ShowSyncer interface {
	ListShows(ctx context.Context) ([]*tv.Show, error)
	SyncShow(ctx context.Context, catalog tv.Catalog, tmdbID int) (*tv.SyncResult, error)
}

// Alerter runs the alert phase inside its window.
type Alerter interface {
	Window() alerts.Window
	SendAlerts(ctx context.Context, now time.Time) (*alerts.AlertResult, error)
}

// ShowFailure records a show whose sync failed during a run.
type ShowFailure struct {
	ShowID int64
	TmdbID int
	Name   string
	Err    error
}

// RunResult summarizes one batch run.
type RunResult struct {
	RunID       string
	StartedAt   time.Time
	Duration    time.Duration
	ShowsTotal  int
	ShowsSynced int
	ShowsFailed int
	DateChanges int
	Failures    []ShowFailure
	WindowOpen  bool
	Alerts      *alerts.AlertResult
	AlertErr    error
}

// Runner syncs every stored show and then, inside the alert window, alerts
// users. Shows are processed sequentially and one show's failure never stops
// the others.
type Runner struct {
	shows   ShowSyncer
	catalog tv.Catalog
	alerter Alerter
	logger  zerolog.Logger
	now     func() time.Time
}

// NewRunner creates a batch runner.
func NewRunner(shows ShowSyncer, catalog tv.Catalog, alerter Alerter, logger zerolog.Logger) *Runner {
	return &Runner{
		shows:   shows,
		catalog: catalog,
		alerter: alerter,
		logger:  logger.With().Str("component", "batch").Logger(),
		now:     time.Now,
	}
}

// Run performs one full batch. Only a failure to enumerate shows, or
// cancellation of ctx, is returned as an error.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{RunID: uuid.NewString(), StartedAt: r.now()}
	log := r.logger.With().Str("runId", result.RunID).Logger()
	log.Info().Msg("Batch run started")

	shows, err := r.shows.ListShows(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Batch run aborted: cannot list shows")
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}
	result.ShowsTotal = len(shows)

	for _, show := range shows {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Msg("Batch run cancelled")
			return r.finish(log, result), err
		}
		r.syncOne(ctx, log, show, result)
	}

	now := r.now()
	window := r.alerter.Window()
	result.WindowOpen = window.IsOpen(now)
	if !result.WindowOpen {
		log.Info().Str("window", window.String()).Msg("Outside alert window, skipping alerts")
		return r.finish(log, result), nil
	}

	alertResult, err := r.alerter.SendAlerts(ctx, now)
	if err != nil {
		result.AlertErr = err
		log.Error().Err(err).Msg("Alert phase failed")
	}
	result.Alerts = alertResult

	return r.finish(log, result), nil
}

// syncOne is the unit of work for a single show.
func (r *Runner) syncOne(ctx context.Context, log zerolog.Logger, show *tv.Show, result *RunResult) {
	start := time.Now()
	res, err := r.shows.SyncShow(ctx, r.catalog, show.TmdbID)
	elapsed := time.Since(start)

	if err != nil {
		result.ShowsFailed++
		result.Failures = append(result.Failures, ShowFailure{
			ShowID: show.ID,
			TmdbID: show.TmdbID,
			Name:   show.Name,
			Err:    err,
		})
		log.Error().Err(err).
			Int("tmdbId", show.TmdbID).
			Str("show", show.Name).
			Dur("duration", elapsed).
			Msg("Show sync failed")
		return
	}

	result.ShowsSynced++
	if res.Transition == tv.TransitionChanged {
		result.DateChanges++
	}
	log.Info().
		Int("tmdbId", show.TmdbID).
		Str("show", res.Name).
		Str("transition", res.Transition.String()).
		Str("nextAirDate", tv.FormatDate(res.Current)).
		Int("episodes", res.EpisodesSynced).
		Int("seasonsFailed", res.SeasonsFailed).
		Dur("duration", elapsed).
		Msg("Show synced")
}

func (r *Runner) finish(log zerolog.Logger, result *RunResult) *RunResult {
	result.Duration = r.now().Sub(result.StartedAt)
	ev := log.Info().
		Int("shows", result.ShowsTotal).
		Int("synced", result.ShowsSynced).
		Int("failed", result.ShowsFailed).
		Int("dateChanges", result.DateChanges).
		Bool("windowOpen", result.WindowOpen).
		Dur("duration", result.Duration)
	if result.Alerts != nil {
		ev = ev.Int("usersNotified", result.Alerts.UsersNotified).
			Int("watermarksAdvanced", result.Alerts.WatermarksAdvanced)
	}
	ev.Msg("Batch run finished")
	return result
}
