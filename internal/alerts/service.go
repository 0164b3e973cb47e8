package alerts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bingebuddy/bingebuddy/internal/database/queries"
	"github.com/bingebuddy/bingebuddy/internal/library/tv"
	"github.com/bingebuddy/bingebuddy/internal/notification"
	"github.com/bingebuddy/bingebuddy/internal/notification/types"
	"github.com/bingebuddy/bingebuddy/internal/users"
)

const defaultHorizonDays = 7

// Dispatcher delivers a rendered message to a user's channels.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg types.Message, to types.Recipients) notification.DispatchResult
}

// Options configures the alert phase.
type Options struct {
	Window      Window
	HorizonDays int
	Defaults    users.Defaults
}

// AlertResult summarizes one alert phase.
type AlertResult struct {
	PendingShows       int
	UsersConsidered    int
	UsersNotified      int
	UsersSkipped       int
	UsersFailed        int
	ChannelsSent       int
	ChannelsFailed     int
	WatermarksAdvanced int
}

// Service computes per-user digests, dispatches them and advances watermarks.
type Service struct {
	queries    *queries.Queries
	users      *users.Service
	dispatcher Dispatcher
	opts       Options
	logger     zerolog.Logger
}

// NewService creates a new alerts service.
func NewService(db *sql.DB, userService *users.Service, dispatcher Dispatcher, opts Options, logger zerolog.Logger) *Service {
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = defaultHorizonDays
	}
	return &Service{
		queries:    queries.New(db),
		users:      userService,
		dispatcher: dispatcher,
		opts:       opts,
		logger:     logger.With().Str("component", "alerts").Logger(),
	}
}

// Window returns the configured alert window.
func (s *Service) Window() Window {
	return s.opts.Window
}

// SendAlerts notifies every user about pending date changes of shows they
// track and their upcoming unwatched episodes. A show's watermark advances
// once at least one channel was attempted for it, whatever the outcome.
func (s *Service) SendAlerts(ctx context.Context, now time.Time) (*AlertResult, error) {
	pending, err := s.pendingShows(ctx)
	if err != nil {
		return nil, err
	}
	userList, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	today := s.opts.Window.Today(now)
	from := today.Format(tv.DateLayout)
	to := today.AddDate(0, 0, s.opts.HorizonDays).Format(tv.DateLayout)

	result := &AlertResult{PendingShows: len(pending)}
	pendingByID := make(map[int64]*tv.Show, len(pending))
	for _, show := range pending {
		pendingByID[show.ID] = show
	}
	attempted := make(map[int64]bool, len(pending))

	for _, user := range userList {
		result.UsersConsidered++
		dispatch, changed, err := s.alertUser(ctx, user, pendingByID, from, to)
		if err != nil {
			result.UsersFailed++
			s.logger.Error().Err(err).Int64("userId", user.ID).Msg("Alert failed for user")
			continue
		}
		if dispatch == nil {
			result.UsersSkipped++
			continue
		}

		result.ChannelsSent += dispatch.Sent()
		result.ChannelsFailed += dispatch.Failed()
		if !dispatch.Attempted() {
			result.UsersSkipped++
			continue
		}
		result.UsersNotified++
		for _, id := range changed {
			attempted[id] = true
		}
	}

	for _, show := range pending {
		if !attempted[show.ID] {
			continue
		}
		if err := s.advance(ctx, show); err != nil {
			s.logger.Error().Err(err).Int64("showId", show.ID).Msg("Watermark not advanced")
			continue
		}
		result.WatermarksAdvanced++
		s.logger.Info().
			Int64("showId", show.ID).
			Str("show", show.Name).
			Str("alertedNextAirDate", tv.FormatDate(show.NextAirDate)).
			Msg("Watermark advanced")
	}

	s.logger.Info().
		Int("pendingShows", result.PendingShows).
		Int("users", result.UsersConsidered).
		Int("notified", result.UsersNotified).
		Int("failed", result.UsersFailed).
		Int("watermarks", result.WatermarksAdvanced).
		Msg("Alert phase complete")

	return result, nil
}

// alertUser builds and dispatches one user's digest. It returns a nil result
// when there is nothing to tell the user, plus the ids of pending shows that
// were included.
func (s *Service) alertUser(ctx context.Context, user *users.User, pending map[int64]*tv.Show, from, to string) (*notification.DispatchResult, []int64, error) {
	tracked, err := s.users.ListTrackedShowIDs(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	digest := Digest{HorizonDays: s.opts.HorizonDays}
	var changed []int64
	for _, id := range tracked {
		if show, ok := pending[id]; ok {
			digest.Changes = append(digest.Changes, changeFor(show))
			changed = append(changed, id)
		}
	}

	rows, err := s.queries.ListUpcomingUnwatchedEpisodes(ctx, queries.ListUpcomingUnwatchedEpisodesParams{
		UserID:   user.ID,
		FromDate: from,
		ToDate:   to,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list upcoming episodes: %w", err)
	}
	for _, row := range rows {
		digest.Upcoming = append(digest.Upcoming, UpcomingEpisode{
			ShowName:      row.ShowName,
			SeasonNumber:  row.SeasonNumber,
			EpisodeNumber: row.EpisodeNumber,
			EpisodeName:   row.EpisodeName.String,
			AirDate:       row.AirDate,
		})
	}

	if digest.Empty() {
		s.logger.Debug().Int64("userId", user.ID).Msg("Nothing to alert")
		return nil, nil, nil
	}

	recipients, err := s.users.ResolvePreferences(ctx, user.ID, s.opts.Defaults)
	if err != nil {
		return nil, nil, err
	}
	msg, err := digest.Message()
	if err != nil {
		return nil, nil, err
	}

	dispatch := s.dispatcher.Dispatch(ctx, msg, recipients)

	s.logger.Info().
		Int64("userId", user.ID).
		Int("changes", len(digest.Changes)).
		Int("upcoming", len(digest.Upcoming)).
		Int("sent", dispatch.Sent()).
		Int("failed", dispatch.Failed()).
		Msg("User alerted")

	return &dispatch, changed, nil
}
