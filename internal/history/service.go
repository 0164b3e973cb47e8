package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bingebuddy/bingebuddy/internal/database/queries"
)

var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrEpisodeNotFound = errors.New("episode not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrNoWatches       = errors.New("episode has not been watched")
)

// Service records and reports what users have watched.
type Service struct {
	db      *sql.DB
	queries *queries.Queries
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService creates a new history service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:      db,
		queries: queries.New(db),
		logger:  logger.With().Str("component", "history").Logger(),
		now:     time.Now,
	}
}

// MarkWatched records a viewing. Earlier watches of the same episode are kept.
func (s *Service) MarkWatched(ctx context.Context, input MarkInput) (*Watch, error) {
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, ErrInvalidRating
	}

	if _, err := s.queries.GetUser(ctx, input.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if _, err := s.queries.GetEpisode(ctx, input.EpisodeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEpisodeNotFound
		}
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}

	watchedAt := input.WatchedAt
	if watchedAt.IsZero() {
		watchedAt = s.now()
	}

	var rating sql.NullInt64
	if input.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*input.Rating), Valid: true}
	}
	notes := strings.TrimSpace(input.Notes)

	id, err := s.queries.CreateWatch(ctx, queries.CreateWatchParams{
		UserID:    input.UserID,
		EpisodeID: input.EpisodeID,
		WatchedAt: watchedAt.UTC(),
		Rating:    rating,
		Notes:     sql.NullString{String: notes, Valid: notes != ""},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record watch: %w", err)
	}

	s.logger.Info().
		Int64("userId", input.UserID).
		Int64("episodeId", input.EpisodeID).
		Msg("Episode marked watched")

	row, err := s.queries.GetWatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get watch: %w", err)
	}
	return rowToWatch(row), nil
}

// ListForEpisode returns a user's watches of an episode, newest first.
func (s *Service) ListForEpisode(ctx context.Context, userID, episodeID int64) ([]*Watch, error) {
	rows, err := s.queries.ListWatchesForEpisode(ctx, queries.ListWatchesForEpisodeParams{
		UserID:    userID,
		EpisodeID: episodeID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list watches: %w", err)
	}
	watches := make([]*Watch, len(rows))
	for i, row := range rows {
		watches[i] = rowToWatch(row)
	}
	return watches, nil
}

// Latest returns the user's most recent watch of an episode.
func (s *Service) Latest(ctx context.Context, userID, episodeID int64) (*Watch, error) {
	row, err := s.queries.GetLatestWatch(ctx, queries.GetLatestWatchParams{
		UserID:    userID,
		EpisodeID: episodeID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoWatches
		}
		return nil, fmt.Errorf("failed to get latest watch: %w", err)
	}
	return rowToWatch(row), nil
}

// Progress counts distinct watched episodes against all episodes of the
// show. Specials are excluded from both.
func (s *Service) Progress(ctx context.Context, userID, showID int64) (*Progress, error) {
	total, err := s.queries.CountRegularEpisodesByShow(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to count episodes: %w", err)
	}
	watched, err := s.queries.CountWatchedRegularEpisodes(ctx, queries.CountWatchedRegularEpisodesParams{
		UserID: userID,
		ShowID: showID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count watched episodes: %w", err)
	}
	return &Progress{ShowID: showID, Watched: watched, Total: total}, nil
}

func rowToWatch(row *queries.Watch) *Watch {
	w := &Watch{
		ID:        row.ID,
		UserID:    row.UserID,
		EpisodeID: row.EpisodeID,
		WatchedAt: row.WatchedAt,
	}
	if row.Rating.Valid {
		r := int(row.Rating.Int64)
		w.Rating = &r
	}
	if row.Notes.Valid {
		w.Notes = row.Notes.String
	}
	return w
}
