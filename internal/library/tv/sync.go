package tv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bingebuddy/bingebuddy/internal/database/queries"
	"github.com/bingebuddy/bingebuddy/internal/metadata/tmdb"
)

// Catalog fetches show and season details from the metadata catalog.
type Catalog interface {
	GetShow(ctx context.Context, tmdbID int) (*tmdb.ShowResult, error)
	GetSeason(ctx context.Context, tmdbID, seasonNumber int) (*tmdb.SeasonResult, error)
}

// WatchProviderSource is optionally implemented by a Catalog that can report
// where a show streams.
type WatchProviderSource interface {
	GetWatchProviders(ctx context.Context, tmdbID int) ([]string, error)
}

// SyncShow mirrors one show and all of its seasons and episodes from the
// catalog into storage. Re-running it against unchanged catalog data leaves
// storage unchanged.
//
// A failed show fetch leaves storage untouched. A failed season fetch skips
// that season only. A failed write aborts the sync; rows already written stay.
func (s *Service) SyncShow(ctx context.Context, catalog Catalog, tmdbID int) (*SyncResult, error) {
	var previous *time.Time
	stored, err := s.queries.GetShowByTmdbID(ctx, int64(tmdbID))
	switch {
	case err == nil:
		previous = dateFromNull(stored.NextAirDate)
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("failed to load show %d: %w", tmdbID, err)
	}

	details, err := catalog.GetShow(ctx, tmdbID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch show %d: %w", tmdbID, err)
	}

	showID, err := s.queries.UpsertShow(ctx, queries.UpsertShowParams{
		TmdbID:         int64(tmdbID),
		Name:           details.Name,
		Status:         nullString(details.Status),
		NextAirDate:    nullDate(details.NextAirDate),
		Overview:       nullString(details.Overview),
		PosterPath:     nullString(details.PosterPath),
		FirstAirDate:   nullDate(details.FirstAirDate),
		LastAirDate:    nullDate(details.LastAirDate),
		WatchProviders: s.fetchWatchProviders(ctx, catalog, tmdbID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store show %d: %w", tmdbID, err)
	}

	current := ParseDate(details.NextAirDate)
	result := &SyncResult{
		ShowID:     showID,
		TmdbID:     tmdbID,
		Name:       details.Name,
		Previous:   previous,
		Current:    current,
		Transition: ClassifyNextAirDate(previous, current),
	}

	for _, seasonNumber := range details.SeasonNumbers {
		season, err := catalog.GetSeason(ctx, tmdbID, seasonNumber)
		if err != nil {
			s.logger.Warn().Err(err).
				Int("tmdbId", tmdbID).
				Int("seasonNumber", seasonNumber).
				Msg("Failed to fetch season, skipping")
			result.SeasonsFailed++
			continue
		}

		episodes, err := s.storeSeason(ctx, showID, season)
		if err != nil {
			return result, fmt.Errorf("failed to store season %d of show %d: %w", seasonNumber, tmdbID, err)
		}
		result.SeasonsSynced++
		result.EpisodesSynced += episodes
	}

	if result.Transition != TransitionUnchanged {
		s.logger.Info().
			Int("tmdbId", tmdbID).
			Str("show", result.Name).
			Str("previous", FormatDate(previous)).
			Str("current", FormatDate(current)).
			Stringer("transition", result.Transition).
			Msg("Next air date changed")
	}

	s.logger.Debug().
		Int("tmdbId", tmdbID).
		Int64("showId", showID).
		Int("seasons", result.SeasonsSynced).
		Int("seasonsFailed", result.SeasonsFailed).
		Int("episodes", result.EpisodesSynced).
		Msg("Show synced")

	return result, nil
}

func (s *Service) storeSeason(ctx context.Context, showID int64, season *tmdb.SeasonResult) (int, error) {
	_, err := s.queries.UpsertSeason(ctx, queries.UpsertSeasonParams{
		ShowID:       showID,
		SeasonNumber: int64(season.SeasonNumber),
		Name:         nullString(season.Name),
		Overview:     nullString(season.Overview),
		AirDate:      nullDate(season.AirDate),
		EpisodeCount: sql.NullInt64{Int64: int64(len(season.Episodes)), Valid: true},
		PosterPath:   nullString(season.PosterPath),
	})
	if err != nil {
		return 0, err
	}

	for _, ep := range season.Episodes {
		params := queries.UpsertEpisodeParams{
			ShowID:        showID,
			SeasonNumber:  int64(season.SeasonNumber),
			EpisodeNumber: int64(ep.EpisodeNumber),
			Name:          nullString(ep.Name),
			Overview:      nullString(ep.Overview),
			AirDate:       nullDate(ep.AirDate),
		}
		if ep.TmdbID != 0 {
			params.TmdbEpisodeID = sql.NullInt64{Int64: int64(ep.TmdbID), Valid: true}
		}
		if ep.Runtime != nil {
			params.Runtime = sql.NullInt64{Int64: int64(*ep.Runtime), Valid: true}
		}
		if _, err := s.queries.UpsertEpisode(ctx, params); err != nil {
			return 0, fmt.Errorf("episode %d: %w", ep.EpisodeNumber, err)
		}
	}
	return len(season.Episodes), nil
}

// fetchWatchProviders returns NULL on failure so the stored value is kept.
func (s *Service) fetchWatchProviders(ctx context.Context, catalog Catalog, tmdbID int) sql.NullString {
	source, ok := catalog.(WatchProviderSource)
	if !ok {
		return sql.NullString{}
	}
	names, err := source.GetWatchProviders(ctx, tmdbID)
	if err != nil {
		s.logger.Debug().Err(err).Int("tmdbId", tmdbID).Msg("Watch providers unavailable")
		return sql.NullString{}
	}
	return sql.NullString{String: strings.Join(names, ", "), Valid: true}
}
