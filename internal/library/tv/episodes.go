package tv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bingebuddy/bingebuddy/internal/database/queries"
)

// ListEpisodes returns a show's episodes ordered by season and episode.
func (s *Service) ListEpisodes(ctx context.Context, showID int64) ([]Episode, error) {
	rows, err := s.queries.ListEpisodesByShow(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	episodes := make([]Episode, len(rows))
	for i, row := range rows {
		episodes[i] = rowToEpisode(row)
	}
	return episodes, nil
}

// GetEpisode retrieves an episode by ID.
func (s *Service) GetEpisode(ctx context.Context, id int64) (*Episode, error) {
	row, err := s.queries.GetEpisode(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEpisodeNotFound
		}
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}
	ep := rowToEpisode(row)
	return &ep, nil
}

// GetEpisodeByNumber retrieves an episode by its natural key.
func (s *Service) GetEpisodeByNumber(ctx context.Context, showID int64, seasonNumber, episodeNumber int) (*Episode, error) {
	row, err := s.queries.GetEpisodeByNumber(ctx, queries.GetEpisodeByNumberParams{
		ShowID:        showID,
		SeasonNumber:  int64(seasonNumber),
		EpisodeNumber: int64(episodeNumber),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEpisodeNotFound
		}
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}
	ep := rowToEpisode(row)
	return &ep, nil
}

// NextUnwatched returns the first regular episode, by season then episode
// number, that the user has no watch record for. Specials are skipped.
func (s *Service) NextUnwatched(ctx context.Context, userID, showID int64) (*Episode, error) {
	row, err := s.queries.GetNextUnwatchedEpisode(ctx, queries.GetNextUnwatchedEpisodeParams{
		ShowID: showID,
		UserID: userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAllWatched
		}
		return nil, fmt.Errorf("failed to get next episode: %w", err)
	}
	ep := rowToEpisode(row)
	return &ep, nil
}

func rowToEpisode(row *queries.Episode) Episode {
	ep := Episode{
		ID:            row.ID,
		ShowID:        row.ShowID,
		SeasonNumber:  int(row.SeasonNumber),
		EpisodeNumber: int(row.EpisodeNumber),
		AirDate:       dateFromNull(row.AirDate),
	}
	if row.TmdbEpisodeID.Valid {
		id := row.TmdbEpisodeID.Int64
		ep.TmdbEpisodeID = &id
	}
	if row.Name.Valid {
		ep.Name = row.Name.String
	}
	if row.Overview.Valid {
		ep.Overview = row.Overview.String
	}
	if row.Runtime.Valid {
		runtime := int(row.Runtime.Int64)
		ep.Runtime = &runtime
	}
	return ep
}
