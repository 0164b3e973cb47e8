package tv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bingebuddy/bingebuddy/internal/database/queries"
)

var (
	ErrShowNotFound    = errors.New("show not found")
	ErrEpisodeNotFound = errors.New("episode not found")
	ErrAllWatched      = errors.New("no unwatched episodes")
)

// Service provides show library and catalog reconciliation operations.
type Service struct {
	db      *sql.DB
	queries *queries.Queries
	logger  zerolog.Logger
}

// NewService creates a new TV service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:      db,
		queries: queries.New(db),
		logger:  logger.With().Str("component", "tv").Logger(),
	}
}

// GetShow retrieves a show by internal ID.
func (s *Service) GetShow(ctx context.Context, id int64) (*Show, error) {
	row, err := s.queries.GetShow(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	return rowToShow(row), nil
}

// GetShowByTmdbID retrieves a show by catalog ID.
func (s *Service) GetShowByTmdbID(ctx context.Context, tmdbID int) (*Show, error) {
	row, err := s.queries.GetShowByTmdbID(ctx, int64(tmdbID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	return rowToShow(row), nil
}

// ListShows returns every stored show ordered by internal ID.
func (s *Service) ListShows(ctx context.Context) ([]*Show, error) {
	rows, err := s.queries.ListShows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}
	shows := make([]*Show, len(rows))
	for i, row := range rows {
		shows[i] = rowToShow(row)
	}
	return shows, nil
}

// ListSeasons returns a show's seasons ordered by number.
func (s *Service) ListSeasons(ctx context.Context, showID int64) ([]Season, error) {
	rows, err := s.queries.ListSeasonsByShow(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	seasons := make([]Season, len(rows))
	for i, row := range rows {
		seasons[i] = rowToSeason(row)
	}
	return seasons, nil
}

// RowToShow converts a storage row into a Show.
func RowToShow(row *queries.Show) *Show {
	return rowToShow(row)
}

func rowToShow(row *queries.Show) *Show {
	show := &Show{
		ID:                 row.ID,
		TmdbID:             int(row.TmdbID),
		Name:               row.Name,
		FirstAirDate:       dateFromNull(row.FirstAirDate),
		LastAirDate:        dateFromNull(row.LastAirDate),
		NextAirDate:        dateFromNull(row.NextAirDate),
		AlertedNextAirDate: dateFromNull(row.AlertedNextAirDate),
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
	if row.Status.Valid {
		show.Status = row.Status.String
	}
	if row.Overview.Valid {
		show.Overview = row.Overview.String
	}
	if row.PosterPath.Valid {
		show.PosterPath = row.PosterPath.String
	}
	if row.WatchProviders.Valid && row.WatchProviders.String != "" {
		show.WatchProviders = strings.Split(row.WatchProviders.String, ", ")
	}
	return show
}

func rowToSeason(row *queries.Season) Season {
	season := Season{
		ID:           row.ID,
		ShowID:       row.ShowID,
		SeasonNumber: int(row.SeasonNumber),
		AirDate:      dateFromNull(row.AirDate),
	}
	if row.Name.Valid {
		season.Name = row.Name.String
	}
	if row.Overview.Valid {
		season.Overview = row.Overview.String
	}
	if row.EpisodeCount.Valid {
		season.EpisodeCount = int(row.EpisodeCount.Int64)
	}
	return season
}
