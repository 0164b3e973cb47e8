package queries

import (
	"context"
	"database/sql"
)

const episodeColumns = `id, show_id, season_number, episode_number, tmdb_episode_id, name, overview, air_date, runtime`

func scanEpisode(row rowScanner) (*Episode, error) {
	var i Episode
	err := row.Scan(
		&i.ID,
		&i.ShowID,
		&i.SeasonNumber,
		&i.EpisodeNumber,
		&i.TmdbEpisodeID,
		&i.Name,
		&i.Overview,
		&i.AirDate,
		&i.Runtime,
	)
	return &i, err
}

const upsertEpisode = `INSERT INTO episodes (
    show_id, season_number, episode_number, tmdb_episode_id, name, overview, air_date, runtime
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(show_id, season_number, episode_number) DO UPDATE SET
    tmdb_episode_id = COALESCE(excluded.tmdb_episode_id, episodes.tmdb_episode_id),
    name = excluded.name,
    overview = excluded.overview,
    air_date = excluded.air_date,
    runtime = excluded.runtime
RETURNING id`

type UpsertEpisodeParams struct {
	ShowID        int64
	SeasonNumber  int64
	EpisodeNumber int64
	TmdbEpisodeID sql.NullInt64
	Name          sql.NullString
	Overview      sql.NullString
	AirDate       sql.NullString
	Runtime       sql.NullInt64
}

// UpsertEpisode inserts or updates an episode keyed by
// (show_id, season_number, episode_number). The row id is stable across
// re-syncs.
func (q *Queries) UpsertEpisode(ctx context.Context, arg UpsertEpisodeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, upsertEpisode,
		arg.ShowID,
		arg.SeasonNumber,
		arg.EpisodeNumber,
		arg.TmdbEpisodeID,
		arg.Name,
		arg.Overview,
		arg.AirDate,
		arg.Runtime,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getEpisode = `SELECT ` + episodeColumns + ` FROM episodes WHERE id = ?`

func (q *Queries) GetEpisode(ctx context.Context, id int64) (*Episode, error) {
	return scanEpisode(q.db.QueryRowContext(ctx, getEpisode, id))
}

const getEpisodeByNumber = `SELECT ` + episodeColumns + ` FROM episodes
WHERE show_id = ? AND season_number = ? AND episode_number = ?`

type GetEpisodeByNumberParams struct {
	ShowID        int64
	SeasonNumber  int64
	EpisodeNumber int64
}

func (q *Queries) GetEpisodeByNumber(ctx context.Context, arg GetEpisodeByNumberParams) (*Episode, error) {
	return scanEpisode(q.db.QueryRowContext(ctx, getEpisodeByNumber, arg.ShowID, arg.SeasonNumber, arg.EpisodeNumber))
}

const listEpisodesByShow = `SELECT ` + episodeColumns + ` FROM episodes
WHERE show_id = ? ORDER BY season_number, episode_number`

func (q *Queries) ListEpisodesByShow(ctx context.Context, showID int64) ([]*Episode, error) {
	rows, err := q.db.QueryContext(ctx, listEpisodesByShow, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Episode{}
	for rows.Next() {
		i, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countRegularEpisodesByShow = `SELECT COUNT(*) FROM episodes WHERE show_id = ? AND season_number > 0`

// CountRegularEpisodesByShow counts episodes outside season 0 (specials).
func (q *Queries) CountRegularEpisodesByShow(ctx context.Context, showID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countRegularEpisodesByShow, showID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getNextUnwatchedEpisode = `SELECT ` + episodeColumns + ` FROM episodes e
WHERE e.show_id = ?
  AND e.season_number > 0
  AND NOT EXISTS (SELECT 1 FROM watches w WHERE w.episode_id = e.id AND w.user_id = ?)
ORDER BY e.season_number, e.episode_number
LIMIT 1`

type GetNextUnwatchedEpisodeParams struct {
	ShowID int64
	UserID int64
}

func (q *Queries) GetNextUnwatchedEpisode(ctx context.Context, arg GetNextUnwatchedEpisodeParams) (*Episode, error) {
	return scanEpisode(q.db.QueryRowContext(ctx, getNextUnwatchedEpisode, arg.ShowID, arg.UserID))
}

const listUpcomingUnwatchedEpisodes = `SELECT
    s.id, s.tmdb_id, s.name,
    e.id, e.season_number, e.episode_number, e.name, e.air_date
FROM user_shows us
JOIN shows s ON s.id = us.show_id
JOIN episodes e ON e.show_id = s.id
WHERE us.user_id = ?
  AND e.air_date IS NOT NULL
  AND e.air_date >= ?
  AND e.air_date <= ?
  AND NOT EXISTS (SELECT 1 FROM watches w WHERE w.episode_id = e.id AND w.user_id = us.user_id)
ORDER BY e.air_date, s.name, e.season_number, e.episode_number`

type ListUpcomingUnwatchedEpisodesParams struct {
	UserID   int64
	FromDate string
	ToDate   string
}

type UpcomingEpisodeRow struct {
	ShowID        int64
	ShowTmdbID    int64
	ShowName      string
	EpisodeID     int64
	SeasonNumber  int64
	EpisodeNumber int64
	EpisodeName   sql.NullString
	AirDate       string
}

// ListUpcomingUnwatchedEpisodes returns episodes of the user's tracked shows
// airing within [FromDate, ToDate] (inclusive, YYYY-MM-DD) that the user has
// not watched.
func (q *Queries) ListUpcomingUnwatchedEpisodes(ctx context.Context, arg ListUpcomingUnwatchedEpisodesParams) ([]*UpcomingEpisodeRow, error) {
	rows, err := q.db.QueryContext(ctx, listUpcomingUnwatchedEpisodes, arg.UserID, arg.FromDate, arg.ToDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*UpcomingEpisodeRow{}
	for rows.Next() {
		var i UpcomingEpisodeRow
		if err := rows.Scan(
			&i.ShowID,
			&i.ShowTmdbID,
			&i.ShowName,
			&i.EpisodeID,
			&i.SeasonNumber,
			&i.EpisodeNumber,
			&i.EpisodeName,
			&i.AirDate,
		); err != nil {
			return nil, err
		}
		items = append(items, &i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
