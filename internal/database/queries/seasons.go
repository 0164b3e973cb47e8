package queries

import (
	"context"
	"database/sql"
)

const upsertSeason = `INSERT INTO seasons (
    show_id, season_number, name, overview, air_date, episode_count, poster_path
) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(show_id, season_number) DO UPDATE SET
    name = excluded.name,
    overview = excluded.overview,
    air_date = excluded.air_date,
    episode_count = excluded.episode_count,
    poster_path = excluded.poster_path
RETURNING id`

type UpsertSeasonParams struct {
	ShowID       int64
	SeasonNumber int64
	Name         sql.NullString
	Overview     sql.NullString
	AirDate      sql.NullString
	EpisodeCount sql.NullInt64
	PosterPath   sql.NullString
}

func (q *Queries) UpsertSeason(ctx context.Context, arg UpsertSeasonParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, upsertSeason,
		arg.ShowID,
		arg.SeasonNumber,
		arg.Name,
		arg.Overview,
		arg.AirDate,
		arg.EpisodeCount,
		arg.PosterPath,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listSeasonsByShow = `SELECT id, show_id, season_number, name, overview, air_date, episode_count, poster_path
FROM seasons WHERE show_id = ? ORDER BY season_number`

func (q *Queries) ListSeasonsByShow(ctx context.Context, showID int64) ([]*Season, error) {
	rows, err := q.db.QueryContext(ctx, listSeasonsByShow, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Season{}
	for rows.Next() {
		var i Season
		if err := rows.Scan(
			&i.ID,
			&i.ShowID,
			&i.SeasonNumber,
			&i.Name,
			&i.Overview,
			&i.AirDate,
			&i.EpisodeCount,
			&i.PosterPath,
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
