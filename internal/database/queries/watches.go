package queries

import (
	"context"
	"database/sql"
	"time"
)

const watchColumns = `id, user_id, episode_id, watched_at, rating, notes`

func scanWatch(row rowScanner) (*Watch, error) {
	var i Watch
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.EpisodeID,
		&i.WatchedAt,
		&i.Rating,
		&i.Notes,
	)
	return &i, err
}

const createWatch = `INSERT INTO watches (user_id, episode_id, watched_at, rating, notes)
VALUES (?, ?, ?, ?, ?)
RETURNING id`

type CreateWatchParams struct {
	UserID    int64
	EpisodeID int64
	WatchedAt time.Time
	Rating    sql.NullInt64
	Notes     sql.NullString
}

func (q *Queries) CreateWatch(ctx context.Context, arg CreateWatchParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createWatch,
		arg.UserID,
		arg.EpisodeID,
		arg.WatchedAt,
		arg.Rating,
		arg.Notes,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getWatch = `SELECT ` + watchColumns + ` FROM watches WHERE id = ?`

func (q *Queries) GetWatch(ctx context.Context, id int64) (*Watch, error) {
	return scanWatch(q.db.QueryRowContext(ctx, getWatch, id))
}

const listWatchesForEpisode = `SELECT ` + watchColumns + ` FROM watches
WHERE user_id = ? AND episode_id = ?
ORDER BY watched_at DESC, id DESC`

type ListWatchesForEpisodeParams struct {
	UserID    int64
	EpisodeID int64
}

func (q *Queries) ListWatchesForEpisode(ctx context.Context, arg ListWatchesForEpisodeParams) ([]*Watch, error) {
	rows, err := q.db.QueryContext(ctx, listWatchesForEpisode, arg.UserID, arg.EpisodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Watch{}
	for rows.Next() {
		i, err := scanWatch(rows)
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

const getLatestWatch = `SELECT ` + watchColumns + ` FROM watches
WHERE user_id = ? AND episode_id = ?
ORDER BY watched_at DESC, id DESC
LIMIT 1`

type GetLatestWatchParams struct {
	UserID    int64
	EpisodeID int64
}

func (q *Queries) GetLatestWatch(ctx context.Context, arg GetLatestWatchParams) (*Watch, error) {
	return scanWatch(q.db.QueryRowContext(ctx, getLatestWatch, arg.UserID, arg.EpisodeID))
}

const countWatchedRegularEpisodes = `SELECT COUNT(DISTINCT w.episode_id) FROM watches w
JOIN episodes e ON e.id = w.episode_id
WHERE w.user_id = ? AND e.show_id = ? AND e.season_number > 0`

type CountWatchedRegularEpisodesParams struct {
	UserID int64
	ShowID int64
}

func (q *Queries) CountWatchedRegularEpisodes(ctx context.Context, arg CountWatchedRegularEpisodesParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countWatchedRegularEpisodes, arg.UserID, arg.ShowID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
