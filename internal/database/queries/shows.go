package queries

import (
	"context"
	"database/sql"
)

const showColumns = `id, tmdb_id, name, status, next_air_date, overview, poster_path,
    first_air_date, last_air_date, alerted_next_air_date, created_at, updated_at, watch_providers`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShow(row rowScanner) (*Show, error) {
	var i Show
	err := row.Scan(
		&i.ID,
		&i.TmdbID,
		&i.Name,
		&i.Status,
		&i.NextAirDate,
		&i.Overview,
		&i.PosterPath,
		&i.FirstAirDate,
		&i.LastAirDate,
		&i.AlertedNextAirDate,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.WatchProviders,
	)
	return &i, err
}

func (q *Queries) listShows(ctx context.Context, query string, args ...interface{}) ([]*Show, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Show{}
	for rows.Next() {
		i, err := scanShow(rows)
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

const getShow = `SELECT ` + showColumns + ` FROM shows WHERE id = ?`

func (q *Queries) GetShow(ctx context.Context, id int64) (*Show, error) {
	return scanShow(q.db.QueryRowContext(ctx, getShow, id))
}

const getShowByTmdbID = `SELECT ` + showColumns + ` FROM shows WHERE tmdb_id = ?`

func (q *Queries) GetShowByTmdbID(ctx context.Context, tmdbID int64) (*Show, error) {
	return scanShow(q.db.QueryRowContext(ctx, getShowByTmdbID, tmdbID))
}

const listShows = `SELECT ` + showColumns + ` FROM shows ORDER BY id`

func (q *Queries) ListShows(ctx context.Context) ([]*Show, error) {
	return q.listShows(ctx, listShows)
}

const listShowsPendingAlert = `SELECT ` + showColumns + ` FROM shows
WHERE next_air_date IS NOT NULL
  AND (alerted_next_air_date IS NULL OR alerted_next_air_date != next_air_date)
ORDER BY id`

// ListShowsPendingAlert returns shows whose next air date has not been
// alerted yet.
func (q *Queries) ListShowsPendingAlert(ctx context.Context) ([]*Show, error) {
	return q.listShows(ctx, listShowsPendingAlert)
}

const upsertShow = `INSERT INTO shows (
    tmdb_id, name, status, next_air_date, overview, poster_path,
    first_air_date, last_air_date, watch_providers
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(tmdb_id) DO UPDATE SET
    name = excluded.name,
    status = excluded.status,
    next_air_date = excluded.next_air_date,
    overview = excluded.overview,
    poster_path = excluded.poster_path,
    first_air_date = excluded.first_air_date,
    last_air_date = excluded.last_air_date,
    watch_providers = COALESCE(excluded.watch_providers, shows.watch_providers),
    updated_at = CURRENT_TIMESTAMP
RETURNING id`

type UpsertShowParams struct {
	TmdbID         int64
	Name           string
	Status         sql.NullString
	NextAirDate    sql.NullString
	Overview       sql.NullString
	PosterPath     sql.NullString
	FirstAirDate   sql.NullString
	LastAirDate    sql.NullString
	WatchProviders sql.NullString
}

// UpsertShow inserts or updates a show keyed by tmdb_id and returns its
// internal id. alerted_next_air_date is never touched. A NULL
// watch_providers keeps the stored value.
func (q *Queries) UpsertShow(ctx context.Context, arg UpsertShowParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, upsertShow,
		arg.TmdbID,
		arg.Name,
		arg.Status,
		arg.NextAirDate,
		arg.Overview,
		arg.PosterPath,
		arg.FirstAirDate,
		arg.LastAirDate,
		arg.WatchProviders,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const setAlertedNextAirDate = `UPDATE shows SET alerted_next_air_date = ? WHERE id = ?`

type SetAlertedNextAirDateParams struct {
	AlertedNextAirDate string
	ID                 int64
}

func (q *Queries) SetAlertedNextAirDate(ctx context.Context, arg SetAlertedNextAirDateParams) error {
	_, err := q.db.ExecContext(ctx, setAlertedNextAirDate, arg.AlertedNextAirDate, arg.ID)
	return err
}
