package queries

import "context"

const trackShow = `INSERT INTO user_shows (user_id, show_id) VALUES (?, ?)
ON CONFLICT(user_id, show_id) DO NOTHING`

type TrackShowParams struct {
	UserID int64
	ShowID int64
}

func (q *Queries) TrackShow(ctx context.Context, arg TrackShowParams) error {
	_, err := q.db.ExecContext(ctx, trackShow, arg.UserID, arg.ShowID)
	return err
}

const untrackShow = `DELETE FROM user_shows WHERE user_id = ? AND show_id = ?`

type UntrackShowParams struct {
	UserID int64
	ShowID int64
}

func (q *Queries) UntrackShow(ctx context.Context, arg UntrackShowParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, untrackShow, arg.UserID, arg.ShowID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listTrackedShowIDs = `SELECT show_id FROM user_shows WHERE user_id = ? ORDER BY show_id`

func (q *Queries) ListTrackedShowIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listTrackedShowIDs, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []int64{}
	for rows.Next() {
		var showID int64
		if err := rows.Scan(&showID); err != nil {
			return nil, err
		}
		items = append(items, showID)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
