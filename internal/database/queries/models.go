package queries

import (
	"database/sql"
	"time"
)

type Show struct {
	ID                 int64
	TmdbID             int64
	Name               string
	Status             sql.NullString
	NextAirDate        sql.NullString
	Overview           sql.NullString
	PosterPath         sql.NullString
	FirstAirDate       sql.NullString
	LastAirDate        sql.NullString
	AlertedNextAirDate sql.NullString
	CreatedAt          time.Time
	UpdatedAt          time.Time
	WatchProviders     sql.NullString
}

type Season struct {
	ID           int64
	ShowID       int64
	SeasonNumber int64
	Name         sql.NullString
	Overview     sql.NullString
	AirDate      sql.NullString
	EpisodeCount sql.NullInt64
	PosterPath   sql.NullString
}

type Episode struct {
	ID            int64
	ShowID        int64
	SeasonNumber  int64
	EpisodeNumber int64
	TmdbEpisodeID sql.NullInt64
	Name          sql.NullString
	Overview      sql.NullString
	AirDate       sql.NullString
	Runtime       sql.NullInt64
}

type User struct {
	ID           int64
	Email        string
	Phone        sql.NullString
	Carrier      sql.NullString
	EmailEnabled bool
	SmsEnabled   bool
	PasswordHash sql.NullString
	CreatedAt    time.Time
}

type Watch struct {
	ID        int64
	UserID    int64
	EpisodeID int64
	WatchedAt time.Time
	Rating    sql.NullInt64
	Notes     sql.NullString
}

type AlertConfig struct {
	ID                 int64
	UserID             int64
	EmailTo            sql.NullString
	SmsTo              sql.NullString
	Carrier            sql.NullString
	EmailEnabled       bool
	SmsViaEmailEnabled bool
	UpdatedAt          time.Time
}
