package tv

import "time"

// Show is a tracked TV show mirrored from the catalog.
type Show struct {
	ID                 int64      `json:"id"`
	TmdbID             int        `json:"tmdbId"`
	Name               string     `json:"name"`
	Status             string     `json:"status,omitempty"`
	Overview           string     `json:"overview,omitempty"`
	PosterPath         string     `json:"posterPath,omitempty"`
	FirstAirDate       *time.Time `json:"firstAirDate,omitempty"`
	LastAirDate        *time.Time `json:"lastAirDate,omitempty"`
	NextAirDate        *time.Time `json:"nextAirDate,omitempty"`
	AlertedNextAirDate *time.Time `json:"alertedNextAirDate,omitempty"`
	WatchProviders     []string   `json:"watchProviders,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// Season represents a season of a show.
type Season struct {
	ID           int64      `json:"id"`
	ShowID       int64      `json:"showId"`
	SeasonNumber int        `json:"seasonNumber"`
	Name         string     `json:"name,omitempty"`
	Overview     string     `json:"overview,omitempty"`
	AirDate      *time.Time `json:"airDate,omitempty"`
	EpisodeCount int        `json:"episodeCount"`
}

// Episode represents an episode of a show. Season 0 holds specials.
type Episode struct {
	ID            int64      `json:"id"`
	ShowID        int64      `json:"showId"`
	SeasonNumber  int        `json:"seasonNumber"`
	EpisodeNumber int        `json:"episodeNumber"`
	TmdbEpisodeID *int64     `json:"tmdbEpisodeId,omitempty"`
	Name          string     `json:"name,omitempty"`
	Overview      string     `json:"overview,omitempty"`
	AirDate       *time.Time `json:"airDate,omitempty"`
	Runtime       *int       `json:"runtime,omitempty"`
}

// SyncResult summarizes one show's reconciliation.
type SyncResult struct {
	ShowID         int64
	TmdbID         int
	Name           string
	Previous       *time.Time
	Current        *time.Time
	Transition     Transition
	SeasonsSynced  int
	SeasonsFailed  int
	EpisodesSynced int
}
