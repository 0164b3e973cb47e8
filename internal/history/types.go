package history

import "time"

// Watch is one viewing of an episode by a user. A rewatch is a new Watch.
type Watch struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	EpisodeID int64     `json:"episodeId"`
	WatchedAt time.Time `json:"watchedAt"`
	Rating    *int      `json:"rating,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// MarkInput contains fields for recording a watch. A zero WatchedAt means now.
type MarkInput struct {
	UserID    int64
	EpisodeID int64
	WatchedAt time.Time
	Rating    *int
	Notes     string
}

// Progress is how far a user is through a show's regular seasons.
type Progress struct {
	ShowID  int64 `json:"showId"`
	Watched int64 `json:"watched"`
	Total   int64 `json:"total"`
}

// Percent returns the watched share as 0-100.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Watched) * 100 / float64(p.Total)
}
