package tmdb

// TMDB API response types.

// SearchTVResponse represents the response from /search/tv endpoint.
type SearchTVResponse struct {
	Page         int        `json:"page"`
	Results      []TVResult `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

// TVResult represents a TV show in search results.
type TVResult struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"original_name"`
	Overview     string  `json:"overview"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   *string `json:"poster_path"`
	Popularity   float64 `json:"popularity"`
}

// TVDetails represents detailed TV show information from /tv/{id}.
type TVDetails struct {
	ID               int             `json:"id"`
	Name             string          `json:"name"`
	OriginalName     string          `json:"original_name"`
	Overview         string          `json:"overview"`
	Status           string          `json:"status"`
	FirstAirDate     string          `json:"first_air_date"`
	LastAirDate      string          `json:"last_air_date"`
	PosterPath       *string         `json:"poster_path"`
	NextEpisodeToAir *EpisodeSummary `json:"next_episode_to_air"`
	LastEpisodeToAir *EpisodeSummary `json:"last_episode_to_air"`
	Seasons          []SeasonSummary `json:"seasons"`
	NumberOfSeasons  int             `json:"number_of_seasons"`
	NumberOfEpisodes int             `json:"number_of_episodes"`
}

// EpisodeSummary is the abbreviated episode embedded in show details.
type EpisodeSummary struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	AirDate       string `json:"air_date"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
}

// SeasonSummary is a season entry in show details. SeasonNumber is a pointer
// because TMDB occasionally omits it.
type SeasonSummary struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	AirDate      string  `json:"air_date"`
	EpisodeCount int     `json:"episode_count"`
	SeasonNumber *int    `json:"season_number"`
	PosterPath   *string `json:"poster_path"`
}

// SeasonDetails represents detailed season information from /tv/{id}/season/{n}.
type SeasonDetails struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	Overview     string           `json:"overview"`
	AirDate      string           `json:"air_date"`
	PosterPath   *string          `json:"poster_path"`
	SeasonNumber int              `json:"season_number"`
	Episodes     []EpisodeDetails `json:"episodes"`
}

// EpisodeDetails represents an episode in season details.
type EpisodeDetails struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	AirDate       string `json:"air_date"`
	EpisodeNumber int    `json:"episode_number"`
	SeasonNumber  int    `json:"season_number"`
	Runtime       *int   `json:"runtime"`
}

// WatchProvidersResponse represents /tv/{id}/watch/providers.
type WatchProvidersResponse struct {
	ID      int                        `json:"id"`
	Results map[string]RegionProviders `json:"results"`
}

// RegionProviders lists providers for one region by offer type.
type RegionProviders struct {
	Link     string     `json:"link"`
	Flatrate []Provider `json:"flatrate"`
	Free     []Provider `json:"free"`
	Ads      []Provider `json:"ads"`
	Rent     []Provider `json:"rent"`
	Buy      []Provider `json:"buy"`
}

// Provider is a single watch provider.
type Provider struct {
	ProviderID      int    `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	DisplayPriority int    `json:"display_priority"`
}

// ErrorResponse represents a TMDB API error.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}

// Normalized result types returned by the client. Empty strings mean the
// catalog did not report the value.

// ShowResult is a normalized show.
type ShowResult struct {
	TmdbID       int
	Name         string
	Status       string
	Overview     string
	PosterPath   string
	FirstAirDate string
	LastAirDate  string
	NextAirDate  string

	// SeasonNumbers holds every reported season that carries a number,
	// specials (season 0) included.
	SeasonNumbers []int
}

// SeasonResult is a normalized season with its episodes.
type SeasonResult struct {
	SeasonNumber int
	Name         string
	Overview     string
	AirDate      string
	PosterPath   string
	Episodes     []EpisodeResult
}

// EpisodeResult is a normalized episode.
type EpisodeResult struct {
	TmdbID        int
	SeasonNumber  int
	EpisodeNumber int
	Name          string
	Overview      string
	AirDate       string
	Runtime       *int
}

// SearchResult is a normalized search hit.
type SearchResult struct {
	TmdbID       int
	Name         string
	FirstAirDate string
	Overview     string
	PosterPath   string
}
