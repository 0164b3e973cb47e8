package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bingebuddy/bingebuddy/internal/config"
)

var (
	ErrAPIKeyMissing = errors.New("TMDB API key is not configured")
	ErrShowNotFound  = errors.New("show not found")
	ErrAPIError      = errors.New("TMDB API error")
	ErrRateLimited   = errors.New("TMDB API rate limited")
)

// v4 read access tokens are JWTs; v3 keys are 32 hex characters.
const bearerKeyMinLen = 41

// Client is a TMDB API client. Every call is a single attempt.
type Client struct {
	httpClient *http.Client
	config     config.CatalogConfig
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client.
func NewClient(cfg config.CatalogConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "tmdb").Logger(),
	}
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

func (c *Client) usesBearer() bool {
	return len(c.config.APIKey) >= bearerKeyMinLen
}

// params returns the base query parameters, carrying the key for v3 auth.
func (c *Client) params() url.Values {
	params := url.Values{}
	if !c.usesBearer() {
		params.Set("api_key", c.config.APIKey)
	}
	return params
}

// Test verifies connectivity to the TMDB API by making a configuration request.
func (c *Client) Test(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	var result struct {
		Images struct {
			BaseURL string `json:"base_url"`
		} `json:"images"`
	}
	return c.doRequest(ctx, c.config.BaseURL+"/configuration", c.params(), &result)
}

// SearchShows searches for TV shows by name.
func (c *Client) SearchShows(ctx context.Context, query string) ([]SearchResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}
	if strings.TrimSpace(query) == "" {
		return []SearchResult{}, nil
	}

	params := c.params()
	params.Set("query", query)
	params.Set("include_adult", "false")

	var response SearchTVResponse
	if err := c.doRequest(ctx, c.config.BaseURL+"/search/tv", params, &response); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(response.Results))
	for _, tv := range response.Results {
		results = append(results, SearchResult{
			TmdbID:       tv.ID,
			Name:         showName(tv.Name, tv.OriginalName),
			FirstAirDate: tv.FirstAirDate,
			Overview:     tv.Overview,
			PosterPath:   deref(tv.PosterPath),
		})
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(results)).
		Msg("Show search completed")

	return results, nil
}

// GetShow gets show details by TMDB ID.
func (c *Client) GetShow(ctx context.Context, id int) (*ShowResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/tv/%d", c.config.BaseURL, id)

	var details TVDetails
	if err := c.doRequest(ctx, endpoint, c.params(), &details); err != nil {
		return nil, err
	}

	result := tvDetailsToResult(details)

	c.logger.Debug().
		Int("tmdbId", id).
		Str("name", result.Name).
		Str("nextAirDate", result.NextAirDate).
		Int("seasons", len(result.SeasonNumbers)).
		Msg("Got show details")

	return &result, nil
}

// GetSeason gets a season with all its episodes.
func (c *Client) GetSeason(ctx context.Context, showID, seasonNumber int) (*SeasonResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/tv/%d/season/%d", c.config.BaseURL, showID, seasonNumber)

	var details SeasonDetails
	if err := c.doRequest(ctx, endpoint, c.params(), &details); err != nil {
		return nil, err
	}

	result := seasonDetailsToResult(details, seasonNumber)

	c.logger.Debug().
		Int("tmdbId", showID).
		Int("seasonNumber", seasonNumber).
		Int("episodes", len(result.Episodes)).
		Msg("Got season details")

	return &result, nil
}

// GetWatchProviders returns the names of subscription, free and ad-supported
// providers for the configured watch region, ordered by TMDB display
// priority.
func (c *Client) GetWatchProviders(ctx context.Context, showID int) ([]string, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/tv/%d/watch/providers", c.config.BaseURL, showID)

	var response WatchProvidersResponse
	if err := c.doRequest(ctx, endpoint, c.params(), &response); err != nil {
		return nil, err
	}

	region, ok := response.Results[strings.ToUpper(c.config.WatchRegion)]
	if !ok {
		return []string{}, nil
	}

	var providers []Provider
	providers = append(providers, region.Flatrate...)
	providers = append(providers, region.Free...)
	providers = append(providers, region.Ads...)
	sort.SliceStable(providers, func(i, j int) bool {
		return providers[i].DisplayPriority < providers[j].DisplayPriority
	})

	seen := make(map[string]bool, len(providers))
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		if p.ProviderName == "" || seen[p.ProviderName] {
			continue
		}
		seen[p.ProviderName] = true
		names = append(names, p.ProviderName)
	}
	return names, nil
}

// GetImageURL returns the full URL for a TMDB image path.
func (c *Client) GetImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", c.config.ImageBaseURL, size, path)
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.usesBearer() {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", endpoint).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			c.logger.Warn().
				Int("status", resp.StatusCode).
				Str("message", errResp.StatusMessage).
				Str("url", endpoint).
				Msg("TMDB API error")
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrShowNotFound
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: invalid API key", ErrAPIError)
		case http.StatusTooManyRequests:
			return ErrRateLimited
		default:
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func tvDetailsToResult(details TVDetails) ShowResult {
	result := ShowResult{
		TmdbID:       details.ID,
		Name:         showName(details.Name, details.OriginalName),
		Status:       details.Status,
		Overview:     details.Overview,
		PosterPath:   deref(details.PosterPath),
		FirstAirDate: details.FirstAirDate,
		LastAirDate:  details.LastAirDate,
	}
	if details.NextEpisodeToAir != nil {
		result.NextAirDate = details.NextEpisodeToAir.AirDate
	}

	result.SeasonNumbers = make([]int, 0, len(details.Seasons))
	for _, s := range details.Seasons {
		if s.SeasonNumber == nil {
			continue
		}
		result.SeasonNumbers = append(result.SeasonNumbers, *s.SeasonNumber)
	}
	return result
}

// seasonDetailsToResult forces every episode's season number to the season
// that was requested.
func seasonDetailsToResult(details SeasonDetails, seasonNumber int) SeasonResult {
	result := SeasonResult{
		SeasonNumber: seasonNumber,
		Name:         details.Name,
		Overview:     details.Overview,
		AirDate:      details.AirDate,
		PosterPath:   deref(details.PosterPath),
		Episodes:     make([]EpisodeResult, 0, len(details.Episodes)),
	}
	for _, ep := range details.Episodes {
		result.Episodes = append(result.Episodes, EpisodeResult{
			TmdbID:        ep.ID,
			SeasonNumber:  seasonNumber,
			EpisodeNumber: ep.EpisodeNumber,
			Name:          ep.Name,
			Overview:      ep.Overview,
			AirDate:       ep.AirDate,
			Runtime:       ep.Runtime,
		})
	}
	return result
}

func showName(name, original string) string {
	if name != "" {
		return name
	}
	if original != "" {
		return original
	}
	return "Unknown"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
