package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rerun-tv/rerun/internal/logger"
)

const (
	tvdbBaseURL = "https://api4.thetvdb.com/v4"

	// Tokens are valid for 30 days; refresh a day early
	tvdbTokenLifetime = 29 * 24 * time.Hour
)

// EpisodeMeta is the enrichment the catalog stores for episodic content
type EpisodeMeta struct {
	SeriesID     int
	SeriesName   string
	EpisodeTitle string
	Overview     string
	AirDate      string
}

// TVDBClient fetches episode metadata from TheTVDB v4 API. It caches
// lookups per process so rescans of a large library stay cheap.
type TVDBClient struct {
	apiKey string
	client *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	seriesIDs   map[string]int
	cache       map[string]*EpisodeMeta
}

// NewTVDBClient creates a TVDB client. Returns nil when no API key is
// configured, which disables enrichment entirely.
func NewTVDBClient(apiKey string) *TVDBClient {
	if apiKey == "" {
		return nil
	}
	return &TVDBClient{
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 10 * time.Second},
		seriesIDs: make(map[string]int),
		cache:     make(map[string]*EpisodeMeta),
	}
}

// EpisodeMetadata looks up a series by name, then fetches the given episode
func (c *TVDBClient) EpisodeMetadata(ctx context.Context, series string, season, episode int) (*EpisodeMeta, error) {
	cacheKey := fmt.Sprintf("%s-S%dE%d", series, season, episode)

	c.mu.Lock()
	if meta, ok := c.cache[cacheKey]; ok {
		c.mu.Unlock()
		return meta, nil
	}
	c.mu.Unlock()

	seriesID, seriesName, err := c.searchSeries(ctx, series)
	if err != nil {
		return nil, err
	}

	meta, err := c.episode(ctx, seriesID, season, episode)
	if err != nil {
		return nil, err
	}
	meta.SeriesID = seriesID
	if meta.SeriesName == "" {
		meta.SeriesName = seriesName
	}

	c.mu.Lock()
	c.cache[cacheKey] = meta
	c.mu.Unlock()

	return meta, nil
}

// searchSeries resolves a series name to its TVDB id, cached per name
func (c *TVDBClient) searchSeries(ctx context.Context, series string) (int, string, error) {
	c.mu.Lock()
	if id, ok := c.seriesIDs[series]; ok {
		c.mu.Unlock()
		return id, series, nil
	}
	c.mu.Unlock()

	var result struct {
		Data []struct {
			TVDBID string `json:"tvdb_id"`
			Name   string `json:"name"`
		} `json:"data"`
	}

	endpoint := "/search?query=" + url.QueryEscape(series) + "&type=series"
	if err := c.get(ctx, endpoint, &result); err != nil {
		return 0, "", fmt.Errorf("series search failed: %w", err)
	}
	if len(result.Data) == 0 {
		return 0, "", fmt.Errorf("no TVDB series match for %q", series)
	}

	id, err := strconv.Atoi(result.Data[0].TVDBID)
	if err != nil {
		return 0, "", fmt.Errorf("unexpected TVDB series id %q", result.Data[0].TVDBID)
	}

	c.mu.Lock()
	c.seriesIDs[series] = id
	c.mu.Unlock()

	return id, result.Data[0].Name, nil
}

// episode fetches one episode of a series by season and episode number
func (c *TVDBClient) episode(ctx context.Context, seriesID, season, episode int) (*EpisodeMeta, error) {
	var result struct {
		Data struct {
			Episodes []struct {
				Name     string `json:"name"`
				Overview string `json:"overview"`
				Aired    string `json:"aired"`
			} `json:"episodes"`
		} `json:"data"`
	}

	endpoint := fmt.Sprintf("/series/%d/episodes/default?season=%d&episodeNumber=%d", seriesID, season, episode)
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("episode lookup failed: %w", err)
	}
	if len(result.Data.Episodes) == 0 {
		return nil, fmt.Errorf("TVDB has no S%02dE%02d for series %d", season, episode, seriesID)
	}

	ep := result.Data.Episodes[0]
	return &EpisodeMeta{
		EpisodeTitle: ep.Name,
		Overview:     ep.Overview,
		AirDate:      ep.Aired,
	}, nil
}

// get performs an authenticated GET against the TVDB API
func (c *TVDBClient) get(ctx context.Context, endpoint string, out interface{}) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tvdbBaseURL+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TVDB returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// bearerToken logs in with the API key when the cached token is missing or
// about to expire
func (c *TVDBClient) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{"apikey": c.apiKey})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tvdbBaseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("TVDB login failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("TVDB login returned status %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("TVDB login response malformed: %w", err)
	}
	if result.Data.Token == "" {
		return "", fmt.Errorf("TVDB login returned no token")
	}

	c.token = result.Data.Token
	c.tokenExpiry = time.Now().Add(tvdbTokenLifetime)

	logger.Log.Debug().Msg("TVDB token refreshed")
	return c.token, nil
}
