// Package catalog is a thin client for the music catalog HTTP API. A Client
// is bound to a single access token; the credential manager hands one out
// per request.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://api.spotify.com/v1"
	defaultTimeout = 10 * time.Second
)

// Client performs authenticated calls against the catalog API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a catalog client bound to accessToken.
func NewClient(accessToken string, opts ...Option) *Client {
	c := &Client{
		token:      accessToken,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the access token the client is bound to.
func (c *Client) Token() string {
	return c.token
}

// do performs an authenticated request and decodes the JSON response into
// result when non-nil.
func (c *Client) do(ctx context.Context, method, endpoint string, body, result interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("catalog API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// SearchTracks searches the catalog for tracks matching query.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=%d", url.QueryEscape(query), limit)
	var resp searchResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tracks.Items, nil
}

// SavedTracks retrieves one page of the user's saved tracks.
func (c *Client) SavedTracks(ctx context.Context, limit, offset int) (*SavedTrackPage, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", limit, offset)
	var page SavedTrackPage
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// TopTracks retrieves the user's top tracks. timeRange may be empty for the
// API default, or one of short_term, medium_term, long_term.
func (c *Client) TopTracks(ctx context.Context, limit int, timeRange string) ([]Track, error) {
	endpoint := fmt.Sprintf("/me/top/tracks?limit=%d", limit)
	if timeRange != "" {
		endpoint += "&time_range=" + url.QueryEscape(timeRange)
	}
	var page trackPage
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// TopArtists retrieves the user's top artists.
func (c *Client) TopArtists(ctx context.Context, limit int, timeRange string) ([]Artist, error) {
	endpoint := fmt.Sprintf("/me/top/artists?limit=%d", limit)
	if timeRange != "" {
		endpoint += "&time_range=" + url.QueryEscape(timeRange)
	}
	var page artistPage
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// RecentlyPlayed retrieves the user's recently played tracks.
func (c *Client) RecentlyPlayed(ctx context.Context, limit int) ([]PlayHistory, error) {
	endpoint := fmt.Sprintf("/me/player/recently-played?limit=%d", limit)
	var resp recentlyPlayedResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Artist retrieves a single artist by ID.
func (c *Client) Artist(ctx context.Context, artistID string) (*Artist, error) {
	var artist Artist
	if err := c.do(ctx, http.MethodGet, "/artists/"+url.PathEscape(artistID), nil, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// CurrentUser retrieves the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreatePlaylist creates a playlist owned by userID.
func (c *Client) CreatePlaylist(ctx context.Context, userID, name string, public bool) (*Playlist, error) {
	body := map[string]interface{}{
		"name":   name,
		"public": public,
	}
	var playlist Playlist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := c.do(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// AddTracks adds the given track IDs to a playlist in one batch call.
func (c *Client) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	uris := make([]string, len(trackIDs))
	for i, id := range trackIDs {
		uris[i] = "spotify:track:" + id
	}
	body := map[string]interface{}{"uris": uris}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return c.do(ctx, http.MethodPost, endpoint, body, nil)
}
