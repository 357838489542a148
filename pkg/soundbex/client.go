// Package soundbex is a Go client for the soundbex HTTP API.
package soundbex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"soundbex/internal/core"
)

const defaultTimeout = 90 * time.Second

// APIError is a failed request that the server answered with success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("soundbex API error (status %d): %s", e.StatusCode, e.Message)
}

// Song is a song as returned by search and song lookup.
type Song struct {
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Author    string  `json:"author"`
	Duration  string  `json:"duration"`
	Thumbnail *string `json:"thumbnail"`
	VideoID   string  `json:"videoId"`
}

// SearchResult is the answer to a search.
type SearchResult struct {
	Query        string `json:"query"`
	TotalResults int    `json:"totalResults"`
	Result       []Song `json:"result"`
}

// Stream is a resolved playback URL.
type Stream struct {
	StreamURL string  `json:"streamUrl"`
	VideoID   string  `json:"videoId"`
	Type      string  `json:"type"`
	Source    string  `json:"source"`
	Bitrate   *int    `json:"bitrate"`
	Format    *string `json:"format"`
}

// Fallback reports whether the server could only return the watch page.
func (s *Stream) Fallback() bool {
	return s.Type == string(core.KindRawPageFallback)
}

// PlaylistState is a playlist's current song and navigation flags.
type PlaylistState struct {
	Song         core.SongEntry `json:"song"`
	CurrentIndex int            `json:"currentIndex"`
	TotalSongs   int            `json:"totalSongs"`
	HasNext      bool           `json:"hasNext"`
	HasPrevious  bool           `json:"hasPrevious"`
}

// CreatedPlaylist is the answer to a playlist creation.
type CreatedPlaylist struct {
	PlaylistID string `json:"playlistId"`
	TotalSongs int    `json:"totalSongs"`
}

// Client talks to a soundbex server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL. A nil httpClient uses a default
// one with a timeout long enough for stream resolution.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Search runs a song search.
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	var out SearchResult
	if err := c.do(ctx, http.MethodGet, "/api/search?q="+url.QueryEscape(query), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stream resolves a playable URL for videoID.
func (c *Client) Stream(ctx context.Context, videoID string) (*Stream, error) {
	var out Stream
	if err := c.do(ctx, http.MethodGet, "/api/stream?videoId="+url.QueryEscape(videoID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Song fetches metadata for videoID.
func (c *Client) Song(ctx context.Context, videoID string) (*Song, error) {
	var out struct {
		Song Song `json:"song"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/song/"+url.PathEscape(videoID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Song, nil
}

// CreatePlaylist stores songs as a new playlist.
func (c *Client) CreatePlaylist(ctx context.Context, songs []core.SongEntry) (*CreatedPlaylist, error) {
	payload := struct {
		Songs []core.SongEntry `json:"songs"`
	}{Songs: songs}

	var out CreatedPlaylist
	if err := c.do(ctx, http.MethodPost, "/api/playlist", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Next advances the playlist.
func (c *Client) Next(ctx context.Context, playlistID string) (*PlaylistState, error) {
	return c.playlist(ctx, playlistID, "next")
}

// Previous moves the playlist back.
func (c *Client) Previous(ctx context.Context, playlistID string) (*PlaylistState, error) {
	return c.playlist(ctx, playlistID, "previous")
}

// Current returns the playlist's current song.
func (c *Client) Current(ctx context.Context, playlistID string) (*PlaylistState, error) {
	return c.playlist(ctx, playlistID, "current")
}

func (c *Client) playlist(ctx context.Context, playlistID, op string) (*PlaylistState, error) {
	var out PlaylistState
	if err := c.do(ctx, http.MethodGet, "/api/playlist/"+url.PathEscape(playlistID)+"/"+op, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("invalid response: %v", err)}
	}
	if !envelope.Success || resp.StatusCode >= http.StatusBadRequest {
		msg := envelope.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return json.Unmarshal(raw, out)
}
