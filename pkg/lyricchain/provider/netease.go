// Package provider is the HTTP client for the remote lyric provider
// (netease-compatible third-party API).
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Error taxonomy for remote calls. All of these are recovered by the
// resolution engine; none aborts a resolution.
var (
	// ErrUnavailable covers network failures, timeouts and non-200 statuses.
	ErrUnavailable = errors.New("lyric provider unavailable")
	// ErrMalformed covers 200 responses missing the expected JSON shape.
	ErrMalformed = errors.New("malformed provider response")
	// ErrNoLyric means the provider has no lyric payload for a song.
	ErrNoLyric = errors.New("no lyric data")
)

// Song is one search candidate in provider rank order.
type Song struct {
	ID     int64
	Name   string
	Artist string
}

// Client talks to a netease-style lyric API:
//
//	GET {base}/search?keywords=<text>&limit=<n>&type=1
//	GET {base}/lyric?id=<song_id>
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a provider client. Every request is bounded by
// timeout on top of whatever deadline the caller's context carries.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type searchResponse struct {
	Result struct {
		Songs []struct {
			ID      int64  `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"songs"`
	} `json:"result"`
}

type lyricResponse struct {
	Lrc struct {
		Lyric string `json:"lyric"`
	} `json:"lrc"`
}

// Search queries the provider for songs matching keyword, returning up to
// limit candidates in provider rank order. An empty result is not an
// error.
func (c *Client) Search(ctx context.Context, keyword string, limit int) ([]Song, error) {
	params := url.Values{}
	params.Set("keywords", keyword)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("type", "1")
	searchURL := c.baseURL + "/search?" + params.Encode()

	var resp searchResponse
	if err := c.getJSON(ctx, searchURL, &resp); err != nil {
		return nil, err
	}

	songs := make([]Song, 0, len(resp.Result.Songs))
	for _, s := range resp.Result.Songs {
		artist := "Unknown"
		if len(s.Artists) > 0 && s.Artists[0].Name != "" {
			artist = s.Artists[0].Name
		}
		songs = append(songs, Song{ID: s.ID, Name: s.Name, Artist: artist})
	}
	return songs, nil
}

// Lyric fetches the raw LRC text for a song. ErrNoLyric is returned when
// the provider responds cleanly but has no lyric payload.
func (c *Client) Lyric(ctx context.Context, songID int64) (string, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(songID, 10))
	lyricURL := c.baseURL + "/lyric?" + params.Encode()

	var resp lyricResponse
	if err := c.getJSON(ctx, lyricURL, &resp); err != nil {
		return "", err
	}
	if resp.Lrc.Lyric == "" {
		return "", fmt.Errorf("%w for song %d", ErrNoLyric, songID)
	}
	return resp.Lrc.Lyric, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request %s: %w", reqURL, err)
	}
	req.Header.Set("User-Agent", "lyricchain/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrUnavailable, reqURL, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, reqURL, err)
	}
	return nil
}
