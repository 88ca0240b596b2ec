// Package client talks to the relay API and drives the playlist maker's
// generate/create flow.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"moodlist/catalog"
)

// APIError is a non-2xx answer from the relay.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("relay returned %d", e.Status)
	}
	return fmt.Sprintf("relay returned %d: %s", e.Status, e.Message)
}

type PlaylistRequest struct {
	AccessToken  string   `json:"access_token"`
	TrackURIs    []string `json:"track_uris"`
	PlaylistName string   `json:"playlist_name,omitempty"`
}

type API struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Songs fetches /api/songs. An empty mood returns the full catalog.
func (a *API) Songs(ctx context.Context, mood string) ([]catalog.Song, error) {
	target := a.baseURL + "/api/songs"
	if mood != "" {
		target += "?" + url.Values{"mood": {mood}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	var songs []catalog.Song
	if err := a.do(req, &songs); err != nil {
		return nil, err
	}
	log.Debugf("Fetched %d songs (mood=%q)", len(songs), mood)
	return songs, nil
}

// CreatePlaylist posts to /api/create-playlist and returns the playlist URL.
func (a *API) CreatePlaylist(ctx context.Context, body PlaylistRequest) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/create-playlist", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		PlaylistURL string `json:"playlist_url"`
	}
	if err := a.do(req, &resp); err != nil {
		return "", err
	}
	return resp.PlaylistURL, nil
}

func (a *API) do(req *http.Request, out any) error {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &body) == nil {
			apiErr.Message = body.Error
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}
