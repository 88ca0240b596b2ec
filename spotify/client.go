package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	spotifyclient "github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"moodlist/config"
	"moodlist/sentryhelper"
)

const (
	DefaultPlaylistName        = "My Mood-Based Playlist"
	DefaultPlaylistDescription = "Created with MyPlaylistMaker 🎶"
	MaxTracksPerRequest        = 100

	defaultAPIBaseURL = "https://api.spotify.com/v1/"
)

// API is the part of the Spotify Web API the playlist creator needs.
type API interface {
	CurrentUser(ctx context.Context) (*spotifyclient.PrivateUser, error)
	CreatePlaylistForUser(ctx context.Context, userID, playlistName, description string, public bool, collaborative bool) (*spotifyclient.FullPlaylist, error)
	AddItemsToPlaylist(ctx context.Context, playlistID spotifyclient.ID, uris []string) error
}

// webAPI is the zmb3 client plus a raw add-items call. AddTracksToPlaylist
// takes bare ids and rebuilds spotify:track: URIs, so any other URI form
// would reach Spotify mangled.
type webAPI struct {
	*spotifyclient.Client
	http    *http.Client
	baseURL string
}

// AddItemsToPlaylist posts uris to the playlist exactly as given.
func (w *webAPI) AddItemsToPlaylist(ctx context.Context, playlistID spotifyclient.ID, uris []string) error {
	body, err := json.Marshal(struct {
		URIs []string `json:"uris"`
	}{URIs: uris})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		w.baseURL+"playlists/"+string(playlistID)+"/tracks", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
		return nil
	}

	data, _ := io.ReadAll(resp.Body)
	var apiErr struct {
		Error spotifyclient.Error `json:"error"`
	}
	if json.Unmarshal(data, &apiErr) != nil || apiErr.Error.Message == "" {
		apiErr.Error.Message = http.StatusText(resp.StatusCode)
	}
	apiErr.Error.Status = resp.StatusCode
	return apiErr.Error
}

// ClientFactory builds an API client acting as the holder of accessToken.
type ClientFactory func(ctx context.Context, accessToken string) API

// NewClientFactory returns a factory for bearer-token clients against baseURL
// (the public Web API when empty). httpClient may be nil.
func NewClientFactory(baseURL string, httpClient *http.Client) ClientFactory {
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return func(ctx context.Context, accessToken string) API {
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
		authed := oauth2.NewClient(ctx, src)
		return &webAPI{
			Client:  spotifyclient.New(authed, spotifyclient.WithBaseURL(baseURL)),
			http:    authed,
			baseURL: baseURL,
		}
	}
}

type PlaylistRequest struct {
	AccessToken string
	TrackURIs   []string
	Name        string
}

type PlaylistResult struct {
	ID          string
	URL         string
	TracksAdded int
}

// PlaylistCreator creates a private playlist for the token holder and fills it.
type PlaylistCreator struct {
	newClient  ClientFactory
	trackLimit int
}

func NewPlaylistCreator(cfg config.SpotifyConfig, factory ClientFactory) *PlaylistCreator {
	if factory == nil {
		factory = NewClientFactory(cfg.APIBaseURL, nil)
	}
	limit := cfg.TrackLimit
	if limit <= 0 || limit > MaxTracksPerRequest {
		limit = MaxTracksPerRequest
	}
	return &PlaylistCreator{newClient: factory, trackLimit: limit}
}

// Create resolves the user, creates the playlist and attaches the first
// trackLimit tracks in one call. A failed attach leaves the empty playlist
// in place.
func (p *PlaylistCreator) Create(ctx context.Context, req PlaylistRequest) (*PlaylistResult, error) {
	if req.AccessToken == "" || len(req.TrackURIs) == 0 {
		return nil, fmt.Errorf("%w: access token and track URIs are required", ErrMissingInput)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = DefaultPlaylistName
	}

	uris := req.TrackURIs
	if len(uris) > p.trackLimit {
		log.Debugf("Truncating %d track URIs to %d", len(uris), p.trackLimit)
		uris = uris[:p.trackLimit]
	}

	client := p.newClient(ctx, req.AccessToken)

	userID, err := currentUserID(ctx, client)
	if err != nil {
		return nil, err
	}

	playlist, err := createPlaylist(ctx, client, userID, name)
	if err != nil {
		return nil, err
	}

	if err := addTracks(ctx, client, playlist.ID, uris); err != nil {
		log.Warnf("Playlist %s was created but tracks could not be added", playlist.ID)
		return nil, err
	}

	url := playlist.ExternalURLs["spotify"]
	log.Infof("Created playlist %s with %d tracks", playlist.ID, len(uris))
	return &PlaylistResult{
		ID:          string(playlist.ID),
		URL:         url,
		TracksAdded: len(uris),
	}, nil
}

func currentUserID(ctx context.Context, client API) (string, error) {
	span := sentryhelper.StartSpan(ctx, "spotify.current_user", "Get current user from Spotify API")

	user, err := client.CurrentUser(span.Context())
	if err != nil {
		upErr := upstream("current user", err)
		log.Errorf("Failed to fetch Spotify user: %v", upErr)
		sentryhelper.CaptureException(ctx, upErr)
		sentryhelper.FinishSpan(span, upErr)
		return "", upErr
	}

	sentryhelper.FinishSpan(span, nil)
	return user.ID, nil
}

func createPlaylist(ctx context.Context, client API, userID, name string) (*spotifyclient.FullPlaylist, error) {
	span := sentryhelper.StartSpan(ctx, "spotify.create_playlist", "Create playlist with Spotify API")
	span.SetTag("user_id", userID)

	playlist, err := client.CreatePlaylistForUser(span.Context(), userID, name, DefaultPlaylistDescription, false, false)
	if err != nil {
		upErr := upstream("create playlist", err)
		log.Errorf("Failed to create Spotify playlist for %s: %v", userID, upErr)
		sentryhelper.CaptureException(ctx, upErr)
		sentryhelper.FinishSpan(span, upErr)
		return nil, upErr
	}

	span.SetData("playlist_id", string(playlist.ID))
	sentryhelper.FinishSpan(span, nil)
	return playlist, nil
}

func addTracks(ctx context.Context, client API, playlistID spotifyclient.ID, uris []string) error {
	span := sentryhelper.StartSpan(ctx, "spotify.add_tracks", "Add tracks to playlist with Spotify API")
	span.SetTag("playlist_id", string(playlistID))

	if err := client.AddItemsToPlaylist(span.Context(), playlistID, uris); err != nil {
		upErr := upstream("add tracks", err)
		log.Errorf("Failed to add tracks to Spotify playlist %s: %v", playlistID, upErr)
		sentryhelper.CaptureException(ctx, upErr)
		sentryhelper.FinishSpan(span, upErr)
		return upErr
	}

	span.SetData("tracks_count", len(uris))
	sentryhelper.FinishSpan(span, nil)
	return nil
}
