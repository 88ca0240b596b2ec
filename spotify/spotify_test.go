package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"moodlist/config"
	"moodlist/spotify/spotifytest"
)

func testConfig(srv *spotifytest.Server) config.SpotifyConfig {
	return config.SpotifyConfig{
		ClientID:     "client-id",
		ClientSecret: "super-secret",
		RedirectURL:  "http://localhost:8888/callback",
		AuthURL:      srv.AuthURL(),
		TokenURL:     srv.TokenURL(),
		APIBaseURL:   srv.APIBaseURL(),
		TrackLimit:   100,
	}
}

func uris(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("spotify:track:t%03d", i)
	}
	return out
}

func TestAuthURL(t *testing.T) {
	srv := spotifytest.NewServer()
	defer srv.Close()

	auth := NewAuthenticator(testConfig(srv), "http://localhost:5173")
	u, err := url.Parse(auth.AuthURL())
	if err != nil {
		t.Fatalf("AuthURL() is not a URL: %v", err)
	}

	if got := u.Scheme + "://" + u.Host + u.Path; got != srv.AuthURL() {
		t.Errorf("endpoint = %q, want %q", got, srv.AuthURL())
	}
	q := u.Query()
	checks := map[string]string{
		"response_type": "code",
		"client_id":     "client-id",
		"redirect_uri":  "http://localhost:8888/callback",
		"scope":         "user-read-private user-read-email playlist-modify-public playlist-modify-private",
	}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if q.Has("state") {
		t.Error("unexpected state parameter")
	}
	if strings.Contains(u.String(), "super-secret") {
		t.Error("authorize URL leaks the client secret")
	}
}

func TestExchange(t *testing.T) {
	srv := spotifytest.NewServer()
	defer srv.Close()

	auth := NewAuthenticator(testConfig(srv), "http://localhost:5173")
	pair, err := auth.Exchange(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if pair.AccessToken != "access-abc" || pair.RefreshToken != "refresh-abc" {
		t.Errorf("pair = %+v", pair)
	}

	reqs := srv.TokenRequests()
	if len(reqs) != 1 {
		t.Fatalf("token requests = %d, want 1", len(reqs))
	}
	req := reqs[0]
	if !strings.HasPrefix(req.ContentType, "application/x-www-form-urlencoded") {
		t.Errorf("Content-Type = %q", req.ContentType)
	}
	if req.Authorization != "" {
		t.Errorf("credentials sent in header %q, want form body", req.Authorization)
	}
	want := map[string]string{
		"grant_type":    "authorization_code",
		"code":          "abc",
		"redirect_uri":  "http://localhost:8888/callback",
		"client_id":     "client-id",
		"client_secret": "super-secret",
	}
	for key, v := range want {
		if got := req.Form.Get(key); got != v {
			t.Errorf("form %s = %q, want %q", key, got, v)
		}
	}
}

func TestExchangeFailure(t *testing.T) {
	srv := spotifytest.NewServer()
	defer srv.Close()
	srv.FailToken = http.StatusBadRequest

	auth := NewAuthenticator(testConfig(srv), "http://localhost:5173")
	_, err := auth.Exchange(context.Background(), "bad")

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("Exchange() error = %v, want *UpstreamError", err)
	}
	if upErr.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", upErr.Status)
	}
	if strings.Contains(err.Error(), "super-secret") {
		t.Error("error leaks the client secret")
	}
}

func TestExchangeNetworkFailure(t *testing.T) {
	srv := spotifytest.NewServer()
	cfg := testConfig(srv)
	srv.Close()

	_, err := NewAuthenticator(cfg, "http://localhost:5173").Exchange(context.Background(), "abc")
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("Exchange() error = %v, want *UpstreamError", err)
	}
	if upErr.Status != 0 {
		t.Errorf("Status = %d, want 0 for network failure", upErr.Status)
	}
}

func TestExchangeMissingCode(t *testing.T) {
	srv := spotifytest.NewServer()
	defer srv.Close()

	_, err := NewAuthenticator(testConfig(srv), "http://localhost:5173").Exchange(context.Background(), "")
	if !errors.Is(err, ErrMissingInput) {
		t.Errorf("Exchange() error = %v, want ErrMissingInput", err)
	}
	if srv.Calls() != 0 {
		t.Errorf("calls = %d, want 0", srv.Calls())
	}
}

func TestFrontendRedirect(t *testing.T) {
	tests := []struct {
		name     string
		frontend string
		want     url.Values
	}{
		{"plain", "http://localhost:5173", url.Values{"access_token": {"a b"}, "refresh_token": {"r&1"}}},
		{"existing query", "http://localhost:5173/app?tab=make", url.Values{"tab": {"make"}, "access_token": {"a b"}, "refresh_token": {"r&1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := NewAuthenticator(config.SpotifyConfig{}, tt.frontend)
			got, err := auth.FrontendRedirect(TokenPair{AccessToken: "a b", RefreshToken: "r&1"})
			if err != nil {
				t.Fatalf("FrontendRedirect() error = %v", err)
			}
			u, err := url.Parse(got)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(got, strings.SplitN(tt.frontend, "?", 2)[0]) {
				t.Errorf("redirect %q does not target %q", got, tt.frontend)
			}
			for key := range tt.want {
				if u.Query().Get(key) != tt.want.Get(key) {
					t.Errorf("%s = %q, want %q", key, u.Query().Get(key), tt.want.Get(key))
				}
			}
		})
	}
}

func TestCreatePlaylist(t *testing.T) {
	srv := spotifytest.NewServer()
	defer srv.Close()

	creator := NewPlaylistCreator(testConfig(srv), nil)
	res, err := creator.Create(context.Background(), PlaylistRequest{
		AccessToken: "tok",
		TrackURIs:   uris(3),
		Name:        "Rainy Day",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if res.URL != "https://open.spotify.com/playlist/pl-1" {
		t.Errorf("URL = %q", res.URL)
	}
	if res.TracksAdded != 3 {
		t.Errorf("TracksAdded = %d, want 3", res.TracksAdded)
	}

	if auth := srv.UserAuthorizations(); len(auth) != 1 || auth[0] != "Bearer tok" {
		t.Errorf("user lookup authorization = %v", auth)
	}
	creates := srv.CreateRequests()
	if len(creates) != 1 {
		t.Fatalf("create calls = %d, want 1", len(creates))
	}
	c := creates[0]
	if c.UserID != "user-1" || c.Name != "Rainy Day" || c.Public || c.Description != "Created with MyPlaylistMaker 🎶" {
		t.Errorf("create request = %+v", c)
	}
	added := srv.AddedURIs()
	if len(added) != 1 || strings.Join(added[0], ",") != strings.Join(uris(3), ",") {
		t.Errorf("added = %v", added)
	}
}

func TestCreatePlaylistDefaultName(t *testing.T) {
	srv := spotifytest.NewServer()
	defer srv.Close()

	_, err := NewPlaylistCreator(testConfig(srv), nil).Create(context.Background(), PlaylistRequest{
		AccessToken: "tok",
		TrackURIs:   uris(1),
		Name:        "  ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if creates := srv.CreateRequests(); len(creates) != 1 || creates[0].Name != DefaultPlaylistName {
		t.Errorf("create requests = %+v", creates)
	}
}

func TestCreatePlaylistTruncates(t *testing.T) {
	srv := spotifytest.NewServer()
	defer srv.Close()

	res, err := NewPlaylistCreator(testConfig(srv), nil).Create(context.Background(), PlaylistRequest{
		AccessToken: "tok",
		TrackURIs:   uris(150),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	added := srv.AddedURIs()
	if len(added) != 1 {
		t.Fatalf("add calls = %d, want 1", len(added))
	}
	if len(added[0]) != 100 {
		t.Errorf("attached %d tracks, want 100", len(added[0]))
	}
	if added[0][0] != "spotify:track:t000" || added[0][99] != "spotify:track:t099" {
		t.Errorf("attached tracks are not the first 100: %s..%s", added[0][0], added[0][99])
	}
	if res.TracksAdded != 100 {
		t.Errorf("TracksAdded = %d, want 100", res.TracksAdded)
	}
}

func TestCreatePlaylistMissingInput(t *testing.T) {
	tests := []struct {
		name string
		req  PlaylistRequest
	}{
		{"no tracks", PlaylistRequest{AccessToken: "tok"}},
		{"empty tracks", PlaylistRequest{AccessToken: "tok", TrackURIs: []string{}}},
		{"no token", PlaylistRequest{TrackURIs: uris(2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := spotifytest.NewServer()
			defer srv.Close()

			_, err := NewPlaylistCreator(testConfig(srv), nil).Create(context.Background(), tt.req)
			if !errors.Is(err, ErrMissingInput) {
				t.Errorf("Create() error = %v, want ErrMissingInput", err)
			}
			if srv.Calls() != 0 {
				t.Errorf("network calls = %d, want 0", srv.Calls())
			}
		})
	}
}

func TestCreatePlaylistUpstreamFailures(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(s *spotifytest.Server)
		wantStatus  int
		wantCreates int
		wantAdds    int
	}{
		{"token rejected", func(s *spotifytest.Server) { s.FailUser = http.StatusUnauthorized }, http.StatusUnauthorized, 0, 0},
		{"rate limited on create", func(s *spotifytest.Server) { s.FailCreate = http.StatusTooManyRequests }, http.StatusTooManyRequests, 1, 0},
		{"bad track uri", func(s *spotifytest.Server) { s.FailAdd = http.StatusBadRequest }, http.StatusBadRequest, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := spotifytest.NewServer()
			defer srv.Close()
			tt.setup(srv)

			_, err := NewPlaylistCreator(testConfig(srv), nil).Create(context.Background(), PlaylistRequest{
				AccessToken: "tok",
				TrackURIs:   uris(5),
			})
			var upErr *UpstreamError
			if !errors.As(err, &upErr) {
				t.Fatalf("Create() error = %v, want *UpstreamError", err)
			}
			if upErr.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", upErr.Status, tt.wantStatus)
			}
			if got := len(srv.CreateRequests()); got != tt.wantCreates {
				t.Errorf("create calls = %d, want %d", got, tt.wantCreates)
			}
			if got := len(srv.AddedURIs()); got != tt.wantAdds {
				t.Errorf("add calls = %d, want %d", got, tt.wantAdds)
			}
		})
	}
}

func TestCreatePlaylistForwardsURIsUnchanged(t *testing.T) {
	srv := spotifytest.NewServer()
	defer srv.Close()

	in := []string{"spotify:episode:abc", "spotify:track:def", "spotify:local:Artist:Album:Song:180"}
	_, err := NewPlaylistCreator(testConfig(srv), nil).Create(context.Background(), PlaylistRequest{
		AccessToken: "tok",
		TrackURIs:   in,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	added := srv.AddedURIs()
	if len(added) != 1 {
		t.Fatalf("add calls = %d, want 1", len(added))
	}
	if got, want := strings.Join(added[0], ","), strings.Join(in, ","); got != want {
		t.Errorf("attached %s, want %s", got, want)
	}
	if auth := srv.AddAuthorizations(); len(auth) != 1 || auth[0] != "Bearer tok" {
		t.Errorf("add tracks authorization = %v", auth)
	}
}

func TestUpstreamErrorFlags(t *testing.T) {
	if !(&UpstreamError{Status: http.StatusUnauthorized}).Unauthorized() {
		t.Error("401 should be unauthorized")
	}
	if !(&UpstreamError{Status: http.StatusTooManyRequests}).RateLimited() {
		t.Error("429 should be rate limited")
	}
	wrapped := &UpstreamError{Op: "x", Err: context.DeadlineExceeded}
	if !errors.Is(wrapped, context.DeadlineExceeded) {
		t.Error("UpstreamError should unwrap")
	}
}
