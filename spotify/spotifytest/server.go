// Package spotifytest runs a fake Spotify accounts and Web API server for tests.
package spotifytest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

type TokenRequest struct {
	Form          url.Values
	Authorization string
	ContentType   string
}

type CreateRequest struct {
	UserID        string
	Name          string
	Description   string
	Public        bool
	Authorization string
}

// Server records every call it receives. Set the Fail* fields to make an
// endpoint answer with that status.
type Server struct {
	*httptest.Server

	UserID     string
	PlaylistID string

	FailToken  int
	FailUser   int
	FailCreate int
	FailAdd    int

	mu       sync.Mutex
	calls    int
	tokens   []TokenRequest
	creates  []CreateRequest
	added    [][]string
	userAuth []string
	addAuth  []string
}

func NewServer() *Server {
	s := &Server{UserID: "user-1", PlaylistID: "pl-1"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token", s.token)
	mux.HandleFunc("GET /v1/me", s.me)
	mux.HandleFunc("POST /v1/users/{user}/playlists", s.createPlaylist)
	mux.HandleFunc("POST /v1/playlists/{id}/tracks", s.addTracks)
	s.Server = httptest.NewServer(s.count(mux))
	return s
}

// APIBaseURL is the Web API base to configure the client with.
func (s *Server) APIBaseURL() string { return s.URL + "/v1/" }

func (s *Server) TokenURL() string { return s.URL + "/api/token" }

func (s *Server) AuthURL() string { return s.URL + "/authorize" }

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *Server) TokenRequests() []TokenRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TokenRequest(nil), s.tokens...)
}

func (s *Server) CreateRequests() []CreateRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CreateRequest(nil), s.creates...)
}

// AddedURIs returns the URI lists of every add-tracks call.
func (s *Server) AddedURIs() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.added...)
}

func (s *Server) AddAuthorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.addAuth...)
}

func (s *Server) UserAuthorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.userAuth...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"status": status, "message": http.StatusText(status)},
	})
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	s.mu.Lock()
	s.tokens = append(s.tokens, TokenRequest{
		Form:          r.PostForm,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
	})
	fail := s.FailToken
	s.mu.Unlock()

	if fail != 0 {
		writeJSON(w, fail, map[string]string{"error": "invalid_grant", "error_description": "Invalid authorization code"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  "access-" + r.PostForm.Get("code"),
		"refresh_token": "refresh-" + r.PostForm.Get("code"),
		"token_type":    "Bearer",
		"expires_in":    3600,
		"scope":         "user-read-private",
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.userAuth = append(s.userAuth, r.Header.Get("Authorization"))
	fail := s.FailUser
	s.mu.Unlock()

	if fail != 0 {
		writeError(w, fail)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           s.UserID,
		"display_name": "Test User",
		"uri":          "spotify:user:" + s.UserID,
	})
}

func (s *Server) createPlaylist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Public      bool   `json:"public"`
	}
	data, _ := io.ReadAll(r.Body)
	json.Unmarshal(data, &body)

	s.mu.Lock()
	s.creates = append(s.creates, CreateRequest{
		UserID:        r.PathValue("user"),
		Name:          body.Name,
		Description:   body.Description,
		Public:        body.Public,
		Authorization: r.Header.Get("Authorization"),
	})
	fail := s.FailCreate
	s.mu.Unlock()

	if fail != 0 {
		writeError(w, fail)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":            s.PlaylistID,
		"name":          body.Name,
		"public":        body.Public,
		"external_urls": map[string]string{"spotify": "https://open.spotify.com/playlist/" + s.PlaylistID},
		"tracks":        map[string]any{"total": 0, "items": []any{}},
	})
}

func (s *Server) addTracks(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URIs []string `json:"uris"`
	}
	data, _ := io.ReadAll(r.Body)
	json.Unmarshal(data, &body)

	s.mu.Lock()
	s.added = append(s.added, body.URIs)
	s.addAuth = append(s.addAuth, r.Header.Get("Authorization"))
	fail := s.FailAdd
	s.mu.Unlock()

	if fail != 0 {
		writeError(w, fail)
		return
	}
	if r.PathValue("id") != s.PlaylistID {
		writeError(w, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"snapshot_id": "snap-1"})
}
