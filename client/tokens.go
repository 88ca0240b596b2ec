package client

import (
	"errors"
	"net/url"
	"sync"

	"moodlist/spotify"
)

var ErrNoToken = errors.New("redirect carries no access token")

// TokenStore keeps the access token between page loads.
type TokenStore interface {
	Token() (string, bool)
	SetToken(token string)
}

type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func (s *MemoryTokenStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *MemoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// TokensFromRedirect reads the token pair the relay's /callback put on the
// frontend URL.
func TokensFromRedirect(raw string) (spotify.TokenPair, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return spotify.TokenPair{}, err
	}
	q := u.Query()
	pair := spotify.TokenPair{
		AccessToken:  q.Get("access_token"),
		RefreshToken: q.Get("refresh_token"),
	}
	if pair.AccessToken == "" {
		return spotify.TokenPair{}, ErrNoToken
	}
	return pair, nil
}
