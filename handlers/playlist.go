package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"moodlist/spotify"
)

const (
	missingPlaylistInput = "Missing access token or track URIs"
	createPlaylistFailed = "Failed to create playlist"
)

type createPlaylistRequest struct {
	AccessToken  string   `json:"access_token"`
	TrackURIs    []string `json:"track_uris"`
	PlaylistName string   `json:"playlist_name"`
}

type createPlaylistResponse struct {
	PlaylistURL string `json:"playlist_url"`
}

func (m *Manager) CreatePlaylist(c *gin.Context) {
	var req createPlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debugf("Invalid create-playlist body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": missingPlaylistInput})
		return
	}

	result, err := m.Playlists.Create(c.Request.Context(), spotify.PlaylistRequest{
		AccessToken: req.AccessToken,
		TrackURIs:   req.TrackURIs,
		Name:        req.PlaylistName,
	})
	if err != nil {
		if errors.Is(err, spotify.ErrMissingInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": missingPlaylistInput})
			return
		}
		// upstream failures are already logged and reported by the creator
		var upErr *spotify.UpstreamError
		switch {
		case !errors.As(err, &upErr):
			log.Errorf("Error creating playlist: %v", err)
		case upErr.Unauthorized():
			log.Warn("Spotify rejected the access token while creating a playlist")
		case upErr.RateLimited():
			log.Warn("Spotify rate limited playlist creation")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": createPlaylistFailed})
		return
	}

	c.JSON(http.StatusOK, createPlaylistResponse{PlaylistURL: result.URL})
}
