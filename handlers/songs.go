package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"moodlist/catalog"
	"moodlist/songs"
)

// GetSongs returns the whole catalog, or a random sample of up to 100 songs
// when a mood is given. Without a mood the other filters are not read at all,
// so they are neither validated nor applied.
func (m *Manager) GetSongs(c *gin.Context) {
	query := c.Request.URL.Query()
	if strings.TrimSpace(query.Get("mood")) == "" {
		c.JSON(http.StatusOK, m.Songs.Query(songs.Criteria{}))
		return
	}

	criteria, err := songs.ParseCriteria(query)
	if err != nil {
		log.Debugf("Rejected song query %q: %v", c.Request.URL.RawQuery, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := m.Songs.Query(criteria)
	if result == nil {
		result = []catalog.Song{}
	}
	c.JSON(http.StatusOK, result)
}
