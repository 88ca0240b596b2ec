package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"moodlist/sentryhelper"
)

const tokenExchangeFailed = "Token exchange failed"

func (m *Manager) Login(c *gin.Context) {
	c.Redirect(http.StatusFound, m.Auth.AuthURL())
}

// Callback finishes the authorization code flow and hands both tokens to the
// frontend through the redirect URL.
func (m *Manager) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	if reason := c.Query("error"); reason != "" {
		log.Warnf("Authorization denied by provider: %s", reason)
		sentryhelper.AddBreadcrumb(ctx, "auth", "authorization denied: "+reason)
		c.JSON(http.StatusInternalServerError, gin.H{"error": tokenExchangeFailed})
		return
	}

	// Exchange logs and reports its own failures.
	pair, err := m.Auth.Exchange(ctx, c.Query("code"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": tokenExchangeFailed})
		return
	}

	target, err := m.Auth.FrontendRedirect(pair)
	if err != nil {
		log.Errorf("Error building frontend redirect: %v", err)
		sentryhelper.CaptureException(ctx, errors.New("invalid frontend redirect"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": tokenExchangeFailed})
		return
	}

	c.Redirect(http.StatusFound, target)
}
