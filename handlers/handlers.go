// Package handlers exposes the HTTP surface: the OAuth redirects, the song
// query and playlist creation. Handlers hold no per-user state.
package handlers

import (
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"moodlist/catalog"
	"moodlist/pages"
	"moodlist/songs"
	"moodlist/spotify"
)

// Authenticator is the OAuth relay.
type Authenticator interface {
	AuthURL() string
	Exchange(ctx context.Context, code string) (spotify.TokenPair, error)
	FrontendRedirect(pair spotify.TokenPair) (string, error)
}

type PlaylistCreator interface {
	Create(ctx context.Context, req spotify.PlaylistRequest) (*spotify.PlaylistResult, error)
}

type SongQuerier interface {
	Query(c songs.Criteria) []catalog.Song
	CatalogSize() int
}

type Manager struct {
	Auth      Authenticator
	Playlists PlaylistCreator
	Songs     SongQuerier
	Options   Options
}

type Options struct {
	AllowedOrigins []string
	// Middleware runs after request logging and before CORS, e.g. sentrygin.
	Middleware []gin.HandlerFunc
}

func NewManager(auth Authenticator, playlists PlaylistCreator, songs SongQuerier, options Options) *Manager {
	return &Manager{
		Auth:      auth,
		Playlists: playlists,
		Songs:     songs,
		Options:   options,
	}
}

// Router builds the gin engine with every route registered.
func (m *Manager) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger())
	router.Use(m.Options.Middleware...)
	router.Use(CORS(m.Options.AllowedOrigins))

	router.SetHTMLTemplate(template.Must(template.New("index").Parse(pages.Index)))

	router.GET("/", m.Index)
	router.GET("/healthz", m.Health)
	router.GET("/login", m.Login)
	router.GET("/callback", m.Callback)

	api := router.Group("/api")
	api.GET("/songs", m.GetSongs)
	api.POST("/create-playlist", m.CreatePlaylist)

	return router
}

func (m *Manager) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"songs":  m.Songs.CatalogSize(),
	})
}

func (m *Manager) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index", pages.NewIndexData(""))
}
