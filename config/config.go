package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

type Config struct {
	Spotify SpotifyConfig
	Catalog CatalogConfig
	Options Options
	Log     LogConfig
	Sentry  SentryConfig
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	APIBaseURL   string
	TrackLimit   int
}

type CatalogConfig struct {
	Path        string
	Table       string
	MoodField   string
	SampleLimit int
}

type Options struct {
	Port           string
	FrontendURI    string
	AllowedOrigins []string
}

type LogConfig struct {
	Level     string
	File      string
	MaxSizeMB int
}

type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
}

func (s *SentryConfig) IsEnabled() bool {
	return s.DSN != ""
}

func (l *LogConfig) HasFile() bool {
	return l.File != ""
}

// New reads the process environment. Call godotenv.Load before it so .env values are visible.
func New() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
			RedirectURL:  getString("SPOTIFY_REDIRECT_URI", "http://localhost:8888/callback"),
			AuthURL:      getString("SPOTIFY_AUTH_URL", spotifyauth.AuthURL),
			TokenURL:     getString("SPOTIFY_TOKEN_URL", spotifyauth.TokenURL),
			APIBaseURL:   getAPIBaseURL(),
			TrackLimit:   getTrackLimit(),
		},
		Catalog: CatalogConfig{
			Path:        getString("CATALOG_PATH", "clustered_spotify_songs.csv"),
			Table:       getString("CATALOG_TABLE", "songs"),
			MoodField:   getString("CATALOG_MOOD_FIELD", "cluster"),
			SampleLimit: getSampleLimit(),
		},
		Options: Options{
			Port:           getString("PORT", "8888"),
			FrontendURI:    getString("FRONTEND_URI", "http://localhost:5173"),
			AllowedOrigins: getAllowedOrigins(),
		},
		Log: LogConfig{
			Level:     getString("LOG_LEVEL", "info"),
			File:      os.Getenv("LOG_FILE"),
			MaxSizeMB: getLogMaxSize(),
		},
		Sentry: SentryConfig{
			DSN:         os.Getenv("SENTRY_DSN"),
			Environment: os.Getenv("SENTRY_ENVIRONMENT"),
			Release:     os.Getenv("RELEASE"),
		},
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Spotify.ClientID == "" {
		errs = append(errs, errors.New("SPOTIFY_CLIENT_ID must be set"))
	}
	if c.Spotify.ClientSecret == "" {
		errs = append(errs, errors.New("SPOTIFY_CLIENT_SECRET must be set"))
	}
	if c.Catalog.Path == "" {
		errs = append(errs, errors.New("CATALOG_PATH must not be empty"))
	}
	return errors.Join(errs...)
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getAPIBaseURL() string {
	base := getString("SPOTIFY_API_URL", "https://api.spotify.com/v1/")
	// the spotify client joins paths onto the base without a separator
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

func getTrackLimit() int {
	return getClamped("SPOTIFY_TRACK_LIMIT", 100, 1, 100) // Spotify accepts at most 100 per add call
}

func getSampleLimit() int {
	return getClamped("SONG_SAMPLE_LIMIT", 100, 1, 100)
}

func getLogMaxSize() int {
	return getClamped("LOG_MAX_SIZE_MB", 10, 1, 1024)
}

// getClamped falls back to def for missing or non-positive values and caps at max.
func getClamped(key string, def, min, max int) int {
	str := os.Getenv(key)
	if str == "" {
		return def
	}
	n, err := strconv.Atoi(str)
	if err != nil || n <= 0 {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func getAllowedOrigins() []string {
	raw := os.Getenv("CORS_ALLOWED_ORIGINS")
	if strings.TrimSpace(raw) == "" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
