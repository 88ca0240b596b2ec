package config

import (
	"reflect"
	"strings"
	"testing"
)

func TestGetTrackLimit(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"empty", "", 100},
		{"invalid", "foo", 100},
		{"zero", "0", 100},
		{"negative", "-10", 100},
		{"min", "1", 1},
		{"mid", "50", 50},
		{"max", "100", 100},
		{"over", "150", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SPOTIFY_TRACK_LIMIT", tt.env)
			if got := getTrackLimit(); got != tt.want {
				t.Errorf("getTrackLimit() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestGetSampleLimit(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"empty", "", 100},
		{"invalid", "abc", 100},
		{"negative", "-1", 100},
		{"small", "20", 20},
		{"over", "101", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SONG_SAMPLE_LIMIT", tt.env)
			if got := getSampleLimit(); got != tt.want {
				t.Errorf("getSampleLimit() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestGetLogMaxSize(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"empty", "", 10},
		{"invalid", "ten", 10},
		{"valid", "50", 50},
		{"above_max", "4096", 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_MAX_SIZE_MB", tt.env)
			if got := getLogMaxSize(); got != tt.want {
				t.Errorf("getLogMaxSize() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestGetAPIBaseURL(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{"default", "", "https://api.spotify.com/v1/"},
		{"adds slash", "http://127.0.0.1:9000/v1", "http://127.0.0.1:9000/v1/"},
		{"keeps slash", "http://127.0.0.1:9000/", "http://127.0.0.1:9000/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SPOTIFY_API_URL", tt.env)
			if got := getAPIBaseURL(); got != tt.want {
				t.Errorf("getAPIBaseURL() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestGetAllowedOrigins(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want []string
	}{
		{"empty", "", []string{"*"}},
		{"blank entries", " , ,", []string{"*"}},
		{"single", "http://localhost:5173", []string{"http://localhost:5173"}},
		{"many", "http://a.test, http://b.test", []string{"http://a.test", "http://b.test"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CORS_ALLOWED_ORIGINS", tt.env)
			if got := getAllowedOrigins(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("getAllowedOrigins() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "FRONTEND_URI", "SPOTIFY_REDIRECT_URI", "CATALOG_PATH", "CATALOG_MOOD_FIELD", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := New()
	if cfg.Options.Port != "8888" {
		t.Errorf("Port = %q, want 8888", cfg.Options.Port)
	}
	if cfg.Options.FrontendURI != "http://localhost:5173" {
		t.Errorf("FrontendURI = %q", cfg.Options.FrontendURI)
	}
	if cfg.Spotify.RedirectURL != "http://localhost:8888/callback" {
		t.Errorf("RedirectURL = %q", cfg.Spotify.RedirectURL)
	}
	if cfg.Catalog.MoodField != "cluster" {
		t.Errorf("MoodField = %q, want cluster", cfg.Catalog.MoodField)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")

	err := New().Validate()
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	for _, want := range []string{"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q does not mention %s", err, want)
		}
	}

	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")
	if err := New().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
