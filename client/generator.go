package client

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	log "github.com/sirupsen/logrus"

	"moodlist/catalog"
	"moodlist/songs"
)

// DefaultDisplayLimit caps how many songs a generated result shows.
const DefaultDisplayLimit = 20

var (
	ErrNotReady      = errors.New("no results to create a playlist from")
	ErrBusy          = errors.New("songs are still loading")
	ErrNotLoggedIn   = errors.New("please log in with Spotify first")
	ErrNoValidTracks = errors.New("no valid tracks to add")
)

type State int

const (
	Idle State = iota
	Loading
	Results
	Empty
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Results:
		return "results"
	case Empty:
		return "empty"
	}
	return "unknown"
}

// Backend is the part of the relay API the generator needs.
type Backend interface {
	Songs(ctx context.Context, mood string) ([]catalog.Song, error)
	CreatePlaylist(ctx context.Context, req PlaylistRequest) (string, error)
}

type GeneratorOption func(*Generator)

func WithDisplayLimit(limit int) GeneratorOption {
	return func(g *Generator) {
		if limit > 0 {
			g.limit = limit
		}
	}
}

func WithMoodField(field string) GeneratorOption {
	return func(g *Generator) {
		if field != "" {
			g.moodField = field
		}
	}
}

func WithShuffle(shuffle func(n int, swap func(i, j int))) GeneratorOption {
	return func(g *Generator) {
		if shuffle != nil {
			g.shuffle = shuffle
		}
	}
}

// Generator loads the catalog once, filters it locally on every Generate and
// turns the current result into a playlist.
type Generator struct {
	backend   Backend
	tokens    TokenStore
	limit     int
	moodField string
	shuffle   func(n int, swap func(i, j int))

	mu          sync.Mutex
	state       State
	loaded      bool
	catalog     []catalog.Song
	results     []catalog.Song
	playlistURL string
}

func NewGenerator(backend Backend, tokens TokenStore, opts ...GeneratorOption) *Generator {
	g := &Generator{
		backend:   backend,
		tokens:    tokens,
		limit:     DefaultDisplayLimit,
		moodField: catalog.FieldCluster,
		shuffle:   rand.Shuffle,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Results returns a copy of the songs currently shown.
func (g *Generator) Results() []catalog.Song {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]catalog.Song(nil), g.results...)
}

// PlaylistURL is the last created playlist, cleared by Generate.
func (g *Generator) PlaylistURL() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playlistURL
}

// Load fetches the full catalog. Later calls are no-ops once it succeeds.
func (g *Generator) Load(ctx context.Context) error {
	g.mu.Lock()
	if g.loaded {
		g.mu.Unlock()
		return nil
	}
	g.mu.Unlock()

	all, err := g.backend.Songs(ctx, "")
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.catalog = all
	g.loaded = true
	g.mu.Unlock()
	log.Debugf("Loaded %d songs", len(all))
	return nil
}

// Generate filters the loaded catalog with c, shuffles the matches and keeps
// the first few. The catalog is fetched first if it has not been loaded.
func (g *Generator) Generate(ctx context.Context, c songs.Criteria) ([]catalog.Song, error) {
	g.mu.Lock()
	if g.state == Loading {
		g.mu.Unlock()
		return nil, ErrBusy
	}
	previous := g.state
	g.state = Loading
	g.playlistURL = ""
	g.mu.Unlock()

	if err := g.Load(ctx); err != nil {
		g.mu.Lock()
		g.state = previous
		g.mu.Unlock()
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	matches := make([]catalog.Song, 0)
	for _, song := range g.catalog {
		if c.Match(song, g.moodField) {
			matches = append(matches, song)
		}
	}
	g.results = songs.Sample(matches, g.limit, g.shuffle)

	if len(g.results) == 0 {
		g.state = Empty
	} else {
		g.state = Results
	}
	return append([]catalog.Song(nil), g.results...), nil
}

// CreatePlaylist turns the current results into a playlist named name (the
// relay's default when empty) and remembers its URL.
func (g *Generator) CreatePlaylist(ctx context.Context, name string) (string, error) {
	g.mu.Lock()
	if g.state != Results {
		g.mu.Unlock()
		return "", ErrNotReady
	}
	token, ok := g.tokens.Token()
	if !ok {
		g.mu.Unlock()
		return "", ErrNotLoggedIn
	}
	uris := make([]string, 0, len(g.results))
	for _, song := range g.results {
		if uri := song.URI(); uri != "" {
			uris = append(uris, uri)
		}
	}
	g.mu.Unlock()

	if len(uris) == 0 {
		return "", ErrNoValidTracks
	}

	url, err := g.backend.CreatePlaylist(ctx, PlaylistRequest{
		AccessToken:  token,
		TrackURIs:    uris,
		PlaylistName: name,
	})
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	g.playlistURL = url
	g.mu.Unlock()
	log.Infof("Created playlist %s with %d tracks", url, len(uris))
	return url, nil
}
