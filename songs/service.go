package songs

import (
	"math/rand/v2"

	log "github.com/sirupsen/logrus"

	"moodlist/catalog"
)

const DefaultSampleLimit = 100

// Service answers song queries against a loaded catalog. It only reads the
// catalog, so one Service is safe to share across requests.
type Service struct {
	catalog   *catalog.Catalog
	moodField string
	limit     int
	shuffle   func(n int, swap func(i, j int))
}

type Option func(*Service)

// WithSampleLimit caps mood queries at limit songs.
func WithSampleLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// WithMoodField sets the column holding the mood cluster.
func WithMoodField(field string) Option {
	return func(s *Service) {
		if field != "" {
			s.moodField = field
		}
	}
}

// WithShuffle replaces the random permutation, e.g. with a seeded source in tests.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(s *Service) {
		if shuffle != nil {
			s.shuffle = shuffle
		}
	}
}

func NewService(cat *catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		catalog:   cat,
		moodField: catalog.FieldCluster,
		limit:     DefaultSampleLimit,
		shuffle:   rand.Shuffle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) MoodField() string {
	return s.moodField
}

func (s *Service) CatalogSize() int {
	return s.catalog.Len()
}

// Query is the song endpoint contract. Without a mood it returns the whole
// catalog in load order. With a mood it returns a random sample of at most
// the sample limit among the songs matching every given constraint.
// The result is never nil.
func (s *Service) Query(c Criteria) []catalog.Song {
	if c.Mood == nil {
		return s.catalog.Songs()
	}

	matches := s.Filter(c)
	total := len(matches)
	matches = Sample(matches, s.limit, s.shuffle)

	log.Debugf("Mood query %q: %d matches, returning %d", *c.Mood, total, len(matches))
	return matches
}

// Sample permutes songs in place with shuffle and keeps at most limit of them.
func Sample(songs []catalog.Song, limit int, shuffle func(n int, swap func(i, j int))) []catalog.Song {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	shuffle(len(songs), func(i, j int) {
		songs[i], songs[j] = songs[j], songs[i]
	})
	if limit >= 0 && len(songs) > limit {
		songs = songs[:limit]
	}
	return songs
}

// Filter returns, in load order, every song satisfying c.
func (s *Service) Filter(c Criteria) []catalog.Song {
	matches := make([]catalog.Song, 0)
	for i := 0; i < s.catalog.Len(); i++ {
		if song := s.catalog.At(i); c.Match(song, s.moodField) {
			matches = append(matches, song)
		}
	}
	return matches
}
