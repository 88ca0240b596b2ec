package songs

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"moodlist/catalog"
)

var ErrInvalidCriteria = errors.New("invalid filter criteria")

// DanceableThreshold is the danceability score from which a song counts as danceable.
const DanceableThreshold = 0.6

type Danceability string

const (
	Danceable    Danceability = "danceable"
	NotDanceable Danceability = "not_danceable"
)

func ParseDanceability(s string) (Danceability, error) {
	switch d := Danceability(strings.ToLower(strings.TrimSpace(s))); d {
	case Danceable, NotDanceable:
		return d, nil
	}
	return "", fmt.Errorf("%w: danceability must be %q or %q, got %q", ErrInvalidCriteria, Danceable, NotDanceable, s)
}

// Classify reports the class of a danceability score.
func Classify(score float64) Danceability {
	if score >= DanceableThreshold {
		return Danceable
	}
	return NotDanceable
}

// TempoRange is an inclusive BPM range.
type TempoRange struct {
	Min float64
	Max float64
}

func (r TempoRange) Contains(bpm float64) bool {
	return bpm >= r.Min && bpm <= r.Max
}

// Criteria are optional constraints; a nil field places no constraint.
type Criteria struct {
	Mood         *string
	Genre        *string
	Danceability *Danceability
	Tempo        *TempoRange
}

func (c Criteria) IsEmpty() bool {
	return c.Mood == nil && c.Genre == nil && c.Danceability == nil && c.Tempo == nil
}

func (c Criteria) WithMood(mood string) Criteria {
	c.Mood = &mood
	return c
}

func (c Criteria) WithGenre(genre string) Criteria {
	c.Genre = &genre
	return c
}

func (c Criteria) WithDanceability(d Danceability) Criteria {
	c.Danceability = &d
	return c
}

func (c Criteria) WithTempo(min, max float64) Criteria {
	c.Tempo = &TempoRange{Min: min, Max: max}
	return c
}

// Match reports whether song satisfies every specified constraint. moodField
// names the column holding the mood cluster.
func (c Criteria) Match(song catalog.Song, moodField string) bool {
	if c.Mood != nil {
		if v, _ := song.Get(moodField); v != *c.Mood {
			return false
		}
	}
	if c.Genre != nil && !strings.EqualFold(song.Genre(), *c.Genre) {
		return false
	}
	if c.Danceability != nil {
		score, ok := song.Danceability()
		if !ok || Classify(score) != *c.Danceability {
			return false
		}
	}
	if c.Tempo != nil {
		bpm, ok := song.Tempo()
		if !ok || !c.Tempo.Contains(bpm) {
			return false
		}
	}
	return true
}

// ParseCriteria reads mood, genre, danceability, bpm_min and bpm_max from a
// query string. Empty parameters are treated as absent.
func ParseCriteria(q url.Values) (Criteria, error) {
	var c Criteria

	if mood := strings.TrimSpace(q.Get("mood")); mood != "" {
		c = c.WithMood(mood)
	}
	if genre := strings.TrimSpace(q.Get("genre")); genre != "" {
		c = c.WithGenre(genre)
	}
	if raw := q.Get("danceability"); strings.TrimSpace(raw) != "" {
		d, err := ParseDanceability(raw)
		if err != nil {
			return Criteria{}, err
		}
		c = c.WithDanceability(d)
	}

	lo, hasLo, err := parseBound(q, "bpm_min")
	if err != nil {
		return Criteria{}, err
	}
	hi, hasHi, err := parseBound(q, "bpm_max")
	if err != nil {
		return Criteria{}, err
	}
	if hasLo || hasHi {
		if !hasLo {
			lo = 0
		}
		if !hasHi {
			hi = math.Inf(1)
		}
		if lo > hi {
			return Criteria{}, fmt.Errorf("%w: bpm_min %v is greater than bpm_max %v", ErrInvalidCriteria, lo, hi)
		}
		c = c.WithTempo(lo, hi)
	}

	return c, nil
}

func parseBound(q url.Values, key string) (float64, bool, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false, fmt.Errorf("%w: %s must be a number, got %q", ErrInvalidCriteria, key, raw)
	}
	return f, true, nil
}
