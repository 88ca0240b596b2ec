package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Column names produced by the clustering step.
const (
	FieldTrackID      = "track_id"
	FieldTrackName    = "track_name"
	FieldArtist       = "track_artist"
	FieldGenre        = "playlist_genre"
	FieldTempo        = "tempo"
	FieldDanceability = "danceability"
	FieldCluster      = "cluster"
)

const trackURIPrefix = "spotify:track:"

var moodLabels = map[string]string{
	"0": "Chill",
	"1": "Happy",
	"2": "Energetic",
	"3": "Sad",
}

// MoodLabel returns the display name of a mood cluster, or the raw value when unknown.
func MoodLabel(cluster string) string {
	if label, ok := moodLabels[cluster]; ok {
		return label
	}
	return cluster
}

// MoodClusters lists the known clusters in order.
func MoodClusters() []string {
	return []string{"0", "1", "2", "3"}
}

type header struct {
	names []string
	index map[string]int
}

func newHeader(names []string) *header {
	h := &header{names: names, index: make(map[string]int, len(names))}
	for i, n := range names {
		if _, dup := h.index[n]; !dup {
			h.index[n] = i
		}
	}
	return h
}

// Song is one catalog row. It is immutable: accessors never hand out the
// underlying storage.
type Song struct {
	header *header
	values []string
}

// NewSong builds a standalone song from ordered field names and values.
func NewSong(fields []string, values []string) Song {
	return newSong(newHeader(append([]string(nil), fields...)), values)
}

func newSong(h *header, values []string) Song {
	row := make([]string, len(h.names))
	copy(row, values)
	return Song{header: h, values: row}
}

// Get returns the raw value of field and whether the field exists.
func (s Song) Get(field string) (string, bool) {
	if s.header == nil {
		return "", false
	}
	i, ok := s.header.index[field]
	if !ok {
		return "", false
	}
	return s.values[i], true
}

func (s Song) value(field string) string {
	v, _ := s.Get(field)
	return v
}

// Fields returns a copy of the record as a map.
func (s Song) Fields() map[string]string {
	out := make(map[string]string, len(s.values))
	if s.header == nil {
		return out
	}
	for i, name := range s.header.names {
		out[name] = s.values[i]
	}
	return out
}

func (s Song) TrackID() string { return s.value(FieldTrackID) }
func (s Song) Name() string    { return s.value(FieldTrackName) }
func (s Song) Artist() string  { return s.value(FieldArtist) }
func (s Song) Genre() string   { return s.value(FieldGenre) }

// Tempo parses the tempo column (BPM). ok is false when it is missing or not a number.
func (s Song) Tempo() (float64, bool) {
	return parseNumber(s.value(FieldTempo))
}

func (s Song) Danceability() (float64, bool) {
	return parseNumber(s.value(FieldDanceability))
}

// URI is the Spotify track URI, empty when the record has no track id.
func (s Song) URI() string {
	id := strings.TrimSpace(s.TrackID())
	if id == "" {
		return ""
	}
	return trackURIPrefix + id
}

func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// MarshalJSON writes the record as an object of strings in column order.
func (s Song) MarshalJSON() ([]byte, error) {
	if s.header == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for i, name := range s.header.names {
		if s.header.index[name] != i {
			continue // duplicate column name, first one wins
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat object keeping key order. Scalars are kept as text.
func (s *Song) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("song: expected JSON object")
	}

	var names, values []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("song: unexpected key %v", tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return err
		}
		var val string
		switch v := tok.(type) {
		case nil:
			val = ""
		case string:
			val = v
		case json.Number:
			val = v.String()
		case bool:
			val = strconv.FormatBool(v)
		default:
			return fmt.Errorf("song: field %q is not a scalar", key)
		}
		names = append(names, key)
		values = append(values, val)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = newSong(newHeader(names), values)
	return nil
}
