// Package catalog holds the song table loaded once at startup. A Catalog is
// never modified after construction; every consumer shares the same records.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"moodlist/database"
)

var ErrUnsupportedSource = errors.New("unsupported catalog source")

type Catalog struct {
	header *header
	songs  []Song
}

// New builds a catalog from a header and rows. Rows shorter than the header
// are padded with empty values; longer rows are cut.
func New(columns []string, rows [][]string) *Catalog {
	h := newHeader(append([]string(nil), columns...))
	songs := make([]Song, 0, len(rows))
	for _, row := range rows {
		songs = append(songs, newSong(h, row))
	}
	return &Catalog{header: h, songs: songs}
}

func (c *Catalog) Len() int {
	return len(c.songs)
}

func (c *Catalog) At(i int) Song {
	return c.songs[i]
}

// Songs returns the records in load order. The slice is fresh; callers may
// reorder or truncate it without affecting the catalog.
func (c *Catalog) Songs() []Song {
	out := make([]Song, len(c.songs))
	copy(out, c.songs)
	return out
}

// Rows returns a copy of every record's values, aligned with Header.
func (c *Catalog) Rows() [][]string {
	rows := make([][]string, len(c.songs))
	for i, s := range c.songs {
		rows[i] = append([]string(nil), s.values...)
	}
	return rows
}

func (c *Catalog) Header() []string {
	return append([]string(nil), c.header.names...)
}

// Source describes where the catalog lives.
type Source struct {
	Path  string
	Table string // sqlite sources only
}

// Load reads the catalog, choosing the reader from the file extension.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	var (
		cat *Catalog
		err error
	)

	switch ext := strings.ToLower(filepath.Ext(src.Path)); ext {
	case ".csv":
		cat, err = loadCSV(src.Path)
	case ".db", ".sqlite", ".sqlite3":
		cat, err = loadSQLite(ctx, src.Path, src.Table)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, src.Path)
	}
	if err != nil {
		return nil, err
	}

	log.Infof("Loaded %d songs from %s", cat.Len(), src.Path)
	return cat, nil
}

func loadCSV(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses a CSV catalog whose first row is the header.
func ReadCSV(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	columns, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty: missing header row")
		}
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}
	if len(columns) > 0 {
		columns[0] = strings.TrimPrefix(columns[0], "\ufeff")
	}
	for i := range columns {
		columns[i] = strings.TrimSpace(columns[i])
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog row %d: %w", len(rows)+2, err)
		}
		if len(row) != len(columns) {
			log.Tracef("Catalog row %d has %d fields, header has %d", len(rows)+2, len(row), len(columns))
		}
		rows = append(rows, row)
	}

	return New(columns, rows), nil
}

func loadSQLite(ctx context.Context, path, table string) (*Catalog, error) {
	if table == "" {
		table = "songs"
	}

	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	columns, rows, err := db.ReadTable(ctx, table)
	if err != nil {
		return nil, err
	}
	return New(columns, rows), nil
}
