// Package store persists scraped articles as a JSON array keyed by URL and
// answers queries over it.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pevans/blogscraper/scraper"
)

// ArticlesFile is the name of the store file inside the data directory.
const ArticlesFile = "articles.json"

// Record is an article as persisted: the extracted fields plus what the
// crawler and the store add around them.
type Record struct {
	scraper.Article

	CategoryScraped string           `json:"category_scraped,omitempty"`
	PreviewData     *scraper.Preview `json:"preview_data,omitempty"`
	ScrapedAt       string           `json:"scraped_at,omitempty"`
	UpdatedAt       string           `json:"updated_at,omitempty"`
}

// Store is a JSON array of records kept in a data directory, keyed by URL,
// with an optional mirrored copy for the frontend.
type Store struct {
	dataDir    string
	path       string
	mirrorPath string
	now        func() time.Time
}

// New creates a store in dataDir. The directory is created if needed. An
// empty mirrorPath disables the mirrored copy.
func New(dataDir, mirrorPath string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Store{
		dataDir:    dataDir,
		path:       filepath.Join(dataDir, ArticlesFile),
		mirrorPath: mirrorPath,
		now:        time.Now,
	}, nil
}

// Path returns the location of the store file.
func (s *Store) Path() string {
	return s.path
}

// Save merges records into the store by URL and returns the total number of
// stored records. A new URL is appended with scraped_at set; a known URL is
// overwritten in place, keeping its scraped_at and setting updated_at.
func (s *Store) Save(records []Record) (int, error) {
	existing, err := s.Load()
	if err != nil {
		return 0, err
	}

	index := make(map[string]int, len(existing))
	for i, r := range existing {
		index[r.URL] = i
	}

	stamp := s.now().Format(time.RFC3339)
	newCount, updatedCount := 0, 0
	for _, r := range records {
		if r.URL == "" {
			log.Warn().Msg("skipping record without url")
			continue
		}

		i, ok := index[r.URL]
		if !ok {
			r.ScrapedAt = stamp
			r.UpdatedAt = ""
			index[r.URL] = len(existing)
			existing = append(existing, r)
			newCount++
			continue
		}

		existing[i] = merge(existing[i], r, stamp)
		updatedCount++
	}

	data, err := encode(existing)
	if err != nil {
		return 0, err
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write store: %w", err)
	}

	if s.mirrorPath != "" {
		if err := writeMirror(s.mirrorPath, data); err != nil {
			log.Warn().Err(err).Str("path", s.mirrorPath).Msg("failed to write mirror copy")
		}
	}

	log.Info().
		Int("new", newCount).
		Int("updated", updatedCount).
		Int("total", len(existing)).
		Msg("store saved")

	return len(existing), nil
}

// merge overlays incoming onto old. Fields the crawler adds survive when
// incoming leaves them empty.
func merge(old, incoming Record, stamp string) Record {
	merged := incoming
	merged.ScrapedAt = old.ScrapedAt
	merged.UpdatedAt = stamp
	if merged.CategoryScraped == "" {
		merged.CategoryScraped = old.CategoryScraped
	}
	if merged.PreviewData == nil {
		merged.PreviewData = old.PreviewData
	}
	return merged
}

// writeMirror writes the frontend copy (0644: served as a static file).
func writeMirror(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// encode renders records as an indented JSON array without escaping HTML
// characters, so titles stay readable.
func encode(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}
	return buf.Bytes(), nil
}

// Load returns every stored record. A missing file is an empty store, and so
// is a corrupt one, which is logged; only an unreadable file is an error.
func (s *Store) Load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("failed to read store: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("store file is corrupt, starting empty")
		return []Record{}, nil
	}
	if records == nil {
		records = []Record{}
	}

	return records, nil
}

// Get returns the record stored under url, or nil if there is none.
func (s *Store) Get(url string) (*Record, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].URL == url {
			return &records[i], nil
		}
	}
	return nil, nil
}
