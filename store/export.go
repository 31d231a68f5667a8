package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
)

// ExportFile is the default CSV file name inside the data directory.
const ExportFile = "articles_export.csv"

// csvColumns is the fixed header of the export.
var csvColumns = []string{
	"url", "title", "category", "subcategory", "author",
	"publication_date", "summary", "content", "thumbnail",
	"images_count", "scraped_at",
}

// ExportCSV writes every stored record to path, or to the default export
// file in the data directory when path is empty. It returns the number of
// rows written; an empty store writes no file.
func (s *Store) ExportCSV(path string) (int, error) {
	if path == "" {
		path = filepath.Join(s.dataDir, ExportFile)
	}

	records, err := s.Load()
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		log.Info().Msg("no articles to export")
		return 0, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.UseCRLF = true

	if err := w.Write(csvColumns); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(csvRow(r)); err != nil {
			return 0, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close export file: %w", err)
	}

	log.Info().Str("path", path).Int("rows", len(records)).Msg("export complete")
	return len(records), nil
}

func csvRow(r Record) []string {
	return []string{
		r.URL,
		value(r.Title),
		value(r.Category),
		value(r.Subcategory),
		value(r.Author),
		value(r.PublicationDate),
		value(r.Summary),
		r.Content,
		value(r.Thumbnail),
		strconv.Itoa(len(r.Images)),
		r.ScrapedAt,
	}
}
