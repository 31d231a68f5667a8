package store

import (
	"slices"
	"strings"
)

// Uncategorized is the Stats bucket for records without a category.
const Uncategorized = "Uncategorized"

// Filter narrows a Search. Empty fields match everything. Text fields are
// case-insensitive substrings; dates are inclusive YYYYMMDD bounds. A record
// missing a field is never rejected by that field's filter.
type Filter struct {
	Category    string
	Subcategory string
	Author      string
	DateStart   string
	DateEnd     string
	Title       string
}

// Matches reports whether r passes every filter.
func (f Filter) Matches(r Record) bool {
	if !containsFold(r.Category, f.Category) {
		return false
	}
	if !containsFold(r.Subcategory, f.Subcategory) {
		return false
	}
	if !containsFold(r.Author, f.Author) {
		return false
	}
	if !containsFold(r.Title, f.Title) {
		return false
	}

	if date := value(r.PublicationDate); date != "" {
		if f.DateStart != "" && date < f.DateStart {
			return false
		}
		if f.DateEnd != "" && date > f.DateEnd {
			return false
		}
	}

	return true
}

// containsFold is true when want is empty, field is unset, or field
// contains want ignoring case.
func containsFold(field *string, want string) bool {
	if want == "" || value(field) == "" {
		return true
	}
	return strings.Contains(strings.ToLower(*field), strings.ToLower(want))
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Search returns the stored records passing f, in store order.
func (s *Store) Search(f Filter) ([]Record, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}

	matched := []Record{}
	for _, r := range records {
		if f.Matches(r) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// Categories returns the sorted distinct categories.
func (s *Store) Categories() ([]string, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}
	return distinct(records, func(r Record) string { return value(r.Category) }), nil
}

// Subcategories returns the sorted distinct subcategories, restricted to
// records whose category contains category when it is non-empty.
func (s *Store) Subcategories(category string) ([]string, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}

	var scoped []Record
	for _, r := range records {
		if containsFold(r.Category, category) {
			scoped = append(scoped, r)
		}
	}
	return distinct(scoped, func(r Record) string { return value(r.Subcategory) }), nil
}

// Authors returns the sorted distinct authors.
func (s *Store) Authors() ([]string, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}
	return distinct(records, func(r Record) string { return value(r.Author) }), nil
}

func distinct(records []Record, field func(Record) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range records {
		v := field(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Stats summarizes the store.
type Stats struct {
	TotalArticles       int            `json:"total_articles"`
	CategoriesCount     int            `json:"categories_count"`
	AuthorsCount        int            `json:"authors_count"`
	ArticlesWithImages  int            `json:"articles_with_images"`
	ArticlesWithContent int            `json:"articles_with_content"`
	ByCategory          map[string]int `json:"by_category"`
}

// Stats computes counts over every stored record.
func (s *Store) Stats() (*Stats, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalArticles:   len(records),
		CategoriesCount: len(distinct(records, func(r Record) string { return value(r.Category) })),
		AuthorsCount:    len(distinct(records, func(r Record) string { return value(r.Author) })),
		ByCategory:      make(map[string]int),
	}

	for _, r := range records {
		if len(r.Images) > 0 {
			stats.ArticlesWithImages++
		}
		if r.Content != "" {
			stats.ArticlesWithContent++
		}

		category := value(r.Category)
		if category == "" {
			category = Uncategorized
		}
		stats.ByCategory[category]++
	}

	return stats, nil
}
