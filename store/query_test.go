package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pevans/blogscraper/imageinfo"
)

// Test helper: a store with a small fixed set of records
func setupQueryStore(t *testing.T) *Store {
	s := setupTestStore(t)

	withContent := createRecord("https://c", "Stratégie TikTok", "Social Media", "Clara", "20240310")
	withContent.Content = "Du contenu"
	withContent.Images = []imageinfo.Info{{URL: ptr("https://img/c.jpg")}}

	noCategory := createRecord("https://d", "Sans rubrique", "", "", "")

	_, err := s.Save([]Record{
		createRecord("https://a", "IA générative", "Tech", "Alice", "20240105"),
		createRecord("https://b", "Nouveautés Chrome", "Web", "Bob", "20240220"),
		withContent,
		noCategory,
	})
	require.NoError(t, err)
	return s
}

// TestSearch_Filters verifies each filter field
func TestSearch_Filters(t *testing.T) {
	s := setupQueryStore(t)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"https://a", "https://b", "https://c", "https://d"}},
		{"category case-insensitive", Filter{Category: "tech"}, []string{"https://a", "https://d"}},
		{"category substring", Filter{Category: "media"}, []string{"https://c", "https://d"}},
		{"author", Filter{Author: "BOB"}, []string{"https://b", "https://d"}},
		{"title", Filter{Title: "chrome"}, []string{"https://b"}},
		{"date start inclusive", Filter{DateStart: "20240220"}, []string{"https://b", "https://c", "https://d"}},
		{"date end inclusive", Filter{DateEnd: "20240220"}, []string{"https://a", "https://b", "https://d"}},
		{"date range", Filter{DateStart: "20240201", DateEnd: "20240301"}, []string{"https://b", "https://d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(tt.filter)
			require.NoError(t, err)

			var urls []string
			for _, r := range got {
				urls = append(urls, r.URL)
			}
			assert.Equal(t, tt.want, urls)
		})
	}
}

// TestFacets verifies distinct sorted categories, subcategories and authors
func TestFacets(t *testing.T) {
	s := setupQueryStore(t)

	categories, err := s.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Social Media", "Tech", "Web"}, categories)

	subcategories, err := s.Subcategories("web")
	require.NoError(t, err)
	assert.Equal(t, []string{"Web"}, subcategories)

	all, err := s.Subcategories("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	authors, err := s.Authors()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob", "Clara"}, authors)
}

// TestStats verifies totals and the per-category breakdown
func TestStats(t *testing.T) {
	s := setupQueryStore(t)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalArticles)
	assert.Equal(t, 3, stats.CategoriesCount)
	assert.Equal(t, 3, stats.AuthorsCount)
	assert.Equal(t, 1, stats.ArticlesWithImages)
	assert.Equal(t, 1, stats.ArticlesWithContent)
	assert.Equal(t, map[string]int{
		"Tech":         1,
		"Web":          1,
		"Social Media": 1,
		Uncategorized:  1,
	}, stats.ByCategory)
}

// TestStats_Empty verifies an empty store has zero counts
func TestStats_Empty(t *testing.T) {
	s := setupTestStore(t)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalArticles)
	assert.Empty(t, stats.ByCategory)
}
