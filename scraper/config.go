package scraper

import (
	"strings"

	"github.com/pevans/blogscraper/imageinfo"
)

// Category is a listing section of the blog.
type Category struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// categoryNames are the six sections the site exposes, in crawl order.
var categoryNames = []string{
	"web",
	"social-media",
	"mobile",
	"digital",
	"e-commerce",
	"tech",
}

// urlSegment maps a canonical URL path segment to a display name.
type urlSegment struct {
	Segment string
	Name    string
}

// canonicalSegments are checked in order against the canonical URL.
var canonicalSegments = []urlSegment{
	{"/web/", "Web"},
	{"/marketing/", "Marketing"},
	{"/social/", "Social"},
	{"/tech/", "Tech"},
}

// Config holds the selector lists the extractors fall back through. The
// order of every list is its priority order.
type Config struct {
	BaseURL string `json:"base_url" yaml:"base_url"`

	TitleSelectors   []string `json:"title_selectors" yaml:"title_selectors"`
	SummarySelectors []string `json:"summary_selectors" yaml:"summary_selectors"`
	DateSelectors    []string `json:"date_selectors" yaml:"date_selectors"`
	AuthorSelectors  []string `json:"author_selectors" yaml:"author_selectors"`
	ContentSelectors []string `json:"content_selectors" yaml:"content_selectors"`
}

// DefaultConfig returns the selector lists tuned for the blog's WordPress
// theme.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: imageinfo.DefaultBaseURL,
		TitleSelectors: []string{
			"h1.entry-title",
			"h1",
		},
		SummarySelectors: []string{
			"div.entry-excerpt",
			"div.entry-summary",
			"div.excerpt",
			"p.lead",
		},
		DateSelectors: []string{
			"time[datetime]",
			".entry-date",
			"time.published",
			".date",
		},
		AuthorSelectors: []string{
			".author-name",
			".entry-author",
			".byline .author",
			`span[class*="author"]`,
			".post-author",
			`a[rel~="author"]`,
		},
		ContentSelectors: []string{
			".entry-content",
			".post-content",
			".article-content",
			"main article",
			".content",
		},
	}
}

// WithDefaults fills every empty field of c from DefaultConfig. A nil c
// gives the defaults.
func (c *Config) WithDefaults() *Config {
	def := DefaultConfig()
	if c == nil {
		return def
	}

	out := *c
	if out.BaseURL == "" {
		out.BaseURL = def.BaseURL
	}
	if len(out.TitleSelectors) == 0 {
		out.TitleSelectors = def.TitleSelectors
	}
	if len(out.SummarySelectors) == 0 {
		out.SummarySelectors = def.SummarySelectors
	}
	if len(out.DateSelectors) == 0 {
		out.DateSelectors = def.DateSelectors
	}
	if len(out.AuthorSelectors) == 0 {
		out.AuthorSelectors = def.AuthorSelectors
	}
	if len(out.ContentSelectors) == 0 {
		out.ContentSelectors = def.ContentSelectors
	}
	return &out
}

// Categories returns the site's listing sections under baseURL, in crawl
// order.
func Categories(baseURL string) []Category {
	if baseURL == "" {
		baseURL = imageinfo.DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	categories := make([]Category, 0, len(categoryNames))
	for _, name := range categoryNames {
		categories = append(categories, Category{
			Name: name,
			URL:  baseURL + "/" + name + "/",
		})
	}
	return categories
}

// CategoryNames returns the names of the listing sections in crawl order.
func CategoryNames() []string {
	return append([]string(nil), categoryNames...)
}
