// Package scraper pulls structured article data out of the blog's listing
// and article pages.
package scraper

import (
	"github.com/pevans/blogscraper/imageinfo"
)

// Preview is one teaser on a category listing page. URL is the identity of
// the article everywhere else in the system.
type Preview struct {
	URL            string  `json:"url"`
	Title          *string `json:"title"`
	PreviewImage   *string `json:"preview_image"`
	Tag            *string `json:"tag"`
	PreviewDate    *string `json:"preview_date"`
	PreviewSummary *string `json:"preview_summary"`
}

// Article is everything extracted from a single article page.
// PublicationDate, when set, is always eight digits (YYYYMMDD). Images keep
// the order they appear in the body.
type Article struct {
	URL             string           `json:"url"`
	Title           *string          `json:"title"`
	Thumbnail       *string          `json:"thumbnail"`
	Category        *string          `json:"category"`
	Subcategory     *string          `json:"subcategory"`
	Summary         *string          `json:"summary"`
	PublicationDate *string          `json:"publication_date"`
	Author          *string          `json:"author"`
	Content         string           `json:"content"`
	Images          []imageinfo.Info `json:"images"`
}

// optional turns "" into nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
