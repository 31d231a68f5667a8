package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/pevans/blogscraper/imageinfo"
)

// listingContainers are tried in order to find the region holding the
// article teasers.
var listingContainers = []string{"main", "div.content"}

// ListingExtractor turns category listing pages into Previews.
type ListingExtractor struct{}

// NewListingExtractor creates a listing extractor.
func NewListingExtractor() *ListingExtractor {
	return &ListingExtractor{}
}

// ExtractPage returns the previews of every article teaser on a listing
// page, skipping teasers without a URL. A page without a recognizable main
// region yields no previews.
func (l *ListingExtractor) ExtractPage(doc *goquery.Document) []Preview {
	if doc == nil {
		return nil
	}

	var main *goquery.Selection
	for _, sel := range listingContainers {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			main = s
			break
		}
	}
	if main == nil {
		log.Warn().Msg("listing page has no main region")
		return nil
	}

	var previews []Preview
	main.Find("article").Each(func(_ int, s *goquery.Selection) {
		preview := l.Extract(s)
		if preview.URL != "" {
			previews = append(previews, preview)
		}
	})
	return previews
}

// Extract reads a single teaser element. URL is empty when the teaser has no
// link; the caller drops such previews.
func (l *ListingExtractor) Extract(item *goquery.Selection) Preview {
	var preview Preview
	if item == nil || item.Length() == 0 {
		return preview
	}

	link := item.Find("a[href]").First()
	if link.Length() == 0 {
		link = item.Find("header a[href]").First()
	}
	if link.Length() > 0 {
		preview.URL = strings.TrimSpace(link.AttrOr("href", ""))
		heading := link.Find("h1, h2, h3, h4").First()
		if heading.Length() > 0 {
			preview.Title = optional(strings.TrimSpace(heading.Text()))
		}
	}

	if img := item.Find(".post-thumbnail img").First(); img.Length() > 0 {
		preview.PreviewImage = imageinfo.ResolveURL(img)
	}

	preview.Tag = rawText(item.Find(".favtag").First())
	preview.PreviewDate = rawText(item.Find(".posted-on").First())
	preview.PreviewSummary = rawText(item.Find(".entry-excerpt").First())

	return preview
}

// rawText returns the trimmed text of s, or nil if s matched nothing.
func rawText(s *goquery.Selection) *string {
	if s.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(s.Text())
	return &text
}
