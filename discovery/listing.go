package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"github.com/pevans/blogscraper/scraper"
	"github.com/pevans/blogscraper/textclean"
)

// PageURL returns the listing URL of page n of a category. Page 1 is the
// category URL itself.
func PageURL(categoryURL string, n int) string {
	if n <= 1 {
		return categoryURL
	}
	return fmt.Sprintf("%s/page/%d/", strings.TrimRight(categoryURL, "/"), n)
}

// FeedURL returns the RSS feed of a category.
func FeedURL(categoryURL string) string {
	return strings.TrimRight(categoryURL, "/") + "/feed/"
}

// ListPreviews collects previews from up to maxPages listing pages of cat.
// It stops at the first page that fails to fetch or has no previews.
func (c *Crawler) ListPreviews(ctx context.Context, cat scraper.Category, maxPages int) []scraper.Preview {
	var previews []scraper.Preview

	for page := 1; page <= maxPages; page++ {
		if ctx.Err() != nil {
			break
		}

		pageURL := PageURL(cat.URL, page)
		log.Info().Str("category", cat.Name).Int("page", page).Str("url", pageURL).Msg("fetching listing page")

		doc, err := c.fetcher.FetchHTML(ctx, pageURL)
		if err != nil {
			log.Warn().Err(err).Str("url", pageURL).Msg("failed to fetch listing page")
			break
		}

		found := c.listing.ExtractPage(doc)
		if len(found) == 0 {
			log.Info().Int("page", page).Msg("no articles on listing page")
			break
		}

		log.Info().Int("page", page).Int("found", len(found)).Msg("listing page parsed")
		previews = append(previews, found...)
	}

	return previews
}

// ListPreviewsFromFeed builds previews from the category's RSS feed.
func (c *Crawler) ListPreviewsFromFeed(ctx context.Context, cat scraper.Category) ([]scraper.Preview, error) {
	feedURL := FeedURL(cat.URL)
	log.Info().Str("category", cat.Name).Str("url", feedURL).Msg("fetching category feed")

	feed, err := c.fetcher.FetchFeed(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	previews := make([]scraper.Preview, 0, len(feed.Items))
	for _, item := range feed.Items {
		if p := feedItemToPreview(item); p.URL != "" {
			previews = append(previews, p)
		}
	}
	return previews, nil
}

// feedItemToPreview maps a feed entry onto the fields a listing teaser
// carries.
func feedItemToPreview(item *gofeed.Item) scraper.Preview {
	p := scraper.Preview{
		URL:            strings.TrimSpace(item.Link),
		Title:          optional(textclean.Clean(item.Title)),
		PreviewDate:    optional(strings.TrimSpace(item.Published)),
		PreviewSummary: optional(plainText(item.Description)),
	}

	if len(item.Categories) > 0 {
		p.Tag = optional(textclean.Clean(item.Categories[0]))
	}

	if item.Image != nil {
		p.PreviewImage = optional(item.Image.URL)
	}
	if p.PreviewImage == nil {
		for _, enc := range item.Enclosures {
			if strings.HasPrefix(enc.Type, "image/") {
				p.PreviewImage = optional(enc.URL)
				break
			}
		}
	}

	return p
}

// plainText strips markup from a feed description.
func plainText(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return textclean.Clean(fragment)
	}
	return textclean.Clean(doc.Text())
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
