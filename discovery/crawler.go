package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pevans/blogscraper/runlog"
	"github.com/pevans/blogscraper/scraper"
	"github.com/pevans/blogscraper/store"
)

var (
	// ErrUnknownCategory is returned for a category name outside the fixed
	// set.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrNoPreviews is returned when a category listing yields no articles.
	ErrNoPreviews = errors.New("no articles found")
)

// Saver persists scraped records and returns the stored total.
type Saver interface {
	Save(records []store.Record) (int, error)
}

// RunRecorder keeps the history of category runs.
type RunRecorder interface {
	Record(run *runlog.Run) error
}

// Result summarizes one category crawl.
type Result struct {
	Category      string
	PreviewsFound int
	Records       []store.Record
	Failed        int
	TotalStored   int
}

// Crawler fetches listings and articles one request at a time, pausing
// between requests.
type Crawler struct {
	fetcher    Fetcher
	listing    *scraper.ListingExtractor
	articles   *scraper.ArticleExtractor
	categories []scraper.Category
	saver      Saver
	runs       RunRecorder
	delay      time.Duration
	now        func() time.Time
}

// NewCrawler creates a crawler over the categories of cfg's base URL. A nil
// cfg uses the default selectors.
func NewCrawler(fetcher Fetcher, cfg *scraper.Config, saver Saver, delay time.Duration) *Crawler {
	cfg = cfg.WithDefaults()

	return &Crawler{
		fetcher:    fetcher,
		listing:    scraper.NewListingExtractor(),
		articles:   scraper.NewArticleExtractor(cfg),
		categories: scraper.Categories(cfg.BaseURL),
		saver:      saver,
		delay:      delay,
		now:        time.Now,
	}
}

// WithRunLog records every category run in r.
func (c *Crawler) WithRunLog(r RunRecorder) *Crawler {
	c.runs = r
	return c
}

// Categories returns the crawlable categories in crawl order.
func (c *Crawler) Categories() []scraper.Category {
	return append([]scraper.Category(nil), c.categories...)
}

// Category looks up a category by name.
func (c *Crawler) Category(name string) (scraper.Category, error) {
	for _, cat := range c.categories {
		if cat.Name == name {
			return cat, nil
		}
	}
	return scraper.Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// ScrapeArticle fetches one article page and extracts it.
func (c *Crawler) ScrapeArticle(ctx context.Context, url string) (*scraper.Article, error) {
	doc, err := c.fetcher.FetchHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch article: %w", err)
	}

	article, err := c.articles.Extract(doc, url)
	if err != nil {
		return nil, fmt.Errorf("failed to extract article: %w", err)
	}

	return article, nil
}

// ScrapeCategory lists a category, scrapes every previewed article and saves
// the results. A failed article is logged and skipped. When ctx is canceled
// midway, what was scraped so far is still saved.
func (c *Crawler) ScrapeCategory(ctx context.Context, name string, maxPages int, feed bool) (*Result, error) {
	cat, err := c.Category(name)
	if err != nil {
		return nil, err
	}

	run := &runlog.Run{
		Category:  cat.Name,
		Mode:      runlog.ModeHTML,
		MaxPages:  maxPages,
		StartedAt: c.now(),
	}
	defer c.recordRun(run)

	var previews []scraper.Preview
	if feed {
		run.Mode = runlog.ModeFeed
		previews, err = c.ListPreviewsFromFeed(ctx, cat)
		if err != nil {
			run.FinishedAt = c.now()
			return nil, err
		}
	} else {
		previews = c.ListPreviews(ctx, cat, maxPages)
	}

	result := &Result{Category: cat.Name, PreviewsFound: len(previews)}
	run.PreviewsFound = len(previews)

	if len(previews) == 0 {
		run.FinishedAt = c.now()
		return result, fmt.Errorf("%w in category %q", ErrNoPreviews, cat.Name)
	}

	log.Info().Str("category", cat.Name).Int("previews", len(previews)).Msg("scraping articles")

	var canceled error
	for i, preview := range previews {
		if i > 0 {
			if canceled = sleep(ctx, c.delay); canceled != nil {
				break
			}
		}

		article, err := c.ScrapeArticle(ctx, preview.URL)
		if err != nil {
			log.Warn().Err(err).Str("url", preview.URL).Msg("failed to scrape article")
			result.Failed++
			continue
		}

		result.Records = append(result.Records, store.Record{
			Article:         *article,
			CategoryScraped: cat.Name,
			PreviewData:     &preview,
		})
		log.Info().
			Int("n", i+1).
			Int("of", len(previews)).
			Str("url", preview.URL).
			Msg("article scraped")
	}

	run.ArticlesScraped = len(result.Records)
	run.ArticlesFailed = result.Failed

	if len(result.Records) > 0 {
		total, err := c.saver.Save(result.Records)
		if err != nil {
			run.FinishedAt = c.now()
			return result, fmt.Errorf("failed to save articles: %w", err)
		}
		result.TotalStored = total
		run.TotalStored = total
	}

	run.FinishedAt = c.now()
	log.Info().
		Str("category", cat.Name).
		Int("scraped", len(result.Records)).
		Int("previews", len(previews)).
		Int("failed", result.Failed).
		Msg("category done")

	return result, canceled
}

// ScrapeAll crawls every category in order, pausing twice the article delay
// between categories. A category without articles does not stop the crawl.
func (c *Crawler) ScrapeAll(ctx context.Context, maxPages int, feed bool) ([]Result, error) {
	var results []Result

	for i, cat := range c.categories {
		if i > 0 {
			if err := sleep(ctx, 2*c.delay); err != nil {
				return results, err
			}
		}

		result, err := c.ScrapeCategory(ctx, cat.Name, maxPages, feed)
		if result != nil {
			results = append(results, *result)
		}
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			log.Warn().Err(err).Str("category", cat.Name).Msg("category skipped")
			continue
		}
	}

	return results, nil
}

func (c *Crawler) recordRun(run *runlog.Run) {
	if c.runs == nil {
		return
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = c.now()
	}
	if err := c.runs.Record(run); err != nil {
		log.Warn().Err(err).Str("category", run.Category).Msg("failed to record run")
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
