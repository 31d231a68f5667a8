package scraper

import (
	"errors"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pevans/blogscraper/imageinfo"
	"github.com/pevans/blogscraper/textclean"
)

// ErrNilDocument is returned when an extractor is handed no document.
var ErrNilDocument = errors.New("nil document")

const (
	// minSummaryLen is the length a summary candidate must exceed.
	minSummaryLen = 20
	// minBlockLen is the length a content block must exceed to be kept.
	minBlockLen = 10
)

// placeholderAuthors are byline words that are not names.
var placeholderAuthors = []string{"par", "by", "author"}

// contentBlockSelector matches the text blocks assembled into content.
const contentBlockSelector = "p, h2, h3, h4, li, blockquote"

// textStrategy yields a value for one field, or false to let the next
// strategy in the chain run.
type textStrategy func(doc *goquery.Document) (string, bool)

// categoryStrategy yields a category and subcategory pair, or false to let
// the next strategy run.
type categoryStrategy func(doc *goquery.Document) (category, subcategory string, ok bool)

// firstText runs strategies in order and returns the first success.
func firstText(doc *goquery.Document, field string, strategies []textStrategy) (string, bool) {
	for i, strategy := range strategies {
		if v, ok := strategy(doc); ok {
			log.Debug().Str("field", field).Int("strategy", i).Msg("field resolved")
			return v, true
		}
	}
	return "", false
}

// ArticleExtractor turns a parsed article page into an Article. It holds only
// read-only configuration, so one extractor can be reused across pages.
type ArticleExtractor struct {
	config *Config
}

// NewArticleExtractor creates an extractor using cfg, with defaults for any
// empty selector list. A nil cfg uses DefaultConfig.
func NewArticleExtractor(cfg *Config) *ArticleExtractor {
	return &ArticleExtractor{config: cfg.WithDefaults()}
}

// Extract pulls every field out of doc. Missing fields are left nil, a
// missing content container leaves content empty; only a nil document is an
// error.
func (e *ArticleExtractor) Extract(doc *goquery.Document, articleURL string) (*Article, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	article := &Article{
		URL:    articleURL,
		Images: []imageinfo.Info{},
	}

	if title, ok := firstText(doc, "title", e.titleStrategies()); ok {
		article.Title = &title
	}

	article.Thumbnail = thumbnail(doc)

	for i, strategy := range e.categoryStrategies() {
		if category, subcategory, ok := strategy(doc); ok {
			log.Debug().Str("field", "category").Int("strategy", i).Msg("field resolved")
			article.Category = &category
			article.Subcategory = &subcategory
			break
		}
	}

	container := e.contentContainer(doc)

	if summary, ok := firstText(doc, "summary", e.summaryStrategies(container)); ok {
		article.Summary = &summary
	}

	if raw, ok := firstText(doc, "publication_date", e.dateStrategies()); ok {
		if date, ok := textclean.ExtractDate(raw); ok {
			article.PublicationDate = &date
		}
	}

	if author, ok := firstText(doc, "author", e.authorStrategies()); ok {
		article.Author = &author
	}

	if container == nil {
		log.Warn().Str("url", articleURL).Msg("main content container not found")
		return article, nil
	}

	article.Content = contentText(container)
	article.Images = contentImages(container)

	return article, nil
}

func (e *ArticleExtractor) titleStrategies() []textStrategy {
	var strategies []textStrategy
	for _, sel := range e.config.TitleSelectors {
		strategies = append(strategies, func(doc *goquery.Document) (string, bool) {
			text := textclean.Clean(doc.Find(sel).First().Text())
			return text, text != ""
		})
	}
	return strategies
}

// thumbnail prefers the tagged post image, then skips a leading logo when
// there are several images, then takes a lone image.
func thumbnail(doc *goquery.Document) *string {
	article := doc.Find("article").First()
	if article.Length() == 0 {
		return nil
	}

	if img := article.Find("img.wp-post-image").First(); img.Length() > 0 {
		return imageinfo.ResolveURL(img)
	}

	images := article.Find("img")
	switch {
	case images.Length() > 1:
		return imageinfo.ResolveURL(images.Eq(1))
	case images.Length() == 1:
		return imageinfo.ResolveURL(images.Eq(0))
	}
	return nil
}

func (e *ArticleExtractor) categoryStrategies() []categoryStrategy {
	return []categoryStrategy{
		categoryFromClass,
		categoryFromCanonical,
		categoryFromBreadcrumb,
		categoryFromTag,
	}
}

// categoryFromClass reads a WordPress "category-<slug>" class on the article.
func categoryFromClass(doc *goquery.Document) (string, string, bool) {
	class, ok := doc.Find("article").First().Attr("class")
	if !ok {
		return "", "", false
	}

	for _, token := range strings.Fields(class) {
		if !strings.HasPrefix(token, "category-") {
			continue
		}
		name := strings.ReplaceAll(token, "category-", "")
		name = strings.TrimSpace(strings.ReplaceAll(name, "-", " "))
		if name == "" {
			return "", "", false
		}
		name = cases.Title(language.Und).String(name)
		return name, name, true
	}
	return "", "", false
}

// categoryFromCanonical maps a known section segment of the canonical URL.
func categoryFromCanonical(doc *goquery.Document) (string, string, bool) {
	href, ok := doc.Find(`link[rel~="canonical"]`).First().Attr("href")
	if !ok {
		return "", "", false
	}

	for _, seg := range canonicalSegments {
		if strings.Contains(href, seg.Segment) {
			return seg.Name, seg.Name, true
		}
	}
	return "", "", false
}

// categoryFromBreadcrumb uses the last two breadcrumb links as the
// category/subcategory pair.
func categoryFromBreadcrumb(doc *goquery.Document) (string, string, bool) {
	links := doc.Find("nav.breadcrumb").First().Find("a")
	n := links.Length()
	if n < 2 {
		return "", "", false
	}

	category := textclean.Clean(links.Eq(n - 2).Text())
	subcategory := textclean.Clean(links.Eq(n - 1).Text())
	return category, subcategory, category != ""
}

// categoryFromTag uses the highlighted tag or a category link.
func categoryFromTag(doc *goquery.Document) (string, string, bool) {
	tag := doc.Find(".favtag").First()
	if tag.Length() == 0 {
		tag = doc.Find(`a[rel~="category"][rel~="tag"]`).First()
	}
	if tag.Length() == 0 {
		return "", "", false
	}

	name := textclean.Clean(tag.Text())
	return name, name, name != ""
}

func (e *ArticleExtractor) summaryStrategies(container *goquery.Selection) []textStrategy {
	strategies := []textStrategy{
		func(*goquery.Document) (string, bool) {
			if container == nil {
				return "", false
			}
			return longEnough(container.Find("p").First(), minSummaryLen)
		},
	}
	for _, sel := range e.config.SummarySelectors {
		strategies = append(strategies, func(doc *goquery.Document) (string, bool) {
			return longEnough(doc.Find(sel).First(), minSummaryLen)
		})
	}
	return strategies
}

// longEnough returns the cleaned text of s when it is longer than minLen
// characters.
func longEnough(s *goquery.Selection, minLen int) (string, bool) {
	if s.Length() == 0 {
		return "", false
	}
	text := textclean.Clean(s.Text())
	return text, utf8.RuneCountInString(text) > minLen
}

// dateStrategies yield the raw date string; normalization happens once the
// first non-empty value is found.
func (e *ArticleExtractor) dateStrategies() []textStrategy {
	strategies := []textStrategy{
		func(doc *goquery.Document) (string, bool) {
			return rawDate(doc.Find(".posted-on").First().Find("time").First())
		},
	}
	for _, sel := range e.config.DateSelectors {
		strategies = append(strategies, func(doc *goquery.Document) (string, bool) {
			return rawDate(doc.Find(sel).First())
		})
	}
	return strategies
}

// rawDate prefers the machine-readable datetime attribute over the text.
func rawDate(s *goquery.Selection) (string, bool) {
	if s.Length() == 0 {
		return "", false
	}
	if dt, ok := s.Attr("datetime"); ok && dt != "" {
		return dt, true
	}
	text := strings.TrimSpace(s.Text())
	return text, text != ""
}

func (e *ArticleExtractor) authorStrategies() []textStrategy {
	strategies := []textStrategy{
		func(doc *goquery.Document) (string, bool) {
			link := doc.Find(".byline").First().Find("a").First()
			if link.Length() == 0 {
				return "", false
			}
			if title, ok := link.Attr("title"); ok {
				if name, ok := authorName(title); ok {
					return name, true
				}
			}
			return authorName(link.Text())
		},
	}
	for _, sel := range e.config.AuthorSelectors {
		strategies = append(strategies, func(doc *goquery.Document) (string, bool) {
			s := doc.Find(sel).First()
			if s.Length() == 0 {
				return "", false
			}
			return authorName(s.Text())
		})
	}
	return strategies
}

// authorName cleans raw and rejects byline placeholders.
func authorName(raw string) (string, bool) {
	name := textclean.Clean(raw)
	if name == "" || slices.Contains(placeholderAuthors, strings.ToLower(name)) {
		return "", false
	}
	return name, true
}

// contentContainer returns the first element matching the content selector
// list, or nil.
func (e *ArticleExtractor) contentContainer(doc *goquery.Document) *goquery.Selection {
	for _, sel := range e.config.ContentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return nil
}

// contentText joins every sufficiently long text block, in document order,
// with a blank line between blocks.
func contentText(container *goquery.Selection) string {
	var blocks []string
	container.Find(contentBlockSelector).Each(func(_ int, s *goquery.Selection) {
		text := textclean.Clean(s.Text())
		if utf8.RuneCountInString(text) > minBlockLen {
			blocks = append(blocks, text)
		}
	})
	return strings.Join(blocks, "\n\n")
}

// contentImages resolves every image in the container, in document order,
// dropping those without a usable URL.
func contentImages(container *goquery.Selection) []imageinfo.Info {
	images := []imageinfo.Info{}
	container.Find("img").Each(func(_ int, s *goquery.Selection) {
		if info := imageinfo.Extract(s); info.URL != nil {
			images = append(images, info)
		}
	})
	return images
}
