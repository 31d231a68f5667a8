// Package imageinfo resolves the real source URL and caption of <img>
// elements found in scraped pages.
package imageinfo

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Info is the resolved URL and caption of a single image. Either field may
// be nil.
type Info struct {
	URL     *string `json:"url"`
	Caption *string `json:"caption"`
}

// urlAttributes lists the attributes that may carry the image source, lazy
// loading attributes first.
var urlAttributes = []string{
	"data-lazy-src",
	"data-src",
	"data-original",
	"src",
}

// genericAlts are alt texts that describe nothing.
var genericAlts = []string{"image", "photo", "picture"}

// maxSiblingCaptionLen bounds the text of a sibling element considered as a
// caption.
const maxSiblingCaptionLen = 200

// Extract resolves the URL and caption of img. A nil or empty selection gives
// an Info with both fields nil.
func Extract(img *goquery.Selection) Info {
	if img == nil || img.Length() == 0 {
		return Info{}
	}

	img = img.First()
	return Info{
		URL:     ResolveURL(img),
		Caption: Caption(img),
	}
}

// ResolveURL returns the first attribute value that looks like an absolute
// or protocol-relative URL. Protocol-relative values are upgraded to https.
func ResolveURL(img *goquery.Selection) *string {
	if img == nil || img.Length() == 0 {
		return nil
	}

	for _, attr := range urlAttributes {
		val, ok := img.Attr(attr)
		if !ok || val == "" {
			continue
		}
		if !strings.HasPrefix(val, "http") && !strings.HasPrefix(val, "//") {
			continue
		}
		if strings.HasPrefix(val, "//") {
			val = "https:" + val
		}
		return &val
	}

	return nil
}

// Caption collects caption candidates from the alt and title attributes,
// a figcaption or caption-classed element next to the image, and a short
// caption/legend sibling. The first candidate wins.
func Caption(img *goquery.Selection) *string {
	if img == nil || img.Length() == 0 {
		return nil
	}

	var candidates []string
	add := func(text string) {
		if text != "" && !slices.Contains(candidates, text) {
			candidates = append(candidates, text)
		}
	}

	if alt, ok := img.Attr("alt"); ok {
		alt = strings.TrimSpace(alt)
		if !slices.Contains(genericAlts, strings.ToLower(alt)) {
			add(alt)
		}
	}

	if title, ok := img.Attr("title"); ok {
		add(strings.TrimSpace(title))
	}

	if parent := img.Parent(); parent.Length() > 0 {
		add(strings.TrimSpace(parent.Find("figcaption").First().Text()))

		captioned := parent.Find("[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return hasClassContaining(s, "caption")
		}).First()
		add(strings.TrimSpace(captioned.Text()))
	}

	if next := img.NextAllFiltered("p, span, div").First(); next.Length() > 0 {
		text := strings.TrimSpace(next.Text())
		if utf8.RuneCountInString(text) < maxSiblingCaptionLen &&
			(hasClassContaining(next, "caption") || hasClassContaining(next, "legend")) {
			add(text)
		}
	}

	if len(candidates) == 0 {
		return nil
	}
	return &candidates[0]
}

// hasClassContaining reports whether any class token of s contains needle,
// ignoring case.
func hasClassContaining(s *goquery.Selection, needle string) bool {
	class, ok := s.Attr("class")
	if !ok {
		return false
	}
	for _, token := range strings.Fields(class) {
		if strings.Contains(strings.ToLower(token), needle) {
			return true
		}
	}
	return false
}
