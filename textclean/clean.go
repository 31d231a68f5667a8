// Package textclean normalizes text and dates pulled out of scraped HTML.
package textclean

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// entityReplacements is applied in order, so "&amp;lt;" ends up as "<".
var entityReplacements = []struct {
	old string
	new string
}{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#8217;", "'"},
	{"&#8216;", "'"},
	{"&#8220;", `"`},
	{"&#8221;", `"`},
	{"&#8230;", "..."},
	{"&hellip;", "..."},
	{"&mdash;", "—"},
	{"&ndash;", "–"},
}

// Clean trims s, collapses whitespace runs to a single space, drops C0/C1
// control characters and substitutes a fixed set of HTML entities. It never
// returns anything but a plain string; empty input gives "".
func Clean(s string) string {
	if s == "" {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")
	s = strings.Map(func(r rune) rune {
		if isControl(r) {
			return -1
		}
		return r
	}, s)

	for _, rep := range entityReplacements {
		s = strings.ReplaceAll(s, rep.old, rep.new)
	}

	return strings.TrimSpace(s)
}

func isControl(r rune) bool {
	return r <= 0x1f || (r >= 0x7f && r <= 0x9f)
}

// IsValidText reports whether the cleaned text is at least minLen characters
// long and contains at least one letter.
func IsValidText(s string, minLen int) bool {
	cleaned := Clean(s)
	if cleaned == "" || utf8.RuneCountInString(cleaned) < minLen {
		return false
	}

	return strings.IndexFunc(cleaned, unicode.IsLetter) >= 0
}

var (
	sentenceBreakRe = regexp.MustCompile(`\.([A-Z])`)
	missingSpaceRe  = regexp.MustCompile(`\.([a-zA-Z])`)
	newlineRunRe    = regexp.MustCompile(`\n+`)
	spaceRunRe      = regexp.MustCompile(` +`)
)

// FormatContent splits run-together sentences onto their own paragraphs and
// tidies spacing. Used for display, never for stored content.
func FormatContent(content string) string {
	if content == "" {
		return ""
	}

	content = sentenceBreakRe.ReplaceAllString(content, ".\n$1")
	content = missingSpaceRe.ReplaceAllString(content, ". $1")
	content = newlineRunRe.ReplaceAllString(content, "\n\n")
	content = spaceRunRe.ReplaceAllString(content, " ")

	return strings.TrimSpace(content)
}
