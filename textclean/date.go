package textclean

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// frenchMonths maps French month names to their 1-based month number.
var frenchMonths = map[string]int{
	"janvier":   1,
	"février":   2,
	"mars":      3,
	"avril":     4,
	"mai":       5,
	"juin":      6,
	"juillet":   7,
	"août":      8,
	"septembre": 9,
	"octobre":   10,
	"novembre":  11,
	"décembre":  12,
}

// datePattern pairs a regular expression with the function that turns its
// submatches into a YYYYMMDD string. A false return falls through to the
// next pattern.
type datePattern struct {
	re     *regexp.Regexp
	layout func(m []string) (string, bool)
}

// datePatterns are tried in order; the first one that matches and converts
// wins.
var datePatterns = []datePattern{
	{
		re: regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`),
		layout: func(m []string) (string, bool) {
			return m[1] + m[2] + m[3], true
		},
	},
	{
		re:     regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`),
		layout: dayMonthYear,
	},
	{
		re:     regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(\d{4})`),
		layout: dayMonthYear,
	},
	{
		re: regexp.MustCompile(`(\d{1,2})\s+(janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre)\s+(\d{4})`),
		layout: func(m []string) (string, bool) {
			month, ok := frenchMonths[m[2]]
			if !ok {
				return "", false
			}
			day, err := strconv.Atoi(m[1])
			if err != nil {
				return "", false
			}
			return fmt.Sprintf("%s%02d%02d", m[3], month, day), true
		},
	},
}

var yearOnlyRe = regexp.MustCompile(`\b(20\d{2})\b`)

func dayMonthYear(m []string) (string, bool) {
	day, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	month, err := strconv.Atoi(m[2])
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s%02d%02d", m[3], month, day), true
}

// ExtractDate converts a free-form date string into the canonical YYYYMMDD
// form. It understands ISO dates, D/M/YYYY, D-M-YYYY and French long dates
// such as "7 mars 2023". When none of those match, a bare year between 2000
// and 2099 yields January 1st of that year. The boolean is false when no date
// could be found at all.
func ExtractDate(raw string) (string, bool) {
	cleaned := Clean(raw)
	if cleaned == "" {
		return "", false
	}

	lowered := strings.ToLower(cleaned)
	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(lowered)
		if m == nil {
			continue
		}
		if date, ok := p.layout(m); ok {
			return date, true
		}
	}

	// Year only, defaults to January 1st
	if m := yearOnlyRe.FindStringSubmatch(cleaned); m != nil {
		return m[1] + "0101", true
	}

	return "", false
}
