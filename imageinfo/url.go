package imageinfo

import (
	"strings"
)

// DefaultBaseURL is the origin root-relative image paths resolve against.
const DefaultBaseURL = "https://www.blogdumoderateur.com"

var (
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".bmp"}

	// excludedPatterns mark links that are never images.
	excludedPatterns = []string{"javascript:", "data:text", "mailto:", ".pdf", ".doc"}

	// sizingParams are query fragments that change the rendered image and
	// must survive cleaning.
	sizingParams = []string{"w=", "h=", "quality=", "format="}
)

// CleanURL makes an image URL absolute and drops query strings that do not
// affect the rendered image. Protocol-relative URLs get https; root-relative
// paths resolve against baseURL (DefaultBaseURL when empty). A query is kept
// verbatim only if it carries a sizing or format parameter.
func CleanURL(raw, baseURL string) string {
	url := strings.TrimSpace(raw)
	if url == "" {
		return ""
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	switch {
	case strings.HasPrefix(url, "//"):
		url = "https:" + url
	case strings.HasPrefix(url, "/"):
		url = strings.TrimSuffix(baseURL, "/") + url
	}

	base, params, found := strings.Cut(url, "?")
	if !found {
		return url
	}
	for _, p := range sizingParams {
		if strings.Contains(params, p) {
			return url
		}
	}
	return base
}

// IsValidURL reports whether url points at an image: it must be absolute or
// protocol-relative, carry a known image extension, and not match any
// excluded pattern.
func IsValidURL(url string) bool {
	if url == "" {
		return false
	}
	if !strings.HasPrefix(url, "http") && !strings.HasPrefix(url, "//") {
		return false
	}

	lower := strings.ToLower(url)
	for _, p := range excludedPatterns {
		if strings.Contains(lower, p) {
			return false
		}
	}

	// Substring match also covers suffixes and URLs like a.jpg?w=300
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}
