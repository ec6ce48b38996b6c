package openlibrary

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// markupPattern spots opening tags of the elements that actually occur
// in catalog descriptions; a bare "<" alone is not enough, titles can
// legitimately contain one.
var markupPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// cleanDescription normalizes a work description to Markdown. Open
// Library descriptions arrive as plain text, Markdown, or HTML; only
// the HTML ones need converting, the rest pass through trimmed.
func cleanDescription(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !markupPattern.MatchString(strings.ToLower(s)) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		// Better the original markup than nothing.
		return s
	}
	return strings.TrimSpace(markdown)
}
