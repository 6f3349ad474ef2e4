package httpclient

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxSnippetLen = 512

// Snippet summarizes a response body for logs. HTML error pages (proxy and
// gateway failures) are reduced to their title, or their visible text.
func Snippet(contentType string, body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return "<empty>"
	}
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		if s := htmlSummary(body); s != "" {
			return truncate(s)
		}
	}
	return truncate(strings.TrimSpace(string(body)))
}

func htmlSummary(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.Join(strings.Fields(doc.Find("body").Text()), " ")
}

// truncate cuts s to at most maxSnippetLen bytes on a rune boundary.
func truncate(s string) string {
	if len(s) <= maxSnippetLen {
		return s
	}
	cut := maxSnippetLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
