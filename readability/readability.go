// Package readability implements the C5 Readability stage: article
// extraction, clean_html denoising, and the A7 content filter.
//
// Grounded in teacher cleaner/readability.go for the go-shiori binding and
// fallback discipline, and original_source/src/services/readability.rs for
// the clean_html regex/selector pipeline.
package readability

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	goreadability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// minContentLength is the minimum extracted TextContent length below which
// readability output is considered a failed extraction.
const minContentLength = 50

// Article is the result of content extraction: readable HTML plus its flat
// text representation.
type Article struct {
	Title   string
	Content string
	Text    string
}

// ExtractContent runs Mozilla Readability against rawHTML. On any failure
// (bad URL, extraction error, suspiciously short output) it falls back to
// the raw HTML so callers never see an empty result.
func ExtractContent(rawHTML, sourceURL string) Article {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL, falling back to raw HTML", "url", sourceURL, "error", err)
		return fallback(rawHTML)
	}

	article, err := goreadability.FromReader(strings.NewReader(rawHTML), parsed)
	if err != nil {
		slog.Warn("readability: extraction failed, falling back to raw HTML", "url", sourceURL, "error", err)
		return fallback(rawHTML)
	}
	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		slog.Warn("readability: extracted content too short, falling back to raw HTML", "url", sourceURL, "length", len(article.TextContent))
		return fallback(rawHTML)
	}

	return Article{
		Title:   article.Title,
		Content: article.Content,
		Text:    joinTextNodes(article.Content),
	}
}

// ExtractWithoutReadability produces the flat-text path used for "text"
// output: the same text-node-join algorithm applied directly to rawHTML,
// skipping the readability pass entirely.
func ExtractWithoutReadability(rawHTML string) string {
	return joinTextNodes(rawHTML)
}

func fallback(rawHTML string) Article {
	return Article{Content: rawHTML, Text: joinTextNodes(rawHTML)}
}

// joinTextNodes parses fragment and joins all text-node strings with single
// spaces, collapsing whitespace runs.
func joinTextNodes(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return collapseWhitespace(fragment)
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return collapseWhitespace(strings.Join(parts, " "))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FilterContent implements the A7 content filter: exclude first, then
// narrow to the include-selector union, falling back to the exclude-only
// result when the include selector matches nothing.
//
// Adapted from teacher cleaner/filter.go.
func FilterContent(rawHTML string, includeTags, excludeTags []string) string {
	if len(includeTags) == 0 && len(excludeTags) == 0 {
		return rawHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	for _, selector := range excludeTags {
		doc.Find(selector).Remove()
	}

	if len(includeTags) > 0 {
		combined := strings.Join(includeTags, ", ")
		matches := doc.Find(combined)
		if matches.Length() > 0 {
			var buf strings.Builder
			matches.Each(func(_ int, s *goquery.Selection) {
				if h, err := goquery.OuterHtml(s); err == nil {
					buf.WriteString(h)
				}
			})
			return buf.String()
		}
	}

	result, err := doc.Html()
	if err != nil {
		return rawHTML
	}
	return result
}
