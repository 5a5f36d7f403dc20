package scraper

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ApplySelector implements the A6 CSS Selector Engine: parse rawHTML,
// match elements against selector, and return the concatenated outer HTML
// of every match (empty string if nothing matches).
//
// Adapted from teacher cleaner/selector.go's ApplyCSSSelector, but returns
// an empty string on no-match rather than falling back to the original
// document — callers decide what "no match" means for their operation
// (target_selector fails the request; remove_selector leaves it alone).
func ApplySelector(rawHTML, selector string) (string, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	matches := cascadia.QueryAll(doc, sel)
	if len(matches) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	for _, node := range matches {
		if err := html.Render(&buf, node); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func parseBase(sourceURL string) (*url.URL, error) {
	return url.Parse(sourceURL)
}
