// Package markdown implements the C6 Markdown Converter: preprocess ->
// parse_to_markdown -> tidy -> metadata_header, plus the A7 citations
// post-process.
//
// Grounded in teacher cleaner/markdown.go for the html-to-markdown/v2
// wiring and cleaner/citations.go for the reference-style rewrite;
// preprocess/tidy regex rules follow
// original_source/src/services/markdown.rs.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// Converter wraps a reusable, goroutine-safe html-to-markdown converter.
type Converter struct {
	conv *converter.Converter
}

// New builds a Converter configured with the base/commonmark/table plugins.
func New() *Converter {
	return &Converter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Metadata carries the optional header fields prepended to converted
// markdown.
type Metadata struct {
	Title         string
	SourceURL     string
	PublishedTime string
}

// Convert runs the full pipeline: preprocess, parse to markdown, tidy, and
// prepend the metadata header.
func (c *Converter) Convert(htmlContent string, meta Metadata) (string, error) {
	pre := preprocess(htmlContent)

	body, err := c.conv.ConvertString(pre, converter.WithDomain(meta.SourceURL))
	if err != nil {
		return "", err
	}

	body = tidy(body)
	return metadataHeader(meta) + body, nil
}

var svgPattern = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
var styleAttrPattern = regexp.MustCompile(`(?i)\s+style\s*=\s*("[^"]*"|'[^']*')`)
var classAttrPattern = regexp.MustCompile(`(?i)\s+class\s*=\s*("[^"]*"|'[^']*')`)
var collapseTagGapPattern = regexp.MustCompile(`>\s{2,}<`)

func preprocess(htmlContent string) string {
	out := svgPattern.ReplaceAllString(htmlContent, "[SVG Image]")
	out = styleAttrPattern.ReplaceAllString(out, "")
	out = classAttrPattern.ReplaceAllString(out, "")
	out = collapseTagGapPattern.ReplaceAllString(out, "> <")
	return out
}

var (
	brokenLinkPattern       = regexp.MustCompile(`\]\s+\(`)
	emptyLinkPattern        = regexp.MustCompile(`\[\]\([^)]*\)`)
	emptyHeadingRegexp      = regexp.MustCompile(`(?m)^#{1,6}\s*$\n?`)
	tripleNewlinePlus       = regexp.MustCompile(`\n{3,}`)
	trailingSpaces          = regexp.MustCompile(`[ \t]+\n`)
	brokenInlineCodePattern = regexp.MustCompile("`\\s+`")
	listItemPattern         = regexp.MustCompile(`^[-*+]\s|^\d+\.\s`)
)

// tidy fixes common markdown conversion artifacts.
func tidy(md string) string {
	out := brokenLinkPattern.ReplaceAllString(md, "](")
	out = emptyLinkPattern.ReplaceAllString(out, "")
	out = emptyHeadingRegexp.ReplaceAllString(out, "")
	out = tripleNewlinePlus.ReplaceAllString(out, "\n\n")
	out = trailingSpaces.ReplaceAllString(out, "\n")
	out = brokenInlineCodePattern.ReplaceAllString(out, "` `")
	out = ensureBlankLineBeforeLists(out)
	return strings.TrimSpace(out)
}

func ensureBlankLineBeforeLists(md string) string {
	lines := strings.Split(md, "\n")
	var out []string
	for i, line := range lines {
		if i > 0 && listItemPattern.MatchString(line) && !listItemPattern.MatchString(lines[i-1]) && strings.TrimSpace(lines[i-1]) != "" {
			out = append(out, "")
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func metadataHeader(meta Metadata) string {
	var b strings.Builder
	if meta.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", meta.Title)
	}
	if meta.SourceURL != "" {
		fmt.Fprintf(&b, "URL Source: %s\n", meta.SourceURL)
	}
	if meta.PublishedTime != "" {
		fmt.Fprintf(&b, "Published: %s\n", meta.PublishedTime)
	}
	if b.Len() == 0 {
		return ""
	}
	b.WriteString("\n---\n\n")
	return b.String()
}
