package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/use-agent/webloader/models"
)

// AddImagesSummary appends an "## Images" numbered list to content, when
// images is non-empty.
func AddImagesSummary(content string, images []models.ImageData) string {
	if len(images) == 0 {
		return content
	}
	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n\n## Images\n\n")
	for i, img := range images {
		alt := img.Alt
		if alt == "" {
			alt = "image"
		}
		fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, alt, img.Src)
	}
	return b.String()
}

// AddLinksSummary appends a "## Links" numbered list to content, when
// links is non-empty.
func AddLinksSummary(content string, links []models.LinkData) string {
	if len(links) == 0 {
		return content
	}
	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n\n## Links\n\n")
	for i, link := range links {
		text := link.Text
		if text == "" {
			text = link.Href
		}
		fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, text, link.Href)
	}
	return b.String()
}

var inlineLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// ConvertToCitations rewrites inline markdown links into numbered
// reference-style citations, deduping identical URLs to the same reference
// number, per A7.
func ConvertToCitations(md string) string {
	urlToNum := make(map[string]int)
	var refs []string
	counter := 0

	result := inlineLinkPattern.ReplaceAllStringFunc(md, func(match string) string {
		parts := inlineLinkPattern.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}
		text, url := parts[1], parts[2]

		num, exists := urlToNum[url]
		if !exists {
			counter++
			num = counter
			urlToNum[url] = num
			refs = append(refs, fmt.Sprintf("[%d]: %s", num, url))
		}
		return fmt.Sprintf("[%s][%d]", text, num)
	})

	if len(refs) == 0 {
		return md
	}
	return result + "\n\n---\n" + strings.Join(refs, "\n")
}
