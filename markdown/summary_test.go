package markdown

import (
	"strings"
	"testing"

	"github.com/use-agent/webloader/models"
)

func TestAddImagesSummary_AppendsNumberedList(t *testing.T) {
	images := []models.ImageData{
		{Src: "https://example.com/a.png", Alt: "A"},
		{Src: "https://example.com/b.png"},
	}
	got := AddImagesSummary("body", images)
	if !strings.Contains(got, "## Images") {
		t.Errorf("expected Images heading, got %q", got)
	}
	if !strings.Contains(got, "1. [A](https://example.com/a.png)") {
		t.Errorf("expected first image entry, got %q", got)
	}
	if !strings.Contains(got, "2. [image](https://example.com/b.png)") {
		t.Errorf("expected fallback alt text for image without alt, got %q", got)
	}
}

func TestAddImagesSummary_NoImagesNoOp(t *testing.T) {
	got := AddImagesSummary("body", nil)
	if got != "body" {
		t.Errorf("expected unchanged content, got %q", got)
	}
}

func TestAddLinksSummary_AppendsNumberedList(t *testing.T) {
	links := []models.LinkData{
		{Href: "https://example.com/a", Text: "Link A"},
		{Href: "https://example.com/b"},
	}
	got := AddLinksSummary("body", links)
	if !strings.Contains(got, "## Links") {
		t.Errorf("expected Links heading, got %q", got)
	}
	if !strings.Contains(got, "1. [Link A](https://example.com/a)") {
		t.Errorf("expected first link entry, got %q", got)
	}
	if !strings.Contains(got, "2. [https://example.com/b](https://example.com/b)") {
		t.Errorf("expected href fallback text for link without text, got %q", got)
	}
}

func TestConvertToCitations_RewritesInlineLinks(t *testing.T) {
	md := "See [the docs](https://example.com/docs) for more."
	got := ConvertToCitations(md)
	if !strings.Contains(got, "[the docs][1]") {
		t.Errorf("expected inline link rewritten to reference style, got %q", got)
	}
	if !strings.Contains(got, "[1]: https://example.com/docs") {
		t.Errorf("expected reference block with URL, got %q", got)
	}
}

func TestConvertToCitations_DedupesByURL(t *testing.T) {
	md := "[first](https://example.com/x) and [second](https://example.com/x)"
	got := ConvertToCitations(md)
	if !strings.Contains(got, "[first][1]") || !strings.Contains(got, "[second][1]") {
		t.Errorf("expected both links to share reference 1, got %q", got)
	}
	if strings.Count(got, "[1]: https://example.com/x") != 1 {
		t.Errorf("expected exactly one reference entry for the deduped URL, got %q", got)
	}
}

func TestConvertToCitations_NoLinksReturnsUnchanged(t *testing.T) {
	md := "plain text, no links here"
	got := ConvertToCitations(md)
	if got != md {
		t.Errorf("expected unchanged text, got %q", got)
	}
}
