package pipeline

import (
	"github.com/use-agent/webloader/markdown"
	"github.com/use-agent/webloader/models"
	"github.com/use-agent/webloader/readability"
	"github.com/use-agent/webloader/scraper"
	"github.com/use-agent/webloader/tokens"
)

// Converter turns a fetched page's raw HTML into a LoadResponse, per the
// §4.8 Converter contract.
type Converter struct {
	md *markdown.Converter
}

// NewConverter builds a Converter with its own markdown.Converter instance.
func NewConverter() *Converter {
	return &Converter{md: markdown.New()}
}

// Process implements the Converter contract for non-screenshot responses.
func (c *Converter) Process(rawHTML string, opts *models.CrawlerOptions) (*models.LoadResponse, error) {
	snap, err := scraper.Parse(rawHTML, opts.URL, opts)
	if err != nil {
		return nil, err
	}

	filtered := snap.HTML
	if len(opts.IncludeTags) > 0 || len(opts.ExcludeTags) > 0 {
		filtered = readability.FilterContent(filtered, opts.IncludeTags, opts.ExcludeTags)
	}

	resp := &models.LoadResponse{
		URL:           opts.URL,
		Title:         snap.Title,
		PublishedTime: snap.PublishedTime,
	}

	switch opts.RespondWith {
	case models.FormatHTML:
		resp.Content = readability.CleanHTML(filtered)
	case models.FormatText:
		resp.Content = readability.ExtractWithoutReadability(filtered)
	default: // markdown, default
		cleaned := readability.CleanHTML(filtered)
		article := readability.ExtractContent(cleaned, opts.URL)
		content, err := c.md.Convert(article.Content, markdown.Metadata{
			Title:         snap.Title,
			SourceURL:     opts.URL,
			PublishedTime: snap.PublishedTime,
		})
		if err != nil {
			return nil, models.NewAppError(models.ErrMarkdownError, "markdown conversion failed", err)
		}
		resp.Content = content
	}

	if opts.WithImagesSummary {
		resp.Images = toImageInfos(snap.Images)
		if opts.RespondWith == models.FormatMarkdown || opts.RespondWith == models.FormatDefault {
			resp.Content = markdown.AddImagesSummary(resp.Content, snap.Images)
		}
	}
	if opts.WithLinksSummary {
		resp.Links = toLinkInfos(snap.Links)
		if opts.RespondWith == models.FormatMarkdown || opts.RespondWith == models.FormatDefault {
			resp.Content = markdown.AddLinksSummary(resp.Content, snap.Links)
		}
	}
	if opts.WithCitations && (opts.RespondWith == models.FormatMarkdown || opts.RespondWith == models.FormatDefault) {
		resp.Content = markdown.ConvertToCitations(resp.Content)
	}

	est := tokens.Estimate(resp.Content)
	resp.Metadata.TokenEstimate = &est

	return resp, nil
}

func toImageInfos(images []models.ImageData) []models.ImageInfo {
	if len(images) == 0 {
		return nil
	}
	out := make([]models.ImageInfo, 0, len(images))
	for _, img := range images {
		info := models.ImageInfo{Src: img.Src}
		if img.Alt != "" {
			alt := img.Alt
			info.Alt = &alt
		}
		if img.Width != nil {
			info.Width = img.Width
		}
		if img.Height != nil {
			info.Height = img.Height
		}
		out = append(out, info)
	}
	return out
}

func toLinkInfos(links []models.LinkData) []models.LinkInfo {
	if len(links) == 0 {
		return nil
	}
	out := make([]models.LinkInfo, 0, len(links))
	for _, l := range links {
		info := models.LinkInfo{Href: l.Href}
		if l.Text != "" {
			text := l.Text
			info.Text = &text
		}
		out = append(out, info)
	}
	return out
}
