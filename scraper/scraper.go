// Package scraper implements the C4 Scraper: parsing raw page HTML into a
// PageSnapshot (title, published time, targeted/cleaned content, images,
// links, PDF detection, complexity metrics).
//
// Grounded in original_source/src/services/scraper.rs for extraction order
// and original_source/src/models/snapshot.rs for the complexity formula,
// with goquery doing the DOM walking the way teacher cleaner/extract.go
// does it.
package scraper

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/use-agent/webloader/models"
)

var publishedTimeSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="article:published_time"]`, "content"},
	{`meta[name="publishedDate"]`, "content"},
	{`meta[name="date"]`, "content"},
	{`time[datetime]`, "datetime"},
	{`meta[property="og:article:published_time"]`, "content"},
}

var pdfSelectors = []string{
	`embed[type="application/pdf"]`,
	`object[type="application/pdf"]`,
	`iframe[src*=".pdf"]`,
	`a[href$=".pdf"]`,
}

// Parse builds a PageSnapshot from raw HTML fetched from sourceURL, applying
// the request's target/remove selectors and populating images, links, PDF
// detection, and complexity metrics.
func Parse(rawHTML, sourceURL string, opts *models.CrawlerOptions) (*models.PageSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewAppError(models.ErrScrapingError, "failed to parse page HTML", err)
	}

	snap := &models.PageSnapshot{
		URL:   sourceURL,
		HTML:  rawHTML,
		Title: extractTitle(doc),
	}
	snap.PublishedTime = extractPublishedTime(doc)

	content := rawHTML
	if opts != nil && opts.Target != "" {
		matched, err := ApplySelector(content, opts.Target)
		if err != nil {
			return nil, models.NewAppError(models.ErrScrapingError, "invalid target selector", err)
		}
		if matched == "" {
			return nil, models.NewAppError(models.ErrScrapingError, "target selector matched no elements", nil)
		}
		content = matched
	}
	if opts != nil && opts.Remove != "" {
		content, err = removeSelector(content, opts.Remove)
		if err != nil {
			return nil, models.NewAppError(models.ErrScrapingError, "invalid remove selector", err)
		}
	}
	snap.HTML = content

	keepDataURL := opts != nil && opts.KeepImgDataURL
	snap.Images = extractImages(doc, sourceURL, keepDataURL)
	snap.Links = extractLinks(doc, sourceURL)
	snap.HasPDF = detectPDF(doc)
	snap.Complexity = scoreComplexity(doc, rawHTML)

	return snap, nil
}

func extractTitle(doc *goquery.Document) string {
	if t, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func extractPublishedTime(doc *goquery.Document) string {
	for _, s := range publishedTimeSelectors {
		sel := doc.Find(s.selector).First()
		if sel.Length() == 0 {
			continue
		}
		if v, ok := sel.Attr(s.attr); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// removeSelector drops every element matching selector from the parsed DOM
// and re-serializes, the way readability/clean.go's removeNoiseSelectors
// does it — operating per matched node rather than string-replacing a
// concatenated blob, which breaks as soon as two matches aren't adjacent
// in the source document.
func removeSelector(rawHTML, selector string) (string, error) {
	if _, err := cascadia.Parse(selector); err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}
	doc.Find(selector).Remove()

	out, err := doc.Find("body").Html()
	if err != nil || out == "" {
		if h, herr := doc.Html(); herr == nil {
			return h, nil
		}
		return rawHTML, nil
	}
	return out, nil
}

func extractImages(doc *goquery.Document, sourceURL string, keepDataURL bool) []models.ImageData {
	base, err := parseBase(sourceURL)
	if err != nil {
		return nil
	}

	var images []models.ImageData
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			src, ok = s.Attr("data-src")
			if !ok || src == "" {
				return
			}
		}
		if strings.HasPrefix(src, "data:") {
			if !keepDataURL {
				return
			}
			img := models.ImageData{Src: src, DataURL: src}
			if alt, ok := s.Attr("alt"); ok {
				img.Alt = alt
			}
			images = append(images, img)
			return
		}

		resolved, err := base.Parse(src)
		if err != nil {
			return
		}
		img := models.ImageData{Src: resolved.String()}
		if alt, ok := s.Attr("alt"); ok {
			img.Alt = alt
		}
		if w, ok := s.Attr("width"); ok {
			if n, err := strconv.Atoi(w); err == nil {
				img.Width = &n
			}
		}
		if h, ok := s.Attr("height"); ok {
			if n, err := strconv.Atoi(h); err == nil {
				img.Height = &n
			}
		}
		images = append(images, img)
	})
	return images
}

func extractLinks(doc *goquery.Document, sourceURL string) []models.LinkData {
	base, err := parseBase(sourceURL)
	if err != nil {
		return nil
	}

	var links []models.LinkData
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		abs := resolved.String()
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, models.LinkData{
			Href:       abs,
			Text:       strings.TrimSpace(s.Text()),
			IsInternal: strings.EqualFold(resolved.Host, base.Host),
		})
	})
	return links
}

func detectPDF(doc *goquery.Document) bool {
	for _, sel := range pdfSelectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}
