// Package pipeline implements the C8 Request Pipeline: option parsing,
// the single-URL/batch/OpenWebUI request paths, and the retry-with-
// invalidate-on-connection-error control flow.
//
// Grounded in original_source/src/routes/loader.rs for parse_options and
// the process_url/process_url_with_retry control flow; concurrency is
// adapted to Go's goroutine+WaitGroup idiom instead of join_all futures.
package pipeline

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/use-agent/webloader/models"
)

// ParseOptions builds a CrawlerOptions for url from header overrides and
// request-body options, with headers taking precedence per §6.
func ParseOptions(h http.Header, url string, body *models.LoadRequestOptions) *models.CrawlerOptions {
	opts := models.FromOptions(url, body)

	if v := h.Get("x-respond-with"); v != "" {
		opts.RespondWith = models.ParseResponseFormat(v)
	}
	if v := h.Get("x-wait-for-selector"); v != "" {
		opts.WaitFor = v
	}
	if v := h.Get("x-target-selector"); v != "" {
		opts.Target = v
	}
	if v := h.Get("x-remove-selector"); v != "" {
		opts.Remove = v
	}
	if v := h.Get("x-timeout"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			opts.TimeoutSecs = n
		}
	}
	if v := h.Get("x-set-cookie"); v != "" {
		opts.Cookies = v
	}
	if v := h.Get("x-proxy-url"); v != "" {
		opts.ProxyURL = v
	}
	if v := h.Get("x-user-agent"); v != "" {
		opts.UserAgent = v
	}
	if v := h.Get("x-cache-tolerance"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			opts.CacheToleranceSecs = n
		}
	}
	if v := h.Get("x-include-tags"); v != "" {
		opts.IncludeTags = splitCSV(v)
	}
	if v := h.Get("x-exclude-tags"); v != "" {
		opts.ExcludeTags = splitCSV(v)
	}

	if boolHeader(h, "x-with-iframe") {
		opts.WithIframe = true
	}
	if boolHeader(h, "x-with-shadow-dom") {
		opts.WithShadowDom = true
	}
	if boolHeader(h, "x-no-cache") {
		opts.NoCache = true
	}
	if boolHeader(h, "x-with-images-summary") {
		opts.WithImagesSummary = true
	}
	if boolHeader(h, "x-with-links-summary") {
		opts.WithLinksSummary = true
	}
	if boolHeader(h, "x-with-generated-alt") {
		opts.WithGeneratedAlt = true
	}
	if boolHeader(h, "x-keep-img-data-url") {
		opts.KeepImgDataURL = true
	}
	if boolHeader(h, "x-with-citations") {
		opts.WithCitations = true
	}

	return opts
}

func boolHeader(h http.Header, name string) bool {
	v := h.Get(name)
	return v == "true" || v == "1"
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
