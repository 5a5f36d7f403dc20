package models

import "strings"

// ResponseFormat selects the output shape of a /load request.
type ResponseFormat string

const (
	FormatDefault    ResponseFormat = "default"
	FormatMarkdown   ResponseFormat = "markdown"
	FormatHTML       ResponseFormat = "html"
	FormatText       ResponseFormat = "text"
	FormatScreenshot ResponseFormat = "screenshot"
	FormatPageshot   ResponseFormat = "pageshot"
)

// ParseResponseFormat parses a header/body value into a ResponseFormat,
// falling back to FormatDefault for anything unrecognized.
func ParseResponseFormat(s string) ResponseFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown":
		return FormatMarkdown
	case "html":
		return FormatHTML
	case "text":
		return FormatText
	case "screenshot":
		return FormatScreenshot
	case "pageshot":
		return FormatPageshot
	default:
		return FormatDefault
	}
}

// LoadRequestOptions is the wire-level shape of the "options" object
// accepted in the JSON body of /load and /load/batch, one-to-one with the
// header overrides of §6.
type LoadRequestOptions struct {
	RespondWith        string `json:"respond_with,omitempty"`
	WaitFor            string `json:"wait_for,omitempty"`
	Target             string `json:"target,omitempty"`
	Remove             string `json:"remove,omitempty"`
	TimeoutSecs        uint64 `json:"timeout_secs,omitempty"`
	Cookies            string `json:"cookies,omitempty"`
	ProxyURL           string `json:"proxy_url,omitempty"`
	UserAgent          string `json:"user_agent,omitempty"`
	WithIframe         bool   `json:"with_iframe,omitempty"`
	WithShadowDom      bool   `json:"with_shadow_dom,omitempty"`
	NoCache            bool   `json:"no_cache,omitempty"`
	WithImagesSummary  bool   `json:"with_images_summary,omitempty"`
	WithLinksSummary   bool   `json:"with_links_summary,omitempty"`
	WithGeneratedAlt   bool   `json:"with_generated_alt,omitempty"`
	KeepImgDataURL     bool   `json:"keep_img_data_url,omitempty"`
	CacheToleranceSecs uint64 `json:"cache_tolerance_secs,omitempty"`
	IncludeTags        string `json:"include_tags,omitempty"`
	ExcludeTags        string `json:"exclude_tags,omitempty"`
	WithCitations      bool   `json:"with_citations,omitempty"`
}

// LoadRequest is the payload for POST /load.
type LoadRequest struct {
	URL     string              `json:"url" binding:"required"`
	Options *LoadRequestOptions `json:"options,omitempty"`
}

// BatchLoadRequest is the payload for POST /load/batch.
type BatchLoadRequest struct {
	URLs    []string            `json:"urls" binding:"required"`
	Options *LoadRequestOptions `json:"options,omitempty"`
}

// OpenWebUIRequest is the payload for POST /.
type OpenWebUIRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

// CrawlerOptions is the fully-resolved, immutable-per-request option set
// produced by parsing headers + body (header precedence) and applying
// defaults. This is what every downstream component actually reads.
type CrawlerOptions struct {
	URL                string
	RespondWith        ResponseFormat
	WaitFor            string
	Target             string
	Remove             string
	TimeoutSecs        uint64
	Cookies            string
	ProxyURL           string
	UserAgent          string
	WithIframe         bool
	WithShadowDom      bool
	NoCache            bool
	WithImagesSummary  bool
	WithLinksSummary   bool
	WithGeneratedAlt   bool
	KeepImgDataURL     bool
	CacheToleranceSecs uint64
	IncludeTags        []string
	ExcludeTags        []string
	WithCitations      bool
}

// FromOptions builds a CrawlerOptions from a request URL and an (optional)
// body-supplied options object, applying defaults for anything unset.
func FromOptions(url string, o *LoadRequestOptions) *CrawlerOptions {
	co := &CrawlerOptions{URL: url, RespondWith: FormatDefault}
	if o == nil {
		return co
	}
	co.RespondWith = ParseResponseFormat(o.RespondWith)
	co.WaitFor = o.WaitFor
	co.Target = o.Target
	co.Remove = o.Remove
	co.TimeoutSecs = o.TimeoutSecs
	co.Cookies = o.Cookies
	co.ProxyURL = o.ProxyURL
	co.UserAgent = o.UserAgent
	co.WithIframe = o.WithIframe
	co.WithShadowDom = o.WithShadowDom
	co.NoCache = o.NoCache
	co.WithImagesSummary = o.WithImagesSummary
	co.WithLinksSummary = o.WithLinksSummary
	co.WithGeneratedAlt = o.WithGeneratedAlt
	co.KeepImgDataURL = o.KeepImgDataURL
	co.CacheToleranceSecs = o.CacheToleranceSecs
	co.IncludeTags = splitCSV(o.IncludeTags)
	co.ExcludeTags = splitCSV(o.ExcludeTags)
	co.WithCitations = o.WithCitations
	return co
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
