package readability

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	bodyPattern    = regexp.MustCompile(`(?is)<body[^>]*>(.*)</body>`)
	htmlTagPattern = regexp.MustCompile(`(?is)</?html[^>]*>|<!DOCTYPE[^>]*>|</?head[^>]*>.*?</head>`)

	scriptPattern   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	stylePattern    = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptPattern = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	svgPattern      = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	canvasPattern   = regexp.MustCompile(`(?is)<canvas[^>]*>.*?</canvas>`)
	commentPattern  = regexp.MustCompile(`(?is)<!--.*?-->`)

	dataAttrPattern = regexp.MustCompile(`(?i)\s+data-[a-z0-9-]+\s*=\s*("[^"]*"|'[^']*')`)
	onAttrPattern   = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*("[^"]*"|'[^']*')`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// noiseSelectors are the structural/boilerplate selectors stripped from the
// document before conversion, per the denoising pipeline.
var noiseSelectors = []string{
	"nav", "footer",
	".advertisement", ".ad", ".ads", ".advert",
	".social-share", ".share-buttons",
	".comments", "#comments", ".comment-section",
	".sidebar", "#sidebar", "aside",
	".related-posts", ".related-articles",
	"[aria-hidden='true']",
	".cookie-banner", ".cookie-notice",
	".newsletter-signup", ".subscribe",
	".popup", ".modal",
}

// CleanHTML denoises rawHTML into a form suitable for markdown conversion:
// body extraction, script/style/noscript/svg/canvas/comment stripping,
// data-*/on* attribute removal, boilerplate-selector removal, and
// whitespace collapse.
func CleanHTML(rawHTML string) string {
	body := rawHTML
	if m := bodyPattern.FindStringSubmatch(rawHTML); m != nil {
		body = m[1]
	} else {
		body = htmlTagPattern.ReplaceAllString(body, "")
	}

	body = scriptPattern.ReplaceAllString(body, "")
	body = stylePattern.ReplaceAllString(body, "")
	body = noscriptPattern.ReplaceAllString(body, "")
	body = svgPattern.ReplaceAllString(body, "")
	body = canvasPattern.ReplaceAllString(body, "")
	body = commentPattern.ReplaceAllString(body, "")

	body = dataAttrPattern.ReplaceAllString(body, "")
	body = onAttrPattern.ReplaceAllString(body, "")

	body = removeNoiseSelectors(body)

	body = whitespacePattern.ReplaceAllString(body, " ")
	return strings.TrimSpace(body)
}

func removeNoiseSelectors(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}
	// Headers are noise unless nested in an <article>.
	doc.Find("header").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("article").Length() == 0 {
			s.Remove()
		}
	})
	out, err := doc.Find("body").Html()
	if err != nil || out == "" {
		if h, herr := doc.Html(); herr == nil {
			return h
		}
		return rawHTML
	}
	return out
}
