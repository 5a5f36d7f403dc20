package pipeline

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/use-agent/webloader/browser"
	"github.com/use-agent/webloader/cache"
	"github.com/use-agent/webloader/models"
	"github.com/use-agent/webloader/scraper"
	"github.com/use-agent/webloader/screenshot"
	"github.com/use-agent/webloader/security"
)

const maxRequestRetries = 2 // 1 initial attempt + 2 retries, per §4.8

// Pipeline wires the Security Gate, Response Cache, Browser Pool, Screenshot
// Store, and Converter together into the C8 Request Pipeline.
type Pipeline struct {
	gate       *security.Gate
	cache      *cache.Cache
	pool       *browser.Pool
	shots      *screenshot.Store
	converter  *Converter
	fallback   *scraper.FallbackFetcher
	defaultReq time.Duration
}

// New constructs a Pipeline.
func New(gate *security.Gate, c *cache.Cache, pool *browser.Pool, shots *screenshot.Store, defaultRequestTimeout time.Duration) *Pipeline {
	return &Pipeline{
		gate:       gate,
		cache:      c,
		pool:       pool,
		shots:      shots,
		converter:  NewConverter(),
		fallback:   scraper.NewFallbackFetcher(),
		defaultReq: defaultRequestTimeout,
	}
}

// LoadSingle runs the full single-URL path of §4.8.
func (p *Pipeline) LoadSingle(ctx context.Context, opts *models.CrawlerOptions) (*models.LoadResponse, error) {
	start := time.Now()
	u, err := security.ValidateURL(opts.URL)
	if err != nil {
		return nil, err
	}
	domain := security.Domain(u)

	if err := p.gate.CheckCircuitBreaker(domain); err != nil {
		return nil, err
	}
	if err := p.gate.CheckRateLimit(domain); err != nil {
		return nil, err
	}

	key := cache.Key(opts.URL, opts.RespondWith)
	if !opts.NoCache {
		var tolerance *time.Duration
		if opts.CacheToleranceSecs > 0 {
			d := time.Duration(opts.CacheToleranceSecs) * time.Second
			tolerance = &d
		}
		if cached, ok := p.cache.GetWithTolerance(key, tolerance); ok {
			return cached, nil
		}
	}

	resp, err := p.processURLWithRetry(ctx, opts)
	if err != nil {
		if !isNonPipelineFailure(err) {
			p.gate.RecordFailure(domain)
		}
		return nil, err
	}
	p.gate.RecordSuccess(domain)
	resp.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()

	if !opts.NoCache {
		var ttl *time.Duration
		if opts.CacheToleranceSecs > 0 {
			d := time.Duration(opts.CacheToleranceSecs) * time.Second
			ttl = &d
		}
		p.cache.Set(key, resp, ttl)
	}

	return resp, nil
}

// isNonPipelineFailure reports whether err is one of the kinds that never
// reach record_failure accounting: validation and admission-control
// failures are not pipeline (fetch/extract) failures.
func isNonPipelineFailure(err error) bool {
	ae := models.AsAppError(err)
	switch ae.Kind {
	case models.ErrInvalidURL, models.ErrBlockedURL, models.ErrRateLimitExceeded, models.ErrCircuitBreakerOpen, models.ErrTooManyDomains:
		return true
	}
	return false
}

func (p *Pipeline) processURLWithRetry(ctx context.Context, opts *models.CrawlerOptions) (*models.LoadResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRequestRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(500 * time.Millisecond)
		}

		resp, err := p.processURL(ctx, opts)
		if err == nil {
			return resp, nil
		}

		if browser.IsConnectionError(err) {
			p.pool.InvalidateBrowser()
			lastErr = err
			continue
		}
		return nil, err
	}
	if lastErr == nil {
		lastErr = models.NewAppError(models.ErrBrowserError, "failed to process URL after max retries", nil)
	}
	return nil, lastErr
}

func (p *Pipeline) processURL(ctx context.Context, opts *models.CrawlerOptions) (*models.LoadResponse, error) {
	if opts.RespondWith == models.FormatScreenshot || opts.RespondWith == models.FormatPageshot {
		return p.processScreenshot(ctx, opts)
	}

	bound := p.defaultReq
	if opts.TimeoutSecs > 0 {
		bound = time.Duration(opts.TimeoutSecs) * time.Second
	}

	permit, err := p.pool.GetPage(ctx, browser.Options{
		URL:       opts.URL,
		Timeout:   bound,
		WaitFor:   opts.WaitFor,
		Cookies:   opts.Cookies,
		UserAgent: opts.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	html, err := p.pool.NavigateAndWait(ctx, permit.Page(), opts.URL, browser.Options{Timeout: bound, WaitFor: opts.WaitFor})
	permit.Release()
	if err != nil {
		if fallbackHTML, ok := p.tryHTTPFallback(ctx, opts, err); ok {
			return p.converter.Process(fallbackHTML, opts)
		}
		return nil, err
	}

	return p.converter.Process(html, opts)
}

// tryHTTPFallback implements the A5 fallback: on a non-connection,
// non-timeout ScrapingError for a static-looking request (no wait_for/
// target, not a screenshot mode), retry once over plain HTTP with a
// Chrome TLS fingerprint before giving up.
func (p *Pipeline) tryHTTPFallback(ctx context.Context, opts *models.CrawlerOptions, navErr error) (string, bool) {
	if browser.IsConnectionError(navErr) {
		return "", false
	}
	ae := models.AsAppError(navErr)
	if ae.Kind != models.ErrScrapingError {
		return "", false
	}
	if opts.WaitFor != "" || opts.Target != "" {
		return "", false
	}

	html, err := p.fallback.Fetch(ctx, opts.URL, opts.UserAgent)
	if err != nil {
		return "", false
	}
	return html, true
}

func (p *Pipeline) processScreenshot(ctx context.Context, opts *models.CrawlerOptions) (*models.LoadResponse, error) {
	fullPage := opts.RespondWith == models.FormatPageshot

	bound := p.defaultReq
	if opts.TimeoutSecs > 0 {
		bound = time.Duration(opts.TimeoutSecs) * time.Second
	}

	permit, err := p.pool.GetPage(ctx, browser.Options{
		URL:       opts.URL,
		Timeout:   bound,
		Cookies:   opts.Cookies,
		UserAgent: opts.UserAgent,
	})
	if err != nil {
		return nil, err
	}
	defer permit.Release()

	if _, err := p.pool.NavigateAndWait(ctx, permit.Page(), opts.URL, browser.Options{Timeout: bound}); err != nil {
		return nil, err
	}

	data, err := p.pool.TakeScreenshot(ctx, permit.Page(), fullPage)
	if err != nil {
		return nil, err
	}

	shotURL, err := p.shots.Save(data, opts.URL)
	if err != nil {
		return nil, err
	}

	return &models.LoadResponse{
		URL:           opts.URL,
		ScreenshotURL: shotURL,
	}, nil
}

// LoadBatch dispatches all urls concurrently, bounded by a semaphore sized
// to the browser pool, and waits for every task to complete.
func (p *Pipeline) LoadBatch(ctx context.Context, urls []string, body *models.LoadRequestOptions, headers http.Header) (*models.BatchLoadResponse, error) {
	domains := domainsOf(urls)
	if err := p.gate.CheckDomainCount(domains); err != nil {
		return nil, err
	}

	start := time.Now()
	sem := make(chan struct{}, p.pool.TotalSlots())
	results := make([]models.BatchLoadResult, len(urls))

	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, u string) {
			defer wg.Done()
			defer func() { <-sem }()

			opts := ParseOptions(headers, u, body)
			resp, err := p.LoadSingle(ctx, opts)
			if err != nil {
				msg := err.Error()
				results[i] = models.BatchLoadResult{URL: u, Error: &msg}
				return
			}
			results[i] = models.BatchLoadResult{URL: u, Response: resp}
		}(i, u)
	}
	wg.Wait()

	return &models.BatchLoadResponse{
		Results:               results,
		TotalProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// LoadOpenWebUI runs the batch path but yields OpenWebUIDocuments and
// silently drops failures.
func (p *Pipeline) LoadOpenWebUI(ctx context.Context, urls []string, headers http.Header) []models.OpenWebUIDocument {
	domains := domainsOf(urls)
	if err := p.gate.CheckDomainCount(domains); err != nil {
		return nil
	}

	sem := make(chan struct{}, p.pool.TotalSlots())
	docs := make([]*models.OpenWebUIDocument, len(urls))

	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, u string) {
			defer wg.Done()
			defer func() { <-sem }()

			opts := ParseOptions(headers, u, nil)
			resp, err := p.LoadSingle(ctx, opts)
			if err != nil {
				return
			}
			var title *string
			if resp.Title != "" {
				t := resp.Title
				title = &t
			}
			docs[i] = &models.OpenWebUIDocument{
				PageContent: resp.Content,
				Metadata:    models.OpenWebUIMetadata{Source: u, Title: title},
			}
		}(i, u)
	}
	wg.Wait()

	out := make([]models.OpenWebUIDocument, 0, len(urls))
	for _, d := range docs {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out
}

func domainsOf(urls []string) []string {
	var domains []string
	for _, raw := range urls {
		if u, err := url.Parse(raw); err == nil {
			domains = append(domains, u.Hostname())
		}
	}
	return domains
}
