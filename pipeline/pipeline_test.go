package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/use-agent/webloader/browser"
	"github.com/use-agent/webloader/cache"
	"github.com/use-agent/webloader/models"
	"github.com/use-agent/webloader/screenshot"
	"github.com/use-agent/webloader/security"
)

type fakePage struct{ content string }

func (p *fakePage) SetUserAgent(ctx context.Context, ua string) error          { return nil }
func (p *fakePage) SetCookies(ctx context.Context, cookies []browser.Cookie) error { return nil }
func (p *fakePage) Navigate(ctx context.Context, url string) error             { return nil }
func (p *fakePage) WaitReady(ctx context.Context) error                        { return nil }
func (p *fakePage) WaitForSelector(ctx context.Context, selector string) error  { return nil }
func (p *fakePage) Content(ctx context.Context) (string, error)                { return p.content, nil }
func (p *fakePage) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	return []byte("png"), nil
}
func (p *fakePage) Close() error { return nil }

type fakeDriver struct {
	mu      sync.Mutex
	content string
	navErr  error
}

func (d *fakeDriver) Launch(ctx context.Context) error { return nil }
func (d *fakeDriver) OpenPage(ctx context.Context) (browser.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return &fakePage{content: d.content}, nil
}
func (d *fakeDriver) HealthCheck(ctx context.Context) error { return nil }
func (d *fakeDriver) Close() error                          { return nil }

func newTestPipeline(t *testing.T, driver browser.Driver) *Pipeline {
	t.Helper()
	gate := security.New(100, 10)
	t.Cleanup(gate.Close)

	respCache := cache.New(time.Minute, 100)
	t.Cleanup(respCache.Close)

	pool := browser.NewPool(driver, 2)
	t.Cleanup(func() { _ = pool.Close() })

	shots, err := screenshot.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to build screenshot store: %v", err)
	}
	t.Cleanup(shots.Close)

	return New(gate, respCache, pool, shots, 5*time.Second)
}

func TestLoadSingle_Success(t *testing.T) {
	d := &fakeDriver{content: "<html><head><title>Hi</title></head><body><p>hello world content here</p></body></html>"}
	p := newTestPipeline(t, d)

	resp, err := p.LoadSingle(context.Background(), &models.CrawlerOptions{
		URL:         "https://example.com",
		RespondWith: models.FormatHTML,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.URL != "https://example.com" {
		t.Errorf("URL = %q", resp.URL)
	}
}

func TestLoadSingle_BlockedURLNeverReachesBrowser(t *testing.T) {
	d := &fakeDriver{content: "<html></html>"}
	p := newTestPipeline(t, d)

	_, err := p.LoadSingle(context.Background(), &models.CrawlerOptions{
		URL:         "http://localhost/admin",
		RespondWith: models.FormatHTML,
	})
	ae := models.AsAppError(err)
	if ae.Kind != models.ErrBlockedURL {
		t.Errorf("kind = %v, want ErrBlockedURL", ae.Kind)
	}
}

func TestLoadSingle_CachesSuccessfulResponse(t *testing.T) {
	d := &fakeDriver{content: "<html><body><p>cache me please, this is long enough</p></body></html>"}
	p := newTestPipeline(t, d)

	opts := &models.CrawlerOptions{URL: "https://example.com", RespondWith: models.FormatHTML}
	first, err := p.LoadSingle(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Metadata.Cached {
		t.Error("expected first response to be a fresh fetch, not cached")
	}

	second, err := p.LoadSingle(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Metadata.Cached {
		t.Error("expected second identical request to be served from cache")
	}
}

func TestIsNonPipelineFailure(t *testing.T) {
	tests := []struct {
		kind models.ErrKind
		want bool
	}{
		{models.ErrInvalidURL, true},
		{models.ErrBlockedURL, true},
		{models.ErrRateLimitExceeded, true},
		{models.ErrCircuitBreakerOpen, true},
		{models.ErrTooManyDomains, true},
		{models.ErrScrapingError, false},
		{models.ErrBrowserError, false},
		{models.ErrTimeout, false},
	}
	for _, tt := range tests {
		err := models.NewAppError(tt.kind, "x", nil)
		if got := isNonPipelineFailure(err); got != tt.want {
			t.Errorf("isNonPipelineFailure(%v) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestLoadBatch_EnforcesDomainCount(t *testing.T) {
	d := &fakeDriver{content: "<html><body>x</body></html>"}
	p := newTestPipeline(t, d)
	// newTestPipeline's security.Gate allows up to 10 domains; request 2
	// distinct domains against a Pipeline built with a 1-domain cap instead.
	gate := security.New(100, 1)
	t.Cleanup(gate.Close)
	p.gate = gate

	_, err := p.LoadBatch(context.Background(), []string{
		"https://a.example.com",
		"https://b.example.com",
	}, nil, nil)
	ae := models.AsAppError(err)
	if ae.Kind != models.ErrTooManyDomains {
		t.Errorf("kind = %v, want ErrTooManyDomains", ae.Kind)
	}
}

func TestLoadBatch_ProcessesAllURLs(t *testing.T) {
	d := &fakeDriver{content: "<html><body><p>batch content long enough to pass readability</p></body></html>"}
	p := newTestPipeline(t, d)

	resp, err := p.LoadBatch(context.Background(), []string{
		"https://a.example.com",
		"https://b.example.com",
	}, &models.LoadRequestOptions{RespondWith: "html"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(resp.Results))
	}
	for _, r := range resp.Results {
		if r.Error != nil {
			t.Errorf("unexpected per-url error for %s: %s", r.URL, *r.Error)
		}
	}
}

func TestTryHTTPFallback_RefusesOnConnectionError(t *testing.T) {
	d := &fakeDriver{}
	p := newTestPipeline(t, d)

	connErr := models.NewAppError(models.ErrScrapingError, "nav failed", &browser.DriverError{Err: errConnectionLike{}})
	_, ok := p.tryHTTPFallback(context.Background(), &models.CrawlerOptions{URL: "https://example.com"}, connErr)
	if ok {
		t.Error("expected fallback to refuse engagement on a connection-classified error")
	}
}

func TestTryHTTPFallback_RefusesWhenWaitForSet(t *testing.T) {
	d := &fakeDriver{}
	p := newTestPipeline(t, d)

	scrapeErr := models.NewAppError(models.ErrScrapingError, "nav failed", nil)
	_, ok := p.tryHTTPFallback(context.Background(), &models.CrawlerOptions{URL: "https://example.com", WaitFor: "#x"}, scrapeErr)
	if ok {
		t.Error("expected fallback to refuse engagement when wait_for is set")
	}
}

type errConnectionLike struct{}

func (errConnectionLike) Error() string { return "target closed" }
