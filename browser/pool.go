// Package browser implements the C3 Browser Pool: one shared Chromium
// instance multiplexed across N concurrent permits, with self-healing on
// connection loss.
//
// Grounded primarily on original_source/src/services/browser.rs for the
// exact state machine, retry counts, and timeouts; the concrete go-rod
// bindings (launch flags, stealth injection) are adapted from the
// teacher's scraper/scraper.go and scraper/page.go.
package browser

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/use-agent/webloader/models"
)

const (
	maxGetPageAttempts = 3
	retryDelay         = 500 * time.Millisecond
	setupCallTimeout   = 5 * time.Second
	healthCheckTimeout = 5 * time.Second
	settleTime         = 1 * time.Second
)

// Options carries the per-request knobs the pool's navigation/page-setup
// steps read. URL is the page URL the request targets; cookie domains are
// derived from its host, not from the cookie string itself.
type Options struct {
	URL       string
	Timeout   time.Duration
	WaitFor   string
	Cookies   string
	UserAgent string
}

// Pool is the process-wide C3 Browser Pool. There is exactly one per
// process.
type Pool struct {
	driver Driver

	sem chan struct{}

	mu        sync.RWMutex // guards driverSet below (handle "clone" read lock)
	driverSet bool

	healthy         atomic.Bool
	recreationCount atomic.Uint64
	recreateMu      sync.Mutex

	size int
}

// NewPool constructs a Pool with the given driver and permit count and
// launches the browser. If that launch fails, the pool starts unhealthy and
// the launch is retried on first use (ensureBrowser).
func NewPool(driver Driver, size int) *Pool {
	p := &Pool{
		driver: driver,
		sem:    make(chan struct{}, size),
		size:   size,
	}
	_ = p.ensureBrowser(context.Background())
	return p
}

// AvailableSlots reports the number of free permits.
func (p *Pool) AvailableSlots() int { return p.size - len(p.sem) }

// TotalSlots reports the configured pool size.
func (p *Pool) TotalSlots() int { return p.size }

// RecreationCount reports how many times the browser has been relaunched.
func (p *Pool) RecreationCount() uint64 { return p.recreationCount.Load() }

// IsHealthy reports the last-observed health state.
func (p *Pool) IsHealthy() bool { return p.healthy.Load() }

// ensureBrowser implements the double-checked-locking rebuild of §4.3.
func (p *Pool) ensureBrowser(ctx context.Context) error {
	if p.healthy.Load() {
		return nil
	}
	p.recreateMu.Lock()
	defer p.recreateMu.Unlock()

	if p.healthy.Load() {
		return nil
	}

	p.healthy.Store(false)

	p.mu.Lock()
	err := p.driver.Launch(ctx)
	if err == nil {
		p.driverSet = true
	}
	p.mu.Unlock()
	if err != nil {
		return &DriverError{Err: err}
	}

	p.healthy.Store(true)
	p.recreationCount.Add(1)
	return nil
}

// healthCheck bounds a liveness probe to 5s.
func (p *Pool) healthCheck(ctx context.Context) bool {
	hctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	p.mu.RLock()
	d := p.driver
	p.mu.RUnlock()

	if err := d.HealthCheck(hctx); err != nil {
		return false
	}
	return true
}

// InvalidateBrowser marks the pool unhealthy and drops the browser handle.
func (p *Pool) InvalidateBrowser() {
	p.healthy.Store(false)
	p.mu.Lock()
	if p.driverSet {
		_ = p.driver.Close()
		p.driverSet = false
	}
	p.mu.Unlock()
}

// permit is a held semaphore slot plus the Page it authorizes use of.
type permit struct {
	pool    *Pool
	page    Page
	release sync.Once
}

// Release returns the held page and semaphore slot. Safe to call multiple
// times; only the first call has effect.
func (h *permit) Release() {
	h.release.Do(func() {
		if h.page != nil {
			_ = h.page.Close()
		}
		<-h.pool.sem
	})
}

// Page returns the underlying page handle.
func (h *permit) Page() Page { return h.page }

// GetPage implements §4.3's get_page protocol: acquire a permit, ensure a
// healthy browser, open a page (with UA + cookies set), making up to 3
// attempts in total on connection-classified failures.
func (p *Pool) GetPage(ctx context.Context, opts Options) (*permit, error) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, models.NewAppError(models.ErrTimeout, "timed out waiting for a browser slot", ctx.Err())
	}

	page, err := p.acquirePage(ctx, opts)
	if err != nil {
		<-p.sem
		return nil, err
	}
	return &permit{pool: p, page: page}, nil
}

func (p *Pool) acquirePage(ctx context.Context, opts Options) (Page, error) {
	var lastErr error
	for attempt := 0; attempt < maxGetPageAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		if err := p.ensureBrowser(ctx); err != nil {
			lastErr = err
			continue
		}

		if attempt > 0 || !p.healthy.Load() {
			if !p.healthCheck(ctx) {
				p.InvalidateBrowser()
				continue
			}
		}

		page, err := p.tryGetPage(ctx, opts)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if IsConnectionError(err) {
			p.InvalidateBrowser()
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func (p *Pool) tryGetPage(ctx context.Context, opts Options) (Page, error) {
	p.mu.RLock()
	d := p.driver
	p.mu.RUnlock()

	openCtx, cancel := context.WithTimeout(ctx, setupCallTimeout)
	page, err := d.OpenPage(openCtx)
	cancel()
	if err != nil {
		if errors.Is(openCtx.Err(), context.DeadlineExceeded) {
			return nil, &DriverError{Err: timeoutErr("Timeout creating page - browser connection may be dead")}
		}
		return nil, err
	}

	uaCtx, cancel := context.WithTimeout(ctx, setupCallTimeout)
	err = page.SetUserAgent(uaCtx, opts.UserAgent)
	cancel()
	if err != nil {
		_ = page.Close()
		if errors.Is(uaCtx.Err(), context.DeadlineExceeded) {
			return nil, &DriverError{Err: timeoutErr("Timeout setting user agent - browser connection may be dead")}
		}
		return nil, err
	}

	if opts.Cookies != "" {
		domain := ""
		if u, perr := url.Parse(opts.URL); perr == nil {
			domain = u.Hostname()
		}
		cookies := ParseCookies(opts.Cookies, domain)
		cCtx, cancel := context.WithTimeout(ctx, setupCallTimeout)
		err = page.SetCookies(cCtx, cookies)
		cancel()
		if err != nil {
			_ = page.Close()
			if errors.Is(cCtx.Err(), context.DeadlineExceeded) {
				return nil, &DriverError{Err: timeoutErr("Timeout setting cookies - browser connection may be dead")}
			}
			return nil, err
		}
	}

	return page, nil
}

type timeoutErr string

func (e timeoutErr) Error() string { return string(e) }

// NavigateAndWait implements §4.3's navigate_and_wait: bounded navigate,
// optional selector wait, fixed settle sleep, content extraction.
func (p *Pool) NavigateAndWait(ctx context.Context, page Page, targetURL string, opts Options) (string, error) {
	bound := opts.Timeout
	if bound <= 0 {
		bound = 30 * time.Second
	}
	navCtx, cancel := context.WithTimeout(ctx, bound)
	defer cancel()

	if err := page.Navigate(navCtx, targetURL); err != nil {
		if navCtx.Err() != nil {
			return "", models.NewAppError(models.ErrTimeout, "navigation timed out", navCtx.Err())
		}
		if IsConnectionError(err) {
			p.healthy.Store(false)
		}
		return "", models.NewAppError(models.ErrScrapingError, "navigation failed", err)
	}

	if opts.WaitFor != "" {
		if err := page.WaitForSelector(navCtx, opts.WaitFor); err != nil {
			if navCtx.Err() != nil {
				return "", models.NewAppError(models.ErrTimeout, "wait_for selector timed out", navCtx.Err())
			}
			if IsConnectionError(err) {
				p.healthy.Store(false)
			}
			return "", models.NewAppError(models.ErrScrapingError, "wait_for selector failed", err)
		}
	} else if err := page.WaitReady(navCtx); err != nil {
		if IsConnectionError(err) {
			p.healthy.Store(false)
		}
	}

	select {
	case <-time.After(settleTime):
	case <-navCtx.Done():
		return "", models.NewAppError(models.ErrTimeout, "navigation timed out during settle", navCtx.Err())
	}

	html, err := page.Content(navCtx)
	if err != nil {
		if navCtx.Err() != nil {
			return "", models.NewAppError(models.ErrTimeout, "content extraction timed out", navCtx.Err())
		}
		if IsConnectionError(err) {
			p.healthy.Store(false)
		}
		return "", models.NewAppError(models.ErrScrapingError, "content extraction failed", err)
	}
	return html, nil
}

// TakeScreenshot implements §4.3's take_screenshot.
func (p *Pool) TakeScreenshot(ctx context.Context, page Page, fullPage bool) ([]byte, error) {
	data, err := page.Screenshot(ctx, fullPage)
	if err != nil {
		if IsConnectionError(err) {
			p.healthy.Store(false)
		}
		return nil, models.NewAppError(models.ErrScreenshotError, "screenshot failed", err)
	}
	return data, nil
}

// Close tears down the underlying browser process.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.driverSet {
		return nil
	}
	p.driverSet = false
	return p.driver.Close()
}
