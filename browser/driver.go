package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

const fallbackUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Cookie is a single cookie to set on a page before navigation.
type Cookie struct {
	Name   string
	Value  string
	Domain string
}

// Page is the narrow surface the pool needs from a browser tab. It exists
// so tests can substitute a fake implementation without a real Chromium
// (per §9's BrowserDriver interface extraction).
type Page interface {
	SetUserAgent(ctx context.Context, ua string) error
	SetCookies(ctx context.Context, cookies []Cookie) error
	Navigate(ctx context.Context, url string) error
	WaitReady(ctx context.Context) error
	WaitForSelector(ctx context.Context, selector string) error
	Content(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)
	Close() error
}

// Driver is the narrow surface the pool needs from a browser process.
type Driver interface {
	// Launch starts (or reconnects to) the browser process.
	Launch(ctx context.Context) error
	// OpenPage opens a new blank page, bounded by ctx's deadline.
	OpenPage(ctx context.Context) (Page, error)
	// HealthCheck verifies the browser connection is alive.
	HealthCheck(ctx context.Context) error
	// Close tears down the browser process.
	Close() error
}

// launchArgs are the flags §4.3 mandates be passed bit-wise.
var launchArgs = []string{
	"disable-gpu",
	"disable-dev-shm-usage",
	"disable-setuid-sandbox",
	"disable-extensions",
	"disable-background-networking",
	"disable-sync",
	"disable-translate",
	"hide-scrollbars",
	"metrics-recording-only",
	"mute-audio",
	"no-first-run",
	"safebrowsing-disable-auto-update",
	"ignore-certificate-errors",
	"ignore-ssl-errors",
	"ignore-certificate-errors-spki-list",
}

// RodDriver is the go-rod-backed Driver implementation: one headless
// Chromium process, launched with the stealth-oriented flag set the
// teacher's own scraper.go constructs, but reconnectable in place (no page
// pool of its own — the browser.Pool above it owns concurrency).
type RodDriver struct {
	chromePath string
	browser    *rod.Browser
}

// NewRodDriver constructs a driver bound to the given Chromium executable
// path (empty uses go-rod's own discovery).
func NewRodDriver(chromePath string) *RodDriver {
	return &RodDriver{chromePath: chromePath}
}

func (d *RodDriver) Launch(ctx context.Context) error {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Set(flags.Flag("disable-features"), "IsolateOrigins,site-per-process").
		Set(flags.Flag("disable-blink-features"), "AutomationControlled").
		Set(flags.Flag("disable-web-security")).
		Set(flags.Flag("window-size"), "1920,1080")

	for _, a := range launchArgs {
		l = l.Set(flags.Flag(a))
	}
	if d.chromePath != "" {
		l = l.Bin(d.chromePath)
	}

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to browser: %w", err)
	}
	d.browser = browser
	return nil
}

func (d *RodDriver) HealthCheck(ctx context.Context) error {
	if d.browser == nil {
		return fmt.Errorf("browser not launched")
	}
	page, err := d.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return &DriverError{Err: err}
	}
	defer func() { _ = page.Close() }()

	if _, err := page.Context(ctx).Eval(`() => 1 + 1`); err != nil {
		return &DriverError{Err: err}
	}
	return nil
}

func (d *RodDriver) OpenPage(ctx context.Context) (Page, error) {
	if d.browser == nil {
		return nil, fmt.Errorf("browser not launched")
	}
	p, err := d.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, &DriverError{Err: err}
	}
	if _, err := p.Context(ctx).EvalOnNewDocument(stealth.JS); err != nil {
		_ = p.Close()
		return nil, &DriverError{Err: err}
	}
	return &rodPage{page: p}, nil
}

func (d *RodDriver) Close() error {
	if d.browser == nil {
		return nil
	}
	return d.browser.Close()
}

// rodPage adapts *rod.Page to the Page interface.
type rodPage struct {
	page *rod.Page
}

func (p *rodPage) SetUserAgent(ctx context.Context, ua string) error {
	if ua == "" {
		ua = fallbackUserAgent
	}
	err := p.page.Context(ctx).SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua})
	if err != nil {
		return &DriverError{Err: err}
	}
	return nil
}

func (p *rodPage) SetCookies(ctx context.Context, cookies []Cookie) error {
	for _, c := range cookies {
		_, err := proto.NetworkSetCookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   "/",
		}.Call(p.page.Context(ctx))
		if err != nil {
			return &DriverError{Err: err}
		}
	}
	return nil
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	if err := p.page.Context(ctx).Navigate(url); err != nil {
		return &DriverError{Err: err}
	}
	if _, err := p.page.Context(ctx).Eval(`() => document.readyState`); err != nil {
		return &DriverError{Err: err}
	}
	return nil
}

func (p *rodPage) WaitReady(ctx context.Context) error {
	if err := p.page.Context(ctx).WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		return &DriverError{Err: err}
	}
	return nil
}

func (p *rodPage) WaitForSelector(ctx context.Context, selector string) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return &DriverError{Err: err}
	}
	if err := el.Context(ctx).WaitVisible(); err != nil {
		return &DriverError{Err: err}
	}
	return nil
}

func (p *rodPage) Content(ctx context.Context) (string, error) {
	html, err := p.page.Context(ctx).HTML()
	if err != nil {
		return "", &DriverError{Err: err}
	}
	return html, nil
}

func (p *rodPage) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	opts := &proto.PageCaptureScreenshot{Format: proto.PageCaptureScreenshotFormatPng}
	var data []byte
	var err error
	if fullPage {
		data, err = p.page.Context(ctx).Screenshot(true, opts)
	} else {
		data, err = p.page.Context(ctx).Screenshot(false, opts)
	}
	if err != nil {
		return nil, &DriverError{Err: err}
	}
	return data, nil
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

// ParseCookies parses a raw "k=v; k=v" cookie header into Cookie values for
// the given page domain. Ill-formed pairs (no '=') are dropped.
func ParseCookies(raw, domain string) []Cookie {
	if raw == "" {
		return nil
	}
	var cookies []Cookie
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idx := strings.Index(pair, "=")
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(pair[:idx])
		value := strings.TrimSpace(pair[idx+1:])
		if name == "" {
			continue
		}
		cookies = append(cookies, Cookie{Name: name, Value: value, Domain: domain})
	}
	return cookies
}
