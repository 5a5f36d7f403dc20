package scraper

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
)

// fallbackUserAgent is the Chrome-like user agent Fetch sends when the
// caller supplies none.
const fallbackUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// FallbackFetcher is the A5 HTTP Fallback Fetcher: a plain HTTP client with
// a Chrome TLS fingerprint, used when the browser path fails on what looks
// like a static document. This is additive resilience, never a replacement
// for the browser path, and never participates in the browser pool's own
// retry/invalidate accounting.
//
// Adapted from teacher scraper/httpfetch.go's utls-fingerprinted dialer.
type FallbackFetcher struct {
	client *http.Client
}

// NewFallbackFetcher builds a FallbackFetcher whose transport dials TLS
// connections with a Chrome ClientHello fingerprint.
func NewFallbackFetcher() *FallbackFetcher {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	transport := &http.Transport{
		DialContext: dialer.DialContext,
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			rawConn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, err := net.SplitHostPort(addr)
			if err != nil {
				host = addr
			}

			uconn := utls.UClient(rawConn, &utls.Config{ServerName: host}, utls.HelloChrome_Auto)
			if err := uconn.HandshakeContext(ctx); err != nil {
				_ = rawConn.Close()
				return nil, fmt.Errorf("utls handshake: %w", err)
			}
			return uconn, nil
		},
	}

	return &FallbackFetcher{
		client: &http.Client{Transport: transport, Timeout: 30 * time.Second},
	}
}

// Fetch retrieves targetURL's body, setting a Chrome-like user agent.
func (f *FallbackFetcher) Fetch(ctx context.Context, targetURL, userAgent string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", err
	}
	if userAgent == "" {
		userAgent = fallbackUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fallback fetch: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

