package webfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/pitchlens/internal/utils"
	"github.com/leofalp/pitchlens/providers/observability"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is the default User-Agent header value
	DefaultUserAgent = "pitchlens-webfetch/1.0"
	// MaxBodySize is the maximum response body size (10MB)
	MaxBodySize = 10 * 1024 * 1024
	// DialTimeout is the maximum time to wait for a TCP connection
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the maximum time to wait for TLS handshake
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is the maximum time to wait for response headers
	ResponseHeaderTimeout = 10 * time.Second

	maxRedirects = 10
)

var (
	// ErrEmptyURL is returned for a blank URL.
	ErrEmptyURL = errors.New("webfetch: URL cannot be empty")
	// ErrBodyTooLarge is returned when the page exceeds MaxBodySize.
	ErrBodyTooLarge = fmt.Errorf("webfetch: response body exceeds maximum size of %d bytes", MaxBodySize)
)

// Page is a fetched document.
type Page struct {
	// URL is the final URL after redirects.
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
}

// Fetcher downloads pages. It is safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a [Fetcher].
type Option func(*Fetcher)

// WithTimeout bounds a whole fetch, body read included.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the HTTP client. The redirect limit is only
// enforced on the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// New creates a fetcher with a client tuned against slow servers.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   DialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   TLSHandshakeTimeout,
				ResponseHeaderTimeout: ResponseHeaderTimeout,
				IdleConnTimeout:       90 * time.Second,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				ForceAttemptHTTP2:     true,
			},
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (>%d)", maxRedirects)
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves rawURL and returns its content as Markdown. A non-2xx
// status is returned as *utils.StatusError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	url := normalizeURL(rawURL)
	if url == "" {
		return nil, ErrEmptyURL
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("webfetch: failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.AddEvent(observability.EventHTTPRequestPrepared,
			observability.String(observability.AttrHTTPMethod, http.MethodGet),
			observability.String(observability.AttrHTTPURL, url),
		)
	}

	timer := utils.NewTimer()
	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("webfetch: request timeout or canceled: %w", err)
		}
		return nil, fmt.Errorf("webfetch: failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	html, err := readLimited(ctx, resp.Body)
	if err != nil {
		return nil, err
	}
	elapsed := timer.Stop()

	if span != nil {
		span.AddEvent(observability.EventHTTPResponse,
			observability.Int(observability.AttrHTTPStatusCode, resp.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(html)),
			observability.Duration(observability.AttrHTTPDuration, elapsed),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webfetch: %w", &utils.StatusError{StatusCode: resp.StatusCode, Body: string(html)})
	}

	markdown, err := htmltomarkdown.ConvertString(string(html))
	if err != nil {
		return nil, fmt.Errorf("webfetch: failed to convert HTML to Markdown: %w", err)
	}

	return &Page{
		URL:      resp.Request.URL.String(),
		Markdown: strings.TrimSpace(markdown),
	}, nil
}

// readLimited reads at most MaxBodySize bytes, giving up when ctx ends even
// if the server trickles data.
func readLimited(ctx context.Context, body io.Reader) ([]byte, error) {
	type readResult struct {
		data []byte
		err  error
	}

	done := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(io.LimitReader(body, MaxBodySize+1))
		done <- readResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("webfetch: timeout while reading response body: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("webfetch: timeout while reading response body: %w", ctx.Err())
			}
			return nil, fmt.Errorf("webfetch: failed to read response body: %w", r.err)
		}
		if len(r.data) > MaxBodySize {
			return nil, ErrBodyTooLarge
		}
		return r.data, nil
	}
}

func normalizeURL(raw string) string {
	url := strings.TrimSpace(raw)
	if url == "" {
		return ""
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}
	return url
}
