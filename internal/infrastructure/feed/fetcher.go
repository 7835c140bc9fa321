package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsImpact/internal/domain"
	"NewsImpact/internal/ports"
)

const (
	defaultDirectTimeout = 15 * time.Second
	defaultProxyTimeout  = 20 * time.Second
	defaultMaxRedirects  = 5
	maxFeedBytes         = 8 << 20
	proxySuffix          = " (via proxy)"
)

var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":                    "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.7",
	"Accept-Language":           "en-US,en;q=0.9",
	"Cache-Control":             "no-cache",
	"Pragma":                    "no-cache",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Upgrade-Insecure-Requests": "1",
}

var proxyHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (compatible; NewsImpact-Aggregator/1.0)",
	"Accept":     "application/json, application/xml, text/xml",
}

// ErrorKind classifies why a feed could not be fetched.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindStatus    ErrorKind = "status"
	KindBlocked   ErrorKind = "blocked"
	KindParse     ErrorKind = "parse"
)

// FetchError is returned for every failed feed or proxy request.
type FetchError struct {
	Source string
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("feed %s: %s (status %d): %v", e.Source, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("feed %s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Blocked reports whether the proxy fallback applies: HTTP 403 or an HTML page
// served in place of the feed.
func (e *FetchError) Blocked() bool {
	return e.Kind == KindBlocked || (e.Kind == KindStatus && e.Status == http.StatusForbidden)
}

// FetcherConfig tunes timeouts, redirects and the proxy relay.
type FetcherConfig struct {
	DirectTimeout time.Duration
	ProxyTimeout  time.Duration
	MaxRedirects  int
	ProxyURL      string
}

// Fetcher implements ports.FeedFetcher over HTTP with a proxy fallback.
type Fetcher struct {
	direct   *http.Client
	proxy    *http.Client
	proxyURL string
	now      func() time.Time
	logger   *slog.Logger
}

var _ ports.FeedFetcher = (*Fetcher)(nil)

// NewFetcher builds the direct and proxy HTTP clients.
func NewFetcher(cfg FetcherConfig, logger *slog.Logger) *Fetcher {
	if cfg.DirectTimeout <= 0 {
		cfg.DirectTimeout = defaultDirectTimeout
	}
	if cfg.ProxyTimeout <= 0 {
		cfg.ProxyTimeout = defaultProxyTimeout
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = defaultMaxRedirects
	}

	checkRedirect := func(_ *http.Request, via []*http.Request) error {
		if len(via) >= cfg.MaxRedirects {
			return fmt.Errorf("stopped after %d redirects", cfg.MaxRedirects)
		}
		return nil
	}

	return &Fetcher{
		direct:   &http.Client{Timeout: cfg.DirectTimeout, CheckRedirect: checkRedirect},
		proxy:    &http.Client{Timeout: cfg.ProxyTimeout, CheckRedirect: checkRedirect},
		proxyURL: strings.TrimSpace(cfg.ProxyURL),
		now:      time.Now,
		logger:   logger,
	}
}

// Fetch downloads and normalizes one source. A 403 or an HTML body triggers
// exactly one retry through the proxy relay.
func (f *Fetcher) Fetch(ctx context.Context, src domain.SourceConfig) ([]domain.Article, error) {
	articles, err := f.fetchDirect(ctx, src)
	if err == nil {
		f.debug("feed fetched", "source", src.Name, "articles", len(articles))
		return articles, nil
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || !fetchErr.Blocked() || f.proxyURL == "" {
		return nil, err
	}

	f.info("feed blocked, retrying through proxy", "source", src.Name, "reason", fetchErr.Kind, "status", fetchErr.Status)
	articles, proxyErr := f.fetchProxy(ctx, src)
	if proxyErr != nil {
		return nil, fmt.Errorf("proxy fallback after %v: %w", err, proxyErr)
	}
	f.debug("feed fetched through proxy", "source", src.Name, "articles", len(articles))
	return articles, nil
}

func (f *Fetcher) fetchDirect(ctx context.Context, src domain.SourceConfig) ([]domain.Article, error) {
	body, err := f.get(ctx, f.direct, src.Name, src.FeedURL, browserHeaders)
	if err != nil {
		return nil, err
	}
	if looksLikeHTML(body) {
		return nil, &FetchError{Source: src.Name, Kind: KindBlocked, Err: errors.New("html page served instead of feed")}
	}
	return f.parse(src.Name, src.Name, body)
}

func (f *Fetcher) fetchProxy(ctx context.Context, src domain.SourceConfig) ([]domain.Article, error) {
	target, err := proxyTarget(f.proxyURL, src.FeedURL)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Kind: KindTransport, Err: err}
	}
	body, err := f.get(ctx, f.proxy, src.Name, target, proxyHeaders)
	if err != nil {
		return nil, err
	}
	return f.parse(src.Name, src.Name+proxySuffix, body)
}

func (f *Fetcher) get(ctx context.Context, client *http.Client, name, target string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{Source: name, Kind: KindTransport, Err: fmt.Errorf("build request: %w", err)}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: name, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{Source: name, Kind: KindStatus, Status: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, &FetchError{Source: name, Kind: KindTransport, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

func (f *Fetcher) parse(name, label string, body []byte) ([]domain.Article, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Source: name, Kind: KindParse, Err: err}
	}
	return Normalize(parsed, label, f.now()), nil
}

func proxyTarget(proxyURL, feedURL string) (string, error) {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return "", fmt.Errorf("parse proxy url: %w", err)
	}
	q := u.Query()
	q.Set("url", feedURL)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// looksLikeHTML sniffs the root element, skipping a BOM, the XML declaration,
// processing instructions and comments.
func looksLikeHTML(body []byte) bool {
	s := strings.TrimPrefix(string(body[:min(len(body), 4096)]), "\ufeff")
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		switch {
		case strings.HasPrefix(s, "<?"):
			end := strings.Index(s, "?>")
			if end < 0 {
				return false
			}
			s = s[end+2:]
		case strings.HasPrefix(s, "<!--"):
			end := strings.Index(s, "-->")
			if end < 0 {
				return false
			}
			s = s[end+3:]
		default:
			lower := strings.ToLower(s)
			return strings.HasPrefix(lower, "<!doctype html") || strings.HasPrefix(lower, "<html")
		}
	}
}

func (f *Fetcher) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

func (f *Fetcher) info(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Info(msg, args...)
	}
}
