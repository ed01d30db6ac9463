// Package feeds ingests upstream release-note sources: Atom/RSS feeds in
// syndication mode and dated markdown/HTML changelog pages in document mode.
package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/ptkhanh/herald/internal/models"
)

const (
	httpTimeout    = 30 * time.Second
	rateLimitDelay = 1 * time.Second
	maxBodyBytes   = 4 << 20
	maxWords       = 3000

	// Bodies shorter than this are considered too thin to summarize and
	// trigger readability enrichment from the entry link.
	thinBodyRunes = 200
)

// Fetcher retrieves release-note sources over HTTP with per-domain rate
// limiting.
type Fetcher struct {
	client      *http.Client
	rateLimiter map[string]time.Time // per-domain last request time
	mu          sync.Mutex           // protects rateLimiter
}

// NewFetcher creates a Fetcher with a 30-second timeout and a browser-like
// User-Agent.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: httpTimeout,
			Transport: &userAgentTransport{
				base: http.DefaultTransport,
			},
		},
		rateLimiter: make(map[string]time.Time),
	}
}

// Client returns the underlying HTTP client so sibling components (the
// document URL resolver) share its timeout and headers.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// userAgentTransport wraps an http.RoundTripper to inject browser-like
// headers on every request.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	// Some release pages reject obvious bot agents with 406.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	return t.base.RoundTrip(req)
}

// FetchFeed retrieves an Atom/RSS feed and maps its items to entries in the
// order the source delivers them. Callers sort explicitly when order
// matters. Malformed individual items are skipped, never the whole feed.
func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string) ([]models.Entry, error) {
	f.waitForRateLimit(extractDomain(feedURL))

	fp := gofeed.NewParser()
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %q: %w", feedURL, err)
	}

	return entriesFromFeed(feed), nil
}

// FetchDocument retrieves a raw markdown or HTML document. Non-2xx statuses
// are errors so the caller can advance to the next candidate URL.
func (f *Fetcher) FetchDocument(ctx context.Context, docURL string) (string, error) {
	f.waitForRateLimit(extractDomain(docURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request for %q: %w", docURL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %q: %w", docURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %q: HTTP %d", docURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading body from %q: %w", docURL, err)
	}

	return string(body), nil
}

// EnrichBody returns a fuller body for the entry when its feed body is too
// thin to summarize, by extracting the readable text of the linked page.
// Extraction failures fall back to the original body; enrichment is
// best-effort.
func (f *Fetcher) EnrichBody(ctx context.Context, entry models.Entry) string {
	if runeCount(entry.Body) >= thinBodyRunes || entry.Link == "" {
		return entry.Body
	}

	f.waitForRateLimit(extractDomain(entry.Link))

	article, err := readability.FromURL(entry.Link, httpTimeout, browserHeaders)
	if err != nil {
		return entry.Body
	}
	text := truncateWords(article.TextContent, maxWords)
	if runeCount(text) <= runeCount(entry.Body) {
		return entry.Body
	}
	return text
}

// browserHeaders sets browser-like request headers for readability fetches.
func browserHeaders(r *http.Request) {
	r.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	r.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Herald/1.0; +https://github.com/ptkhanh/herald)")
}

// waitForRateLimit enforces a minimum delay of 1 second between requests to
// the same domain. It blocks until the delay has elapsed.
func (f *Fetcher) waitForRateLimit(domain string) {
	f.mu.Lock()
	lastReq, ok := f.rateLimiter[domain]
	if ok {
		elapsed := time.Since(lastReq)
		if elapsed < rateLimitDelay {
			f.mu.Unlock()
			time.Sleep(rateLimitDelay - elapsed)
			f.mu.Lock()
		}
	}
	f.rateLimiter[domain] = time.Now()
	f.mu.Unlock()
}

// extractDomain parses a URL and returns its hostname. If parsing fails, it
// returns the raw URL as a fallback key.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
