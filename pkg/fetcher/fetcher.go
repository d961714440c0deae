package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	MinTimeout     = 5 * time.Second
	MaxTimeout     = 8 * time.Second
	DefaultTimeout = 6 * time.Second

	defaultMaxBody = 2 << 20
)

// PageFetcher retrieves raw HTML for a URL within timeout.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}

// ErrNotHTML is returned for responses that are clearly not documents.
var ErrNotHTML = errors.New("response is not html")

// HTTPFetcher is the PageFetcher used in production.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// NewFetcher builds an HTTPFetcher. userAgent identifies us to sites.
func NewFetcher(userAgent string, maxBody int64) *HTTPFetcher {
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	return &HTTPFetcher{
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return errors.New("stopped after 5 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBody:   maxBody,
	}
}

// ClampTimeout keeps a fetch timeout inside the 5-8s window.
func ClampTimeout(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultTimeout
	case d < MinTimeout:
		return MinTimeout
	case d > MaxTimeout:
		return MaxTimeout
	}
	return d
}

// FetchPage GETs url and returns at most maxBody bytes of the body. The
// request is aborted when timeout elapses.
func (f *HTTPFetcher) FetchPage(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch HTML, status code: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !isHTMLContentType(ct) {
		return nil, fmt.Errorf("%w: %s", ErrNotHTML, ct)
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return bodyBytes, nil
}

func isHTMLContentType(ct string) bool {
	for _, prefix := range []string{"text/html", "application/xhtml", "text/plain"} {
		if len(ct) >= len(prefix) && ct[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
