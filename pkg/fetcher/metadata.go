package fetcher

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/parser"
)

// MetadataFetcher turns a URL into PageMetadata. It never fails: when the
// page cannot be fetched or parsed the result only describes the URL.
type MetadataFetcher struct {
	pages   PageFetcher
	timeout time.Duration
	logger  *slog.Logger
}

// NewMetadataFetcher wraps pages with the metadata extraction step.
func NewMetadataFetcher(pages PageFetcher, timeout time.Duration, logger *slog.Logger) *MetadataFetcher {
	return &MetadataFetcher{
		pages:   pages,
		timeout: ClampTimeout(timeout),
		logger:  logger,
	}
}

// URLOnly is the metadata available without any network access.
func URLOnly(u *url.URL) models.PageMetadata {
	return models.PageMetadata{
		Domain:   strings.TrimPrefix(strings.ToLower(u.Hostname()), "www."),
		Pathname: u.EscapedPath(),
	}
}

// Fetch downloads u and extracts its metadata.
func (m *MetadataFetcher) Fetch(ctx context.Context, u *url.URL) models.PageMetadata {
	base := URLOnly(u)
	if m == nil || m.pages == nil {
		return base
	}

	start := time.Now()
	html, err := m.pages.FetchPage(ctx, u.String(), m.timeout)
	if err != nil {
		m.logger.Warn("page fetch failed", "url", u.String(), "error", err, "elapsed", time.Since(start))
		return base
	}

	meta, err := parser.Extract(u, html)
	if err != nil {
		m.logger.Warn("page parse failed", "url", u.String(), "error", err)
		return base
	}
	meta.Domain = base.Domain
	meta.Pathname = base.Pathname
	meta.WasFetched = true

	m.logger.Debug("page metadata extracted", "url", u.String(), "title", meta.Title, "brand", meta.Brand, "elapsed", time.Since(start))
	return meta
}
