// Package parser extracts slug-relevant metadata from HTML documents.
package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/linkslug/models"
	"github.com/go-shiori/go-readability"
)

const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 500
	MaxFieldLen       = 100
)

// Extract reads metadata from html. Each field takes the first non-empty
// value from an ordered list of selectors; go-readability fills title,
// description and site name when the markup carries none.
func Extract(pageURL *url.URL, html []byte) (models.PageMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return models.PageMetadata{}, fmt.Errorf("failed to parse html: %w", err)
	}

	meta := models.PageMetadata{
		Title: first(
			metaContent(doc, "og:title"),
			metaContent(doc, "twitter:title"),
			metaContent(doc, "title"),
			doc.Find("title").First().Text(),
			doc.Find("h1").First().Text(),
		),
		Description: first(
			metaContent(doc, "og:description"),
			metaContent(doc, "twitter:description"),
			metaContent(doc, "description"),
		),
		Brand: first(
			metaContent(doc, "product:brand"),
			metaContent(doc, "og:brand"),
			doc.Find(`meta[itemprop="brand"]`).AttrOr("content", ""),
			doc.Find(`[itemprop="brand"] [itemprop="name"]`).First().Text(),
			doc.Find(`[itemprop="brand"]`).Not("meta").First().Text(),
		),
		ProductName: productName(doc),
		Price:       price(doc),
		SiteName:    metaContent(doc, "og:site_name"),
	}

	if meta.Title == "" || meta.Description == "" || meta.SiteName == "" {
		fillFromReadability(&meta, pageURL, html)
	}
	if meta.Brand == "" {
		meta.Brand = meta.SiteName
	}

	meta.Title = truncate(meta.Title, MaxTitleLen)
	meta.Description = truncate(meta.Description, MaxDescriptionLen)
	meta.Brand = truncate(meta.Brand, MaxFieldLen)
	meta.ProductName = truncate(meta.ProductName, MaxFieldLen)
	meta.Price = truncate(meta.Price, MaxFieldLen)
	meta.SiteName = truncate(meta.SiteName, MaxFieldLen)
	return meta, nil
}

// fillFromReadability only fills empty fields. Readability failures are
// ignored; the selector results stand on their own.
func fillFromReadability(meta *models.PageMetadata, pageURL *url.URL, html []byte) {
	rp := readability.NewParser()
	article, err := rp.Parse(bytes.NewReader(html), pageURL)
	if err != nil {
		return
	}
	meta.Title = first(meta.Title, article.Title)
	meta.Description = first(meta.Description, article.Excerpt)
	meta.SiteName = first(meta.SiteName, article.SiteName)
}

// metaContent looks a meta tag up by property first, then by name.
func metaContent(doc *goquery.Document, key string) string {
	sel := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, key, key)
	return normalizeText(doc.Find(sel).First().AttrOr("content", ""))
}

func productName(doc *goquery.Document) string {
	scope := doc.Find(`[itemscope][itemtype*="schema.org/Product"]`).First()
	if scope.Length() > 0 {
		name := scope.Find(`[itemprop="name"]`).First()
		if v := first(name.AttrOr("content", ""), name.Text()); v != "" {
			return v
		}
	}
	if strings.EqualFold(metaContent(doc, "og:type"), "product") {
		return metaContent(doc, "og:title")
	}
	return ""
}

func price(doc *goquery.Document) string {
	if amount := metaContent(doc, "product:price:amount"); amount != "" {
		if currency := metaContent(doc, "product:price:currency"); currency != "" {
			return amount + " " + currency
		}
		return amount
	}
	if amount := metaContent(doc, "og:price:amount"); amount != "" {
		return amount
	}
	el := doc.Find(`[itemprop="price"]`).First()
	return first(el.AttrOr("content", ""), el.Text())
}

// first returns the first candidate that is non-empty after normalization.
func first(candidates ...string) string {
	for _, c := range candidates {
		if v := normalizeText(c); v != "" {
			return v
		}
	}
	return ""
}

// normalizeText cleans up a string by trimming space and removing excess newlines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.Join(strings.Fields(scanner.Text()), " ")
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
