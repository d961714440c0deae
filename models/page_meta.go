package models

import "strings"

// PageMetadata is what the fetcher could learn about a destination page.
// Every field is optional; a failed fetch still carries Domain and Pathname.
type PageMetadata struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Brand       string `json:"brand,omitempty" yaml:"brand,omitempty"`
	ProductName string `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	Price       string `json:"price,omitempty" yaml:"price,omitempty"`
	SiteName    string `json:"site_name,omitempty" yaml:"site_name,omitempty"`

	Domain   string `json:"domain" yaml:"domain"`
	Pathname string `json:"pathname,omitempty" yaml:"pathname,omitempty"`

	// WasFetched is false when the page could not be fetched or parsed.
	WasFetched bool `json:"was_fetched" yaml:"was_fetched"`
}

// Text joins the human-readable fields for keyword and signal scanning.
func (m PageMetadata) Text() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{m.Title, m.Description, m.ProductName} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
