package lexicon

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultTablesParse(t *testing.T) {
	lx := Default()
	if lx.Version == 0 {
		t.Error("Version = 0, want a published version")
	}
	if len(lx.Holidays) == 0 {
		t.Error("no holidays loaded")
	}
	if !lx.IsGeneric("null") {
		t.Error(`IsGeneric("null") = false; the YAML entry must stay quoted`)
	}
}

func TestWordClasses(t *testing.T) {
	lx := Default()

	tests := []struct {
		name string
		fn   func(string) bool
		word string
		want bool
	}{
		{"stop word", lx.IsStopWord, "The", true},
		{"not stop word", lx.IsStopWord, "centrum", false},
		{"cta", lx.IsCTA, "Shop", true},
		{"feature", lx.IsFeature, "premium", true},
		{"generic", lx.IsGeneric, "index", true},
		{"boilerplate", lx.IsBoilerplateSegment, "dp", true},
		{"extension", lx.IsFileExtension, "HTML", true},
		{"brand key", lx.IsBrand, "amazon", true},
		{"brand display", lx.IsBrand, "bestbuy", true},
		{"not brand", lx.IsBrand, "vitamins", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.word); got != tt.want {
				t.Errorf("%s(%q) = %v, want %v", tt.name, tt.word, got, tt.want)
			}
		})
	}
}

func TestBrandIn(t *testing.T) {
	lx := Default()

	if got, ok := lx.BrandIn("smile.amazon.co.uk", 4); !ok || got != "Amazon" {
		t.Errorf("BrandIn(amazon host) = %q, %v", got, ok)
	}
	// Short keys must not match by substring.
	if got, ok := lx.BrandIn("hmart.example", 4); ok {
		t.Errorf("BrandIn matched short key: %q", got)
	}
}

func TestPlatform(t *testing.T) {
	lx := Default()
	if p, ok := lx.Platform("FB"); !ok || p != "facebook" {
		t.Errorf("Platform(FB) = %q, %v", p, ok)
	}
	if _, ok := lx.Platform("carrier-pigeon"); ok {
		t.Error("Platform matched an unknown token")
	}
}

func TestMatcherWholeWords(t *testing.T) {
	m := NewMatcher(
		[]string{"sales", "reference"},
		[][]string{{"buy", "cart"}, {"how to", "guide"}},
	)

	tests := []struct {
		text string
		want []string
	}{
		{"How to Buy a Bike", []string{"sales", "reference"}},
		{"The Buyer's Guide", []string{"reference"}},
		{"shopping carts", nil},
		{"", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, m.Labels(tt.text)); diff != "" {
			t.Errorf("Labels(%q) mismatch (-want +got):\n%s", tt.text, diff)
		}
	}
}

func TestScanIntentOrder(t *testing.T) {
	lx := Default()
	got, ok := lx.ScanIntent("Watch the tutorial and buy the kit")
	if !ok || got != "sales" {
		t.Errorf("ScanIntent = %q, %v; want sales (first in table order)", got, ok)
	}
}

func TestParseRejectsEmpty(t *testing.T) {
	if _, err := Parse([]byte("version: 1\n")); err == nil {
		t.Error("Parse() of empty tables succeeded, want error")
	}
}

func TestMerchant(t *testing.T) {
	lx := Default()

	tests := []struct {
		host string
		want string
	}{
		{"www.target.com", "Target"},
		{"smile.amazon.co.uk", "Amazon"},
		{"nikestore.example.com", "Nike"},
		{"m.shop.my-bakery.io", "Mybakery"},
		{"localhost:8080", "Localhost"},
		{"WWW.EBAY.COM", "eBay"},
		{"youtu.be", "YouTube"},
		{"amzn.to", "Amazon"},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := lx.Merchant(tt.host); got != tt.want {
				t.Errorf("Merchant(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}
