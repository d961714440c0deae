// Package detector finds promotional signals in page metadata.
package detector

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dtnitsch/linkslug/models"
)

type rule struct {
	kind     models.SignalType
	pattern  *regexp.Regexp
	priority models.Priority
}

// rules are evaluated in order; the first match of a kind wins.
var rules = []rule{
	{models.SignalDiscount, regexp.MustCompile(`\b\d{1,3}\s?%\s?off\b`), models.PriorityHigh},
	{models.SignalDiscount, regexp.MustCompile(`\b(save \$?\d+|half price|clearance|markdown|discount(ed)?|sale)\b`), models.PriorityHigh},
	{models.SignalUrgency, regexp.MustCompile(`\b(today only|ends (today|tonight|soon|sunday)|last chance|limited time|flash sale|hurry|deal of the day|while you can)\b`), models.PriorityHigh},
	{models.SignalScarcity, regexp.MustCompile(`\b(only \d+ left|low stock|almost gone|selling fast|while supplies last|limited (stock|quantity|edition))\b`), models.PriorityMedium},
	{models.SignalFree, regexp.MustCompile(`\b(free (shipping|delivery|returns|trial|gift)|buy one get one|bogo)\b`), models.PriorityMedium},
	{models.SignalExclusive, regexp.MustCompile(`\b(exclusive|members only|member price|vip|invite only|early access)\b`), models.PriorityMedium},
	{models.SignalNew, regexp.MustCompile(`\b(new arrivals?|just (launched|dropped|arrived)|new release|all[- ]new|introducing|brand new)\b`), models.PriorityLow},
	{models.SignalSocial, regexp.MustCompile(`\b(best ?sellers?|top rated|most popular|trending|customer favorite|[\d,]+ (reviews|ratings))\b`), models.PriorityLow},
	{models.SignalGuarantee, regexp.MustCompile(`\b(money[- ]back|guaranteed?|risk[- ]free|lifetime warranty)\b`), models.PriorityLow},
}

var priceAmount = regexp.MustCompile(`\d[\d,]*(\.\d{1,2})?`)

var currencySymbols = []struct{ symbol, code string }{
	{"$", "USD"}, {"€", "EUR"}, {"£", "GBP"}, {"¥", "JPY"}, {"₹", "INR"},
}

// Detect scans title, description and product name for promotional
// language. The result holds at most one signal per kind, highest priority
// first.
func Detect(meta models.PageMetadata) []models.Signal {
	text := strings.ToLower(meta.Text())

	var signals []models.Signal
	seen := make(map[models.SignalType]bool)
	if text != "" {
		for _, r := range rules {
			if seen[r.kind] {
				continue
			}
			if m := r.pattern.FindString(text); m != "" {
				seen[r.kind] = true
				signals = append(signals, models.Signal{Type: r.kind, MatchedText: m, Priority: r.priority})
			}
		}
	}

	if p, ok := NormalizePrice(meta.Price); ok {
		signals = append(signals, models.Signal{Type: models.SignalPrice, MatchedText: p, Priority: models.PriorityMedium})
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Priority > signals[j].Priority
	})
	return signals
}

// NormalizePrice turns "$1,299.00", "19.99 USD" or "129" into an amount
// followed by an optional ISO currency code, e.g. "1299.00 USD".
func NormalizePrice(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	amount := priceAmount.FindString(raw)
	if amount == "" {
		return "", false
	}
	amount = strings.ReplaceAll(amount, ",", "")

	currency := ""
	for _, c := range currencySymbols {
		if strings.Contains(raw, c.symbol) {
			currency = c.code
			break
		}
	}
	if currency == "" {
		for _, f := range strings.Fields(raw) {
			if len(f) == 3 && strings.ToUpper(f) == f && !strings.ContainsAny(f, "0123456789") {
				currency = f
				break
			}
		}
	}
	if currency == "" {
		return amount, true
	}
	return amount + " " + currency, true
}
