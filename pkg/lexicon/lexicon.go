// Package lexicon holds the versioned word tables shared by generation and
// pattern detection. The default tables are embedded; a YAML file with the
// same shape can replace them.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultTables []byte

// Holiday is one entry of the seasonal table.
type Holiday struct {
	Month         int    `yaml:"month"`
	Day           int    `yaml:"day"`
	Name          string `yaml:"name"`
	ToleranceDays int    `yaml:"tolerance_days"`
}

// IntentRule maps an intent to the keywords that reveal it.
type IntentRule struct {
	Intent   string   `yaml:"intent"`
	Keywords []string `yaml:"keywords"`
}

type tables struct {
	Version             int                 `yaml:"version"`
	Brands              map[string]string   `yaml:"brands"`
	HostPrefixes        []string            `yaml:"host_prefixes"`
	HostAliases         map[string]string   `yaml:"host_aliases"`
	StopWords           []string            `yaml:"stop_words"`
	CTAWords            []string            `yaml:"cta_words"`
	FeatureWords        []string            `yaml:"feature_words"`
	BenefitWords        map[string]string   `yaml:"benefit_words"`
	IntentCTA           map[string]string   `yaml:"intent_cta"`
	GenericFiller       []string            `yaml:"generic_filler"`
	BoilerplateSegments []string            `yaml:"boilerplate_segments"`
	FileExtensions      []string            `yaml:"file_extensions"`
	Holidays            []Holiday           `yaml:"holidays"`
	Platforms           map[string][]string `yaml:"platforms"`
	Intents             []IntentRule        `yaml:"intents"`
	PathMarkers         map[string][]string `yaml:"path_markers"`
}

// Lexicon is read-only after construction and safe for concurrent use.
type Lexicon struct {
	Version  int
	Holidays []Holiday

	brands        map[string]string
	brandKeys     []string // longest first, for substring matching
	brandDisplay  map[string]struct{}
	hostPrefixes  map[string]struct{}
	hostAliases   map[string]string
	stopWords     map[string]struct{}
	ctaWords      map[string]struct{}
	featureWords  map[string]struct{}
	generic       map[string]struct{}
	boilerplate   map[string]struct{}
	extensions    map[string]struct{}
	benefitWords  map[string]string
	intentCTA     map[string]string
	platformByTok map[string]string
	pathMarkers   map[string]map[string]struct{}

	intents *Matcher
}

// Default returns the embedded tables. It panics only if the embedded YAML
// is broken, which the package tests guard against.
func Default() *Lexicon {
	lx, err := Parse(defaultTables)
	if err != nil {
		panic(fmt.Sprintf("lexicon: embedded tables: %v", err))
	}
	return lx
}

// Load reads tables from path, or returns Default when path is empty.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	return Parse(data)
}

// Parse builds a Lexicon from YAML.
func Parse(data []byte) (*Lexicon, error) {
	var t tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	if len(t.Brands) == 0 || len(t.StopWords) == 0 {
		return nil, fmt.Errorf("lexicon version %d: brands and stop_words are required", t.Version)
	}

	lx := &Lexicon{
		Version:       t.Version,
		Holidays:      t.Holidays,
		brands:        make(map[string]string, len(t.Brands)),
		brandDisplay:  make(map[string]struct{}, len(t.Brands)),
		hostPrefixes:  toSet(t.HostPrefixes),
		hostAliases:   make(map[string]string, len(t.HostAliases)),
		stopWords:     toSet(t.StopWords),
		ctaWords:      toSet(t.CTAWords),
		featureWords:  toSet(t.FeatureWords),
		generic:       toSet(t.GenericFiller),
		boilerplate:   toSet(t.BoilerplateSegments),
		extensions:    toSet(t.FileExtensions),
		benefitWords:  t.BenefitWords,
		intentCTA:     t.IntentCTA,
		platformByTok: make(map[string]string),
		pathMarkers:   make(map[string]map[string]struct{}, len(t.PathMarkers)),
	}

	for key, display := range t.Brands {
		key = strings.ToLower(key)
		lx.brands[key] = display
		lx.brandKeys = append(lx.brandKeys, key)
		lx.brandDisplay[strings.ToLower(display)] = struct{}{}
	}
	for host, display := range t.HostAliases {
		lx.hostAliases[strings.ToLower(host)] = display
	}
	sort.Slice(lx.brandKeys, func(i, j int) bool {
		if len(lx.brandKeys[i]) != len(lx.brandKeys[j]) {
			return len(lx.brandKeys[i]) > len(lx.brandKeys[j])
		}
		return lx.brandKeys[i] < lx.brandKeys[j]
	})

	for platform, toks := range t.Platforms {
		for _, tok := range toks {
			lx.platformByTok[strings.ToLower(tok)] = platform
		}
	}
	for intent, markers := range t.PathMarkers {
		lx.pathMarkers[intent] = toSet(markers)
	}

	labels := make([]string, 0, len(t.Intents))
	groups := make([][]string, 0, len(t.Intents))
	for _, rule := range t.Intents {
		labels = append(labels, rule.Intent)
		groups = append(groups, rule.Keywords)
	}
	lx.intents = NewMatcher(labels, groups)

	return lx, nil
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

func (lx *Lexicon) has(set map[string]struct{}, word string) bool {
	_, ok := set[strings.ToLower(word)]
	return ok
}

// IsStopWord reports whether word carries no naming value.
func (lx *Lexicon) IsStopWord(word string) bool { return lx.has(lx.stopWords, word) }

// IsCTA reports whether word is a call-to-action verb.
func (lx *Lexicon) IsCTA(word string) bool { return lx.has(lx.ctaWords, word) }

// IsFeature reports whether word is a feature or descriptor word.
func (lx *Lexicon) IsFeature(word string) bool { return lx.has(lx.featureWords, word) }

// IsGeneric reports whether word is generic filler.
func (lx *Lexicon) IsGeneric(word string) bool { return lx.has(lx.generic, word) }

// IsBoilerplateSegment reports whether a URL path segment is structural noise.
func (lx *Lexicon) IsBoilerplateSegment(seg string) bool { return lx.has(lx.boilerplate, seg) }

// IsFileExtension reports whether ext (without the dot) looks like a file type.
func (lx *Lexicon) IsFileExtension(ext string) bool { return lx.has(lx.extensions, ext) }

// IsHostPrefix reports whether a host label is a generic subdomain.
func (lx *Lexicon) IsHostPrefix(label string) bool { return lx.has(lx.hostPrefixes, label) }

// IsBrand reports whether word is a known brand key or display name.
func (lx *Lexicon) IsBrand(word string) bool {
	w := strings.ToLower(word)
	if _, ok := lx.brands[w]; ok {
		return true
	}
	_, ok := lx.brandDisplay[w]
	return ok
}

// Brand returns the display name for an exact brand key.
func (lx *Lexicon) Brand(key string) (string, bool) {
	display, ok := lx.brands[strings.ToLower(key)]
	return display, ok
}

// BrandIn finds the longest brand key of at least minLen characters
// contained in s.
func (lx *Lexicon) BrandIn(s string, minLen int) (string, bool) {
	s = strings.ToLower(s)
	for _, key := range lx.brandKeys {
		if len(key) < minLen {
			continue
		}
		if strings.Contains(s, key) {
			return lx.brands[key], true
		}
	}
	return "", false
}

// BenefitWord returns the benefit token associated with a signal type.
func (lx *Lexicon) BenefitWord(signalType string) (string, bool) {
	w, ok := lx.benefitWords[signalType]
	return w, ok
}

// IntentCTA returns the call-to-action verb for an intent.
func (lx *Lexicon) IntentCTA(intent string) string {
	if w, ok := lx.intentCTA[intent]; ok {
		return w
	}
	return lx.intentCTA["general"]
}

// Platform maps a campaign token (utm_source value, click id) to a platform.
func (lx *Lexicon) Platform(token string) (string, bool) {
	p, ok := lx.platformByTok[strings.ToLower(token)]
	return p, ok
}

// IsPathMarker reports whether seg marks a path as belonging to intent.
func (lx *Lexicon) IsPathMarker(intent, seg string) bool {
	set, ok := lx.pathMarkers[intent]
	if !ok {
		return false
	}
	return lx.has(set, seg)
}

// ScanIntent returns the first intent (in table order) whose keywords occur
// in text as whole words.
func (lx *Lexicon) ScanIntent(text string) (string, bool) {
	return lx.intents.First(text)
}

// Merchant names the business behind host: an exact brand key on any host
// label, then the longest brand key of four or more characters inside the
// host, then the capitalized first label once generic prefixes are removed.
func (lx *Lexicon) Merchant(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	labels := strings.Split(strings.Trim(host, "."), ".")
	for len(labels) > 2 && lx.IsHostPrefix(labels[0]) {
		labels = labels[1:]
	}
	if len(labels) == 2 && lx.IsHostPrefix(labels[0]) {
		labels = labels[1:]
	}
	if display, ok := lx.hostAliases[strings.Join(labels, ".")]; ok {
		return display
	}

	for _, label := range labels {
		if display, ok := lx.brands[label]; ok {
			return display
		}
	}
	if display, ok := lx.BrandIn(strings.Join(labels, "."), 4); ok {
		return display
	}

	var b strings.Builder
	for _, r := range labels[0] {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
