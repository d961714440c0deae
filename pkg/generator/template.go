package generator

import (
	"context"
	"net/url"
	"strings"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/lexicon"
	"github.com/dtnitsch/linkslug/pkg/slug"
)

// platform describes how to read semantic fields out of one site's URLs.
type platform struct {
	name    string
	domains []string
	extract func(t *TemplateTier, segs []string, q url.Values, gc *models.GenerationContext) []string
}

var platforms = []platform{
	{"Amazon", []string{"amazon.com", "amazon.co.uk", "amazon.ca", "amazon.de"}, extractAmazon},
	{"eBay", []string{"ebay.com", "ebay.co.uk"}, extractEbay},
	{"Etsy", []string{"etsy.com"}, extractEtsy},
	{"YouTube", []string{"youtube.com", "youtu.be"}, extractYouTube},
	{"GitHub", []string{"github.com"}, extractGitHub},
	{"Reddit", []string{"reddit.com"}, extractReddit},
	{"X", []string{"x.com", "twitter.com"}, extractX},
	{"Instagram", []string{"instagram.com"}, extractInstagram},
	{"TikTok", []string{"tiktok.com"}, extractTikTok},
	{"LinkedIn", []string{"linkedin.com"}, extractLinkedIn},
	{"Medium", []string{"medium.com"}, extractMedium},
	{"Spotify", []string{"open.spotify.com", "spotify.com"}, extractSpotify},
	{"Wikipedia", []string{"wikipedia.org"}, extractWikipedia},
	{"StackOverflow", []string{"stackoverflow.com"}, extractStackOverflow},
}

// TemplateTier recognises well-known platforms by host and assembles the
// slug from platform-specific URL fields.
type TemplateTier struct {
	lex *lexicon.Lexicon
}

func NewTemplateTier(lex *lexicon.Lexicon) *TemplateTier {
	return &TemplateTier{lex: lex}
}

func (t *TemplateTier) Name() models.Tier { return models.TierTemplate }
func (t *TemplateTier) Transient() bool   { return false }

func (t *TemplateTier) Attempt(ctx context.Context, gc *models.GenerationContext) *models.Candidate {
	if gc.URL == nil {
		return nil
	}
	p, ok := lookupPlatform(gc.URL.Hostname())
	if !ok {
		return nil
	}

	fields := p.extract(t, PathSegments(gc.URL), gc.URL.Query(), gc)
	if len(fields) == 0 {
		return nil
	}
	if len(fields) > 3 {
		fields = fields[:3]
	}

	st := styleFor(gc)
	st.IncludeBrand = true
	return &models.Candidate{
		Slug:       slug.Compose(p.name, fields, st),
		Tier:       models.TierTemplate,
		Confidence: models.ConfidenceMedium,
		Quality:    len(fields),
		Metadata:   gc.Metadata,
	}
}

// Platform reports the registry name for host, if any.
func Platform(host string) (string, bool) {
	p, ok := lookupPlatform(host)
	return p.name, ok
}

func lookupPlatform(host string) (platform, bool) {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	for _, p := range platforms {
		for _, d := range p.domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return p, true
			}
		}
	}
	return platform{}, false
}

// words splits a URL fragment into filtered content tokens.
func (t *TemplateTier) words(s string, minLen int) []string {
	return newTokenFilter(t.lex, minLen).Tokens(s)
}

// handle keeps a user or repository name as a single token.
func handle(s string) []string {
	s = strings.TrimPrefix(s, "@")
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() < 2 {
		return nil
	}
	return []string{b.String()}
}

// titleOr returns title tokens when the page was fetched, else fallback.
func (t *TemplateTier) titleOr(gc *models.GenerationContext, fallback ...string) []string {
	if gc.Metadata.WasFetched && gc.Metadata.Title != "" {
		if w := t.words(gc.Metadata.Title, 3); len(w) > 0 {
			return w
		}
	}
	return fallback
}

func segAt(segs []string, i int) string {
	if i < len(segs) {
		return segs[i]
	}
	return ""
}

func indexOf(segs []string, want string) int {
	for i, s := range segs {
		if strings.EqualFold(s, want) {
			return i
		}
	}
	return -1
}

func extractAmazon(t *TemplateTier, segs []string, q url.Values, gc *models.GenerationContext) []string {
	if k := q.Get("k"); k != "" {
		return append([]string{"search"}, t.words(k, 2)...)
	}
	// /<product-name>/dp/<asin>
	if i := indexOf(segs, "dp"); i > 0 {
		return t.words(segs[i-1], 2)
	}
	return nil
}

func extractEbay(t *TemplateTier, segs []string, q url.Values, gc *models.GenerationContext) []string {
	if k := q.Get("_nkw"); k != "" {
		return append([]string{"search"}, t.words(k, 2)...)
	}
	if i := indexOf(segs, "itm"); i >= 0 {
		if next := segAt(segs, i+1); next != "" && !isNumeric(next) {
			return t.words(next, 2)
		}
		return t.titleOr(gc, "item")
	}
	if i := indexOf(segs, "str"); i >= 0 {
		return append([]string{"store"}, handle(segAt(segs, i+1))...)
	}
	return nil
}

func extractEtsy(t *TemplateTier, segs []string, q url.Values, gc *models.GenerationContext) []string {
	if i := indexOf(segs, "listing"); i >= 0 {
		return t.words(segAt(segs, i+2), 2)
	}
	if i := indexOf(segs, "shop"); i >= 0 {
		return append(handle(segAt(segs, i+1)), "shop")
	}
	return nil
}

func extractYouTube(t *TemplateTier, segs []string, q url.Values, gc *models.GenerationContext) []string {
	switch first := segAt(segs, 0); {
	case strings.HasPrefix(first, "@"):
		return append(handle(first), "channel")
	case first == "playlist":
		return t.titleOr(gc, "playlist")
	case first == "shorts":
		return t.titleOr(gc, "shorts")
	case first == "watch" || q.Has("v"):
		return t.titleOr(gc, "video")
	case first == "channel" || first == "c" || first == "user":
		return append(handle(segAt(segs, 1)), "channel")
	case len(segs) == 1:
		// youtu.be/<id>
		return t.titleOr(gc, "video")
	}
	return nil
}

func extractGitHub(t *TemplateTier, segs []string, q url.Values, gc *models.GenerationContext) []string {
	owner, repo := segAt(segs, 0), segAt(segs, 1)
	if owner == "" {
		return nil
	}
	if repo == "" {
		return handle(owner)
	}
	switch kind := segAt(segs, 2); kind {
	case "issues", "pull":
		label := "issue"
		if kind == "pull" {
			label = "pr"
		}
		if n := segAt(segs, 3); isNumeric(n) {
			return append(handle(repo), label, n)
		}
		return append(handle(repo), label+"s")
	case "releases":
		return append(handle(repo), "releases")
	}
	return append(handle(owner), handle(repo)...)
}

func extractReddit(t *TemplateTier, segs []string, q url.Values, gc *models.GenerationContext) []string {
	switch segAt(segs, 0) {
	case "r":
		sub := handle(segAt(segs, 1))
		if segAt(segs, 2) == "comments" {
			return append(sub, t.words(segAt(segs, 4), 3)...)
		}
		return sub
	case "user", "u":
		return append([]string{"user"}, handle(segAt(segs, 1))...)
	}
	return nil
}

func extractX(t *TemplateTier, segs []string, q url.Values, gc *models.GenerationContext) []string {
	user := segAt(segs, 0)
	if user == "" || user == "home" || user == "search" || user == "i" {
		return nil
	}
	if segAt(segs, 1) == "status" {
		return append(handle(user), "post")
	}
	return handle(user)
}

func extractInstagram(t *TemplateTier, segs []string, q url.Values, gc *models.GenerationContext) []string {
	switch first := segAt(segs, 0); first {
	case "":
		return nil
	case "p":
		return []string{"post"}
	case "reel", "reels":
		return []string{"reel"}
	case "explore", "stories":
		return []string{first}
	default:
		return handle(first)
	}
}

func extractTikTok(t *TemplateTier, segs []string, q url.Values, gc *models.GenerationContext) []string {
	first := segAt(segs, 0)
	if !strings.HasPrefix(first, "@") {
		return nil
	}
	if segAt(segs, 1) == "video" {
		return append(handle(first), "video")
	}
	return handle(first)
}

func extractLinkedIn(t *TemplateTier, segs []string, q url.Values, gc *models.GenerationContext) []string {
	switch segAt(segs, 0) {
	case "in":
		return t.words(segAt(segs, 1), 2)
	case "company":
		return append(t.words(segAt(segs, 1), 2), "company")
	case "jobs":
		return t.titleOr(gc, "jobs")
	case "posts", "feed", "pulse":
		return t.titleOr(gc, "post")
	}
	return nil
}

func extractMedium(t *TemplateTier, segs []string, q url.Values, gc *models.GenerationContext) []string {
	if len(segs) == 0 {
		return nil
	}
	last := segs[len(segs)-1]
	if len(segs) == 1 && strings.HasPrefix(last, "@") {
		return handle(last)
	}
	// Story slugs end in a hex id: how-we-built-it-3f2a9c1b7d4e
	if i := strings.LastIndexByte(last, '-'); i > 0 && hexID.MatchString(last[i+1:]) {
		last = last[:i]
	}
	return t.words(last, 3)
}

func extractSpotify(t *TemplateTier, segs []string, q url.Values, gc *models.GenerationContext) []string {
	for _, s := range segs {
		switch s {
		case "track", "album", "playlist", "artist", "episode", "show":
			return append([]string{s}, t.titleOr(gc)...)
		}
	}
	return nil
}

func extractWikipedia(t *TemplateTier, segs []string, q url.Values, gc *models.GenerationContext) []string {
	if i := indexOf(segs, "wiki"); i >= 0 {
		if w := t.words(segAt(segs, i+1), 2); len(w) > 0 {
			return w
		}
		return t.titleOr(gc, "article")
	}
	return nil
}

func extractStackOverflow(t *TemplateTier, segs []string, q url.Values, gc *models.GenerationContext) []string {
	if i := indexOf(segs, "questions"); i >= 0 {
		if title := segAt(segs, i+2); title != "" {
			return t.words(title, 3)
		}
		return []string{"question"}
	}
	return nil
}
