package generator

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/llm"
)

const (
	DefaultMaxTokens  = 40
	maxPromptDescLen  = 300
	maxPromptKeywords = 5
)

var slugLabel = regexp.MustCompile(`(?i)^\s*(suggested\s+)?(short\s+)?(url\s+)?slug\s*[:=-]\s*`)

// AITier asks a TextGenerator for a slug.
type AITier struct {
	gen       llm.TextGenerator
	maxTokens int
	maxLength int
	logger    *slog.Logger
}

func NewAITier(gen llm.TextGenerator, maxTokens, maxLength int, logger *slog.Logger) *AITier {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &AITier{gen: gen, maxTokens: maxTokens, maxLength: maxLength, logger: logger}
}

func (t *AITier) Name() models.Tier { return models.TierAI }
func (t *AITier) Transient() bool   { return true }

// Enabled reports whether the tier may run for gc.
func (t *AITier) Enabled(gc *models.GenerationContext) bool {
	return t != nil && t.gen != nil && !gc.Options.DisableAI
}

func (t *AITier) Attempt(ctx context.Context, gc *models.GenerationContext) *models.Candidate {
	return t.AttemptStyle(ctx, gc, "")
}

// AttemptStyle is Attempt with an explicit style instruction, used by
// multi-candidate generation.
func (t *AITier) AttemptStyle(ctx context.Context, gc *models.GenerationContext, style string) *models.Candidate {
	if !t.Enabled(gc) {
		return nil
	}

	q := llm.QualityFor(gc.Options.SubscriptionTier, gc.HasHighPrioritySignal(), gc.Options.BrandGuidelines)
	prompt := BuildPrompt(gc, style, t.maxLength)

	raw, err := t.gen.GenerateText(ctx, prompt, t.maxTokens, q.Temperature(), q)
	if err != nil {
		t.logger.Warn("ai tier failed", "url", gc.RawURL, "quality", q.String(), "error", err)
		return nil
	}

	s := CleanResponse(raw)
	if s == "" {
		return nil
	}
	if w, ok := containsAvoidWord(s, gc.Preferences().AvoidWords); ok {
		t.logger.Debug("ai candidate dropped", "slug", s, "avoid_word", w)
		return nil
	}
	return &models.Candidate{
		Slug:       s,
		Tier:       models.TierAI,
		Confidence: models.ConfidenceHigh,
		Style:      style,
		Quality:    contentCount(s, gc.Merchant),
		Metadata:   gc.Metadata,
	}
}

// CleanResponse strips markdown, quoting and labels from a model reply and
// keeps the first non-empty line.
func CleanResponse(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") {
			continue
		}
		line = strings.NewReplacer("**", "", "`", "", `"`, "", "“", "", "”", "", "'", "").Replace(line)
		line = strings.TrimLeft(line, "-*> ")
		line = slugLabel.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

func containsAvoidWord(s string, avoid []string) (string, bool) {
	lower := strings.ToLower(s)
	for _, w := range avoid {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" && strings.Contains(lower, w) {
			return w, true
		}
	}
	return "", false
}

// BuildPrompt renders the instruction sent to the text generator.
func BuildPrompt(gc *models.GenerationContext, style string, maxLength int) string {
	prefs := gc.Preferences()
	st := styleFor(gc)
	meta := gc.Metadata

	var b strings.Builder
	b.WriteString("Create one short, human-readable URL slug for the link below.\n\n")
	fmt.Fprintf(&b, "URL: %s\n", gc.RawURL)
	if gc.Merchant != "" {
		fmt.Fprintf(&b, "Merchant: %s\n", gc.Merchant)
	}
	writeField(&b, "Title", meta.Title)
	writeField(&b, "Description", truncateRunes(meta.Description, maxPromptDescLen))
	writeField(&b, "Brand", meta.Brand)
	writeField(&b, "Product", meta.ProductName)
	writeField(&b, "Price", meta.Price)

	if len(gc.Signals) > 0 {
		parts := make([]string, 0, len(gc.Signals))
		for _, s := range gc.Signals {
			parts = append(parts, fmt.Sprintf("%s (%s, %q)", s.Type, s.Priority, s.MatchedText))
		}
		fmt.Fprintf(&b, "Promotions: %s\n", strings.Join(parts, "; "))
	}
	if len(gc.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(capTokens(gc.Keywords, maxPromptKeywords), ", "))
	}
	if gc.Temporal.Holiday != "" {
		fmt.Fprintf(&b, "Season: %s, near %s\n", gc.Temporal.Season, gc.Temporal.Holiday)
	}
	if gc.Campaign.Present() {
		fmt.Fprintf(&b, "Campaign: source=%s medium=%s name=%s\n", gc.Campaign.Source, gc.Campaign.Medium, gc.Campaign.Name)
	}
	writeField(&b, "Intent", gc.Intent)

	if style == "" {
		style = prefs.Style
	}
	writeField(&b, "Style", style)
	writeField(&b, "Brand voice", prefs.BrandVoice)
	if len(prefs.MustInclude) > 0 {
		fmt.Fprintf(&b, "Must include: %s\n", strings.Join(prefs.MustInclude, ", "))
	}
	if len(prefs.AvoidWords) > 0 {
		fmt.Fprintf(&b, "Never use: %s\n", strings.Join(prefs.AvoidWords, ", "))
	}

	sep := st.Separator
	if sep == "" {
		sep = "no separator"
	}
	b.WriteString("\nRules:\n")
	fmt.Fprintf(&b, "- Format: Merchant.Word%sWord, at most %d words after the merchant\n", st.Separator, st.MaxWords)
	fmt.Fprintf(&b, "- Separate words with %q and use %s capitalization\n", sep, st.Capitalization)
	fmt.Fprintf(&b, "- At most %d characters; only letters, digits, '.', '-' and '_'\n", maxLength)
	b.WriteString("- Reply with the slug only\n")
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
