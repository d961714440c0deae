// Package llm abstracts short text generation used by the AI tier.
package llm

import (
	"context"
	"errors"
)

// Quality selects model and sampling for a request.
type Quality int

const (
	QualityBasic Quality = iota
	QualityStandard
	QualityPremium
	QualityUltra
)

func (q Quality) String() string {
	switch q {
	case QualityBasic:
		return "basic"
	case QualityStandard:
		return "standard"
	case QualityPremium:
		return "premium"
	case QualityUltra:
		return "ultra"
	default:
		return "unknown"
	}
}

// Temperature is the sampling temperature for q. The top level suppresses
// most randomness.
func (q Quality) Temperature() float64 {
	switch q {
	case QualityStandard:
		return 0.8
	case QualityPremium:
		return 0.7
	case QualityUltra:
		return 0.3
	default:
		return 0.9
	}
}

// QualityFor maps a subscription tier to a quality level, bumped one level
// for a high-priority promotion and one for brand guidelines, capped at
// ultra. Unknown tiers count as free.
func QualityFor(subscriptionTier string, highPrioritySignal, brandGuidelines bool) Quality {
	var q Quality
	switch subscriptionTier {
	case "pro":
		q = QualityStandard
	case "business":
		q = QualityPremium
	case "enterprise":
		q = QualityUltra
	default:
		q = QualityBasic
	}
	if highPrioritySignal {
		q++
	}
	if brandGuidelines {
		q++
	}
	if q > QualityUltra {
		q = QualityUltra
	}
	return q
}

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("text generator returned no text")

// TextGenerator produces a short completion for prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, maxTokens int, temperature float64, quality Quality) (string, error)
}
