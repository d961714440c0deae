package assembler

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// LanguageDetector returns an ISO 639-1 code for text.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

// LinguaDetector wraps a lingua detector limited to the languages slugs
// are commonly generated for.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

func NewLinguaDetector() *LinguaDetector {
	languages := []lingua.Language{
		lingua.English,
		lingua.Spanish,
		lingua.French,
		lingua.German,
		lingua.Italian,
		lingua.Portuguese,
		lingua.Dutch,
	}
	return &LinguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().FromLanguages(languages...).Build(),
	}
}

func (l *LinguaDetector) Detect(text string) (string, bool) {
	lang, ok := l.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
