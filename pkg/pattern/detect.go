package pattern

import (
	"math"

	"github.com/dtnitsch/linkslug/models"
)

// MinSamples is the fewest slugs a pattern is detected from.
const MinSamples = 5

// Ratio cutoffs for the boolean pattern flags.
const (
	brandRatio = 0.5
	yearRatio  = 0.3
	ctaRatio   = 0.3
)

// Detect aggregates the analyses of slugs into a DetectedPattern. It
// reports false when fewer than the sample floor are given.
func (d *Detector) Detect(slugs []string) (*models.DetectedPattern, bool) {
	if len(slugs) < max(d.minSamples, MinSamples) {
		return nil, false
	}
	analyses := make([]Analysis, len(slugs))
	for i, s := range slugs {
		analyses[i] = d.AnalyzeSlug(s)
	}
	return Aggregate(analyses), true
}

// Aggregate summarizes analyses. Ties for a modal value go to the value
// seen first, so callers should pass history most recent first.
func Aggregate(analyses []Analysis) *models.DetectedPattern {
	n := len(analyses)
	if n == 0 {
		return nil
	}

	templates := make([]string, n)
	separators := make([]string, n)
	caps := make([]string, n)
	counts := make([]float64, n)
	var brands, years, ctas int
	for i, a := range analyses {
		templates[i] = a.Template
		separators[i] = a.Separator
		caps[i] = a.Capitalization
		counts[i] = float64(a.TokenCount)
		if a.ContainsBrand {
			brands++
		}
		if a.ContainsYear {
			years++
		}
		if a.ContainsCTA {
			ctas++
		}
	}

	template, templateHits := mode(templates)
	separator, separatorHits := mode(separators)
	capitalization, _ := mode(caps)
	mean, variance := meanVariance(counts)

	p := &models.DetectedPattern{
		Structure:      template,
		AvgWordCount:   round(mean, 1),
		Separator:      separator,
		Capitalization: capitalization,
		IncludesBrand:  ratio(brands, n) > brandRatio,
		IncludesYear:   ratio(years, n) > yearRatio,
		UsesCTA:        ratio(ctas, n) > ctaRatio,
		SampleSize:     n,
	}
	p.Confidence = Confidence(ratio(templateHits, n), variance, ratio(separatorHits, n), n)
	return p
}

// Confidence scores how consistently a history follows its modal pattern:
// half from template agreement, up to 0.2 for steady token counts, 0.15
// from separator agreement and up to 0.15 for sample size. The result is
// clamped to [0,1] and rounded to two decimals.
func Confidence(templateShare, countVariance, separatorShare float64, samples int) float64 {
	c := 0.5 * templateShare

	switch {
	case countVariance < 1:
		c += 0.2
	case countVariance < 2:
		c += 0.1
	}

	c += 0.15 * separatorShare

	switch {
	case samples >= 10:
		c += 0.15
	case samples >= 5:
		c += 0.10
	default:
		c += 0.05
	}

	return round(math.Max(0, math.Min(1, c)), 2)
}

// mode returns the most frequent value and its count.
func mode(values []string) (string, int) {
	counts := make(map[string]int)
	best, bestCount := "", 0
	for _, v := range values {
		counts[v]++
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, bestCount
}

// meanVariance returns the mean and population variance of xs.
func meanVariance(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return mean, sq / float64(len(xs))
}

func ratio(hits, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(hits) / float64(n)
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
