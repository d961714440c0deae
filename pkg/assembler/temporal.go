package assembler

import (
	"net/url"
	"time"

	"github.com/dtnitsch/linkslug/models"
)

// Season names the meteorological (northern hemisphere) season of m.
func Season(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "fall"
	}
}

// Temporal describes now. The first holiday within its tolerance wins;
// distances wrap across the year boundary.
func (a *Assembler) Temporal(now time.Time) models.TemporalContext {
	tc := models.TemporalContext{
		Season: Season(now.Month()),
		Month:  int(now.Month()),
		Year:   now.Year(),
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, h := range a.lex.Holidays {
		if daysToHoliday(today, h.Month, h.Day) <= h.ToleranceDays {
			tc.Holiday = h.Name
			break
		}
	}
	return tc
}

// daysToHoliday is the absolute day distance from today to the nearest
// occurrence of month/day in the previous, current or next year.
func daysToHoliday(today time.Time, month, day int) int {
	best := -1
	for _, y := range []int{today.Year() - 1, today.Year(), today.Year() + 1} {
		h := time.Date(y, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		d := int(today.Sub(h).Hours() / 24)
		if d < 0 {
			d = -d
		}
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// Campaign reads UTM parameters and ad click ids from q.
func (a *Assembler) Campaign(q url.Values) models.CampaignContext {
	c := models.CampaignContext{
		Source:  q.Get("utm_source"),
		Medium:  q.Get("utm_medium"),
		Name:    q.Get("utm_campaign"),
		Content: q.Get("utm_content"),
		Term:    q.Get("utm_term"),
	}

	switch {
	case q.Has("gclid"):
		if c.Source == "" {
			c.Source = "google"
		}
		c.Platform = "google"
	case q.Has("fbclid"):
		if c.Source == "" {
			c.Source = "facebook"
		}
		c.Platform = "facebook"
	}

	if c.Platform == "" {
		for _, tok := range []string{c.Source, c.Medium} {
			if tok == "" {
				continue
			}
			if p, ok := a.lex.Platform(tok); ok {
				c.Platform = p
				break
			}
		}
	}
	return c
}
