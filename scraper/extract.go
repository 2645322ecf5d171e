package scraper

import (
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/gamexport/models"
)

// Extraction is the result of reading one entry. The record is always
// usable; the flags tell which fields fell back to their defaults.
type Extraction struct {
	Record          models.GameRecord
	TitleDefaulted  bool
	RatingDefaulted bool
}

// Defaulted reports whether any field used its default.
func (x Extraction) Defaulted() bool {
	return x.TitleDefaulted || x.RatingDefaulted
}

// Extract reads the title and star rating from one entry fragment.
func (s Selectors) Extract(entry *goquery.Selection) Extraction {
	var x Extraction

	title := entry.FindMatcher(s.Title).First()
	if title.Length() == 0 {
		x.Record.Title = models.UnknownTitle
		x.TitleDefaulted = true
	} else {
		x.Record.Title = strings.TrimSpace(title.Text())
	}

	stars := entry.FindMatcher(s.Stars).First()
	style, _ := stars.Attr("style")
	rating, ok := ParseWidthRating(style)
	if stars.Length() == 0 || !ok {
		x.RatingDefaulted = true
	}
	x.Record.Rating = rating

	return x
}

// ExtractAll extracts every entry in order.
func (s Selectors) ExtractAll(entries *goquery.Selection) []Extraction {
	out := make([]Extraction, 0, entries.Length())
	entries.Each(func(_ int, entry *goquery.Selection) {
		out = append(out, s.Extract(entry))
	})
	return out
}

// Records drops the extraction flags.
func Records(xs []Extraction) []models.GameRecord {
	out := make([]models.GameRecord, len(xs))
	for i, x := range xs {
		out[i] = x.Record
	}
	return out
}

// ParseWidthRating reads the first "width" declaration of an inline style
// ("width:60%") and converts the percentage to a 0-5 rating. It returns
// 0 and false when there is no width or the value is not a finite number.
// Percentages outside 0-100 are clamped.
func ParseWidthRating(style string) (float64, bool) {
	for _, decl := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(prop), "width") {
			continue
		}
		if i := strings.IndexByte(value, '%'); i >= 0 {
			value = value[:i]
		}
		pct, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(pct) || math.IsInf(pct, 0) {
			return 0, false
		}
		pct = math.Max(0, math.Min(100, pct))
		return pct / 20, true
	}
	return 0, false
}
