package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/use-agent/gamexport/models"
)

func entries(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc.FindMatcher(DefaultSelectors().Entry)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		want       models.GameRecord
		wantTitleD bool
		wantRateD  bool
	}{
		{
			name: "complete entry",
			html: `<div class="rating-hover">
				<div class="game-text-centered">  Hollow Knight </div>
				<div class="stars-top" style="width:90%"></div>
			</div>`,
			want: models.GameRecord{Title: "Hollow Knight", Rating: 4.5},
		},
		{
			name: "sixty percent is three stars",
			html: `<div class="rating-hover"><div class="game-text-centered">A</div><div class="stars-top" style="width:60%"></div></div>`,
			want: models.GameRecord{Title: "A", Rating: 3.0},
		},
		{
			name:      "missing stars marker",
			html:      `<div class="rating-hover"><div class="game-text-centered">A</div></div>`,
			want:      models.GameRecord{Title: "A", Rating: 0.0},
			wantRateD: true,
		},
		{
			name:      "non-numeric width",
			html:      `<div class="rating-hover"><div class="game-text-centered">A</div><div class="stars-top" style="width:abc%"></div></div>`,
			want:      models.GameRecord{Title: "A", Rating: 0.0},
			wantRateD: true,
		},
		{
			name:      "stars without style",
			html:      `<div class="rating-hover"><div class="game-text-centered">A</div><div class="stars-top"></div></div>`,
			want:      models.GameRecord{Title: "A", Rating: 0.0},
			wantRateD: true,
		},
		{
			name:       "missing title marker",
			html:       `<div class="rating-hover"><div class="stars-top" style="width:20%"></div></div>`,
			want:       models.GameRecord{Title: "Unknown Title", Rating: 1.0},
			wantTitleD: true,
		},
		{
			name:       "bare entry",
			html:       `<div class="rating-hover"></div>`,
			want:       models.GameRecord{Title: "Unknown Title", Rating: 0.0},
			wantTitleD: true,
			wantRateD:  true,
		},
		{
			name: "first markers win",
			html: `<div class="rating-hover">
				<span class="game-text-centered">First</span><span class="game-text-centered">Second</span>
				<span class="stars-top" style="width:100%"></span><span class="stars-top" style="width:10%"></span>
			</div>`,
			want: models.GameRecord{Title: "First", Rating: 5.0},
		},
		{
			name: "nested title text",
			html: `<div class="rating-hover"><div class="game-text-centered">
				Disco <em>Elysium</em>
			</div></div>`,
			want:      models.GameRecord{Title: "Disco Elysium", Rating: 0.0},
			wantRateD: true,
		},
	}

	sel := DefaultSelectors()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			es := entries(t, tt.html)
			if es.Length() != 1 {
				t.Fatalf("expected 1 entry, got %d", es.Length())
			}
			got := sel.Extract(es)
			if diff := cmp.Diff(tt.want, got.Record); diff != "" {
				t.Errorf("record mismatch (-want +got):\n%s", diff)
			}
			if got.TitleDefaulted != tt.wantTitleD {
				t.Errorf("TitleDefaulted = %v, want %v", got.TitleDefaulted, tt.wantTitleD)
			}
			if got.RatingDefaulted != tt.wantRateD {
				t.Errorf("RatingDefaulted = %v, want %v", got.RatingDefaulted, tt.wantRateD)
			}
		})
	}
}

func TestExtractAll_PreservesOrder(t *testing.T) {
	html := `<ul>
		<li class="rating-hover"><p class="game-text-centered">One</p><p class="stars-top" style="width:20%"></p></li>
		<li class="rating-hover"><p class="game-text-centered">Two</p><p class="stars-top" style="width:40%"></p></li>
		<li class="rating-hover"><p class="game-text-centered">Three</p></li>
	</ul>`

	got := Records(DefaultSelectors().ExtractAll(entries(t, html)))
	want := []models.GameRecord{
		{Title: "One", Rating: 1.0},
		{Title: "Two", Rating: 2.0},
		{Title: "Three", Rating: 0.0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestParseWidthRating(t *testing.T) {
	tests := []struct {
		style  string
		want   float64
		wantOK bool
	}{
		{"width:60%", 3.0, true},
		{"width: 90%;", 4.5, true},
		{"WIDTH:50%", 2.5, true},
		{"color: red; width:70%", 3.5, true},
		{"max-width:20%; width:80%", 4.0, true},
		{"width:45.5%", 2.275, true},
		{"width:0%", 0.0, true},
		{"width:150%", 5.0, true},
		{"width:-10%", 0.0, true},
		{"width:abc%", 0.0, false},
		{"width:NaN%", 0.0, false},
		{"width:Inf%", 0.0, false},
		{"height:60%", 0.0, false},
		{"", 0.0, false},
	}

	for _, tt := range tests {
		got, ok := ParseWidthRating(tt.style)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseWidthRating(%q) = (%v, %v), want (%v, %v)", tt.style, got, ok, tt.want, tt.wantOK)
		}
	}
}
