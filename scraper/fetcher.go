package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/gamexport/engine"
	"github.com/use-agent/gamexport/models"
)

// Page is one fetched profile page and its matched entry fragments.
type Page struct {
	Number  int
	URL     string
	Entries *goquery.Selection
}

// Len returns the number of matched entries.
func (p *Page) Len() int {
	if p == nil || p.Entries == nil {
		return 0
	}
	return p.Entries.Length()
}

// Fetcher retrieves profile pages through an engine and selects the
// game-entry fragments on each.
type Fetcher struct {
	engine    engine.Engine
	selectors Selectors
}

// NewFetcher creates a Fetcher.
func NewFetcher(eng engine.Engine, sel Selectors) *Fetcher {
	return &Fetcher{engine: eng, selectors: sel}
}

// Selectors returns the markers the fetcher was built with.
func (f *Fetcher) Selectors() Selectors { return f.selectors }

// PageURL returns profileURL with its page query parameter set to page.
func PageURL(profileURL string, page int) (string, error) {
	u, err := url.Parse(profileURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchPage fetches one 1-based page of the profile and returns its entries
// in document order. Network and HTTP failures are returned as
// *models.ExportError with code FETCH_FAILED and no page.
func (f *Fetcher) FetchPage(ctx context.Context, profileURL string, page int) (*Page, error) {
	pageURL, err := PageURL(profileURL, page)
	if err != nil {
		return nil, models.NewExportError(models.ErrCodeInvalidInput,
			fmt.Sprintf("invalid profile url %q", profileURL), err)
	}

	res, err := f.engine.Fetch(ctx, &engine.FetchRequest{URL: pageURL})
	if err != nil {
		return nil, models.NewExportError(models.ErrCodeFetch,
			fmt.Sprintf("fetch page %d", page), err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.HTML))
	if err != nil {
		return nil, models.NewExportError(models.ErrCodeFetch,
			fmt.Sprintf("parse page %d", page), err)
	}

	return &Page{
		Number:  page,
		URL:     pageURL,
		Entries: doc.FindMatcher(f.selectors.Entry),
	}, nil
}
