// Package exporter drives pagination over a profile and accumulates the
// extracted game records.
package exporter

import (
	"context"
	"errors"
	"fmt"

	"github.com/use-agent/gamexport/fingerprint"
	"github.com/use-agent/gamexport/models"
	"github.com/use-agent/gamexport/scraper"
)

// PageSource fetches one 1-based page of a profile.
type PageSource interface {
	FetchPage(ctx context.Context, profileURL string, page int) (*scraper.Page, error)
}

// Options tunes an Exporter.
type Options struct {
	Reporter Reporter

	// Strict turns fetch failures and defaulted fields into errors.
	Strict bool

	// MaxPages caps the number of pages fetched. 0 means no cap.
	MaxPages int
}

// Exporter runs the fetch, extract, accumulate loop.
type Exporter struct {
	source    PageSource
	selectors scraper.Selectors
	reporter  Reporter
	strict    bool
	maxPages  int
}

// New creates an Exporter reading pages from src and extracting entries
// with sel.
func New(src PageSource, sel scraper.Selectors, opts Options) *Exporter {
	r := opts.Reporter
	if r == nil {
		r = NopReporter{}
	}
	return &Exporter{
		source:    src,
		selectors: sel,
		reporter:  r,
		strict:    opts.Strict,
		maxPages:  opts.MaxPages,
	}
}

// Collect fetches pages 1, 2, ... of profileURL until a page has no
// entries or repeats the previous page, and returns every record in page
// order then entry order.
//
// Fetch failures end the loop as an empty page would. Cancellation of ctx
// ends the loop with StopCanceled and keeps what was accumulated. In
// strict mode a fetch failure or a defaulted field returns a
// STRICT_VIOLATION error instead.
func (e *Exporter) Collect(ctx context.Context, username, profileURL string) (*models.ExportResult, error) {
	res := &models.ExportResult{
		Username:   username,
		ProfileURL: profileURL,
		Records:    []models.GameRecord{},
	}

	var prev string
	page := 1
	for {
		if ctx.Err() != nil {
			res.StopReason = models.StopCanceled
			break
		}
		if e.maxPages > 0 && page > e.maxPages {
			res.StopReason = models.StopMaxPages
			break
		}

		e.reporter.PageFetching(page)
		p, err := e.source.FetchPage(ctx, profileURL, page)
		if err != nil {
			if ctx.Err() != nil {
				res.StopReason = models.StopCanceled
				break
			}
			var ee *models.ExportError
			if errors.As(err, &ee) && ee.Code == models.ErrCodeInvalidInput {
				return nil, err
			}
			e.reporter.FetchFailed(page, err)
			if e.strict {
				return nil, models.NewExportError(models.ErrCodeStrictViolation,
					fmt.Sprintf("page %d could not be fetched", page), err)
			}
			p = nil
		}

		n := p.Len()
		if n == 0 {
			res.StopReason = models.StopEmptyPage
			break
		}
		e.reporter.PageFetched(page, n)

		fp := fingerprint.Nodes(p.Entries.Nodes)
		if fp == prev {
			res.StopReason = models.StopDuplicatePage
			break
		}

		xs := e.selectors.ExtractAll(p.Entries)
		for i, x := range xs {
			if x.TitleDefaulted {
				res.Issues++
			}
			if x.RatingDefaulted {
				res.Issues++
			}
			if e.strict && x.Defaulted() {
				return nil, models.NewExportError(models.ErrCodeStrictViolation,
					fmt.Sprintf("page %d entry %d", page, i+1),
					models.NewExportError(models.ErrCodeParseDefaulted, describeDefaults(x), nil))
			}
		}

		res.Records = append(res.Records, scraper.Records(xs)...)
		res.PagesFetched++
		prev = fp
		page++
	}

	res.LastPage = page
	e.reporter.Stopped(page, res.StopReason)
	return res, nil
}

func describeDefaults(x scraper.Extraction) string {
	switch {
	case x.TitleDefaulted && x.RatingDefaulted:
		return "title and rating missing"
	case x.TitleDefaulted:
		return "title missing"
	default:
		return "rating missing or malformed"
	}
}
