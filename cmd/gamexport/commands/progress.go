package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/use-agent/gamexport/exporter"
	"github.com/use-agent/gamexport/models"
)

// spinnerReporter shows the current page on a spinner and forwards every
// event to the wrapped reporter with the spinner paused, so log lines do
// not interleave with the animation.
type spinnerReporter struct {
	next    exporter.Reporter
	s       *spinner.Spinner
	fetched int
}

func newSpinnerReporter(next exporter.Reporter, w io.Writer) *spinnerReporter {
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " starting"
	return &spinnerReporter{next: next, s: s}
}

func (r *spinnerReporter) setSuffix(format string, args ...any) {
	r.s.Lock()
	r.s.Suffix = " " + fmt.Sprintf(format, args...)
	r.s.Unlock()
}

// pause runs fn with the spinner stopped.
func (r *spinnerReporter) pause(fn func()) {
	active := r.s.Active()
	if active {
		r.s.Stop()
	}
	fn()
	if active {
		r.s.Start()
	}
}

func (r *spinnerReporter) PageFetching(page int) {
	r.setSuffix("fetching page %d (%d entries so far)", page, r.fetched)
	if !r.s.Active() {
		r.s.Start()
	}
	r.next.PageFetching(page)
}

func (r *spinnerReporter) PageFetched(page, entries int) {
	r.fetched += entries
	r.pause(func() { r.next.PageFetched(page, entries) })
}

func (r *spinnerReporter) FetchFailed(page int, err error) {
	r.pause(func() { r.next.FetchFailed(page, err) })
}

func (r *spinnerReporter) Stopped(page int, reason models.StopReason) {
	r.s.Stop()
	r.next.Stopped(page, reason)
}

func (r *spinnerReporter) Saved(path string, records int) {
	r.s.Stop()
	r.next.Saved(path, records)
}

func (r *spinnerReporter) SaveFailed(path string, err error) {
	r.s.Stop()
	r.next.SaveFailed(path, err)
}

// Stop halts the animation.
func (r *spinnerReporter) Stop() { r.s.Stop() }
