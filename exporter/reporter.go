package exporter

import (
	"log/slog"

	"github.com/use-agent/gamexport/models"
)

// Reporter receives progress and diagnostic events from an export run.
// Implementations must not block for long; they are called inline.
type Reporter interface {
	PageFetching(page int)
	PageFetched(page, entries int)
	FetchFailed(page int, err error)
	Stopped(page int, reason models.StopReason)
	Saved(path string, records int)
	SaveFailed(path string, err error)
}

// LogReporter writes events as structured log lines.
type LogReporter struct {
	Logger *slog.Logger
}

// NewLogReporter returns a LogReporter on logger, or on slog.Default()
// when logger is nil.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{Logger: logger}
}

func (r *LogReporter) PageFetching(page int) {
	r.Logger.Debug("fetching page", "page", page)
}

func (r *LogReporter) PageFetched(page, entries int) {
	r.Logger.Info("page fetched", "page", page, "entries", entries)
}

func (r *LogReporter) FetchFailed(page int, err error) {
	r.Logger.Warn("page fetch failed, treating as empty", "page", page, "error", err)
}

func (r *LogReporter) Stopped(page int, reason models.StopReason) {
	switch reason {
	case models.StopEmptyPage:
		r.Logger.Info("no more entries", "page", page)
	case models.StopDuplicatePage:
		r.Logger.Info("duplicate page, stopping", "page", page)
	case models.StopMaxPages:
		r.Logger.Info("page limit reached", "page", page)
	case models.StopCanceled:
		r.Logger.Warn("export canceled", "page", page)
	default:
		r.Logger.Info("export stopped", "page", page, "reason", reason)
	}
}

func (r *LogReporter) Saved(path string, records int) {
	r.Logger.Info("saved games", "path", path, "records", records)
}

func (r *LogReporter) SaveFailed(path string, err error) {
	r.Logger.Error("save failed", "path", path, "error", err)
}

// NopReporter discards every event.
type NopReporter struct{}

func (NopReporter) PageFetching(int) {}
func (NopReporter) PageFetched(int, int) {}
func (NopReporter) FetchFailed(int, error) {}
func (NopReporter) Stopped(int, models.StopReason) {}
func (NopReporter) Saved(string, int) {}
func (NopReporter) SaveFailed(string, error) {}
