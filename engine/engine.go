package engine

import (
	"context"
	"fmt"

	"github.com/use-agent/gamexport/config"
)

// Engine is the interface that all fetch engines must implement.
type Engine interface {
	// Name returns the engine identifier ("http" or "browser").
	Name() string

	// Fetch retrieves the page content for the given request.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)

	// Close releases engine resources (browser processes, idle connections).
	Close() error
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	HTML       string
	StatusCode int
	FinalURL   string
	EngineName string
}

// New builds the engine selected by cfg.Fetch.Engine.
func New(cfg *config.Config) (Engine, error) {
	switch cfg.Fetch.Engine {
	case "", "http":
		return NewHTTPEngine(HTTPOptions{
			Timeout:   cfg.Fetch.Timeout,
			ChromeTLS: cfg.Fetch.ChromeTLS,
			UserAgent: cfg.Fetch.UserAgent,
			Headers:   cfg.Fetch.Headers,
		}), nil
	case "browser":
		return NewRodEngine(RodOptions{
			Headless:   cfg.Browser.Headless,
			NoSandbox:  cfg.Browser.NoSandbox,
			Stealth:    cfg.Browser.Stealth,
			BrowserBin: cfg.Browser.BrowserBin,
			Timeout:    cfg.Fetch.Timeout,
			Headers:    cfg.Fetch.Headers,
		}), nil
	default:
		return nil, fmt.Errorf("engine: unknown engine %q", cfg.Fetch.Engine)
	}
}
