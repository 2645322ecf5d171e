package scraper

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"github.com/use-agent/gamexport/config"
)

// Selectors are the compiled CSS markers that locate game entries and
// their fields on a profile page.
type Selectors struct {
	Entry cascadia.Selector
	Title cascadia.Selector
	Stars cascadia.Selector
}

// DefaultSelectors matches the Backloggd profile markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Entry: cascadia.MustCompile(".rating-hover"),
		Title: cascadia.MustCompile(".game-text-centered"),
		Stars: cascadia.MustCompile(".stars-top"),
	}
}

// CompileSelectors compiles configured selector strings.
func CompileSelectors(cfg config.SelectorConfig) (Selectors, error) {
	var s Selectors
	var err error
	if s.Entry, err = cascadia.Compile(cfg.Entry); err != nil {
		return Selectors{}, fmt.Errorf("scraper: entry selector %q: %w", cfg.Entry, err)
	}
	if s.Title, err = cascadia.Compile(cfg.Title); err != nil {
		return Selectors{}, fmt.Errorf("scraper: title selector %q: %w", cfg.Title, err)
	}
	if s.Stars, err = cascadia.Compile(cfg.Stars); err != nil {
		return Selectors{}, fmt.Errorf("scraper: stars selector %q: %w", cfg.Stars, err)
	}
	return s, nil
}
