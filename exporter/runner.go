package exporter

import (
	"context"

	"github.com/use-agent/gamexport/config"
	"github.com/use-agent/gamexport/engine"
	"github.com/use-agent/gamexport/models"
	"github.com/use-agent/gamexport/profile"
	"github.com/use-agent/gamexport/scraper"
)

// Runner binds a configuration and a fetch engine so that callers can
// export any profile with one call. It is safe for concurrent use when
// the engine is.
type Runner struct {
	cfg       *config.Config
	engine    engine.Engine
	fetcher   *scraper.Fetcher
	selectors scraper.Selectors
}

// NewRunner compiles the configured selectors and returns a Runner
// fetching through eng.
func NewRunner(cfg *config.Config, eng engine.Engine) (*Runner, error) {
	sel, err := scraper.CompileSelectors(cfg.Fetch.Selectors)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:       cfg,
		engine:    eng,
		fetcher:   scraper.NewFetcher(eng, sel),
		selectors: sel,
	}, nil
}

// Resolve turns a profile URL or bare username into a Target on the
// configured site.
func (r *Runner) Resolve(arg string) (profile.Target, error) {
	return profile.Resolve(arg, r.cfg.Fetch.Site)
}

// ResolveUsername is Resolve for callers that only ever hold a username.
func (r *Runner) ResolveUsername(username string) (profile.Target, error) {
	return profile.ForUsername(username, r.cfg.Fetch.Site)
}

// Run collects every record of t.
func (r *Runner) Run(ctx context.Context, t profile.Target, rep Reporter) (*models.ExportResult, error) {
	ex := New(r.fetcher, r.selectors, Options{
		Reporter: rep,
		Strict:   r.cfg.Fetch.Strict,
		MaxPages: r.cfg.Fetch.MaxPages,
	})
	return ex.Collect(ctx, t.Username, t.ProfileURL)
}

// EngineName reports the fetch engine in use.
func (r *Runner) EngineName() string { return r.engine.Name() }

// MaxPages reports the configured page cap.
func (r *Runner) MaxPages() int { return r.cfg.Fetch.MaxPages }
