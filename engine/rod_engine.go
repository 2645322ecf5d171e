package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// RodOptions configures a RodEngine.
type RodOptions struct {
	Headless   bool
	NoSandbox  bool
	Stealth    bool
	BrowserBin string
	Timeout    time.Duration
	Headers    map[string]string
}

// RodEngine renders pages in a headless Chromium controlled by rod. The
// browser is launched lazily on the first Fetch and reused until Close.
type RodEngine struct {
	opts RodOptions

	mu      sync.Mutex
	browser *rod.Browser
}

// NewRodEngine creates a RodEngine. No browser is started until Fetch.
func NewRodEngine(opts RodOptions) *RodEngine {
	return &RodEngine{opts: opts}
}

func (e *RodEngine) Name() string { return "browser" }

func (e *RodEngine) connect() (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser != nil {
		return e.browser, nil
	}

	l := launcher.New().
		Headless(e.opts.Headless).
		NoSandbox(e.opts.NoSandbox)
	if e.opts.BrowserBin != "" {
		l = l.Bin(e.opts.BrowserBin)
	}
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}
	slog.Debug("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	e.browser = browser
	return browser, nil
}

func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	browser, err := e.connect()
	if err != nil {
		return nil, err
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("browser: open page: %w", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			slog.Debug("browser: close page", "error", closeErr)
		}
	}()

	if e.opts.Stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}

	headers := make(map[string]string, len(e.opts.Headers)+len(req.Headers))
	for k, v := range e.opts.Headers {
		headers[k] = v
	}
	for k, v := range req.Headers {
		headers[k] = v
	}
	setExtraHeaders(page, headers)

	p := page.Context(ctx)
	if err := p.Navigate(req.URL); err != nil {
		return nil, fmt.Errorf("browser: navigate %s: %w", req.URL, err)
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", err)
	}

	var statusCode int
	if res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); err == nil {
		statusCode = res.Value.Int()
	}
	if statusCode >= 400 {
		return nil, fmt.Errorf("browser: HTTP %d for %s", statusCode, req.URL)
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("browser: read html: %w", err)
	}
	if reason, blocked := BlockedReason([]byte(rawHTML)); blocked {
		return nil, fmt.Errorf("browser: blocked by %s for %s", reason, req.URL)
	}

	finalURL := req.URL
	if info, err := p.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return &FetchResult{
		HTML:       rawHTML,
		StatusCode: statusCode,
		FinalURL:   finalURL,
		EngineName: e.Name(),
	}, nil
}

// Close kills the browser process if one was launched.
func (e *RodEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser == nil {
		return nil
	}
	err := e.browser.Close()
	e.browser = nil
	return err
}

// setExtraHeaders sends headers with every request of the page. A failure
// is logged and the fetch goes ahead without them.
func setExtraHeaders(c proto.Client, headers map[string]string) {
	if len(headers) == 0 {
		return
	}
	if err := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}).Call(c); err != nil {
		slog.Warn("extra headers not applied, proceeding without them", "count", len(headers), "error", err)
	}
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
