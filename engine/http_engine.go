package engine

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	tls "github.com/refraction-networking/utls"
)

// HTTPEngine fetches pages with a plain GET through a resty client.
type HTTPEngine struct {
	client *resty.Client
}

// HTTPOptions configures an HTTPEngine. The zero value sends no custom
// headers and applies no timeout.
type HTTPOptions struct {
	Timeout   time.Duration
	ChromeTLS bool
	UserAgent string
	Headers   map[string]string
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Go's http.Transport cannot speak h2 over a utls connection.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// NewHTTPEngine creates an HTTPEngine.
func NewHTTPEngine(opts HTTPOptions) *HTTPEngine {
	client := resty.New()
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	if opts.ChromeTLS {
		client.SetTransport(chromeTransport())
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if len(opts.Headers) > 0 {
		client.SetHeaders(opts.Headers)
	}
	return &HTTPEngine{client: client}
}

// chromeTransport dials TLS with a Chrome fingerprint via utls.
func chromeTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("http_engine: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
}

func (e *HTTPEngine) Name() string { return "http" }

func (e *HTTPEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	r := e.client.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}

	resp, err := r.Get(req.URL)
	if err != nil {
		return nil, fmt.Errorf("http_engine: do request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("http_engine: HTTP %d for %s", resp.StatusCode(), req.URL)
	}
	if reason, blocked := BlockedReason(resp.Body()); blocked {
		return nil, fmt.Errorf("http_engine: blocked by %s for %s", reason, req.URL)
	}

	finalURL := req.URL
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	return &FetchResult{
		HTML:       string(resp.Body()),
		StatusCode: resp.StatusCode(),
		FinalURL:   finalURL,
		EngineName: e.Name(),
	}, nil
}

func (e *HTTPEngine) Close() error {
	e.client.GetClient().CloseIdleConnections()
	return nil
}
