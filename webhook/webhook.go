package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/use-agent/gamexport/config"
	"github.com/use-agent/gamexport/models"
)

// Event types.
const (
	EventCompleted = "export.completed"
	EventFailed    = "export.failed"
)

// SignatureHeader carries "sha256=<hex>" when a secret is configured.
const SignatureHeader = "X-Gamexport-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// CompletedData summarizes a finished export.
type CompletedData struct {
	ProfileURL string            `json:"profile_url"`
	Records    int               `json:"records"`
	LastPage   int               `json:"last_page"`
	StopReason models.StopReason `json:"stop_reason"`
	Issues     int               `json:"issues"`
	Path       string            `json:"path,omitempty"`
}

// FailedData describes an export that produced no output.
type FailedData struct {
	ProfileURL string              `json:"profile_url"`
	Error      *models.ErrorDetail `json:"error"`
}

// Completed builds an export.completed event.
func Completed(res *models.ExportResult, path string) *Event {
	return &Event{
		Type:      EventCompleted,
		Username:  res.Username,
		Timestamp: time.Now().Unix(),
		Data: CompletedData{
			ProfileURL: res.ProfileURL,
			Records:    len(res.Records),
			LastPage:   res.LastPage,
			StopReason: res.StopReason,
			Issues:     res.Issues,
			Path:       path,
		},
	}
}

// Failed builds an export.failed event.
func Failed(username, profileURL string, err error) *Event {
	detail := &models.ErrorDetail{Code: models.ErrCodeInternal, Message: err.Error()}
	var ee *models.ExportError
	if errors.As(err, &ee) {
		detail = &models.ErrorDetail{Code: ee.Code, Message: ee.Error()}
	}
	return &Event{
		Type:      EventFailed,
		Username:  username,
		Timestamp: time.Now().Unix(),
		Data:      FailedData{ProfileURL: profileURL, Error: detail},
	}
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Client posts events to one endpoint.
type Client struct {
	http   *resty.Client
	url    string
	secret string
}

// New returns a Client for cfg, or nil when no URL is configured.
func New(cfg config.WebhookConfig) *Client {
	if cfg.URL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("User-Agent", "Gamexport-Webhook/1.0"),
		url:    cfg.URL,
		secret: cfg.Secret,
	}
}

// Deliver sends event once, synchronously.
// The request body is signed with HMAC-SHA256 if a secret is set.
func (c *Client) Deliver(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req := c.http.R().SetContext(ctx).SetBody(body)
	if c.secret != "" {
		req.SetHeader(SignatureHeader, "sha256="+Sign(c.secret, body))
	}

	resp, err := req.Post(c.url)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode())
	}
	return nil
}
