// Package webhook posts parse summaries to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ccollicutt/loglens/pkg/analytics"
	"github.com/ccollicutt/loglens/pkg/config"
	"github.com/ccollicutt/loglens/pkg/ingest"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// Payload is the JSON body posted to a webhook.
type Payload struct {
	RunID       string             `json:"run_id"`
	Source      string             `json:"source"`
	Format      string             `json:"format"`
	Fallback    bool               `json:"fallback"`
	Entries     int                `json:"entries"`
	ParseErrors int                `json:"parse_errors"`
	Summary     *analytics.Summary `json:"summary"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// NewPayload builds a payload from a dataset and its summary.
func NewPayload(source string, ds *ingest.Dataset, summary *analytics.Summary) *Payload {
	p := &Payload{
		RunID:       ds.RunID.String(),
		Source:      source,
		Format:      string(ds.Format),
		Entries:     len(ds.Entries),
		ParseErrors: ds.ErrorCount(),
		Summary:     summary,
		GeneratedAt: ds.ParsedAt,
	}
	if ds.Detection != nil {
		p.Fallback = ds.Detection.Fallback
	}
	return p
}

// HasErrors reports whether the run produced degraded records or error responses.
func (p *Payload) HasErrors() bool {
	return p.ParseErrors > 0 || (p.Summary != nil && p.Summary.ErrorRate > 0)
}

// Client sends payloads to webhook endpoints.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new webhook client. A nil logger discards output.
func NewClient(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Request timeout (uses DefaultTimeout if zero)
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts a payload to a webhook endpoint.
func (c *Client) Send(ctx context.Context, payload *Payload, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}

	body, err := json.Marshal(payload)
	if err != nil {
		resp.Error = fmt.Errorf("failed to marshal payload: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(body))
	if err != nil {
		resp.Error = fmt.Errorf("failed to create request: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "loglens-webhook")
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("request failed: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 1024*1024)) // Limit to 1MB
	if err != nil {
		resp.Error = fmt.Errorf("failed to read response: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(respBody)
	resp.Duration = time.Since(start)

	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return resp
}

// ShouldFire reports whether a webhook with trigger fires for payload.
func ShouldFire(trigger config.WebhookTrigger, payload *Payload) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return payload.HasErrors()
	}
}

// Notify sends payload to every configured webhook whose trigger fires.
// Failures are logged and counted; they never stop the remaining webhooks.
func (c *Client) Notify(ctx context.Context, hooks []config.WebhookConfig, payload *Payload) (sent, failed int) {
	for _, wh := range hooks {
		if !ShouldFire(wh.Trigger, payload) {
			continue
		}
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		resp := c.Send(ctx, payload, SendOptions{URL: wh.URL, Token: wh.Token, Timeout: wh.Timeout})
		if !resp.Success() {
			failed++
			c.logger.Error("webhook delivery failed",
				zap.String("webhook", name),
				zap.Int("status", resp.StatusCode),
				zap.Error(resp.Error))
			continue
		}
		sent++
		c.logger.Info("webhook delivered",
			zap.String("webhook", name),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", resp.Duration))
	}
	return sent, failed
}
