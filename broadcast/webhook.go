// Package broadcast delivers node events to other services over HTTP.
package broadcast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/blocktank/lnworker/log"
	"github.com/blocktank/lnworker/nodeman"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

const (
	defaultTimeout = 10 * time.Second
	// maxResponseSize bounds the answer read back from a service.
	maxResponseSize = 1 << 20
)

var _ nodeman.Broadcaster = (*Webhook)(nil)

// Webhook POSTs every event as {"method", "args"} to the url of its service.
// The response body is the service answer.
type Webhook struct {
	services   map[string]string
	httpClient *retryablehttp.Client
}

type Option func(*Webhook)

// WithRetry retries deliveries on connection errors and 5xx answers.
func WithRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(w *Webhook) {
		w.httpClient.RetryMax = max
		if waitMin > 0 {
			w.httpClient.RetryWaitMin = waitMin
		}
		if waitMax > 0 {
			w.httpClient.RetryWaitMax = waitMax
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(w *Webhook) {
		w.httpClient.HTTPClient.Timeout = d
	}
}

// debugLogger forwards retryablehttp logs to the debug log.
type debugLogger struct{}

func (debugLogger) Printf(format string, v ...interface{}) {
	log.Debugf("[Webhook]: "+format, v...)
}

func NewWebhook(services map[string]string, opts ...Option) (*Webhook, error) {
	for name, u := range services {
		parsed, err := url.Parse(u)
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", name, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return nil, fmt.Errorf("service %s: url must be http or https, got %q", name, u)
		}
	}

	c := retryablehttp.NewClient()
	c.HTTPClient = &http.Client{Timeout: defaultTimeout}
	c.Backoff = retryablehttp.LinearJitterBackoff
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.RetryMax = 0
	c.Logger = debugLogger{}

	w := &Webhook{
		services:   services,
		httpClient: c,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

type payload struct {
	Method string `json:"method"`
	Args   any    `json:"args"`
}

func (w *Webhook) DeliverBroadcast(ctx context.Context, ev nodeman.BroadcastEvent) error {
	target, ok := w.services[ev.Service]
	if !ok {
		return fmt.Errorf("unknown service %q", ev.Service)
	}
	body, err := json.Marshal(payload{Method: ev.Method, Args: ev.Args})
	if err != nil {
		return errors.Wrap(err, "json.Marshal")
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "retryablehttp.NewRequestWithContext")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "http.Do")
	}
	defer resp.Body.Close()

	answer, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return errors.Wrap(err, "io.ReadAll")
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("service %s answered %s: %s", ev.Service, resp.Status, bytes.TrimSpace(answer))
	}
	log.Debugf("[Webhook]: delivered %s to %s", ev.Method, ev.Service)

	if ev.Respond != nil {
		ev.Respond(json.RawMessage(answer), nil)
	}
	return nil
}
