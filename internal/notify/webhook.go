package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/nomination-intake/pkg/logging"
)

var webhookTracer = otel.Tracer("nominations.internal.notify.webhook")

// ErrWebhookNotConfigured is returned by a notifier without a URL.
var ErrWebhookNotConfigured = errors.New("notify: webhook url not configured")

// StatusError reports a non-2xx webhook response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("notify: webhook returned status %d: %s", e.StatusCode, e.Body)
}

// WebhookNotifier posts Block Kit messages to an incoming-webhook URL.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewWebhookNotifier returns nil when url is empty so callers can treat a
// nil notifier as "not configured".
func NewWebhookNotifier(url string, httpClient *http.Client, logger *logging.Logger) *WebhookNotifier {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookNotifier{url: url, httpClient: httpClient, logger: logger}
}

// Send delivers msg. Any transport error or non-2xx status is returned.
func (n *WebhookNotifier) Send(ctx context.Context, msg Message) error {
	if n == nil || n.url == "" {
		return ErrWebhookNotConfigured
	}

	ctx, span := webhookTracer.Start(ctx, "notify.webhook.send")
	defer span.End()
	span.SetAttributes(attribute.Int("notify.blocks", len(msg.Blocks)))

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("notify: marshal webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return fmt.Errorf("notify: webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		span.SetStatus(codes.Error, "non-2xx response")
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	n.logger.Debug("webhook notification delivered", "status", resp.StatusCode)
	return nil
}
