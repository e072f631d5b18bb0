package recordstore

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

	"github.com/wolfman30/nomination-intake/internal/insights"
	"github.com/wolfman30/nomination-intake/internal/nomination"
	"github.com/wolfman30/nomination-intake/pkg/logging"
)

const (
	defaultBaseURL     = "https://api.apple-cloudkit.com"
	defaultEnvironment = "development"
	maxErrorBody       = 4 << 10
)

var tracer = otel.Tracer("nominations.internal.recordstore")

// ErrNotConfigured is returned when any credential is missing. Callers treat
// it as "skipped", not as a failure.
var ErrNotConfigured = errors.New("recordstore: not configured")

// APIError is returned for a non-2xx response or a per-record server error.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("recordstore: status %d: %s", e.StatusCode, e.Body)
}

// Config controls how the client reaches the tenant's public database.
type Config struct {
	ContainerID string
	KeyID       string
	PrivateKey  string
	Environment string
	BaseURL     string
	HTTPClient  *http.Client
	Logger      *logging.Logger
	Now         func() time.Time
}

// Client writes nomination records to a per-tenant CloudKit container.
type Client struct {
	containerID string
	environment string
	baseURL     string
	signer      *Signer
	keyErr      error
	httpClient  *http.Client
	logger      *logging.Logger
	now         func() time.Time
}

// New builds a client. A client with missing credentials is returned as-is
// and reports Configured() == false; an unparsable key is logged here and
// returned from every write.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	env := strings.TrimSpace(cfg.Environment)
	if env == "" {
		env = defaultEnvironment
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	c := &Client{
		containerID: strings.TrimSpace(cfg.ContainerID),
		environment: env,
		baseURL:     baseURL,
		httpClient:  httpClient,
		logger:      logger,
		now:         now,
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if c.containerID == "" || keyID == "" || strings.TrimSpace(cfg.PrivateKey) == "" {
		return c
	}
	key, err := ParseSigningKey(cfg.PrivateKey)
	if err != nil {
		logger.Error("record store private key unusable", "error", err)
		c.keyErr = err
	}
	c.signer = NewSigner(keyID, key)
	return c
}

// Configured reports whether all credentials were supplied.
func (c *Client) Configured() bool {
	return c != nil && c.signer != nil
}

// Environment is the database environment writes go to.
func (c *Client) Environment() string {
	return c.environment
}

// Path is the signed request path for records/modify.
func (c *Client) Path() string {
	return fmt.Sprintf("/database/1/%s/%s/public/records/modify", c.containerID, c.environment)
}

// CreateNomination writes one nomination record and returns its record name.
func (c *Client) CreateNomination(ctx context.Context, s nomination.Submission, in *insights.Insights) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	record := BuildRecord(s, in, c.now())
	if err := c.modify(ctx, createRequest(record)); err != nil {
		return "", err
	}
	return record.RecordName, nil
}

// WriteTest performs a synchronous round-trip write of a record marked with
// the diagnostic status. Every call creates a real record.
func (c *Client) WriteTest(ctx context.Context) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	now := c.now()
	record := BuildRecord(nomination.Submission{
		NominatorName:  "Diagnostic Check",
		NominatorEmail: "diagnostic@example.com",
		BusinessName:   "Diagnostic Test Record",
		Reason:         "Connectivity test written at " + FormatTimestamp(now),
	}, nil, now)
	record.Fields["status"] = str(StatusDiagnostic)
	if err := c.modify(ctx, createRequest(record)); err != nil {
		return "", err
	}
	return record.RecordName, nil
}

func (c *Client) modify(ctx context.Context, req ModifyRequest) error {
	if c.keyErr != nil {
		return c.keyErr
	}

	ctx, span := tracer.Start(ctx, "recordstore.records.modify")
	defer span.End()
	span.SetAttributes(
		attribute.String("recordstore.environment", c.environment),
		attribute.Int("recordstore.operations", len(req.Operations)),
	)

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("recordstore: marshal request: %w", err)
	}
	path := c.Path()
	signed, err := c.signer.Sign(body, path, c.now())
	if err != nil {
		span.RecordError(err)
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("recordstore: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(HeaderKeyID, signed.KeyID)
	httpReq.Header.Set(HeaderDate, signed.Date)
	httpReq.Header.Set(HeaderSignature, signed.Signature)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return fmt.Errorf("recordstore: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetStatus(codes.Error, "non-2xx response")
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	// records/modify reports per-record failures inside a 200 response.
	var parsed ModifyResponse
	if err := json.Unmarshal(respBody, &parsed); err == nil {
		for _, r := range parsed.Records {
			if r.ServerErrorCode != "" {
				span.SetStatus(codes.Error, r.ServerErrorCode)
				return &APIError{StatusCode: resp.StatusCode, Body: r.ServerErrorCode + ": " + r.Reason}
			}
		}
	}
	return nil
}
