package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/nomination-intake/internal/nomination"
	"github.com/wolfman30/nomination-intake/pkg/logging"
)

const (
	maxOutputTokens    = 1000
	defaultTemperature = 0.7
)

// Status describes how an enrichment attempt ended.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

var errEmptyResponse = errors.New("insights: empty model response")

// Generator enriches submissions through an LLMClient. A Generator with a nil
// client is valid and always yields no insights.
type Generator struct {
	client LLMClient
	model  string
	logger *logging.Logger
}

// NewGenerator wires a generator. Pass a nil client when no credential is
// configured.
func NewGenerator(client LLMClient, model string, logger *logging.Logger) *Generator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Generator{client: client, model: model, logger: logger}
}

// Enabled reports whether a provider is configured.
func (g *Generator) Enabled() bool {
	return g != nil && g.client != nil
}

// Generate returns insights for s, or nil when enrichment is disabled or
// fails for any reason. It never returns an error.
func (g *Generator) Generate(ctx context.Context, s nomination.Submission) *Insights {
	in, _ := g.GenerateWithStatus(ctx, s)
	return in
}

// GenerateWithStatus is Generate plus the reason a nil result was returned.
// Each call makes at most one request to the provider.
func (g *Generator) GenerateWithStatus(ctx context.Context, s nomination.Submission) (*Insights, Status) {
	if !g.Enabled() {
		return nil, StatusSkipped
	}

	resp, err := g.client.Complete(ctx, LLMRequest{
		Model:       g.model,
		System:      []string{systemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: userMessage(s)}},
		MaxTokens:   maxOutputTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		g.logger.Warn("insight generation failed", "error", err, "business", s.BusinessName)
		return nil, StatusFailed
	}

	in, err := ParseInsights(resp.Text)
	if err != nil {
		g.logger.Warn("insight response unusable", "error", err, "business", s.BusinessName, "stop_reason", resp.StopReason)
		return nil, StatusFailed
	}

	g.logger.Info("insights generated",
		"business", s.BusinessName,
		"priority", in.PriorityScore,
		"output_tokens", resp.Usage.OutputTokens,
	)
	return in, StatusOK
}

// ParseInsights decodes a model response, tolerating a markdown code fence
// around the JSON.
func ParseInsights(raw string) (*Insights, error) {
	text := StripCodeFence(raw)
	if text == "" {
		return nil, errEmptyResponse
	}
	var in Insights
	if err := json.Unmarshal([]byte(text), &in); err != nil {
		return nil, fmt.Errorf("insights: decode response: %w", err)
	}
	in.normalize()
	if in.empty() {
		return nil, errEmptyResponse
	}
	return &in, nil
}

// StripCodeFence removes a leading ``` or ```json line and a trailing ```
// fence. Text without a fence is returned trimmed.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		// Drop the language tag line, e.g. "json".
		if first := strings.TrimSpace(text[:idx]); !strings.HasPrefix(first, "{") {
			text = text[idx+1:]
		}
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
