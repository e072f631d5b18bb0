package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/wolfman30/nomination-intake/internal/config"
	"github.com/wolfman30/nomination-intake/internal/insights"
	"github.com/wolfman30/nomination-intake/pkg/logging"
)

// BuildGenerator wires the insight generator for the configured provider. A
// provider without credentials yields a disabled generator rather than an
// error. The returned close func is never nil.
func BuildGenerator(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (*insights.Generator, func() error, error) {
	noop := func() error { return nil }
	if cfg == nil {
		return nil, noop, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.InsightsProvider {
	case "", "gemini":
		if cfg.GeminiAPIKey == "" {
			logger.Info("insights disabled: no gemini api key")
			return insights.NewGenerator(nil, "", logger), noop, nil
		}
		client, err := insights.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.InsightsModelID)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		logger.Info("insights enabled", "provider", "gemini", "model", cfg.InsightsModelID)
		return insights.NewGenerator(client, cfg.InsightsModelID, logger), client.Close, nil

	case "bedrock":
		model := strings.TrimSpace(cfg.BedrockModelID)
		if model == "" {
			logger.Warn("insights disabled: bedrock selected but model id empty")
			return insights.NewGenerator(nil, "", logger), noop, nil
		}
		client, err := insights.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg), model)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: bedrock client: %w", err)
		}
		logger.Info("insights enabled", "provider", "bedrock", "model", model)
		return insights.NewGenerator(client, model, logger), noop, nil

	default:
		return nil, noop, fmt.Errorf("bootstrap: unknown insights provider %q", cfg.InsightsProvider)
	}
}
