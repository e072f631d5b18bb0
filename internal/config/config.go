package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration. It is built once at startup and
// passed into the components that need it; nothing below main reads the
// environment directly.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Notification webhook (mandatory for submissions)
	SlackWebhookURL string

	// Insight generation
	InsightsProvider string
	GeminiAPIKey     string
	InsightsModelID  string
	BedrockModelID   string

	// AWS (Bedrock + SES)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// CloudKit record store
	CloudKitContainerID string
	CloudKitKeyID       string
	CloudKitPrivateKey  string
	CloudKitEnvironment string
	CloudKitBaseURL     string

	// Acknowledgement email
	EmailProvider    string
	SendGridAPIKey   string
	EmailFromAddress string
	EmailFromName    string

	// HTTP edge
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	RedisAddr          string
	RedisPassword      string
	RedisTLS           bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SlackWebhookURL: strings.TrimSpace(getEnv("SLACK_WEBHOOK_URL", "")),

		InsightsProvider: strings.ToLower(strings.TrimSpace(getEnv("INSIGHTS_PROVIDER", "gemini"))),
		GeminiAPIKey:     strings.TrimSpace(getEnv("GEMINI_API_KEY", "")),
		InsightsModelID:  getEnv("INSIGHTS_MODEL_ID", "gemini-2.5-flash"),
		BedrockModelID:   getEnv("BEDROCK_MODEL_ID", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		CloudKitContainerID: strings.TrimSpace(getEnv("CLOUDKIT_CONTAINER_ID", "")),
		CloudKitKeyID:       strings.TrimSpace(getEnv("CLOUDKIT_KEY_ID", "")),
		CloudKitPrivateKey:  getEnv("CLOUDKIT_PRIVATE_KEY", ""),
		CloudKitEnvironment: getEnv("CLOUDKIT_ENVIRONMENT", "development"),
		CloudKitBaseURL:     getEnv("CLOUDKIT_BASE_URL", "https://api.apple-cloudkit.com"),

		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", ""))),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "The Nominations Team"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 10),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisTLS:           getEnvAsBool("REDIS_TLS", false),
	}
}

// RecordStoreConfigured reports whether every CloudKit credential is present.
func (c *Config) RecordStoreConfigured() bool {
	return c.CloudKitContainerID != "" && c.CloudKitKeyID != "" && strings.TrimSpace(c.CloudKitPrivateKey) != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if strings.TrimSpace(raw) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
