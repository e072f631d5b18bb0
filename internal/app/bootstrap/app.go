package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/nomination-intake/internal/api/router"
	appconfig "github.com/wolfman30/nomination-intake/internal/config"
	"github.com/wolfman30/nomination-intake/internal/intake"
	"github.com/wolfman30/nomination-intake/internal/notify"
	"github.com/wolfman30/nomination-intake/internal/observability/metrics"
	"github.com/wolfman30/nomination-intake/internal/recordstore"
	"github.com/wolfman30/nomination-intake/pkg/logging"
)

// App is the wired HTTP surface shared by the server and Lambda binaries.
type App struct {
	Handler http.Handler
	Service *intake.Service
	closers []func() error
}

// Close releases provider clients.
func (a *App) Close() {
	for _, c := range a.closers {
		_ = c()
	}
}

// Options carry process-level dependencies into BuildApp.
type Options struct {
	AWSConfig aws.Config
	Registry  *prometheus.Registry
	Logger    *logging.Logger
}

// BuildApp wires every integration from cfg. Integrations that are not
// configured are left out; only an unknown provider name is an error.
func BuildApp(ctx context.Context, cfg *appconfig.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	generator, closeGenerator, err := BuildGenerator(ctx, cfg, opts.AWSConfig, logger)
	if err != nil {
		return nil, err
	}
	email, err := BuildEmailSender(cfg, opts.AWSConfig, logger)
	if err != nil {
		_ = closeGenerator()
		return nil, err
	}

	intakeMetrics := metrics.NewIntakeMetrics(reg)
	svc := intake.NewService(intake.SettingsFromConfig(cfg), intake.Deps{
		Notifier:    BuildNotifier(cfg, logger),
		RecordStore: BuildRecordStore(cfg, logger),
		Email:       email,
		Enricher:    generator,
		Metrics:     intakeMetrics,
		Logger:      logger,
	})

	handler := router.New(&router.Config{
		Logger:             logger,
		IntakeHandler:      intake.NewHandler(svc, intakeMetrics, logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        BuildRateLimiter(ctx, cfg, logger),
	})

	return &App{
		Handler: handler,
		Service: svc,
		closers: []func() error{closeGenerator},
	}, nil
}

// BuildNotifier returns the webhook notifier, or a nil interface when no
// webhook URL is configured so the service can reject submissions.
func BuildNotifier(cfg *appconfig.Config, logger *logging.Logger) intake.Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	n := notify.NewWebhookNotifier(cfg.SlackWebhookURL, nil, logger)
	if n == nil {
		logger.Warn("SLACK_WEBHOOK_URL not set; nominations will be rejected")
		return nil
	}
	return n
}

// BuildRecordStore returns the CloudKit client. An unconfigured client is
// still returned so diagnostics can report on it.
func BuildRecordStore(cfg *appconfig.Config, logger *logging.Logger) *recordstore.Client {
	if logger == nil {
		logger = logging.Default()
	}
	client := recordstore.New(recordstore.Config{
		ContainerID: cfg.CloudKitContainerID,
		KeyID:       cfg.CloudKitKeyID,
		PrivateKey:  cfg.CloudKitPrivateKey,
		Environment: cfg.CloudKitEnvironment,
		BaseURL:     cfg.CloudKitBaseURL,
		Logger:      logger,
	})
	if !client.Configured() {
		logger.Warn("record store not configured; nominations will not be persisted")
	}
	return client
}
