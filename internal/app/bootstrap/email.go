package bootstrap

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/nomination-intake/internal/config"
	"github.com/wolfman30/nomination-intake/internal/notify"
	"github.com/wolfman30/nomination-intake/pkg/logging"
)

// BuildEmailSender returns the acknowledgement email sender, or a nil
// interface when email is disabled or incompletely configured.
func BuildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (notify.EmailSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.EmailProvider {
	case "":
		return nil, nil
	case "stub":
		return notify.NewStubEmailSender(logger), nil
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender == nil {
			logger.Warn("acknowledgement email disabled: SENDGRID_API_KEY not set")
			return nil, nil
		}
		return sender, nil
	case "ses":
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender == nil {
			logger.Warn("acknowledgement email disabled: EMAIL_FROM_ADDRESS not set")
			return nil, nil
		}
		return sender, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown email provider %q", cfg.EmailProvider)
	}
}
