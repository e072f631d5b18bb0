package intake

import (
	"context"
	"errors"
	"strings"

	"github.com/wolfman30/nomination-intake/internal/config"
	"github.com/wolfman30/nomination-intake/internal/recordstore"
)

const keyPreviewLength = 8

// Settings is the non-secret view of configuration that diagnostics report
// on. Secrets are reduced to presence flags before they reach this package.
type Settings struct {
	Env                    string
	NotificationConfigured bool
	InsightsProvider       string
	InsightsModel          string
	EmailProvider          string
	ContainerIDSet         bool
	KeyID                  string
	PrivateKeySet          bool
	RecordStoreEnvironment string
}

// SettingsFromConfig reduces cfg to Settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		return Settings{}
	}
	model := cfg.InsightsModelID
	if cfg.InsightsProvider == "bedrock" {
		model = cfg.BedrockModelID
	}
	return Settings{
		Env:                    cfg.Env,
		NotificationConfigured: cfg.SlackWebhookURL != "",
		InsightsProvider:       cfg.InsightsProvider,
		InsightsModel:          model,
		EmailProvider:          cfg.EmailProvider,
		ContainerIDSet:         cfg.CloudKitContainerID != "",
		KeyID:                  cfg.CloudKitKeyID,
		PrivateKeySet:          strings.TrimSpace(cfg.CloudKitPrivateKey) != "",
		RecordStoreEnvironment: cfg.CloudKitEnvironment,
	}
}

// Diagnostics is the GET /nominate report. It never carries a secret value.
type Diagnostics struct {
	Env          string                `json:"env"`
	Notification NotificationDiagnosis `json:"notification"`
	Insights     InsightsDiagnosis     `json:"insights"`
	Email        EmailDiagnosis        `json:"email"`
	RecordStore  RecordStoreDiagnosis  `json:"recordStore"`
}

type NotificationDiagnosis struct {
	Configured bool `json:"configured"`
}

type InsightsDiagnosis struct {
	Configured bool   `json:"configured"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
}

type EmailDiagnosis struct {
	Configured bool   `json:"configured"`
	Provider   string `json:"provider,omitempty"`
}

type RecordStoreDiagnosis struct {
	Configured     bool       `json:"configured"`
	ContainerIDSet bool       `json:"containerIdSet"`
	KeyIDSet       bool       `json:"keyIdSet"`
	KeyIDPreview   string     `json:"keyIdPreview,omitempty"`
	PrivateKeySet  bool       `json:"privateKeySet"`
	Environment    string     `json:"environment"`
	WriteTest      *WriteTest `json:"writeTest,omitempty"`
}

// WriteTest is the result of a live diagnostic write.
type WriteTest struct {
	Attempted  bool   `json:"attempted"`
	Success    bool   `json:"success"`
	RecordName string `json:"recordName,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Diagnose reports configuration presence. When writeTest is set and the
// record store is configured it also performs one live diagnostic write; that
// write creates a real record marked with the diagnostic status. The
// notification channel is never touched.
func (s *Service) Diagnose(ctx context.Context, writeTest bool) Diagnostics {
	d := Diagnostics{
		Env:          s.settings.Env,
		Notification: NotificationDiagnosis{Configured: s.notifier != nil},
		Insights: InsightsDiagnosis{
			Configured: s.enricher != nil && s.enricher.Enabled(),
			Provider:   s.settings.InsightsProvider,
			Model:      s.settings.InsightsModel,
		},
		Email: EmailDiagnosis{
			Configured: s.email != nil,
			Provider:   s.settings.EmailProvider,
		},
		RecordStore: RecordStoreDiagnosis{
			Configured:     s.records != nil && s.records.Configured(),
			ContainerIDSet: s.settings.ContainerIDSet,
			KeyIDSet:       s.settings.KeyID != "",
			KeyIDPreview:   previewKeyID(s.settings.KeyID),
			PrivateKeySet:  s.settings.PrivateKeySet,
			Environment:    s.settings.RecordStoreEnvironment,
		},
	}
	if s.records != nil {
		d.RecordStore.Environment = s.records.Environment()
	}

	if !writeTest {
		return d
	}
	result := &WriteTest{}
	d.RecordStore.WriteTest = result
	if !d.RecordStore.Configured {
		result.Error = recordstore.ErrNotConfigured.Error()
		return d
	}

	result.Attempted = true
	name, err := s.records.WriteTest(ctx)
	if err != nil {
		s.logger.Warn("record store diagnostic write failed", "error", err)
		result.Error = describeWriteError(err)
		return d
	}
	s.logger.Info("record store diagnostic write succeeded", "record_name", name)
	result.Success = true
	result.RecordName = name
	return d
}

// previewKeyID shows at most the first eight characters of the key id and
// never more than half of it.
func previewKeyID(keyID string) string {
	runes := []rune(keyID)
	if len(runes) == 0 {
		return ""
	}
	n := len(runes) / 2
	if n > keyPreviewLength {
		n = keyPreviewLength
	}
	return string(runes[:n]) + "..."
}

func describeWriteError(err error) string {
	var apiErr *recordstore.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, recordstore.ErrInvalidKey):
		return recordstore.ErrInvalidKey.Error()
	default:
		return err.Error()
	}
}
