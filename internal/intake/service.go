package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wolfman30/nomination-intake/internal/insights"
	"github.com/wolfman30/nomination-intake/internal/nomination"
	"github.com/wolfman30/nomination-intake/internal/notify"
	"github.com/wolfman30/nomination-intake/internal/observability/metrics"
	"github.com/wolfman30/nomination-intake/pkg/logging"
)

var (
	// ErrNotifierNotConfigured means no submission can be accepted.
	ErrNotifierNotConfigured = errors.New("intake: notification channel not configured")
	// ErrNotificationFailed wraps a failed mandatory notification.
	ErrNotificationFailed = errors.New("intake: notification dispatch failed")
)

// Notifier delivers the formatted nomination. It is the mandatory channel.
type Notifier interface {
	Send(ctx context.Context, msg notify.Message) error
}

// RecordStore persists nominations. Every write is best-effort.
type RecordStore interface {
	Configured() bool
	Environment() string
	CreateNomination(ctx context.Context, s nomination.Submission, in *insights.Insights) (string, error)
	WriteTest(ctx context.Context) (string, error)
}

// Enricher produces optional insights for a submission.
type Enricher interface {
	Enabled() bool
	GenerateWithStatus(ctx context.Context, s nomination.Submission) (*insights.Insights, insights.Status)
}

// ChannelStatus is the result of one downstream dispatch.
type ChannelStatus string

const (
	ChannelOK      ChannelStatus = "ok"
	ChannelFailed  ChannelStatus = "failed"
	ChannelSkipped ChannelStatus = "skipped"
)

// Channel names used in logs and metrics.
const (
	channelNotification = "notification"
	channelRecordStore  = "record_store"
	channelEmail        = "email"
)

// Outcome aggregates every channel of one submission.
type Outcome struct {
	Notification ChannelStatus
	RecordStore  ChannelStatus
	RecordName   string
	Email        ChannelStatus
	Insights     insights.Status
}

// Deps are the collaborators of a Service. Leave a field nil when the
// corresponding integration is not configured.
type Deps struct {
	Notifier    Notifier
	RecordStore RecordStore
	Email       notify.EmailSender
	Enricher    Enricher
	Metrics     *metrics.IntakeMetrics
	Logger      *logging.Logger
}

// Service runs the nomination flow: enrich, format, then fan out.
type Service struct {
	settings Settings
	notifier Notifier
	records  RecordStore
	email    notify.EmailSender
	enricher Enricher
	metrics  *metrics.IntakeMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewService wires a Service from settings and its collaborators.
func NewService(settings Settings, deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		settings: settings,
		notifier: deps.Notifier,
		records:  deps.RecordStore,
		email:    deps.Email,
		enricher: deps.Enricher,
		metrics:  deps.Metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit processes a validated submission. The notification and the record
// write run concurrently; the acknowledgement email follows a successful
// notification. Only a notification failure (or a missing notifier) is
// returned as an error; record-store and email results are reported in the
// Outcome.
func (s *Service) Submit(ctx context.Context, sub nomination.Submission) (Outcome, error) {
	if s.notifier == nil {
		s.logger.Error("nomination rejected: notification channel not configured")
		return Outcome{}, ErrNotifierNotConfigured
	}

	var out Outcome
	var in *insights.Insights
	if s.enricher != nil {
		in, out.Insights = s.enricher.GenerateWithStatus(ctx, sub)
	} else {
		out.Insights = insights.StatusSkipped
	}
	s.metrics.ObserveInsights(string(out.Insights))

	msg := notify.FormatNomination(sub, in)

	var notifyErr error
	settleAll(
		func() {
			notifyErr = s.timed(channelNotification, func() (ChannelStatus, error) {
				if err := s.notifier.Send(ctx, msg); err != nil {
					return ChannelFailed, err
				}
				return ChannelOK, nil
			}, &out.Notification)
		},
		func() {
			err := s.timed(channelRecordStore, func() (ChannelStatus, error) {
				if s.records == nil || !s.records.Configured() {
					return ChannelSkipped, nil
				}
				name, err := s.records.CreateNomination(ctx, sub, in)
				if err != nil {
					return ChannelFailed, err
				}
				out.RecordName = name
				return ChannelOK, nil
			}, &out.RecordStore)
			if err != nil {
				s.logger.Warn("record store write failed", "error", err, "business", sub.BusinessName)
			} else if out.RecordStore == ChannelSkipped {
				s.logger.Warn("record store not configured, nomination not persisted", "business", sub.BusinessName)
			}
		},
	)

	if notifyErr != nil {
		out.Email = ChannelSkipped
		s.logger.Error("nomination notification failed",
			"error", notifyErr,
			"business", sub.BusinessName,
			"record_store", out.RecordStore,
		)
		return out, fmt.Errorf("%w: %w", ErrNotificationFailed, notifyErr)
	}

	// The nominator is only thanked once the nomination was delivered.
	err := s.timed(channelEmail, func() (ChannelStatus, error) {
		if s.email == nil {
			return ChannelSkipped, nil
		}
		if err := s.email.Send(ctx, notify.AcknowledgementEmail(sub)); err != nil {
			return ChannelFailed, err
		}
		return ChannelOK, nil
	}, &out.Email)
	if err != nil {
		s.logger.Warn("acknowledgement email failed", "error", err)
	}

	s.logger.Info("nomination dispatched",
		"business", sub.BusinessName,
		"insights", out.Insights,
		"record_store", out.RecordStore,
		"email", out.Email,
	)
	return out, nil
}

// timed runs fn, stores its status in dst and records the dispatch metric.
func (s *Service) timed(channel string, fn func() (ChannelStatus, error), dst *ChannelStatus) error {
	start := s.now()
	status, err := fn()
	*dst = status
	s.metrics.ObserveDispatch(channel, string(status), s.now().Sub(start).Seconds())
	return err
}
