package intake

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/nomination-intake/internal/insights"
	"github.com/wolfman30/nomination-intake/internal/nomination"
	"github.com/wolfman30/nomination-intake/internal/notify"
	"github.com/wolfman30/nomination-intake/internal/observability/metrics"
	"github.com/wolfman30/nomination-intake/internal/recordstore"
)

type fakeNotifier struct {
	mu    sync.Mutex
	err   error
	calls int
	last  notify.Message
	hook  func()
}

func (f *fakeNotifier) Send(ctx context.Context, msg notify.Message) error {
	if f.hook != nil {
		f.hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = msg
	return f.err
}

type fakeRecords struct {
	configured bool
	err        error
	calls      atomic.Int32
	testCalls  atomic.Int32
	hook       func()
	got        *insights.Insights
}

func (f *fakeRecords) Configured() bool { return f.configured }
func (f *fakeRecords) Environment() string { return "development" }

func (f *fakeRecords) CreateNomination(ctx context.Context, s nomination.Submission, in *insights.Insights) (string, error) {
	if f.hook != nil {
		f.hook()
	}
	f.calls.Add(1)
	f.got = in
	if f.err != nil {
		return "", f.err
	}
	return "rec-1", nil
}

func (f *fakeRecords) WriteTest(ctx context.Context) (string, error) {
	f.testCalls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return "diag-1", nil
}

type fakeEmail struct {
	err   error
	calls atomic.Int32
	to    string
}

func (f *fakeEmail) Send(ctx context.Context, msg notify.EmailMessage) error {
	f.calls.Add(1)
	f.to = msg.To
	return f.err
}

type fakeEnricher struct {
	enabled bool
	result  *insights.Insights
	status  insights.Status
}

func (f *fakeEnricher) Enabled() bool { return f.enabled }

func (f *fakeEnricher) GenerateWithStatus(ctx context.Context, s nomination.Submission) (*insights.Insights, insights.Status) {
	return f.result, f.status
}

func validSubmission() nomination.Submission {
	return nomination.Submission{
		NominatorName:  "Jo",
		NominatorEmail: "jo@x.com",
		BusinessName:   "Jo's Cafe",
		Reason:         "Great coffee",
	}
}

func newService(t *testing.T, deps Deps) *Service {
	t.Helper()
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewIntakeMetrics(prometheus.NewRegistry())
	}
	return NewService(Settings{Env: "test"}, deps)
}

func TestSubmit_NotifierNotConfigured(t *testing.T) {
	records := &fakeRecords{configured: true}
	email := &fakeEmail{}
	svc := newService(t, Deps{RecordStore: records, Email: email})

	_, err := svc.Submit(context.Background(), validSubmission())

	require.ErrorIs(t, err, ErrNotifierNotConfigured)
	assert.Zero(t, records.calls.Load())
	assert.Zero(t, email.calls.Load())
}

func TestSubmit_PartialFailureMatrix(t *testing.T) {
	notifyErr := errors.New("webhook down")
	storeErr := &recordstore.APIError{StatusCode: 500, Body: "boom"}

	tests := []struct {
		name             string
		notifyErr        error
		storeConfigured  bool
		storeErr         error
		wantErr          bool
		wantNotification ChannelStatus
		wantRecordStore  ChannelStatus
	}{
		{"all ok", nil, true, nil, false, ChannelOK, ChannelOK},
		{"record store fails", nil, true, storeErr, false, ChannelOK, ChannelFailed},
		{"record store skipped", nil, false, nil, false, ChannelOK, ChannelSkipped},
		{"notification fails", notifyErr, true, nil, true, ChannelFailed, ChannelOK},
		{"both fail", notifyErr, true, storeErr, true, ChannelFailed, ChannelFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{err: tt.notifyErr}
			records := &fakeRecords{configured: tt.storeConfigured, err: tt.storeErr}
			svc := newService(t, Deps{Notifier: notifier, RecordStore: records})

			out, err := svc.Submit(context.Background(), validSubmission())

			if tt.wantErr {
				require.ErrorIs(t, err, ErrNotificationFailed)
				assert.ErrorIs(t, err, notifyErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantNotification, out.Notification)
			assert.Equal(t, tt.wantRecordStore, out.RecordStore)
			assert.Equal(t, ChannelSkipped, out.Email)
			assert.Equal(t, 1, notifier.calls)
			if tt.storeConfigured {
				assert.Equal(t, int32(1), records.calls.Load())
			} else {
				assert.Zero(t, records.calls.Load())
			}
		})
	}
}

func TestSubmit_DispatchesConcurrently(t *testing.T) {
	notifierStarted := make(chan struct{})
	recordsStarted := make(chan struct{})
	wait := func(ch <-chan struct{}) {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
		}
	}

	notifier := &fakeNotifier{err: errors.New("down"), hook: func() {
		close(notifierStarted)
		wait(recordsStarted)
	}}
	records := &fakeRecords{configured: true, hook: func() {
		close(recordsStarted)
		wait(notifierStarted)
	}}
	svc := newService(t, Deps{Notifier: notifier, RecordStore: records})

	start := time.Now()
	out, err := svc.Submit(context.Background(), validSubmission())

	require.ErrorIs(t, err, ErrNotificationFailed)
	assert.Equal(t, ChannelOK, out.RecordStore)
	assert.Equal(t, "rec-1", out.RecordName)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSubmit_EnrichmentFailureIsAbsorbed(t *testing.T) {
	notifier := &fakeNotifier{}
	records := &fakeRecords{configured: true}
	svc := newService(t, Deps{
		Notifier:    notifier,
		RecordStore: records,
		Enricher:    &fakeEnricher{enabled: true, status: insights.StatusFailed},
	})

	out, err := svc.Submit(context.Background(), validSubmission())

	require.NoError(t, err)
	assert.Equal(t, insights.StatusFailed, out.Insights)
	assert.Nil(t, records.got)
	assert.Contains(t, notifier.last.BlockIDs(), notify.BlockInsightsUnavailable)
}

func TestSubmit_InsightsFlowToEveryChannel(t *testing.T) {
	in := &insights.Insights{Logline: "A cafe that anchors a block", PriorityScore: 7}
	notifier := &fakeNotifier{}
	records := &fakeRecords{configured: true}
	svc := newService(t, Deps{
		Notifier:    notifier,
		RecordStore: records,
		Enricher:    &fakeEnricher{enabled: true, result: in, status: insights.StatusOK},
	})

	out, err := svc.Submit(context.Background(), validSubmission())

	require.NoError(t, err)
	assert.Equal(t, insights.StatusOK, out.Insights)
	assert.Same(t, in, records.got)
	assert.Contains(t, notifier.last.BlockIDs(), notify.BlockInsightsHeadline)
	assert.NotContains(t, notifier.last.BlockIDs(), notify.BlockInsightsUnavailable)
}

func TestSubmit_AcknowledgementEmail(t *testing.T) {
	t.Run("sent", func(t *testing.T) {
		email := &fakeEmail{}
		svc := newService(t, Deps{Notifier: &fakeNotifier{}, Email: email})

		out, err := svc.Submit(context.Background(), validSubmission())

		require.NoError(t, err)
		assert.Equal(t, ChannelOK, out.Email)
		assert.Equal(t, "jo@x.com", email.to)
	})

	t.Run("failure is non-fatal", func(t *testing.T) {
		email := &fakeEmail{err: errors.New("smtp down")}
		svc := newService(t, Deps{Notifier: &fakeNotifier{}, Email: email})

		out, err := svc.Submit(context.Background(), validSubmission())

		require.NoError(t, err)
		assert.Equal(t, ChannelFailed, out.Email)
	})

	t.Run("notification fails", func(t *testing.T) {
		email := &fakeEmail{}
		records := &fakeRecords{configured: true}
		svc := newService(t, Deps{Notifier: &fakeNotifier{err: errors.New("webhook down")}, RecordStore: records, Email: email})

		out, err := svc.Submit(context.Background(), validSubmission())

		require.ErrorIs(t, err, ErrNotificationFailed)
		assert.Equal(t, ChannelSkipped, out.Email)
		assert.Zero(t, email.calls.Load(), "no thank-you for an undelivered nomination")
		assert.Equal(t, ChannelOK, out.RecordStore)
	})
}

func TestSettleAll_WaitsForEveryFunction(t *testing.T) {
	var n atomic.Int32
	settleAll(
		func() { time.Sleep(20 * time.Millisecond); n.Add(1) },
		func() { n.Add(1) },
		func() { time.Sleep(10 * time.Millisecond); n.Add(1) },
	)
	assert.Equal(t, int32(3), n.Load())
}
